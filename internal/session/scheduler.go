package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// Scheduler fans session runs out across goroutines. Sessions are
// independent: one failing never stops the others.
type Scheduler struct {
	runner *Runner
	logger *zap.Logger
}

// NewScheduler builds a Scheduler.
func NewScheduler(runner *Runner, logger *zap.Logger) *Scheduler {
	return &Scheduler{runner: runner, logger: logger}
}

// RunAll runs every session concurrently and waits for all of them. The
// returned error joins the failures of all failed sessions, nil when every
// session succeeded.
func (s *Scheduler) RunAll(ctx context.Context, sessions []vmgd.SessionMapping) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(sessions))

	for _, mapping := range sessions {
		wg.Add(1)
		go func(m vmgd.SessionMapping) {
			defer wg.Done()
			if err := s.runner.Run(ctx, m); err != nil {
				errCh <- fmt.Errorf("session %s: %w", m.Name, err)
			}
		}(mapping)
	}
	wg.Wait()
	close(errCh)

	var errs []error
	for err := range errCh {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		s.logger.Warn("sessions finished with failures",
			zap.Int("failed", len(errs)), zap.Int("total", len(sessions)))
	}
	return errors.Join(errs...)
}
