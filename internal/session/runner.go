// Package session drives the scraping pipeline: fetching and parsing each
// page of a session, recording failures, and committing aggregated results.
package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vmgdwatch/scraper/internal/metrics"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// Runner executes single sessions end to end.
type Runner struct {
	fetcher vmgd.Fetcher
	store   vmgd.Store
	sink    vmgd.ErrorSink
	clock   vmgd.Clock
	baseURL string
	logger  *zap.Logger
}

// NewRunner builds a Runner.
func NewRunner(fetcher vmgd.Fetcher, store vmgd.Store, sink vmgd.ErrorSink, clock vmgd.Clock, baseURL string, logger *zap.Logger) *Runner {
	return &Runner{
		fetcher: fetcher,
		store:   store,
		sink:    sink,
		clock:   clock,
		baseURL: baseURL,
		logger:  logger,
	}
}

// Run fetches and scrapes every page of the session in order, then creates
// the session row and runs the aggregator inside one transaction. The first
// page failure aborts the session; it is recorded and nothing is persisted.
func (r *Runner) Run(ctx context.Context, mapping vmgd.SessionMapping) error {
	log := r.logger.With(zap.String("session", string(mapping.Name)))
	startedAt := r.clock.Now()

	results := make([]vmgd.ScrapeResult, 0, len(mapping.Pages))
	for _, page := range mapping.Pages {
		result, err := r.processPage(ctx, page)
		if err != nil {
			r.recordFailure(ctx, page.URL(r.baseURL), err, log)
			metrics.ObserveSession(string(mapping.Name), "failed")
			return fmt.Errorf("page %s: %w", page.Path, err)
		}
		results = append(results, result)
		metrics.ObservePage(string(mapping.Name))
	}

	err := r.store.InTx(ctx, func(tx vmgd.Store) error {
		session, err := tx.CreateSession(ctx, mapping.Name, startedAt)
		if err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return mapping.Aggregate(ctx, tx, session, results)
	})
	if err != nil {
		r.recordFailure(ctx, mapping.Pages[0].URL(r.baseURL), err, log)
		metrics.ObserveSession(string(mapping.Name), "failed")
		return fmt.Errorf("aggregate: %w", err)
	}

	metrics.ObserveSession(string(mapping.Name), "ok")
	log.Info("session completed", zap.Int("pages", len(mapping.Pages)))
	return nil
}

func (r *Runner) processPage(ctx context.Context, page vmgd.PageMapping) (vmgd.ScrapeResult, error) {
	html, err := r.fetcher.FetchPage(ctx, page)
	if err != nil {
		return vmgd.ScrapeResult{}, err
	}
	return page.Scrape(html)
}

func (r *Runner) recordFailure(ctx context.Context, url string, err error, log *zap.Logger) {
	c := vmgd.Classify(err)
	log.Warn("page failed",
		zap.String("url", url),
		zap.String("kind", string(c.Kind)),
		zap.Error(err),
	)
	if sinkErr := r.sink.Record(ctx, url, c, err.Error()); sinkErr != nil {
		log.Error("failed to record page error", zap.Error(sinkErr))
	}
}
