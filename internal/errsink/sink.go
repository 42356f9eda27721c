// Package errsink records classified page failures, deduplicating repeats
// by fingerprint and keeping one HTML snapshot per distinct page content.
package errsink

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/vmgdwatch/scraper/internal/artifact"
	"github.com/vmgdwatch/scraper/internal/hash/sha256"
	"github.com/vmgdwatch/scraper/internal/metrics"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// Sink implements vmgd.ErrorSink on top of the store and artifact directory.
type Sink struct {
	store     vmgd.Store
	artifacts *artifact.Store
	hasher    *sha256.Hasher
	clock     vmgd.Clock
	logger    *zap.Logger
}

// New builds a Sink.
func New(store vmgd.Store, artifacts *artifact.Store, clock vmgd.Clock, logger *zap.Logger) *Sink {
	return &Sink{
		store:     store,
		artifacts: artifacts,
		hasher:    sha256.New(),
		clock:     clock,
		logger:    logger,
	}
}

// Record persists one failure observation. A failure matching an existing
// fingerprint increments that row's count; a new fingerprint inserts a row
// and, when page content is available, writes its snapshot.
func (s *Sink) Record(ctx context.Context, url string, c vmgd.Classification, exception string) error {
	now := s.clock.Now()
	pageError := vmgd.PageError{
		URL:         url,
		Description: c.Kind,
		Exception:   exception,
		RawData:     marshalField(c.RawData),
		Errors:      marshalField(c.Errors),
		Count:       1,
		FirstSeen:   now,
		LastSeen:    now,
	}

	var htmlHash string
	if c.HTML != nil {
		htmlHash = s.hasher.Hash([]byte(*c.HTML))
		pageError.HTMLHash = &htmlHash
	}

	created, err := s.store.FindOrIncrementPageError(ctx, pageError)
	if err != nil {
		return fmt.Errorf("record page error: %w", err)
	}
	metrics.ObservePageError(string(c.Kind))

	if created && c.HTML != nil {
		if _, err := s.artifacts.SaveHTML(htmlHash, *c.HTML); err != nil {
			// The telemetry row is already committed; keep it.
			s.logger.Warn("failed to save error snapshot",
				zap.String("url", url), zap.String("hash", htmlHash), zap.Error(err))
		}
	}

	s.logger.Info("page error recorded",
		zap.String("url", url),
		zap.String("kind", string(c.Kind)),
		zap.Bool("new", created),
	)
	return nil
}

// marshalField serializes structured evidence for the fingerprint columns.
// Nil stays nil so absent evidence matches absent evidence.
func marshalField(v any) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		fallback := fmt.Sprint(v)
		return &fallback
	}
	out := string(data)
	return &out
}
