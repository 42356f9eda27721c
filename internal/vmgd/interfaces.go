package vmgd

import (
	"context"
	"time"
)

// Store is the persistence collaborator. GetOrCreateLocation must be
// race-safe under concurrent sessions: the same name always resolves to the
// same row.
type Store interface {
	// InTx runs fn against a transactional view of the store, committing on
	// nil and rolling back on error. One session run = one transaction.
	InTx(ctx context.Context, fn func(Store) error) error

	CreateSession(ctx context.Context, name SessionName, startedAt time.Time) (Session, error)
	GetOrCreateLocation(ctx context.Context, name string, latitude, longitude float64) (Location, error)
	InsertForecastDaily(ctx context.Context, forecast ForecastDaily) error
	InsertForecastMedia(ctx context.Context, media ForecastMedia) error
	InsertWeatherWarning(ctx context.Context, warning WeatherWarning) error

	// FindOrIncrementPageError looks up an existing row by the full
	// fingerprint; a hit increments its count and updates last-seen, a miss
	// inserts a new row. It reports whether a new row was created.
	FindOrIncrementPageError(ctx context.Context, pageError PageError) (bool, error)
}

// Fetcher retrieves the raw content of a mapped page.
type Fetcher interface {
	FetchPage(ctx context.Context, page PageMapping) (string, error)
}

// ErrorSink classifies and deduplicates failures from fetch or scrape stages.
type ErrorSink interface {
	Record(ctx context.Context, url string, c Classification, exception string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}
