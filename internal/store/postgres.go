// Package store persists sessions, locations, forecasts, warnings and page
// error telemetry in PostgreSQL via pgx.
//
// Expected schema:
//
//	CREATE TABLE sessions (
//	    id         UUID PRIMARY KEY,
//	    name       TEXT NOT NULL,
//	    started_at TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE locations (
//	    id        BIGSERIAL PRIMARY KEY,
//	    name      TEXT NOT NULL,
//	    slug      TEXT NOT NULL,
//	    latitude  DOUBLE PRECISION NOT NULL,
//	    longitude DOUBLE PRECISION NOT NULL
//	);
//	CREATE UNIQUE INDEX locations_name_lower_idx ON locations ((lower(name)));
//
//	CREATE TABLE forecast_daily (
//	    id          BIGSERIAL PRIMARY KEY,
//	    location_id BIGINT NOT NULL REFERENCES locations (id),
//	    date        TIMESTAMPTZ NOT NULL,
//	    summary     TEXT NOT NULL,
//	    min_temp    INT NOT NULL,
//	    max_temp    INT NOT NULL,
//	    min_humi    INT NOT NULL,
//	    max_humi    INT NOT NULL,
//	    issued_at   TIMESTAMPTZ NOT NULL,
//	    session_id  UUID NOT NULL REFERENCES sessions (id)
//	);
//
//	CREATE TABLE forecast_media (
//	    id         BIGSERIAL PRIMARY KEY,
//	    session_id UUID NOT NULL REFERENCES sessions (id),
//	    issued_at  TIMESTAMPTZ NOT NULL,
//	    summary    TEXT NOT NULL
//	);
//
//	CREATE TABLE weather_warnings (
//	    id                 BIGSERIAL PRIMARY KEY,
//	    session_id         UUID NOT NULL REFERENCES sessions (id),
//	    issued_at          TIMESTAMPTZ NOT NULL,
//	    date               TIMESTAMPTZ NOT NULL,
//	    no_current_warning BOOLEAN NOT NULL DEFAULT FALSE,
//	    body               TEXT
//	);
//
//	CREATE TABLE page_errors (
//	    id          BIGSERIAL PRIMARY KEY,
//	    url         TEXT NOT NULL,
//	    description TEXT NOT NULL,
//	    exception   TEXT NOT NULL,
//	    html_hash   TEXT,
//	    raw_data    TEXT,
//	    errors      TEXT,
//	    count       INT NOT NULL DEFAULT 1,
//	    first_seen  TIMESTAMPTZ NOT NULL,
//	    last_seen   TIMESTAMPTZ NOT NULL
//	);
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// DB is the slice of pgxpool.Pool the store uses. pgx.Tx satisfies it too,
// which is what lets InTx hand out a transactional Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Postgres implements vmgd.Store.
type Postgres struct {
	db     DB
	logger *zap.Logger
}

// New wraps a database handle. Pass a pool for the root store; InTx derives
// transactional stores internally.
func New(db DB, logger *zap.Logger) *Postgres {
	return &Postgres{db: db, logger: logger}
}

// Connect opens and pings a pgx pool.
func Connect(ctx context.Context, dsn string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// InTx runs fn against a transactional store, committing on nil and rolling
// back on error.
func (p *Postgres) InTx(ctx context.Context, fn func(vmgd.Store) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&Postgres{db: tx, logger: p.logger}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			p.logger.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

const insertSessionSQL = `
INSERT INTO sessions (id, name, started_at)
VALUES ($1, $2, $3)`

// CreateSession inserts a new session row with a fresh UUID.
func (p *Postgres) CreateSession(ctx context.Context, name vmgd.SessionName, startedAt time.Time) (vmgd.Session, error) {
	session := vmgd.Session{
		ID:        uuid.NewString(),
		Name:      name,
		StartedAt: startedAt,
	}
	if _, err := p.db.Exec(ctx, insertSessionSQL, session.ID, string(name), startedAt); err != nil {
		return vmgd.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

const insertLocationSQL = `
INSERT INTO locations (name, slug, latitude, longitude)
VALUES ($1, $2, $3, $4)
ON CONFLICT ((lower(name))) DO NOTHING`

const selectLocationSQL = `
SELECT id, name, slug, latitude, longitude
FROM locations
WHERE lower(name) = lower($1)`

// GetOrCreateLocation resolves a location by case-insensitive name,
// inserting it on first sight. The unique index on lower(name) makes the
// insert-then-select safe under concurrent sessions.
func (p *Postgres) GetOrCreateLocation(ctx context.Context, name string, latitude, longitude float64) (vmgd.Location, error) {
	_, err := p.db.Exec(ctx, insertLocationSQL, name, vmgd.Slugify(name), latitude, longitude)
	if err != nil {
		return vmgd.Location{}, fmt.Errorf("insert location: %w", err)
	}

	var location vmgd.Location
	err = p.db.QueryRow(ctx, selectLocationSQL, name).Scan(
		&location.ID, &location.Name, &location.Slug, &location.Latitude, &location.Longitude,
	)
	if err != nil {
		return vmgd.Location{}, fmt.Errorf("select location: %w", err)
	}
	return location, nil
}

const insertForecastDailySQL = `
INSERT INTO forecast_daily (location_id, date, summary, min_temp, max_temp, min_humi, max_humi, issued_at, session_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// InsertForecastDaily stores one reconciled forecast day.
func (p *Postgres) InsertForecastDaily(ctx context.Context, forecast vmgd.ForecastDaily) error {
	_, err := p.db.Exec(ctx, insertForecastDailySQL,
		forecast.LocationID, forecast.Date, forecast.Summary,
		forecast.MinTemp, forecast.MaxTemp, forecast.MinHumi, forecast.MaxHumi,
		forecast.IssuedAt, forecast.SessionID,
	)
	if err != nil {
		return fmt.Errorf("insert forecast: %w", err)
	}
	return nil
}

const insertForecastMediaSQL = `
INSERT INTO forecast_media (session_id, issued_at, summary)
VALUES ($1, $2, $3)`

// InsertForecastMedia stores the media bulletin text.
func (p *Postgres) InsertForecastMedia(ctx context.Context, media vmgd.ForecastMedia) error {
	_, err := p.db.Exec(ctx, insertForecastMediaSQL, media.SessionID, media.IssuedAt, media.Summary)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}
	return nil
}

const insertWeatherWarningSQL = `
INSERT INTO weather_warnings (session_id, issued_at, date, no_current_warning, body)
VALUES ($1, $2, $3, $4, $5)`

// InsertWeatherWarning stores one warning row or the no-warning sentinel.
func (p *Postgres) InsertWeatherWarning(ctx context.Context, warning vmgd.WeatherWarning) error {
	_, err := p.db.Exec(ctx, insertWeatherWarningSQL,
		warning.SessionID, warning.IssuedAt, warning.Date, warning.NoCurrentWarning, warning.Body,
	)
	if err != nil {
		return fmt.Errorf("insert warning: %w", err)
	}
	return nil
}

const incrementPageErrorSQL = `
UPDATE page_errors
SET count = count + 1, last_seen = $7
WHERE url = $1
  AND description = $2
  AND exception = $3
  AND html_hash IS NOT DISTINCT FROM $4
  AND raw_data IS NOT DISTINCT FROM $5
  AND errors IS NOT DISTINCT FROM $6`

const insertPageErrorSQL = `
INSERT INTO page_errors (url, description, exception, html_hash, raw_data, errors, count, first_seen, last_seen)
VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $7)`

// FindOrIncrementPageError bumps the count of an existing row matching the
// full fingerprint, NULLs included, or inserts a fresh row. It reports
// whether a new row was created.
func (p *Postgres) FindOrIncrementPageError(ctx context.Context, pageError vmgd.PageError) (bool, error) {
	tag, err := p.db.Exec(ctx, incrementPageErrorSQL,
		pageError.URL, string(pageError.Description), pageError.Exception,
		pageError.HTMLHash, pageError.RawData, pageError.Errors,
		pageError.LastSeen,
	)
	if err != nil {
		return false, fmt.Errorf("increment page error: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = p.db.Exec(ctx, insertPageErrorSQL,
		pageError.URL, string(pageError.Description), pageError.Exception,
		pageError.HTMLHash, pageError.RawData, pageError.Errors,
		pageError.LastSeen,
	)
	if err != nil {
		return false, fmt.Errorf("insert page error: %w", err)
	}
	return true, nil
}
