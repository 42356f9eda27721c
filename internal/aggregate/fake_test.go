package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// fakeStore is an in-memory vmgd.Store for aggregator tests.
type fakeStore struct {
	nextLocationID int64
	locations      map[string]vmgd.Location

	forecasts []vmgd.ForecastDaily
	media     []vmgd.ForecastMedia
	warnings  []vmgd.WeatherWarning

	insertErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{locations: make(map[string]vmgd.Location)}
}

func (s *fakeStore) InTx(_ context.Context, fn func(vmgd.Store) error) error {
	return fn(s)
}

func (s *fakeStore) CreateSession(_ context.Context, name vmgd.SessionName, startedAt time.Time) (vmgd.Session, error) {
	return vmgd.Session{ID: "session-1", Name: name, StartedAt: startedAt}, nil
}

func (s *fakeStore) GetOrCreateLocation(_ context.Context, name string, latitude, longitude float64) (vmgd.Location, error) {
	key := strings.ToLower(name)
	if loc, ok := s.locations[key]; ok {
		return loc, nil
	}
	s.nextLocationID++
	loc := vmgd.Location{
		ID:        s.nextLocationID,
		Name:      name,
		Slug:      vmgd.Slugify(name),
		Latitude:  latitude,
		Longitude: longitude,
	}
	s.locations[key] = loc
	return loc, nil
}

func (s *fakeStore) InsertForecastDaily(_ context.Context, forecast vmgd.ForecastDaily) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.forecasts = append(s.forecasts, forecast)
	return nil
}

func (s *fakeStore) InsertForecastMedia(_ context.Context, media vmgd.ForecastMedia) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.media = append(s.media, media)
	return nil
}

func (s *fakeStore) InsertWeatherWarning(_ context.Context, warning vmgd.WeatherWarning) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.warnings = append(s.warnings, warning)
	return nil
}

func (s *fakeStore) FindOrIncrementPageError(_ context.Context, _ vmgd.PageError) (bool, error) {
	return false, fmt.Errorf("not used in aggregator tests")
}

// fakeClock returns a fixed time.
type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }
