package errsink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vmgdwatch/scraper/internal/artifact"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// fakeStore deduplicates page errors by fingerprint, like the real store.
type fakeStore struct {
	rows []vmgd.PageError
	err  error
}

func (s *fakeStore) FindOrIncrementPageError(_ context.Context, pageError vmgd.PageError) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	for i := range s.rows {
		if sameFingerprint(s.rows[i], pageError) {
			s.rows[i].Count++
			s.rows[i].LastSeen = pageError.LastSeen
			return false, nil
		}
	}
	s.rows = append(s.rows, pageError)
	return true, nil
}

func sameFingerprint(a, b vmgd.PageError) bool {
	return a.URL == b.URL &&
		a.Description == b.Description &&
		a.Exception == b.Exception &&
		samePtr(a.HTMLHash, b.HTMLHash) &&
		samePtr(a.RawData, b.RawData) &&
		samePtr(a.Errors, b.Errors)
}

func samePtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *fakeStore) InTx(_ context.Context, fn func(vmgd.Store) error) error { return fn(s) }
func (s *fakeStore) CreateSession(context.Context, vmgd.SessionName, time.Time) (vmgd.Session, error) {
	return vmgd.Session{}, nil
}
func (s *fakeStore) GetOrCreateLocation(context.Context, string, float64, float64) (vmgd.Location, error) {
	return vmgd.Location{}, nil
}
func (s *fakeStore) InsertForecastDaily(context.Context, vmgd.ForecastDaily) error   { return nil }
func (s *fakeStore) InsertForecastMedia(context.Context, vmgd.ForecastMedia) error   { return nil }
func (s *fakeStore) InsertWeatherWarning(context.Context, vmgd.WeatherWarning) error { return nil }

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

func newTestSink(t *testing.T) (*Sink, *fakeStore, string) {
	t.Helper()
	dir := t.TempDir()
	artifacts, err := artifact.New(dir)
	require.NoError(t, err)
	store := &fakeStore{}
	clock := fakeClock{now: time.Date(2023, time.March, 24, 12, 0, 0, 0, time.UTC)}
	return New(store, artifacts, clock, zap.NewNop()), store, dir
}

func TestRecord_RepeatedFailuresIncrementOneRow(t *testing.T) {
	t.Parallel()

	sink, store, _ := newTestSink(t)
	html := "<html>broken</html>"
	c := vmgd.Classification{Kind: vmgd.ErrKindDataNotFound, HTML: &html}

	for i := 0; i < 3; i++ {
		require.NoError(t, sink.Record(context.Background(), "https://example.test/page", c, "no tables"))
	}

	require.Len(t, store.rows, 1)
	require.Equal(t, 3, store.rows[0].Count)
	require.Equal(t, vmgd.ErrKindDataNotFound, store.rows[0].Description)
}

func TestRecord_DistinctContentMakesDistinctRows(t *testing.T) {
	t.Parallel()

	sink, store, _ := newTestSink(t)
	htmlA := "<html>a</html>"
	htmlB := "<html>b</html>"

	require.NoError(t, sink.Record(context.Background(), "https://example.test/page",
		vmgd.Classification{Kind: vmgd.ErrKindDataNotFound, HTML: &htmlA}, "no tables"))
	require.NoError(t, sink.Record(context.Background(), "https://example.test/page",
		vmgd.Classification{Kind: vmgd.ErrKindDataNotFound, HTML: &htmlB}, "no tables"))

	require.Len(t, store.rows, 2)
	require.NotEqual(t, *store.rows[0].HTMLHash, *store.rows[1].HTMLHash)
}

func TestRecord_NoHTMLMeansNoHashOrSnapshot(t *testing.T) {
	t.Parallel()

	sink, store, dir := newTestSink(t)
	require.NoError(t, sink.Record(context.Background(), "https://example.test/page",
		vmgd.Classification{Kind: vmgd.ErrKindTimeout}, "deadline exceeded"))

	require.Len(t, store.rows, 1)
	require.Nil(t, store.rows[0].HTMLHash)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRecord_WritesSnapshotOnceForNewFingerprint(t *testing.T) {
	t.Parallel()

	sink, store, dir := newTestSink(t)
	html := "<html>broken</html>"
	c := vmgd.Classification{Kind: vmgd.ErrKindDataNotValid, HTML: &html, Errors: []string{"bad row"}}

	require.NoError(t, sink.Record(context.Background(), "https://example.test/page", c, "validation"))
	require.NoError(t, sink.Record(context.Background(), "https://example.test/page", c, "validation"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	require.Equal(t, html, string(data))

	require.Len(t, store.rows, 1)
	require.NotNil(t, store.rows[0].Errors)
	require.JSONEq(t, `["bad row"]`, *store.rows[0].Errors)
}

func TestRecord_StoreFailurePropagates(t *testing.T) {
	t.Parallel()

	sink, store, _ := newTestSink(t)
	store.err = os.ErrClosed
	err := sink.Record(context.Background(), "https://example.test/page",
		vmgd.Classification{Kind: vmgd.ErrKindInternal}, "boom")
	require.ErrorIs(t, err, os.ErrClosed)
}
