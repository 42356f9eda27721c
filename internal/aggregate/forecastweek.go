package aggregate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vmgdwatch/scraper/internal/dates"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// ForecastWeek combines the forecast map page and the seven-day public
// forecast page into one reconciled daily forecast per location per day.
// The map page contributes coordinates and humidity, the seven-day page
// contributes summaries, and temperature bounds are widened to cover both
// sources.
func ForecastWeek() vmgd.AggregateFunc {
	return func(ctx context.Context, store vmgd.Store, session vmgd.Session, results []vmgd.ScrapeResult) error {
		if len(results) != 2 {
			return preconditionf("want 2 page results, got %d", len(results))
		}
		objects, err := payloadOf[[]vmgd.WeatherObject](results[0])
		if err != nil {
			return err
		}
		weekRows, err := payloadOf[[]vmgd.DailyForecast](results[1])
		if err != nil {
			return err
		}
		if results[0].IssuedAt == nil || results[1].IssuedAt == nil {
			return preconditionf("missing issued-at timestamp")
		}
		issuedAt := *results[0].IssuedAt
		if !sameUTCDate(issuedAt, *results[1].IssuedAt) {
			return preconditionf("pages issued on different days: %s vs %s",
				issuedAt.Format(time.DateOnly), results[1].IssuedAt.Format(time.DateOnly))
		}

		byLocation := groupByLocation(weekRows)
		if err := checkLocationSets(objects, byLocation); err != nil {
			return err
		}

		anchor := issuedAt.In(dates.VU)
		for i := range objects {
			if err := persistLocation(ctx, store, session, &objects[i], byLocation[locationKey(objects[i].Location)], anchor, issuedAt); err != nil {
				return err
			}
		}
		return nil
	}
}

func persistLocation(ctx context.Context, store vmgd.Store, session vmgd.Session, obj *vmgd.WeatherObject, weekRows []vmgd.DailyForecast, anchor time.Time, issuedAt time.Time) error {
	mapDates, err := resolveSeries(obj.Dates, anchor)
	if err != nil {
		return fmt.Errorf("%s map dates: %w", obj.Location, err)
	}
	obj.ResolvedDates = mapDates

	weekFragments := make([]string, len(weekRows))
	for i, row := range weekRows {
		weekFragments[i] = row.Date
	}
	weekDates, err := resolveSeries(weekFragments, anchor)
	if err != nil {
		return fmt.Errorf("%s week dates: %w", obj.Location, err)
	}

	if len(weekRows) != len(obj.MinTemp) {
		return preconditionf("%s has %d week rows for %d forecast days", obj.Location, len(weekRows), len(obj.MinTemp))
	}

	location, err := store.GetOrCreateLocation(ctx, obj.Location, obj.Latitude, obj.Longitude)
	if err != nil {
		return fmt.Errorf("location %s: %w", obj.Location, err)
	}

	for i, row := range weekRows {
		if !mapDates[i].Equal(weekDates[i]) {
			return preconditionf("%s day %d: map date %s does not match week date %s",
				obj.Location, i, mapDates[i].Format(time.DateOnly), weekDates[i].Format(time.DateOnly))
		}
		forecast := vmgd.ForecastDaily{
			LocationID: location.ID,
			Date:       mapDates[i],
			Summary:    row.Summary,
			MinTemp:    minInt(obj.MinTemp[i], row.MinTemp),
			MaxTemp:    maxInt(obj.MaxTemp[i], row.MaxTemp),
			MinHumi:    obj.MinHumi[i],
			MaxHumi:    obj.MaxHumi[i],
			IssuedAt:   issuedAt,
			SessionID:  session.ID,
		}
		if err := store.InsertForecastDaily(ctx, forecast); err != nil {
			return fmt.Errorf("insert forecast for %s: %w", obj.Location, err)
		}
	}
	return nil
}

// resolveSeries anchors relative date fragments and repairs month-boundary
// ambiguity so the series is strictly day-by-day.
func resolveSeries(fragments []string, anchor time.Time) ([]time.Time, error) {
	resolved := make([]time.Time, len(fragments))
	for i, fragment := range fragments {
		t, err := dates.ResolveRelativeDate(fragment, anchor)
		if err != nil {
			return nil, err
		}
		resolved[i] = t
	}
	return dates.VerifyDateSeries(resolved)
}

func groupByLocation(rows []vmgd.DailyForecast) map[string][]vmgd.DailyForecast {
	grouped := make(map[string][]vmgd.DailyForecast)
	for _, row := range rows {
		key := locationKey(row.Location)
		grouped[key] = append(grouped[key], row)
	}
	return grouped
}

func checkLocationSets(objects []vmgd.WeatherObject, byLocation map[string][]vmgd.DailyForecast) error {
	seen := make(map[string]bool, len(objects))
	for _, obj := range objects {
		key := locationKey(obj.Location)
		if _, ok := byLocation[key]; !ok {
			return preconditionf("location %s is missing from the week page", obj.Location)
		}
		seen[key] = true
	}
	for key := range byLocation {
		if !seen[key] {
			return preconditionf("location %s is missing from the map page", key)
		}
	}
	return nil
}

func locationKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sameUTCDate(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
