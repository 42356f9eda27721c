package aggregate

import (
	"context"
	"fmt"

	"github.com/vmgdwatch/scraper/internal/dates"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// Warnings persists warning bulletin entries. The explicit "no current
// warning" state becomes a single dated sentinel row so the record shows
// the page was checked and found clear.
func Warnings(clock vmgd.Clock) vmgd.AggregateFunc {
	return func(ctx context.Context, store vmgd.Store, session vmgd.Session, results []vmgd.ScrapeResult) error {
		if len(results) != 1 {
			return preconditionf("want 1 page result, got %d", len(results))
		}
		result := results[0]

		if result.IsNoCurrentWarning() {
			now := clock.Now()
			warning := vmgd.WeatherWarning{
				SessionID:        session.ID,
				IssuedAt:         now,
				Date:             now,
				NoCurrentWarning: true,
			}
			if err := store.InsertWeatherWarning(ctx, warning); err != nil {
				return fmt.Errorf("insert no-warning sentinel: %w", err)
			}
			return nil
		}

		entries, err := payloadOf[[]vmgd.WarningEntry](result)
		if err != nil {
			return err
		}
		issuedAt := clock.Now()
		if result.IssuedAt != nil {
			issuedAt = *result.IssuedAt
		}

		for _, entry := range entries {
			date, err := dates.ParseWarningDate(entry.Date)
			if err != nil {
				return fmt.Errorf("warning entry date: %w", err)
			}
			body := entry.Body
			warning := vmgd.WeatherWarning{
				SessionID: session.ID,
				IssuedAt:  issuedAt,
				Date:      date,
				Body:      &body,
			}
			if err := store.InsertWeatherWarning(ctx, warning); err != nil {
				return fmt.Errorf("insert warning: %w", err)
			}
		}
		return nil
	}
}
