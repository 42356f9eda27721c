package aggregate

import (
	"context"
	"fmt"
	"regexp"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

var spaceRuns = regexp.MustCompile(` +`)

// Media persists the free-text media bulletin, collapsing the space runs
// the page's markup leaves behind.
func Media() vmgd.AggregateFunc {
	return func(ctx context.Context, store vmgd.Store, session vmgd.Session, results []vmgd.ScrapeResult) error {
		if len(results) != 1 {
			return preconditionf("want 1 page result, got %d", len(results))
		}
		summary, err := payloadOf[string](results[0])
		if err != nil {
			return err
		}
		if results[0].IssuedAt == nil {
			return preconditionf("missing issued-at timestamp")
		}

		media := vmgd.ForecastMedia{
			SessionID: session.ID,
			IssuedAt:  *results[0].IssuedAt,
			Summary:   spaceRuns.ReplaceAllString(summary, " "),
		}
		if err := store.InsertForecastMedia(ctx, media); err != nil {
			return fmt.Errorf("insert media bulletin: %w", err)
		}
		return nil
	}
}
