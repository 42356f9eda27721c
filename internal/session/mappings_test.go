package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

func TestDefaultSessions(t *testing.T) {
	t.Parallel()

	sessions := DefaultSessions(fakeClock{now: time.Now()})
	require.Len(t, sessions, 6)

	seen := make(map[vmgd.SessionName]bool)
	for _, mapping := range sessions {
		require.False(t, seen[mapping.Name], "duplicate session %s", mapping.Name)
		seen[mapping.Name] = true

		require.NotEmpty(t, mapping.Pages, "session %s has no pages", mapping.Name)
		require.NotNil(t, mapping.Aggregate, "session %s has no aggregator", mapping.Name)
		for _, page := range mapping.Pages {
			require.NotNil(t, page.Scrape, "page %s has no scraper", page.Path)
			require.NotEmpty(t, page.Path)
		}
	}

	// The general forecast session consumes the map page before the week
	// page; its aggregator depends on that order.
	general := sessions[0]
	require.Equal(t, vmgd.SessionForecastGeneral, general.Name)
	require.Equal(t, vmgd.PathForecastMap, general.Pages[0].Path)
	require.Equal(t, vmgd.PathForecastWeek, general.Pages[1].Path)
}
