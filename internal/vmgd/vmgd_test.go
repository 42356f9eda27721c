package vmgd

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPageMappingURLAndSlug(t *testing.T) {
	t.Parallel()

	page := PageMapping{Path: PathForecastWeek}
	require.Equal(t, "https://www.vmgd.gov.vu/vmgd/index.php/forecast-division/public-forecast/7-day",
		page.URL("https://www.vmgd.gov.vu/vmgd/index.php/"))
	require.Equal(t, "7-day", page.Slug())
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	require.Equal(t, "port-vila", Slugify("Port Vila"))
	require.Equal(t, "sola-vanua-lava", Slugify("Sola (Vanua Lava)"))
	require.Equal(t, "luganville", Slugify("  Luganville  "))
}

func TestNoCurrentWarningSentinel(t *testing.T) {
	t.Parallel()

	require.True(t, NoCurrentWarningsResult().IsNoCurrentWarning())
	require.False(t, ScrapeResult{RawData: "warning text"}.IsNoCurrentWarning())
	require.False(t, ScrapeResult{RawData: []WarningEntry{}}.IsNoCurrentWarning())
}

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("fetch error with body", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("wrapped: %w", &FetchError{
			URL:        "https://example.test",
			Kind:       ErrKindNotFound,
			StatusCode: 404,
			Body:       []byte("<html>missing</html>"),
		})
		c := Classify(err)
		require.Equal(t, ErrKindNotFound, c.Kind)
		require.NotNil(t, c.HTML)
		require.Equal(t, "<html>missing</html>", *c.HTML)
	})

	t.Run("scrape error carries evidence", func(t *testing.T) {
		t.Parallel()
		err := &ScrapeError{
			Kind:    ErrKindDataNotValid,
			HTML:    "<html>bad</html>",
			RawData: []string{"row"},
			Errors:  []string{"bad row"},
		}
		c := Classify(err)
		require.Equal(t, ErrKindDataNotValid, c.Kind)
		require.NotNil(t, c.HTML)
		require.Equal(t, []string{"row"}, c.RawData)
		require.Equal(t, []string{"bad row"}, c.Errors)
	})

	t.Run("unknown error is internal", func(t *testing.T) {
		t.Parallel()
		c := Classify(errors.New("boom"))
		require.Equal(t, ErrKindInternal, c.Kind)
		require.Nil(t, c.HTML)
	})
}

func TestWeatherObjectUnmarshalJSON(t *testing.T) {
	t.Parallel()

	ints := func(v, n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = v
		}
		return out
	}
	fields := []any{
		"Port Vila", -17.7, 168.3,
		[]string{"Friday 24", "Saturday 25", "Sunday 26", "Monday 27", "Tuesday 28", "Wednesday 29", "Thursday 30", "Friday 31"},
		ints(22, 7), ints(30, 7), ints(60, 7), ints(90, 7),
		ints(1, 16), ints(180, 16), ints(10, 16),
		0, "2023-03-24", make([]string, 16),
	}
	data, err := json.Marshal(fields)
	require.NoError(t, err)

	var obj WeatherObject
	require.NoError(t, json.Unmarshal(data, &obj))
	require.Equal(t, "Port Vila", obj.Location)
	require.InDelta(t, -17.7, obj.Latitude, 0.001)
	require.Len(t, obj.Dates, 8)
	require.Equal(t, 22, obj.MinTemp[0])
	require.Equal(t, float64(180), obj.WindDirection[0])
	require.Equal(t, "2023-03-24", obj.CurrentDate)
}

func TestWeatherObjectUnmarshalJSON_WrongArity(t *testing.T) {
	t.Parallel()

	var obj WeatherObject
	err := json.Unmarshal([]byte(`["Port Vila", 1.0, 2.0]`), &obj)
	require.Error(t, err)
	require.Contains(t, err.Error(), "3 fields")
}

func TestFetchErrorMessage(t *testing.T) {
	t.Parallel()

	err := &FetchError{
		URL:        "https://example.test/page",
		Kind:       ErrKindUnauthorized,
		StatusCode: 403,
		Err:        errors.New("forbidden"),
	}
	require.Contains(t, err.Error(), "https://example.test/page")
	require.Contains(t, err.Error(), "UNAUTHORIZED")
	require.Contains(t, err.Error(), "403")
	require.ErrorContains(t, err, "forbidden")
}
