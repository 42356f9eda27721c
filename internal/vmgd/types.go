// Package vmgd defines core types shared across subsystems.
package vmgd

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// SessionName identifies one logical unit of scraping work.
type SessionName string

// Session names persisted with every aggregated record.
const (
	SessionForecastGeneral      SessionName = "forecast_general"
	SessionForecastMedia        SessionName = "forecast_media"
	SessionWarningBulletin      SessionName = "warning_bulletin"
	SessionWarningMarine        SessionName = "warning_marine"
	SessionWarningHighSeas      SessionName = "warning_high_seas"
	SessionWarningSevereWeather SessionName = "warning_severe_weather"
)

// Relative paths of the VMGD pages the scraper knows about. The
// "hight-seas" spelling is the path as it exists on the site.
const (
	PathForecastMap          = "/forecast-division"
	PathForecastWeek         = "/forecast-division/public-forecast/7-day"
	PathForecastMedia        = "/forecast-division/public-forecast/media"
	PathForecastAbout        = "/forecast-division/public-forecast"
	PathForecastPolicy       = "/forecast-division/public-forecast/forecast-policy"
	PathSevereOutlook        = "/forecast-division/public-forecast/severe-weather-outlook"
	PathTCOutlook            = "/forecast-division/public-forecast/tc-outlook"
	PathWarningBulletin      = "/forecast-division/warnings/current-bulletin"
	PathWarningSevereWeather = "/forecast-division/warnings/severe-weather-warning"
	PathWarningMarine        = "/forecast-division/warnings/marine-warning"
	PathWarningHighSeas      = "/forecast-division/warnings/hight-seas-warning"
)

// ScrapeFunc parses raw page HTML into a typed result or a classified failure.
type ScrapeFunc func(html string) (ScrapeResult, error)

// AggregateFunc combines the scrape results of a completed session into
// persisted domain records. It only runs once every page of the session has
// produced a result, inside the session transaction.
type AggregateFunc func(ctx context.Context, store Store, session Session, results []ScrapeResult) error

// PageMapping binds a page path to its scraper. Identity is the path.
type PageMapping struct {
	Path   string
	Scrape ScrapeFunc
}

// URL joins the mapping's path onto the configured base URL.
func (p PageMapping) URL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + p.Path
}

// Slug returns the final path segment, used as the development cache key.
func (p PageMapping) Slug() string {
	if i := strings.LastIndex(p.Path, "/"); i >= 0 {
		return p.Path[i+1:]
	}
	return p.Path
}

// SessionMapping is one unit of concurrent work: an ordered list of pages
// that must jointly succeed before the aggregator runs.
type SessionMapping struct {
	Name      SessionName
	Pages     []PageMapping
	Aggregate AggregateFunc
}

// ScrapeResult is produced once per successful scrape and consumed exactly
// once by the session's aggregator. IssuedAt, when present, is UTC.
type ScrapeResult struct {
	RawData  any
	IssuedAt *time.Time
	Images   []string
}

// NoCurrentWarning is the sentinel payload for warning pages that explicitly
// report nothing, distinguished from a scrape failure.
const NoCurrentWarning = "no current warning"

// NoCurrentWarningsResult returns the sentinel "nothing to report" result.
func NoCurrentWarningsResult() ScrapeResult {
	return ScrapeResult{RawData: NoCurrentWarning}
}

// IsNoCurrentWarning reports whether the result is the sentinel.
func (r ScrapeResult) IsNoCurrentWarning() bool {
	s, ok := r.RawData.(string)
	return ok && s == NoCurrentWarning
}

// Session is the persisted record of one session run.
type Session struct {
	ID        string
	Name      SessionName
	StartedAt time.Time
}

// Location identity is the case-insensitive name; at most one row exists per
// distinct name regardless of how many sessions observe it.
type Location struct {
	ID        int64
	Name      string
	Slug      string
	Latitude  float64
	Longitude float64
}

// ForecastDaily is one reconciled forecast row per location per calendar day
// per issuing session.
type ForecastDaily struct {
	LocationID int64
	Date       time.Time
	Summary    string
	MinTemp    int
	MaxTemp    int
	MinHumi    int
	MaxHumi    int
	IssuedAt   time.Time
	SessionID  string
}

// ForecastMedia is the free-text media bulletin summary, one per media session.
type ForecastMedia struct {
	SessionID string
	IssuedAt  time.Time
	Summary   string
}

// WeatherWarning is either one row per warning bulletin entry, or a single
// row with NoCurrentWarning set and a nil body for the explicit "no warning"
// state.
type WeatherWarning struct {
	SessionID        string
	IssuedAt         time.Time
	Date             time.Time
	NoCurrentWarning bool
	Body             *string
}

// PageError is the deduplicated error telemetry row. The fingerprint is
// (URL, Description, Exception, HTMLHash, RawData, Errors); identical
// fingerprints increment Count instead of inserting a new row.
type PageError struct {
	URL         string
	Description ErrorKind
	Exception   string
	HTMLHash    *string
	RawData     *string
	Errors      *string
	Count       int
	FirstSeen   time.Time
	LastSeen    time.Time
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL-safe slug from a location name.
func Slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
