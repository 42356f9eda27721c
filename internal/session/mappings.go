package session

import (
	"github.com/vmgdwatch/scraper/internal/aggregate"
	"github.com/vmgdwatch/scraper/internal/scrape"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// DefaultSessions binds every known session to its pages and aggregator.
// Page order matters: aggregators consume results positionally.
func DefaultSessions(clock vmgd.Clock) []vmgd.SessionMapping {
	warnings := aggregate.Warnings(clock)
	return []vmgd.SessionMapping{
		{
			Name: vmgd.SessionForecastGeneral,
			Pages: []vmgd.PageMapping{
				{Path: vmgd.PathForecastMap, Scrape: scrape.Forecast},
				{Path: vmgd.PathForecastWeek, Scrape: scrape.ForecastWeek},
			},
			Aggregate: aggregate.ForecastWeek(),
		},
		{
			Name: vmgd.SessionForecastMedia,
			Pages: []vmgd.PageMapping{
				{Path: vmgd.PathForecastMedia, Scrape: scrape.ForecastMedia},
			},
			Aggregate: aggregate.Media(),
		},
		{
			Name: vmgd.SessionWarningBulletin,
			Pages: []vmgd.PageMapping{
				{Path: vmgd.PathWarningBulletin, Scrape: scrape.CurrentBulletin},
			},
			Aggregate: warnings,
		},
		{
			Name: vmgd.SessionWarningMarine,
			Pages: []vmgd.PageMapping{
				{Path: vmgd.PathWarningMarine, Scrape: scrape.Warnings},
			},
			Aggregate: warnings,
		},
		{
			Name: vmgd.SessionWarningHighSeas,
			Pages: []vmgd.PageMapping{
				{Path: vmgd.PathWarningHighSeas, Scrape: scrape.Warnings},
			},
			Aggregate: warnings,
		},
		{
			Name: vmgd.SessionWarningSevereWeather,
			Pages: []vmgd.PageMapping{
				{Path: vmgd.PathWarningSevereWeather, Scrape: scrape.Warnings},
			},
			Aggregate: warnings,
		},
	}
}
