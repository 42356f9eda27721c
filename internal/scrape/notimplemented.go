package scrape

import "github.com/vmgdwatch/scraper/internal/vmgd"

// notImplemented builds a scraper stub for pages the pipeline knows about
// but does not parse yet. Running one records the snapshot through the
// error sink so there is real material to build the parser from.
func notImplemented(name string) vmgd.ScrapeFunc {
	return func(html string) (vmgd.ScrapeResult, error) {
		return vmgd.ScrapeResult{}, &vmgd.ScrapeError{
			Kind:   vmgd.ErrKindNotImplemented,
			HTML:   html,
			Detail: name + " parsing not implemented",
		}
	}
}

// Stubs for pages without parsers.
var (
	AboutForecast          = notImplemented("public forecast about page")
	ForecastPolicy         = notImplemented("forecast policy page")
	SevereWeatherOutlook   = notImplemented("severe weather outlook page")
	TropicalCycloneOutlook = notImplemented("tropical cyclone outlook page")
)
