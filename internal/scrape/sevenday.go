package scrape

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vmgdwatch/scraper/internal/dates"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

const weekIssuedMarker = "Port Vila at"

// ForecastWeek parses the seven-day public forecast page: one table per
// location, the first row naming the location and each following row
// holding a "date : forecast" pair with Min/Max temperatures in the text.
func ForecastWeek(html string) (vmgd.ScrapeResult, error) {
	doc, err := newDoc(html)
	if err != nil {
		return vmgd.ScrapeResult{}, err
	}

	tables := doc.Find("article table")
	if tables.Length() == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "no forecast tables in article")
	}

	var (
		forecasts []vmgd.DailyForecast
		parseErrs []string
	)
	tables.Each(func(_ int, table *goquery.Selection) {
		rows := table.Find("tr")
		location := strings.TrimSpace(rows.First().Text())
		rows.Slice(1, rows.Length()).Each(func(_ int, row *goquery.Selection) {
			forecast, err := parseDailyRow(location, row.Text())
			if err != nil {
				parseErrs = append(parseErrs, err.Error())
				return
			}
			forecasts = append(forecasts, forecast)
		})
	})
	if len(parseErrs) > 0 {
		return vmgd.ScrapeResult{}, dataNotValid(html, forecasts, parseErrs, "forecast rows failed to parse")
	}
	if len(forecasts) == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "forecast tables contain no rows")
	}

	var validationErrs []string
	for _, f := range forecasts {
		if err := validate.Struct(f); err != nil {
			for _, msg := range validationMessages(err) {
				validationErrs = append(validationErrs, fmt.Sprintf("%s %s: %s", f.Location, f.Date, msg))
			}
		}
	}
	if len(validationErrs) > 0 {
		return vmgd.ScrapeResult{}, dataNotValid(html, forecasts, validationErrs, "forecast rows failed validation")
	}

	issuedText, ok := issuedHeading(doc)
	if !ok {
		return vmgd.ScrapeResult{}, issuedNotFound(html, forecasts,
			fmt.Errorf("no heading with %q marker", weekIssuedMarker))
	}
	issuedAt, err := dates.ParseIssuedAt(issuedText, weekIssuedMarker)
	if err != nil {
		return vmgd.ScrapeResult{}, issuedNotFound(html, forecasts, err)
	}

	return vmgd.ScrapeResult{RawData: forecasts, IssuedAt: &issuedAt}, nil
}

// parseDailyRow splits one "Friday 24 : Sunny.Min: 20&deg;C Max: 30&deg;C"
// row into its parts. The summary is the sentence before the first period.
func parseDailyRow(location, text string) (vmgd.DailyForecast, error) {
	date, body, found := strings.Cut(strings.TrimSpace(text), " : ")
	if !found {
		return vmgd.DailyForecast{}, fmt.Errorf("row %q has no date delimiter", strings.TrimSpace(text))
	}
	summary, _, _ := strings.Cut(body, ".")

	minTemp, err := tempAfter(body, "Min:")
	if err != nil {
		return vmgd.DailyForecast{}, fmt.Errorf("row %q: %w", text, err)
	}
	maxTemp, err := tempAfter(body, "Max:")
	if err != nil {
		return vmgd.DailyForecast{}, fmt.Errorf("row %q: %w", text, err)
	}

	return vmgd.DailyForecast{
		Location: location,
		Date:     strings.TrimSpace(date),
		Summary:  strings.TrimSpace(summary),
		MinTemp:  minTemp,
		MaxTemp:  maxTemp,
	}, nil
}

// issuedHeading finds the bold heading carrying the page's issue
// timestamp, "Public forecast for Port Vila at <date> ...".
func issuedHeading(doc *goquery.Document) (string, bool) {
	var text string
	doc.Find("article strong").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), weekIssuedMarker) {
			text = s.Text()
			return false
		}
		return true
	})
	return text, text != ""
}

func tempAfter(body, marker string) (int, error) {
	_, rest, found := strings.Cut(body, marker)
	if !found {
		return 0, fmt.Errorf("no %q marker", marker)
	}
	n, err := leadingInt(rest)
	if err != nil {
		return 0, fmt.Errorf("after %q: %w", marker, err)
	}
	return n, nil
}
