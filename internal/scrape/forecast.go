package scrape

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vmgdwatch/scraper/internal/dates"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

const issueDateMarker = "Forecast Issue Date:"

// Forecast parses the forecast map page. The page embeds its data as a
// JavaScript literal, "var weathers = [...];", one positional array per
// location with daily temperature/humidity series and 6-hourly condition
// and wind series.
func Forecast(html string) (vmgd.ScrapeResult, error) {
	doc, err := newDoc(html)
	if err != nil {
		return vmgd.ScrapeResult{}, err
	}

	payload, ok := weathersLiteral(doc)
	if !ok {
		return vmgd.ScrapeResult{}, dataNotFound(html, "no 'var weathers' script")
	}

	var objects []vmgd.WeatherObject
	if err := json.Unmarshal([]byte(payload), &objects); err != nil {
		return vmgd.ScrapeResult{}, dataNotValid(html, payload, err.Error(), "weathers literal is not valid JSON")
	}
	if len(objects) == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "weathers literal is empty")
	}

	var errs []string
	for _, obj := range objects {
		if err := validate.Struct(obj); err != nil {
			for _, msg := range validationMessages(err) {
				errs = append(errs, fmt.Sprintf("%s: %s", obj.Location, msg))
			}
		}
	}
	if len(errs) > 0 {
		return vmgd.ScrapeResult{}, dataNotValid(html, objects, errs, "weather objects failed validation")
	}

	issuedAt, err := dates.ParseIssuedAt(doc.Find("div#issueDate").Text(), issueDateMarker)
	if err != nil {
		return vmgd.ScrapeResult{}, issuedNotFound(html, objects, err)
	}

	return vmgd.ScrapeResult{RawData: objects, IssuedAt: &issuedAt}, nil
}

// weathersLiteral extracts the JSON array assigned to "var weathers" from
// the first script that declares it.
func weathersLiteral(doc *goquery.Document) (string, bool) {
	var script string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), "var weathers") {
			script = s.Text()
			return false
		}
		return true
	})
	if script == "" {
		return "", false
	}

	line, _, _ := strings.Cut(strings.TrimSpace(script), "\n")
	_, payload, found := strings.Cut(line, " = ")
	if !found {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimSpace(payload), ";"), true
}
