package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/vmgdwatch/scraper/internal/dates"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

const warningIssuedMarker = "report issued at"

// Warnings parses the marine, high seas and severe weather warning pages.
// They share a layout: a table whose first row carries the issue timestamp
// and whose remaining rows alternate between a dated heading and the
// warning body. A page with no active warning says so in a bulletin
// paragraph instead of rendering the table.
func Warnings(html string) (vmgd.ScrapeResult, error) {
	doc, err := newDoc(html)
	if err != nil {
		return vmgd.ScrapeResult{}, err
	}

	table := doc.Find("table.marineFrontTabOne").First()
	if table.Length() == 0 {
		return noCurrentWarningFallback(doc, html)
	}

	rows := table.Find("tr")
	if rows.Length() < 2 || rows.Length()%2 != 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "warning table rows do not pair up")
	}

	issuedAt, err := dates.ParseIssuedAt(rows.First().Text(), warningIssuedMarker)
	if err != nil {
		return vmgd.ScrapeResult{}, issuedNotFound(html, nil, err)
	}

	var entries []vmgd.WarningEntry
	for i := 2; i < rows.Length(); i += 2 {
		entries = append(entries, vmgd.WarningEntry{
			Date: strings.TrimSpace(rows.Eq(i).Text()),
			Body: strings.TrimSpace(rows.Eq(i + 1).Text()),
		})
	}
	if len(entries) == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "warning table has no entries")
	}

	return vmgd.ScrapeResult{RawData: entries, IssuedAt: &issuedAt}, nil
}

// noCurrentWarningFallback distinguishes the explicit "no current warning"
// page state from a page whose structure we no longer recognize.
func noCurrentWarningFallback(doc *goquery.Document, html string) (vmgd.ScrapeResult, error) {
	article := doc.Find("p.weatherBulletin").First().Closest("article.item-page")
	if article.Length() == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "no warning table or bulletin paragraph")
	}
	if !strings.Contains(strings.ToLower(article.Text()), vmgd.NoCurrentWarning) {
		return vmgd.ScrapeResult{}, dataNotFound(html, "bulletin paragraph without no-warning text")
	}
	return vmgd.NoCurrentWarningsResult(), nil
}

// CurrentBulletin handles the current-bulletin page. Only the explicit
// "no latest warning" state has ever been observed; an active bulletin is
// surfaced as NOT_IMPLEMENTED so the page snapshot gets captured for
// writing the real parser.
func CurrentBulletin(html string) (vmgd.ScrapeResult, error) {
	doc, err := newDoc(html)
	if err != nil {
		return vmgd.ScrapeResult{}, err
	}

	warning := doc.Find("div.foreWarning").First()
	if warning.Length() == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "no foreWarning div")
	}
	if strings.Contains(strings.ToLower(warning.Text()), "no latest warning") {
		return vmgd.NoCurrentWarningsResult(), nil
	}
	return vmgd.ScrapeResult{}, &vmgd.ScrapeError{
		Kind:   vmgd.ErrKindNotImplemented,
		HTML:   html,
		Detail: "active current-bulletin parsing not implemented",
	}
}
