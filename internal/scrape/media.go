package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vmgdwatch/scraper/internal/dates"
	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// ForecastMedia parses the media bulletin page: a single table whose first
// div wraps the bulletin. The bulletin text sits as bare text nodes directly
// under that div, between nested divs that carry headings and the issue
// timestamp.
func ForecastMedia(html string) (vmgd.ScrapeResult, error) {
	doc, err := newDoc(html)
	if err != nil {
		return vmgd.ScrapeResult{}, err
	}

	table := doc.Find("table.forecastPublic").First()
	if table.Length() == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "no forecastPublic table")
	}

	var images []string
	table.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src, ok := img.Attr("src"); ok {
			images = append(images, src)
		}
	})
	if len(images) == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "media table has no images")
	}

	wrapper := table.Find("div").First()
	if wrapper.Length() == 0 {
		return vmgd.ScrapeResult{}, dataNotFound(html, "media table has no content div")
	}

	summary := directText(wrapper)
	if summary == "" {
		return vmgd.ScrapeResult{}, dataNotFound(html, "media table has no bulletin text")
	}

	// The issue timestamp is the second div nested inside the wrapper.
	issuedDiv := wrapper.Find("div").Eq(1)
	issuedAt, err := dates.ParseMediaIssuedAt(issuedDiv.Text())
	if err != nil {
		return vmgd.ScrapeResult{}, issuedNotFound(html, summary, err)
	}

	return vmgd.ScrapeResult{RawData: summary, IssuedAt: &issuedAt, Images: images}, nil
}

// directText concatenates the immediate text-node children of sel, skipping
// text buried in nested elements. Line breaks inside the nodes become
// spaces so the bulletin reads as running text.
func directText(sel *goquery.Selection) string {
	var parts []string
	sel.Contents().Each(func(_ int, node *goquery.Selection) {
		n := node.Get(0)
		if n == nil || n.Type != html.TextNode {
			return
		}
		if text := strings.TrimSpace(n.Data); text != "" {
			parts = append(parts, strings.ReplaceAll(text, "\n", " "))
		}
	})
	return strings.Join(parts, " ")
}
