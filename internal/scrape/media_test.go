package scrape

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// mediaPage mirrors the live layout: the bulletin text sits as direct text
// children of the table's first div, between its nested heading and
// issued-at divs.
const mediaPage = `<html><body>
<table class="forecastPublic"><tr><td>
<div>
<div>Media and Public Forecast</div>
<div>Issued from the forecast office at 17:00 PM,&nbsp;Monday March 27 2023</div>
A trough of low pressure lies over northern Vanuatu.
Expect cloudy periods with showers over the group.
<img src="/images/synoptic1.png"/>
<img src="/images/synoptic2.png"/>
</div>
</td></tr></table>
</body></html>`

func TestForecastMedia_Success(t *testing.T) {
	t.Parallel()

	result, err := ForecastMedia(mediaPage)
	require.NoError(t, err)

	summary, ok := result.RawData.(string)
	require.True(t, ok)
	require.Contains(t, summary, "trough of low pressure")
	require.Contains(t, summary, "cloudy periods with showers")
	require.NotContains(t, summary, "\n")
	// Text inside the nested divs must not leak into the bulletin.
	require.NotContains(t, summary, "Media and Public Forecast")
	require.NotContains(t, summary, "Issued from")

	require.Equal(t, []string{"/images/synoptic1.png", "/images/synoptic2.png"}, result.Images)

	require.NotNil(t, result.IssuedAt)
	// 17:00 local Vanuatu time on March 27 is 06:00 UTC.
	require.Equal(t, time.Date(2023, time.March, 27, 6, 0, 0, 0, time.UTC), *result.IssuedAt)
}

func TestForecastMedia_NoTable(t *testing.T) {
	t.Parallel()

	_, err := ForecastMedia(`<html><body><p>nothing here</p></body></html>`)
	var se *vmgd.ScrapeError
	require.ErrorAs(t, err, &se)
	require.Equal(t, vmgd.ErrKindDataNotFound, se.Kind)
}

func TestForecastMedia_NoImages(t *testing.T) {
	t.Parallel()

	page := `<html><body><table class="forecastPublic"><tr><td>
<div>
<div>Media and Public Forecast</div>
<div>Issued from the forecast office at 17:00 PM,&nbsp;Monday March 27 2023</div>
Bulletin text only.
</div>
</td></tr></table></body></html>`
	_, err := ForecastMedia(page)
	var se *vmgd.ScrapeError
	require.ErrorAs(t, err, &se)
	require.Equal(t, vmgd.ErrKindDataNotFound, se.Kind)
}

func TestForecastMedia_SummaryOutsideWrapperDivIgnored(t *testing.T) {
	t.Parallel()

	// Text placed directly in the td, outside the wrapper div, is not the
	// bulletin; only the wrapper's own text nodes count.
	page := `<html><body><table class="forecastPublic"><tr><td>
stray cell text
<div>
<div>Media and Public Forecast</div>
<div>Issued from the forecast office at 17:00 PM,&nbsp;Monday March 27 2023</div>
<img src="/images/synoptic1.png"/>
</div>
</td></tr></table></body></html>`
	_, err := ForecastMedia(page)
	var se *vmgd.ScrapeError
	require.ErrorAs(t, err, &se)
	require.Equal(t, vmgd.ErrKindDataNotFound, se.Kind)
	require.Contains(t, se.Detail, "bulletin text")
}

func TestForecastMedia_BadIssuedAt(t *testing.T) {
	t.Parallel()

	page := `<html><body><table class="forecastPublic"><tr><td>
<div>
<div>Media and Public Forecast</div>
<div>no timestamp here</div>
Bulletin text.
<img src="/images/synoptic1.png"/>
</div>
</td></tr></table></body></html>`
	_, err := ForecastMedia(page)
	var se *vmgd.ScrapeError
	require.ErrorAs(t, err, &se)
	require.Equal(t, vmgd.ErrKindIssuedNotFound, se.Kind)
	require.NotNil(t, se.RawData)
}
