// Package dates converts the ambiguous, locale-formatted date fragments
// found on VMGD pages into absolute UTC timestamps.
package dates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// VU is the Vanuatu local zone. The country observes no DST, so a fixed
// offset keeps behavior independent of the host tz database.
var VU = time.FixedZone("VUT", 11*60*60)

// ErrNonSequentialDates signals a date series that could not be repaired
// into day-by-day order. It is a data-quality problem, not a parse bug.
var ErrNonSequentialDates = errors.New("date series is not sequential")

// defaultEndMarker terminates the issued-at fragment on every page that
// carries a "(UTC Time:...)" suffix.
const defaultEndMarker = "(utc time"

// ParseIssuedAt extracts the publication timestamp found between startMarker
// and the standard "(utc time" suffix, and converts it from Vanuatu local
// time to UTC. Markers match case-insensitively. The fragment looks like
// "Friday 24th March, 2023 at 17:43" with either a full or abbreviated
// weekday name and an ordinal suffix on the day.
func ParseIssuedAt(text, startMarker string) (time.Time, error) {
	return ParseIssuedAtBetween(text, startMarker, defaultEndMarker)
}

// ParseIssuedAtBetween is ParseIssuedAt with an explicit end marker.
func ParseIssuedAtBetween(text, startMarker, endMarker string) (time.Time, error) {
	fragment, err := between(text, startMarker, endMarker)
	if err != nil {
		return time.Time{}, err
	}
	fields := strings.Fields(fragment)
	if len(fields) < 6 {
		return time.Time{}, fmt.Errorf("issued-at fragment %q is too short", fragment)
	}
	fields[1] = stripOrdinal(fields[1])
	layout := weekdayLayout(fields[0]) + " 2 January, 2006 at 15:04"
	t, err := time.ParseInLocation(layout, normalizeTokens(fields, 0, 2), VU)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse issued-at %q: %w", fragment, err)
	}
	return t.UTC(), nil
}

// ParseWarningDate parses a per-warning date row such as
// "High Seas Warning Number 1: Friday 24th March, 2023" into a UTC
// timestamp. Only the part after the first ": " delimiter is considered.
func ParseWarningDate(text string) (time.Time, error) {
	_, fragment, found := strings.Cut(text, ": ")
	if !found {
		return time.Time{}, fmt.Errorf("warning date %q has no delimiter", text)
	}
	fields := strings.Fields(fragment)
	if len(fields) < 4 {
		return time.Time{}, fmt.Errorf("warning date fragment %q is too short", fragment)
	}
	fields[1] = stripOrdinal(fields[1])
	t, err := time.ParseInLocation("Monday 2 January, 2006", normalizeTokens(fields, 0, 2), VU)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse warning date %q: %w", fragment, err)
	}
	return t.UTC(), nil
}

// ParseMediaIssuedAt parses the media bulletin's distinct time format,
// "17:00 PM,<nbsp>Monday March 27 2023", taking the part after " at ".
func ParseMediaIssuedAt(text string) (time.Time, error) {
	_, fragment, found := strings.Cut(text, " at ")
	if !found {
		return time.Time{}, fmt.Errorf("media issued-at %q has no \" at \" delimiter", text)
	}
	fragment = strings.ReplaceAll(fragment, "\u00a0", " ")
	fragment = strings.ReplaceAll(fragment, ",", ", ")
	fields := strings.Fields(fragment)
	if len(fields) < 6 {
		return time.Time{}, fmt.Errorf("media issued-at fragment %q is too short", fragment)
	}
	t, err := time.ParseInLocation("15:04 PM, Monday January 2 2006", normalizeTokens(fields, 2, 3), VU)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse media issued-at %q: %w", fragment, err)
	}
	return t.UTC(), nil
}

// ResolveRelativeDate anchors a fragment carrying only a weekday name and
// day-of-month, such as "Friday 24", to an absolute UTC date. A day number
// below the anchor's day-of-month means the listing has wrapped into the
// following month; year rollover at December falls out of normalization.
func ResolveRelativeDate(fragment string, anchor time.Time) (time.Time, error) {
	fields := strings.Fields(fragment)
	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("relative date %q has no day number", fragment)
	}
	day, err := strconv.Atoi(stripOrdinal(fields[1]))
	if err != nil {
		return time.Time{}, fmt.Errorf("relative date %q: bad day number: %w", fragment, err)
	}
	year, month, _ := anchor.Date()
	if day < anchor.Day() {
		month++
	}
	return time.Date(year, month, day, 0, 0, 0, 0, VU).UTC(), nil
}

// VerifyDateSeries checks that dates are exactly one calendar day apart. If
// not, it attempts a single repair pass for the common ambiguity where a
// leading run of dates parsed one month too late: for each index i it shifts
// entries [0..i] back one month and returns the first fully sequential
// series. Sequential input is returned unchanged.
func VerifyDateSeries(dates []time.Time) ([]time.Time, error) {
	if isSequential(dates) {
		return dates, nil
	}
	repaired := append([]time.Time(nil), dates...)
	for i := 0; i < len(repaired)-1; i++ {
		repaired[i] = repaired[i].AddDate(0, -1, 0)
		if isSequential(repaired) {
			return repaired, nil
		}
	}
	return nil, ErrNonSequentialDates
}

func isSequential(dates []time.Time) bool {
	for i := 1; i < len(dates); i++ {
		if !dates[i-1].AddDate(0, 0, 1).Equal(dates[i]) {
			return false
		}
	}
	return true
}

// between returns the trimmed substring of text after startMarker and before
// endMarker, matching both markers case-insensitively while preserving the
// original casing of the extracted fragment. A missing end marker takes the
// rest of the string.
func between(text, startMarker, endMarker string) (string, error) {
	lower := strings.ToLower(text)
	i := strings.Index(lower, strings.ToLower(startMarker))
	if i < 0 {
		return "", fmt.Errorf("marker %q not found", startMarker)
	}
	rest := text[i+len(startMarker):]
	if j := strings.Index(strings.ToLower(rest), strings.ToLower(endMarker)); j >= 0 {
		rest = rest[:j]
	}
	return strings.TrimSpace(rest), nil
}

// stripOrdinal drops a trailing "st"/"nd"/"rd"/"th" from a day token.
func stripOrdinal(day string) string {
	return strings.TrimRightFunc(day, unicode.IsLetter)
}

// weekdayLayout picks the full or abbreviated weekday layout element based
// on which form the page used.
func weekdayLayout(token string) string {
	if strings.Contains(strings.ToLower(token), "day") {
		return "Monday"
	}
	return "Mon"
}

// normalizeTokens title-cases the weekday/month fields at the given indices
// so mixed-case page text still satisfies Go's case-sensitive name parsing.
func normalizeTokens(fields []string, indices ...int) string {
	out := append([]string(nil), fields...)
	for _, i := range indices {
		out[i] = titleCase(out[i])
	}
	return strings.Join(out, " ")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
