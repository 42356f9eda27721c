// Package scrape parses raw VMGD page HTML into typed payloads. Every
// scraper is a pure function of the page content so failures can be
// fingerprinted and replayed from saved snapshots.
package scrape

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

var validate = validator.New()

func newDoc(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &vmgd.ScrapeError{
			Kind:   vmgd.ErrKindDataNotFound,
			HTML:   html,
			Detail: fmt.Sprintf("unparseable html: %v", err),
		}
	}
	return doc, nil
}

func dataNotFound(html, detail string) error {
	return &vmgd.ScrapeError{Kind: vmgd.ErrKindDataNotFound, HTML: html, Detail: detail}
}

func dataNotValid(html string, raw, errs any, detail string) error {
	return &vmgd.ScrapeError{
		Kind:    vmgd.ErrKindDataNotValid,
		HTML:    html,
		RawData: raw,
		Errors:  errs,
		Detail:  detail,
	}
}

func issuedNotFound(html string, raw any, err error) error {
	return &vmgd.ScrapeError{
		Kind:    vmgd.ErrKindIssuedNotFound,
		HTML:    html,
		RawData: raw,
		Detail:  err.Error(),
	}
}

// validationMessages flattens validator errors into storable strings.
func validationMessages(err error) []string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Error())
	}
	return msgs
}

// leadingInt reads the integer prefix of s, tolerating whatever trails it
// (degree signs, entity text, units).
func leadingInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, fmt.Errorf("no leading integer in %q", s)
	}
	n := 0
	for _, c := range s[:end] {
		n = n*10 + int(c-'0')
	}
	return n, nil
}
