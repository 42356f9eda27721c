package vmgd

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a page failure; values are persisted on PageError rows.
type ErrorKind string

// Fetch, scrape and catch-all error kinds.
const (
	ErrKindTimeout        ErrorKind = "TIMEOUT"
	ErrKindNotFound       ErrorKind = "NOT_FOUND"
	ErrKindUnauthorized   ErrorKind = "UNAUTHORIZED"
	ErrKindFetch          ErrorKind = "FETCH_ERROR"
	ErrKindDataNotFound   ErrorKind = "DATA_NOT_FOUND"
	ErrKindDataNotValid   ErrorKind = "DATA_NOT_VALID"
	ErrKindIssuedNotFound ErrorKind = "ISSUED_NOT_FOUND"
	ErrKindNotImplemented ErrorKind = "NOT_IMPLEMENTED"
	ErrKindInternal       ErrorKind = "INTERNAL_ERROR"
)

// FetchError carries the transport/HTTP failure detail for a page fetch,
// including the response body (if any) for later hashing.
type FetchError struct {
	URL        string
	Kind       ErrorKind
	StatusCode int
	Body       []byte
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s failed (%s)", e.URL, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(", got HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

// ScrapeError carries the original content plus whatever was extracted
// before the failure, for error-sink hashing and postmortem storage.
type ScrapeError struct {
	Kind    ErrorKind
	HTML    string
	RawData any
	Errors  any
	Detail  string
}

func (e *ScrapeError) Error() string {
	msg := fmt.Sprintf("scrape failed (%s)", e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Classification is the error-sink view of a failure: the kind plus whatever
// evidence is available for fingerprinting.
type Classification struct {
	Kind    ErrorKind
	HTML    *string
	RawData any
	Errors  any
}

// Classify maps any fetch/scrape error onto the persisted error taxonomy.
// Unrecognized errors fall through to INTERNAL_ERROR with no evidence.
func Classify(err error) Classification {
	var fe *FetchError
	if errors.As(err, &fe) {
		c := Classification{Kind: fe.Kind}
		if len(fe.Body) > 0 {
			body := string(fe.Body)
			c.HTML = &body
		}
		return c
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		c := Classification{Kind: se.Kind, RawData: se.RawData, Errors: se.Errors}
		if se.HTML != "" {
			html := se.HTML
			c.HTML = &html
		}
		return c
	}
	return Classification{Kind: ErrKindInternal}
}
