// Package aggregate turns the scrape results of a completed session into
// persisted domain records. Aggregators run inside the session transaction,
// so any error rolls back the whole session.
package aggregate

import (
	"errors"
	"fmt"

	"github.com/vmgdwatch/scraper/internal/vmgd"
)

// ErrPrecondition signals that the session's pages disagree with each other
// (different issue dates, mismatched location sets, misaligned days). The
// combined data cannot be trusted, so nothing is persisted.
var ErrPrecondition = errors.New("aggregation preconditions not met")

func preconditionf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

func payloadOf[T any](result vmgd.ScrapeResult) (T, error) {
	payload, ok := result.RawData.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("unexpected payload type %T", result.RawData)
	}
	return payload, nil
}
