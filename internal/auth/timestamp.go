package auth

import (
	"errors"
	"strconv"
	"time"
)

// DefaultMaxSkew is the symmetric freshness window applied to the
// x-timestamp header. Requests stamped more than this far in the past
// (stale or replayed after the fact) or the future (forged ahead of time)
// are rejected.
const DefaultMaxSkew = 5 * time.Minute

var errBadTimestamp = errors.New("timestamp must be a decimal string of epoch milliseconds")

// ParseTimestamp parses an x-timestamp header value: a decimal string
// representing a non-negative number of milliseconds since the Unix epoch.
// Empty, non-numeric, fractional, negative, or out-of-range values all
// return an error, which callers classify separately from an expired but
// well-formed timestamp.
func ParseTimestamp(header string) (int64, error) {
	ms, err := strconv.ParseInt(header, 10, 64)
	if err != nil || ms < 0 {
		return 0, errBadTimestamp
	}
	return ms, nil
}

// fresh reports whether ts (epoch milliseconds) falls within maxSkew of now
// on either side. The window is closed on both ends: a difference of exactly
// maxSkew passes, one millisecond beyond is rejected.
func fresh(ts int64, now time.Time, maxSkew time.Duration) bool {
	diff := now.UnixMilli() - ts
	if diff < 0 {
		diff = -diff
	}
	return diff <= maxSkew.Milliseconds()
}
