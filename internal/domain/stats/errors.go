package stats

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrMalformedEvent marks an input event that cannot participate in
	// aggregation: missing player name, zero timestamp, or non-finite
	// coordinates. The whole call fails; no partial result is returned.
	ErrMalformedEvent = errors.New("malformed event")
)
