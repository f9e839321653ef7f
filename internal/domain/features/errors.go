package features

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrUnknownCategory marks a caller-supplied categorical value
	// outside the registry. The request aborts; no partial vector is
	// produced.
	ErrUnknownCategory = errors.New("unknown category")
)
