package categories

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrLoad marks a missing or malformed category definition artifact.
	// Fatal at startup; never retried.
	ErrLoad = errors.New("load categories failed")
)
