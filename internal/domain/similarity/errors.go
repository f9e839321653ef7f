package similarity

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrDegenerateQuery marks a search whose encoded feature space
	// collapsed to zero columns. Surfaced as "cannot compute
	// similarity", never a crash.
	ErrDegenerateQuery = errors.New("degenerate similarity query")
)
