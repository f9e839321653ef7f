package repository

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrOpen marks a missing or unreadable reference database. Fatal
	// at startup.
	ErrOpen = errors.New("open reference dataset failed")

	// ErrQuery marks a failed read from the reference dataset.
	ErrQuery = errors.New("query reference dataset failed")
)
