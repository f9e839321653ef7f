package tiers

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	// ErrInvalidScore marks a non-finite score reaching interpretation,
	// which points at an upstream cascade failure.
	ErrInvalidScore = errors.New("invalid score")
)
