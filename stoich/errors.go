package stoich

import "errors"

var (
	// ErrLookup is returned when an element has no atomic weight or is not supported.
	ErrLookup = errors.New("element lookup failed")

	// ErrDomain is returned when a mole vector has nothing to anchor ratios on.
	ErrDomain = errors.New("no positive mole value to anchor ratios on")

	// ErrNegative is returned for negative or non-finite wt% values.
	ErrNegative = errors.New("wt% must be a non-negative number")
)
