package page

import "errors"

// Sentinel errors for the page package.
var (
	// ErrNoSuchPage is returned for an index outside the pool.
	ErrNoSuchPage = errors.New("no such page")

	// ErrNotVisible is returned when an operation needs a visible page.
	ErrNotVisible = errors.New("page is not visible")

	// ErrNonContiguous is returned when activation would leave a gap in
	// the visible prefix.
	ErrNonContiguous = errors.New("activation would break the visible prefix")

	// ErrExhausted is returned when activation cannot obtain a spare
	// descriptor even after expanding.
	ErrExhausted = errors.New("page pool exhausted")
)
