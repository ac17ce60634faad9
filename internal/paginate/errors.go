package paginate

import "errors"

// Sentinel errors for the paginate package.
var (
	// ErrNotMounted is returned by probes for pages that are not rendered.
	ErrNotMounted = errors.New("page is not mounted")

	// ErrNoActivePage is returned when an operation needs a focused page.
	ErrNoActivePage = errors.New("no active page")

	// ErrLastPage is returned when deleting the only visible page.
	ErrLastPage = errors.New("cannot delete the last visible page")
)
