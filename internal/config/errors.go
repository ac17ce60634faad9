package config

import "errors"

// Sentinel errors for the config package.
var (
	// ErrInvalidGeometry is returned when the page box cannot hold content.
	ErrInvalidGeometry = errors.New("invalid page geometry")

	// ErrInvalidPool is returned for unusable pool sizing.
	ErrInvalidPool = errors.New("invalid pool configuration")

	// ErrInvalidPagination is returned for unusable pagination tuning.
	ErrInvalidPagination = errors.New("invalid pagination configuration")

	// ErrInvalidOffload is returned for unusable offload settings.
	ErrInvalidOffload = errors.New("invalid offload configuration")
)
