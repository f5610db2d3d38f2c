package http

import "github.com/wesleyorama2/fluent/internal/guard"

// Error kinds returned by this package. Test for them with errors.Is.
var (
	// ErrInvalidArgument is returned when a required argument is nil or blank.
	ErrInvalidArgument = guard.ErrInvalidArgument

	// ErrInvalidConfiguration is returned when the accumulated builder state
	// cannot produce a request: no base address and no route, or a route or
	// base address carrying a query string or fragment.
	ErrInvalidConfiguration = guard.ErrInvalidConfiguration

	// ErrKeyNotFound is returned by QueryParameters.Get for an absent key.
	ErrKeyNotFound = guard.ErrKeyNotFound
)
