package catalogue

import "errors"

var (
	// ErrDuplicateStop is returned by AddStop when the name is already taken.
	ErrDuplicateStop = errors.New("duplicate stop")
	// ErrUnknownStop is returned when a mutation references a stop that was never added.
	ErrUnknownStop = errors.New("unknown stop")
	// ErrUnknownBus is returned when a bus name does not resolve.
	ErrUnknownBus = errors.New("unknown bus")
	// ErrDegenerateRoute is returned when curvature is requested for a route with zero geographic length.
	ErrDegenerateRoute = errors.New("degenerate route")
)
