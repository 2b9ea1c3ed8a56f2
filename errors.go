package reset

import (
	"errors"

	"github.com/go-reset/reset/internal/rerr"
)

// Logical errors, reported as explicit values rather than exceptions, per
// the specification's error taxonomy (spec §7). ErrOOM from the origin's
// status-code surface (spec §6's "-ENOMEM") is deliberately not modeled:
// Go's allocator gives library code no recoverable signal for allocation
// failure (it panics), so there is nothing this package could catch and
// turn into a returned error.
var (
	// ErrDuplicate is returned by Insert when an equal element (per the
	// bound Config's Eq) is already present.
	ErrDuplicate = rerr.ErrDuplicate

	// ErrNotFound is returned by Remove when no equal element is present.
	ErrNotFound = rerr.ErrNotFound

	// ErrInvalidConfig is a contract-violation error (spec §7.3): returned
	// by New when cfg is nil or missing a required capability (Hash or
	// Eq), and by Union, Intersection, Xor and Exclude when the
	// destination and the two operands were not built from the identical
	// *Config value.
	ErrInvalidConfig = errors.New("reset: configs are incompatible")
)
