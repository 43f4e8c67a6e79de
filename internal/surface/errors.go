package surface

import "errors"

// Sentinel errors for surface operations.
var (
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrInvalidValue       = errors.New("invalid command value")
	ErrSelectionRange     = errors.New("selection out of range")
	ErrNotMounted         = errors.New("surface not mounted")
)
