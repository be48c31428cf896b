package value

import "errors"

// Sentinel errors for value access and decoding.
var (
	// ErrTypeMismatch is returned by an As* accessor called on a Value of
	// a different kind.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedVariant is returned when decoding a wire value whose
	// kind is outside the known variant set.
	ErrUnsupportedVariant = errors.New("unsupported variant")
	// ErrInvalidPath is returned by Struct.Get when a path descends
	// through a present value that is not a Struct.
	ErrInvalidPath = errors.New("invalid path")
)
