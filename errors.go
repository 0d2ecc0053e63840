package cell

import "errors"

var (
	// ErrIntegerOverflow is returned when a value does not fit the requested
	// bit width.
	ErrIntegerOverflow = errors.New("integer overflow")
	// ErrCellOverflow is returned when a builder mutation would exceed the
	// bit, reference or depth capacity of a cell.
	ErrCellOverflow = errors.New("cell overflow")
	// ErrCellUnderflow is returned when a slice read needs more bits or
	// references than remain.
	ErrCellUnderflow = errors.New("cell underflow")
	// ErrBadLiteral is returned for slice literals other than b{...} and x{...}.
	ErrBadLiteral = errors.New("malformed slice literal")
)

var (
	errNilCell      = errors.New("nil cell reference")
	errBadBitLength = errors.New("bit length does not match content size")
	errTrailingBits = errors.New("unused trailing bits are set")
)
