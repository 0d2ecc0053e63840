package cell

import (
	"math/big"
	"strings"

	"golang.org/x/xerrors"
)

// Slice is a read cursor over the bits and references of a cell or of a
// parsed literal. Bits and references are consumed independently.
type Slice struct {
	bits   BitString
	refs   []*Cell
	bitPos int
	refPos int
}

// ParseSlice builds a slice from a literal of the form b{0101...} (one bit
// per character) or x{0f3a...} (four bits per hex digit).
func ParseSlice(literal string) (*Slice, error) {
	if len(literal) < 3 || literal[1] != '{' || !strings.HasSuffix(literal, "}") {
		return nil, xerrors.Errorf("%q: %w", literal, ErrBadLiteral)
	}
	body := literal[2 : len(literal)-1]

	s := new(Slice)
	switch literal[0] {
	case 'b':
		for i := 0; i < len(body); i++ {
			switch body[i] {
			case '0', '1':
				s.bits.appendBit(body[i] - '0')
			default:
				return nil, xerrors.Errorf("%q: bad bit %q: %w", literal, body[i], ErrBadLiteral)
			}
		}
	case 'x':
		for i := 0; i < len(body); i++ {
			v, ok := hexValue(body[i])
			if !ok {
				return nil, xerrors.Errorf("%q: bad hex digit %q: %w", literal, body[i], ErrBadLiteral)
			}
			for j := 3; j >= 0; j-- {
				s.bits.appendBit((v >> uint(j)) & 1)
			}
		}
	default:
		return nil, xerrors.Errorf("%q: %w", literal, ErrBadLiteral)
	}
	return s, nil
}

// MustParseSlice is like ParseSlice but panics on a malformed literal.
func MustParseSlice(literal string) *Slice {
	s, err := ParseSlice(literal)
	if err != nil {
		panic(err)
	}
	return s
}

func hexValue(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// BitLen returns the number of unread bits.
func (s *Slice) BitLen() int {
	return s.bits.Len() - s.bitPos
}

// RefLen returns the number of unread references.
func (s *Slice) RefLen() int {
	return len(s.refs) - s.refPos
}

// Bits returns a copy of the unread bits.
func (s *Slice) Bits() BitString {
	return s.bits.Sub(s.bitPos, s.bits.Len())
}

// Refs returns the unread references.
func (s *Slice) Refs() []*Cell {
	return append([]*Cell(nil), s.refs[s.refPos:]...)
}

func (s *Slice) preload(n uint) (BitString, error) {
	if n > uint(s.BitLen()) {
		return BitString{}, xerrors.Errorf("reading %d bits with %d left: %w", n, s.BitLen(), ErrCellUnderflow)
	}
	return s.bits.Sub(s.bitPos, s.bitPos+int(n)), nil
}

func checkWordWidth(n uint) error {
	if n > 64 {
		return xerrors.Errorf("%d-bit value does not fit 64 bits: %w", n, ErrIntegerOverflow)
	}
	return nil
}

// PreloadBigUint reads an n-bit unsigned integer without advancing.
func (s *Slice) PreloadBigUint(n uint) (*big.Int, error) {
	bits, err := s.preload(n)
	if err != nil {
		return nil, err
	}
	return BitsToUint(bits), nil
}

// LoadBigUint reads an n-bit unsigned integer.
func (s *Slice) LoadBigUint(n uint) (*big.Int, error) {
	x, err := s.PreloadBigUint(n)
	if err != nil {
		return nil, err
	}
	s.bitPos += int(n)
	return x, nil
}

// PreloadBigInt reads an n-bit two's-complement integer without advancing.
func (s *Slice) PreloadBigInt(n uint) (*big.Int, error) {
	bits, err := s.preload(n)
	if err != nil {
		return nil, err
	}
	return BitsToInt(bits), nil
}

// LoadBigInt reads an n-bit two's-complement integer.
func (s *Slice) LoadBigInt(n uint) (*big.Int, error) {
	x, err := s.PreloadBigInt(n)
	if err != nil {
		return nil, err
	}
	s.bitPos += int(n)
	return x, nil
}

// PreloadUint reads an unsigned integer of at most 64 bits without advancing.
func (s *Slice) PreloadUint(n uint) (uint64, error) {
	if err := checkWordWidth(n); err != nil {
		return 0, err
	}
	x, err := s.PreloadBigUint(n)
	if err != nil {
		return 0, err
	}
	return x.Uint64(), nil
}

// LoadUint reads an unsigned integer of at most 64 bits.
func (s *Slice) LoadUint(n uint) (uint64, error) {
	x, err := s.PreloadUint(n)
	if err != nil {
		return 0, err
	}
	s.bitPos += int(n)
	return x, nil
}

// PreloadInt reads a signed integer of at most 64 bits without advancing.
func (s *Slice) PreloadInt(n uint) (int64, error) {
	if err := checkWordWidth(n); err != nil {
		return 0, err
	}
	x, err := s.PreloadBigInt(n)
	if err != nil {
		return 0, err
	}
	return x.Int64(), nil
}

// LoadInt reads a signed integer of at most 64 bits.
func (s *Slice) LoadInt(n uint) (int64, error) {
	x, err := s.PreloadInt(n)
	if err != nil {
		return 0, err
	}
	s.bitPos += int(n)
	return x, nil
}

// LoadGrams reads an amount written by Builder.StoreGrams. The cursor is
// left untouched when the amount is truncated.
func (s *Slice) LoadGrams() (*big.Int, error) {
	l, err := s.PreloadUint(4)
	if err != nil {
		return nil, err
	}
	bits, err := s.preload(4 + 8*uint(l))
	if err != nil {
		return nil, err
	}
	s.bitPos += bits.Len()
	return BitsToUint(bits.Sub(4, bits.Len())), nil
}

// LoadRef returns the next unread reference.
func (s *Slice) LoadRef() (*Cell, error) {
	if s.RefLen() < 1 {
		return nil, xerrors.Errorf("no references left: %w", ErrCellUnderflow)
	}
	c := s.refs[s.refPos]
	s.refPos++
	return c, nil
}

// Hash returns the hash of the cell made of the unread bits and references.
func (s *Slice) Hash() (string, error) {
	b := NewBuilder()
	if err := b.StoreSlice(s); err != nil {
		return "", err
	}
	return b.EndCell().Hash(), nil
}

// String renders the unread bits as a literal accepted by ParseSlice.
func (s *Slice) String() string {
	return s.Bits().String()
}
