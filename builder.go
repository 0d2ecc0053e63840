package cell

import (
	"math/big"

	"golang.org/x/xerrors"
)

// gramsMaxBytes is the largest byte count a 4-bit grams prefix can carry.
const gramsMaxBytes = 15

// Builder accumulates bits and references for a new cell. Every store is
// checked against the cell capacity before it is applied, so a rejected
// store leaves the builder unchanged.
//
// A Builder must not be used from multiple goroutines at once.
type Builder struct {
	bits BitString
	refs []*Cell
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return new(Builder)
}

// BitLen returns the number of bits stored so far.
func (b *Builder) BitLen() int {
	return b.bits.Len()
}

// RefLen returns the number of references stored so far.
func (b *Builder) RefLen() int {
	return len(b.refs)
}

func (b *Builder) checkCapacity(bits, refs int) error {
	if b.bits.Len()+bits > MaxBits {
		return xerrors.Errorf("storing %d bits after %d: %w", bits, b.bits.Len(), ErrCellOverflow)
	}
	if len(b.refs)+refs > MaxRefs {
		return xerrors.Errorf("storing %d refs after %d: %w", refs, len(b.refs), ErrCellOverflow)
	}
	return nil
}

// checkWidth reports whether n more bits fit. n is compared unsigned so
// widths beyond the int range are rejected too.
func (b *Builder) checkWidth(n uint) error {
	if n > uint(MaxBits-b.bits.Len()) {
		return xerrors.Errorf("storing %d bits after %d: %w", n, b.bits.Len(), ErrCellOverflow)
	}
	return nil
}

func checkRefDepth(c *Cell) error {
	if c == nil {
		return errNilCell
	}
	if c.depth+1 > MaxDepth {
		return xerrors.Errorf("reference of depth %d: %w", c.depth, ErrCellOverflow)
	}
	return nil
}

// StoreUint stores x as an n-bit big-endian unsigned integer.
func (b *Builder) StoreUint(x uint64, n uint) error {
	return b.StoreBigUint(new(big.Int).SetUint64(x), n)
}

// StoreBigUint stores x as an n-bit big-endian unsigned integer. x must
// satisfy 0 <= x < 2^n.
func (b *Builder) StoreBigUint(x *big.Int, n uint) error {
	if x.Sign() < 0 || uint(x.BitLen()) > n {
		return xerrors.Errorf("%s as %d-bit unsigned: %w", x, n, ErrIntegerOverflow)
	}
	if err := b.checkWidth(n); err != nil {
		return err
	}
	b.bits.appendInteger(x, n)
	return nil
}

// StoreInt stores x as an n-bit two's-complement integer.
func (b *Builder) StoreInt(x int64, n uint) error {
	return b.StoreBigInt(big.NewInt(x), n)
}

// StoreBigInt stores x as an n-bit two's-complement integer. x must satisfy
// -2^(n-1) <= x < 2^(n-1); a zero width only admits 0.
func (b *Builder) StoreBigInt(x *big.Int, n uint) error {
	if !fitsSigned(x, n) {
		return xerrors.Errorf("%s as %d-bit signed: %w", x, n, ErrIntegerOverflow)
	}
	if err := b.checkWidth(n); err != nil {
		return err
	}
	b.bits.appendInteger(x, n)
	return nil
}

// fitsSigned reports whether -2^(n-1) <= x < 2^(n-1) without materializing
// the bound, so any width is cheap to check.
func fitsSigned(x *big.Int, n uint) bool {
	if n == 0 {
		return x.Sign() == 0
	}
	mag := x
	if x.Sign() < 0 {
		// -x-1 has the same bit length budget as a non-negative value.
		mag = new(big.Int).Not(x)
	}
	return uint(mag.BitLen()) <= n-1
}

// StoreGrams stores a non-negative amount below 2^120 as a 4-bit byte count
// followed by that many bytes of big-endian value, using the fewest bytes.
func (b *Builder) StoreGrams(x *big.Int) error {
	if x.Sign() < 0 {
		return xerrors.Errorf("negative grams %s: %w", x, ErrIntegerOverflow)
	}
	l := (x.BitLen() + 7) / 8
	if l > gramsMaxBytes {
		return xerrors.Errorf("grams %s needs %d bytes: %w", x, l, ErrIntegerOverflow)
	}
	if err := b.checkCapacity(4+8*l, 0); err != nil {
		return err
	}
	b.bits.appendInteger(big.NewInt(int64(l)), 4)
	b.bits.appendInteger(x, uint(8*l))
	return nil
}

// StoreSlice appends the unread bits and references of s. The cursors of s
// are not advanced.
func (b *Builder) StoreSlice(s *Slice) error {
	refs := s.refs[s.refPos:]
	if err := b.checkCapacity(s.BitLen(), len(refs)); err != nil {
		return err
	}
	for _, r := range refs {
		if err := checkRefDepth(r); err != nil {
			return err
		}
	}
	b.bits.appendRange(s.bits, s.bitPos, s.bits.Len())
	b.refs = append(b.refs, refs...)
	return nil
}

// StoreRef appends a reference to c.
func (b *Builder) StoreRef(c *Cell) error {
	if err := b.checkCapacity(0, 1); err != nil {
		return err
	}
	if err := checkRefDepth(c); err != nil {
		return err
	}
	b.refs = append(b.refs, c)
	return nil
}

// EndCell snapshots the builder into a new immutable cell. The builder may
// keep being used afterwards without affecting the returned cell.
func (b *Builder) EndCell() *Cell {
	c := &Cell{
		bits: b.bits.Sub(0, b.bits.Len()),
		refs: append([]*Cell(nil), b.refs...),
	}
	for _, r := range c.refs {
		if r.depth+1 > c.depth {
			c.depth = r.depth + 1
		}
	}
	return c
}
