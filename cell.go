// Package cell implements ordinary TON cells: bit strings of up to 1023 bits
// with up to four references, their standard representation hash, a
// capacity-checked Builder and a read cursor Slice.
package cell

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math"
	"strings"
	"sync"

	sha256 "github.com/minio/sha256-simd"
)

const (
	// MaxBits is the bit capacity of a single cell.
	MaxBits = 1023
	// MaxRefs is the reference capacity of a single cell.
	MaxRefs = 4
	// MaxDepth is the largest depth representable in a hash descriptor.
	MaxDepth = math.MaxUint16
	// HashSize is the size of a cell digest in bytes.
	HashSize = sha256.Size
)

// Cell is an immutable ordinary cell: up to MaxBits bits and MaxRefs
// references to previously finalized cells. Cells are produced by
// Builder.EndCell and are safe to share between goroutines.
type Cell struct {
	bits  BitString
	refs  []*Cell
	depth int

	hashOnce sync.Once
	hash     [HashSize]byte
}

// Bits returns a copy of the cell's data bits.
func (c *Cell) Bits() BitString {
	return c.bits.Sub(0, c.bits.Len())
}

// Refs returns the cell's references in order.
func (c *Cell) Refs() []*Cell {
	return append([]*Cell(nil), c.refs...)
}

// BitLen returns the number of data bits.
func (c *Cell) BitLen() int {
	return c.bits.Len()
}

// RefLen returns the number of references.
func (c *Cell) RefLen() int {
	return len(c.refs)
}

// Depth is 0 for a cell without references, otherwise one more than the
// deepest reference.
func (c *Cell) Depth() int {
	return c.depth
}

// BeginParse returns a slice positioned at the start of the cell.
func (c *Cell) BeginParse() *Slice {
	return &Slice{bits: c.bits, refs: c.refs}
}

// Hash returns the standard representation hash as lowercase hex.
func (c *Cell) Hash() string {
	h := c.HashBytes()
	return hex.EncodeToString(h[:])
}

// HashBytes returns the SHA-256 digest of the cell's standard
// representation. The digest is computed once per cell.
func (c *Cell) HashBytes() [HashSize]byte {
	c.hashOnce.Do(func() {
		buf := bufferPool.Get().(*bytes.Buffer)
		defer func() {
			buf.Reset()
			bufferPool.Put(buf)
		}()
		c.writeRepr(buf)
		c.hash = sha256.Sum256(buf.Bytes())
	})
	return c.hash
}

// writeRepr writes the ordinary cell representation:
//
//	d1 || d2 || padded data || ref depths (2 bytes each) || ref hashes
func (c *Cell) writeRepr(buf *bytes.Buffer) {
	n := c.bits.Len()
	buf.WriteByte(byte(len(c.refs)))
	buf.WriteByte(byte(n/8 + (n+7)/8))
	buf.Write(c.bits.padded())

	var d [2]byte
	for _, r := range c.refs {
		binary.BigEndian.PutUint16(d[:], uint16(r.depth))
		buf.Write(d[:])
	}
	for _, r := range c.refs {
		h := r.HashBytes()
		buf.Write(h[:])
	}
}

// String dumps the cell tree, one cell per line, children indented.
func (c *Cell) String() string {
	var sb strings.Builder
	c.dump(&sb, 0)
	return sb.String()
}

func (c *Cell) dump(sb *strings.Builder, indent int) {
	sb.WriteString(strings.Repeat(" ", indent))
	sb.WriteString(c.bits.String())
	sb.WriteByte('\n')
	for _, r := range c.refs {
		r.dump(sb, indent+1)
	}
}
