package fuzzer

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	cbor "github.com/ipfs/go-ipld-cbor"

	cell "github.com/tonkit/go-cell"
)

type stored struct {
	code  opCode
	width uint
	value uint64
}

// checkedBuilder drives a cell.Builder and mirrors every accepted store so
// the finished cell can be parsed back and compared.
type checkedBuilder struct {
	step uint64
	bs   cbor.IpldStore

	b      *cell.Builder
	bits   int
	values []stored
	refs   []*cell.Cell

	done []*cell.Cell
}

func newCheckedBuilder() *checkedBuilder {
	return &checkedBuilder{
		bs: cbor.NewCborStore(newMockBlocks()),
		b:  cell.NewBuilder(),
	}
}

func gramsWidth(v uint64) int {
	n := 0
	for v > 0 {
		n += 8
		v >>= 8
	}
	return 4 + n
}

func (c *checkedBuilder) store(code opCode, width uint, value uint64) {
	var (
		err  error
		size int
	)
	switch code {
	case opStoreUint:
		value &= mask(width)
		size = int(width)
		c.trace("store uint %d in %d bits", value, width)
		err = c.b.StoreUint(value, width)
	case opStoreInt:
		v := signExtend(value, width)
		size = int(width)
		c.trace("store int %d in %d bits", v, width)
		err = c.b.StoreInt(v, width)
	case opStoreGrams:
		size = gramsWidth(value)
		c.trace("store grams %d", value)
		err = c.b.StoreGrams(new(big.Int).SetUint64(value))
	default:
		panic("impossible")
	}

	if c.bits+size > cell.MaxBits {
		if !errors.Is(err, cell.ErrCellOverflow) {
			c.fail("expected overflow storing %d bits after %d, got %v", size, c.bits, err)
		}
		c.checkEq(c.bits, c.b.BitLen())
		return
	}
	c.checkErr(err)
	c.bits += size
	c.values = append(c.values, stored{code, width, value})
	c.checkEq(c.bits, c.b.BitLen())
}

func (c *checkedBuilder) storeRef(key uint64) {
	if len(c.done) == 0 {
		return
	}
	ref := c.done[key%uint64(len(c.done))]
	c.trace("store ref %s", ref.Hash())
	err := c.b.StoreRef(ref)
	if len(c.refs) == cell.MaxRefs {
		if !errors.Is(err, cell.ErrCellOverflow) {
			c.fail("expected ref overflow, got %v", err)
		}
		return
	}
	c.checkErr(err)
	c.refs = append(c.refs, ref)
}

func (c *checkedBuilder) end() {
	c.trace("end cell")
	fin := c.b.EndCell()
	c.check(fin)
	c.done = append(c.done, fin)
	c.b = cell.NewBuilder()
	c.bits = 0
	c.values = nil
	c.refs = nil
}

func (c *checkedBuilder) reload(key uint64) {
	if len(c.done) == 0 {
		return
	}
	orig := c.done[key%uint64(len(c.done))]
	c.trace("reload %s", orig.Hash())
	root, err := cell.Put(context.Background(), c.bs, orig)
	c.checkErr(err)
	loaded, err := cell.Load(context.Background(), c.bs, root, cell.ExpectHash(orig.Hash()))
	c.checkErr(err)
	c.checkEq(orig.Depth(), loaded.Depth())
}

// check parses fin and compares every value against the mirror.
func (c *checkedBuilder) check(fin *cell.Cell) {
	c.checkEq(c.bits, fin.BitLen())
	c.checkEq(len(c.refs), fin.RefLen())

	h1 := fin.Hash()
	s := fin.BeginParse()
	for _, v := range c.values {
		switch v.code {
		case opStoreUint:
			got, err := s.LoadUint(v.width)
			c.checkErr(err)
			if got != v.value {
				c.fail("loaded uint %d, stored %d", got, v.value)
			}
		case opStoreInt:
			got, err := s.LoadInt(v.width)
			c.checkErr(err)
			if want := signExtend(v.value, v.width); got != want {
				c.fail("loaded int %d, stored %d", got, want)
			}
		case opStoreGrams:
			got, err := s.LoadGrams()
			c.checkErr(err)
			if !got.IsUint64() || got.Uint64() != v.value {
				c.fail("loaded grams %s, stored %d", got, v.value)
			}
		}
	}
	for _, want := range c.refs {
		got, err := s.LoadRef()
		c.checkErr(err)
		if got != want {
			c.fail("loaded ref %s, stored %s", got.Hash(), want.Hash())
		}
	}
	c.checkEq(0, s.BitLen())
	c.checkEq(0, s.RefLen())

	if h2, err := fin.BeginParse().Hash(); err != nil || h1 != h2 || h1 != fin.Hash() {
		c.fail("unstable hash %s / %s (%v)", h1, h2, err)
	}
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<width - 1
}

func signExtend(v uint64, width uint) int64 {
	if width == 0 {
		return 0
	}
	return int64(v<<(64-width)) >> (64 - width)
}

func (c *checkedBuilder) trace(msg string, args ...interface{}) {
	c.step++
	if Debug {
		fmt.Printf("step %d: "+msg+"\n", append([]interface{}{c.step}, args...)...)
	}
}

func (c *checkedBuilder) checkErr(e error) {
	if e != nil {
		c.fail(e.Error())
	}
}

func (c *checkedBuilder) checkEq(a, b int) {
	if a != b {
		c.fail("expected %d == %d", a, b)
	}
}

func (c *checkedBuilder) fail(msg string, args ...interface{}) {
	panic(fmt.Sprintf("step %d: "+msg, append([]interface{}{c.step}, args...)...))
}
