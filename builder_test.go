package cell

import (
	"fmt"
	"math"
	"math/big"
	"math/rand"
	"testing"

	assert "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintSamples(r *rand.Rand, n uint) []uint64 {
	max := uint64(math.MaxUint64)
	if n < 64 {
		max = 1<<n - 1
	}
	out := []uint64{0, 1 & max, max, max / 2}
	for i := 0; i < 8; i++ {
		out = append(out, r.Uint64()&max)
	}
	return out
}

func TestUintRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for n := uint(1); n <= 64; n++ {
		t.Run(fmt.Sprintf("bits=%d", n), func(t *testing.T) {
			for _, x := range uintSamples(r, n) {
				b := NewBuilder()
				require.NoError(t, b.StoreUint(x, n))
				s := b.EndCell().BeginParse()
				got, err := s.LoadUint(n)
				require.NoError(t, err)
				assert.Equal(t, x, got)
				assert.Equal(t, 0, s.BitLen())
			}
		})
	}
}

func TestIntRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for n := uint(2); n <= 64; n++ {
		t.Run(fmt.Sprintf("bits=%d", n), func(t *testing.T) {
			min := int64(-1) << (n - 1)
			max := -(min + 1)
			samples := []int64{0, 1, -1, min, max}
			for i := 0; i < 8; i++ {
				samples = append(samples, int64(r.Uint64())>>(64-n))
			}
			for _, x := range samples {
				b := NewBuilder()
				require.NoError(t, b.StoreInt(x, n))
				got, err := b.EndCell().BeginParse().LoadInt(n)
				require.NoError(t, err)
				assert.Equal(t, x, got)
			}
		})
	}
}

func TestBigIntRoundTrip(t *testing.T) {
	x, ok := new(big.Int).SetString("-123456789012345678901234567890", 10)
	require.True(t, ok)

	b := NewBuilder()
	require.NoError(t, b.StoreBigInt(x, 257))
	require.NoError(t, b.StoreBigUint(new(big.Int).Neg(x), 256))
	s := b.EndCell().BeginParse()

	got, err := s.LoadBigInt(257)
	require.NoError(t, err)
	assert.Equal(t, 0, x.Cmp(got))

	got, err = s.LoadBigUint(256)
	require.NoError(t, err)
	assert.Equal(t, 0, new(big.Int).Neg(x).Cmp(got))
}

func TestStoreUintOverflow(t *testing.T) {
	b := NewBuilder()
	assert.ErrorIs(t, b.StoreUint(256, 8), ErrIntegerOverflow)
	assert.Equal(t, 0, b.BitLen())
	assert.NoError(t, b.StoreUint(255, 8))

	assert.ErrorIs(t, b.StoreUint(1, 0), ErrIntegerOverflow)
	assert.NoError(t, b.StoreUint(0, 0))
	assert.ErrorIs(t, b.StoreBigUint(big.NewInt(-1), 8), ErrIntegerOverflow)
	assert.Equal(t, 8, b.BitLen())
}

func TestStoreIntOverflow(t *testing.T) {
	b := NewBuilder()
	assert.ErrorIs(t, b.StoreInt(128, 8), ErrIntegerOverflow)
	assert.ErrorIs(t, b.StoreInt(-129, 8), ErrIntegerOverflow)
	assert.NoError(t, b.StoreInt(127, 8))
	assert.NoError(t, b.StoreInt(-128, 8))
	assert.ErrorIs(t, b.StoreInt(1, 0), ErrIntegerOverflow)
	assert.NoError(t, b.StoreInt(0, 0))
	assert.ErrorIs(t, b.StoreInt(-2, 1), ErrIntegerOverflow)
	assert.NoError(t, b.StoreInt(-1, 1))
	assert.Equal(t, 17, b.BitLen())
}

func TestStoreHugeWidth(t *testing.T) {
	b := NewBuilder()
	assert.ErrorIs(t, b.StoreInt(0, 1<<62), ErrCellOverflow)
	assert.ErrorIs(t, b.StoreInt(-1, math.MaxUint), ErrCellOverflow)
	assert.ErrorIs(t, b.StoreUint(0, 1<<62), ErrCellOverflow)
	assert.ErrorIs(t, b.StoreBigUint(big.NewInt(7), math.MaxUint), ErrCellOverflow)
	assert.ErrorIs(t, b.StoreUint(0, MaxBits+1), ErrCellOverflow)
	assert.Equal(t, 0, b.BitLen())

	require.NoError(t, b.StoreInt(-1, MaxBits))
	assert.Equal(t, MaxBits, b.BitLen())
}

func TestGramsRoundTrip(t *testing.T) {
	max := new(big.Int).Lsh(big.NewInt(1), 120)
	max.Sub(max, big.NewInt(1))

	for _, tc := range []struct {
		x    *big.Int
		bits int
	}{
		{big.NewInt(0), 4},
		{big.NewInt(1), 12},
		{big.NewInt(255), 12},
		{big.NewInt(256), 20},
		{max, 124},
	} {
		t.Run(tc.x.String(), func(t *testing.T) {
			b := NewBuilder()
			require.NoError(t, b.StoreGrams(tc.x))
			assert.Equal(t, tc.bits, b.BitLen())

			s := b.EndCell().BeginParse()
			got, err := s.LoadGrams()
			require.NoError(t, err)
			assert.Equal(t, 0, tc.x.Cmp(got))
			assert.Equal(t, 0, s.BitLen())
		})
	}
}

func TestGramsOverflow(t *testing.T) {
	b := NewBuilder()
	assert.ErrorIs(t, b.StoreGrams(new(big.Int).Lsh(big.NewInt(1), 120)), ErrIntegerOverflow)
	assert.ErrorIs(t, b.StoreGrams(big.NewInt(-1)), ErrIntegerOverflow)
	assert.Equal(t, 0, b.BitLen())
}

func TestBitCapacity(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxBits; i++ {
		require.NoError(t, b.StoreUint(uint64(i&1), 1))
	}
	assert.ErrorIs(t, b.StoreUint(1, 1), ErrCellOverflow)
	assert.Equal(t, MaxBits, b.BitLen())

	// The rejected store leaves the builder usable.
	c := b.EndCell()
	assert.Equal(t, MaxBits, c.BitLen())
}

func TestRefCapacity(t *testing.T) {
	leaf := NewBuilder().EndCell()
	b := NewBuilder()
	for i := 0; i < MaxRefs; i++ {
		require.NoError(t, b.StoreRef(leaf))
	}
	assert.ErrorIs(t, b.StoreRef(leaf), ErrCellOverflow)
	assert.Equal(t, MaxRefs, b.RefLen())
	assert.Equal(t, 1, b.EndCell().Depth())
}

func TestStoreRefNil(t *testing.T) {
	b := NewBuilder()
	assert.Error(t, b.StoreRef(nil))
	assert.Equal(t, 0, b.RefLen())
}

func TestStoreGramsCapacityAtomic(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreUint(0, MaxBits-12))
	assert.ErrorIs(t, b.StoreGrams(big.NewInt(256)), ErrCellOverflow)
	assert.Equal(t, MaxBits-12, b.BitLen())
	assert.NoError(t, b.StoreGrams(big.NewInt(1)))
}

func TestStoreSlice(t *testing.T) {
	leaf := leafCell(t)
	src := mustCell(t, func(b *Builder) error {
		if err := b.StoreUint(0xabcd, 16); err != nil {
			return err
		}
		if err := b.StoreRef(leaf); err != nil {
			return err
		}
		return b.StoreRef(NewBuilder().EndCell())
	})

	s := src.BeginParse()
	_, err := s.LoadUint(8)
	require.NoError(t, err)
	_, err = s.LoadRef()
	require.NoError(t, err)

	b := NewBuilder()
	require.NoError(t, b.StoreSlice(s))
	assert.Equal(t, 8, s.BitLen())
	assert.Equal(t, 1, s.RefLen())

	c := b.EndCell()
	assert.Equal(t, "x{cd}", c.Bits().String())
	assert.Equal(t, 1, c.RefLen())
	assert.Equal(t, 1, c.Depth())
}

func TestStoreSliceOverflow(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreUint(0, 1020))
	assert.ErrorIs(t, b.StoreSlice(MustParseSlice("x{f}")), ErrCellOverflow)
	assert.Equal(t, 1020, b.BitLen())
}

func TestEndCellSnapshot(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.StoreUint(1, 1))
	first := b.EndCell()
	require.NoError(t, b.StoreUint(0, 7))
	require.NoError(t, b.StoreRef(first))
	second := b.EndCell()

	assert.Equal(t, 1, first.BitLen())
	assert.Equal(t, 0, first.RefLen())
	assert.Equal(t, "b{1}", first.Bits().String())
	assert.Equal(t, "x{80}", second.Bits().String())
	assert.Equal(t, 1, second.Depth())
}
