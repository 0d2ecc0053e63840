package cell

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	cbor "github.com/ipfs/go-ipld-cbor"
	"github.com/stretchr/testify/require"
)

type treeParams struct {
	id    string
	depth int
	bits  uint
}

var treeTable = []treeParams{
	{id: "tree.Shallow", depth: 2, bits: 64},
	{id: "tree.Deep", depth: 6, bits: 256},
	{id: "tree.Full", depth: 6, bits: 1023},
}

// fullTree builds a tree in which every inner cell has MaxRefs distinct
// children and every cell carries random data.
func fullTree(b testing.TB, r *rand.Rand, depth int, bits uint) *Cell {
	bld := NewBuilder()
	for left := bits; left > 0; {
		n := left
		if n > 64 {
			n = 64
		}
		x := r.Uint64()
		if n < 64 {
			x &= 1<<n - 1
		}
		require.NoError(b, bld.StoreUint(x, n))
		left -= n
	}
	if depth > 0 {
		for i := 0; i < MaxRefs; i++ {
			require.NoError(b, bld.StoreRef(fullTree(b, r, depth-1, bits)))
		}
	}
	return bld.EndCell()
}

func BenchmarkHash(b *testing.B) {
	for _, tp := range treeTable {
		b.Run(fmt.Sprintf("%s/depth=%d", tp.id, tp.depth), func(b *testing.B) {
			r := rand.New(rand.NewSource(int64(tp.depth)))
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				// Digests are memoized per cell, so every round hashes a fresh tree.
				b.StopTimer()
				root := fullTree(b, r, tp.depth, tp.bits)
				b.StartTimer()
				root.Hash()
			}
		})
	}
}

func BenchmarkBuildParse(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		bld := NewBuilder()
		for j := 0; j < 15; j++ {
			require.NoError(b, bld.StoreUint(uint64(i+j), 64))
		}
		s := bld.EndCell().BeginParse()
		for j := 0; j < 15; j++ {
			_, err := s.LoadUint(64)
			require.NoError(b, err)
		}
	}
}

func BenchmarkPutLoad(b *testing.B) {
	for _, tp := range treeTable {
		b.Run(fmt.Sprintf("%s/depth=%d", tp.id, tp.depth), func(b *testing.B) {
			ctx := context.Background()
			r := rand.New(rand.NewSource(int64(tp.bits)))
			root := fullTree(b, r, tp.depth, tp.bits)

			blocks := newMockBlocks()
			bs := cbor.NewCborStore(blocks)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				c, err := Put(ctx, bs, root)
				require.NoError(b, err)
				_, err = Load(ctx, bs, c)
				require.NoError(b, err)
			}
			blocks.report(b)
		})
	}
}
