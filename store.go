package cell

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	cid "github.com/ipfs/go-cid"
	cbor "github.com/ipfs/go-ipld-cbor"
	logging "github.com/ipfs/go-log/v2"
	mh "github.com/multiformats/go-multihash"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/tonkit/go-cell/internal"
)

var log = logging.Logger("cell")

var (
	errUndefinedCID = errors.New("cell node has undefined CID")
	errBadHashCode  = errors.New("cell node hash is not a sha2-256 multihash")
	errHashMismatch = errors.New("cell hash does not match stored hash")
	errTooDeep      = errors.New("cell DAG exceeds maximum depth")
	errCycle        = errors.New("cell DAG contains a cycle")
)

// Put writes c and every cell reachable from it to store, one block per
// distinct cell, and returns the CID of c's block.
func Put(ctx context.Context, store cbor.IpldStore, c *Cell) (cid.Cid, error) {
	if c == nil {
		return cid.Undef, errNilCell
	}
	w := &dagWriter{store: store, seen: make(map[*Cell]cid.Cid)}
	root, err := w.put(ctx, c)
	if err != nil {
		return cid.Undef, xerrors.Errorf("storing cell %s: %w", c.Hash(), err)
	}
	log.Debugw("stored cell dag", "root", root, "hash", c.Hash(), "cells", len(w.seen))
	return root, nil
}

type dagWriter struct {
	store cbor.IpldStore
	seen  map[*Cell]cid.Cid
}

func (w *dagWriter) put(ctx context.Context, c *Cell) (cid.Cid, error) {
	if k, ok := w.seen[c]; ok {
		return k, nil
	}
	if err := ctx.Err(); err != nil {
		return cid.Undef, err
	}

	nd := &internal.Node{
		Bits:   c.bits.Bytes(),
		BitLen: uint64(c.bits.Len()),
	}
	for _, r := range c.refs {
		k, err := w.put(ctx, r)
		if err != nil {
			return cid.Undef, err
		}
		nd.Refs = append(nd.Refs, k)
	}

	h := c.HashBytes()
	hash, err := mh.Encode(h[:], mh.SHA2_256)
	if err != nil {
		return cid.Undef, err
	}
	nd.Hash = hash

	k, err := w.store.Put(ctx, nd)
	if err != nil {
		return cid.Undef, err
	}
	w.seen[c] = k
	return k, nil
}

// Load reads the cell DAG rooted at root from store. Every node is validated
// and every rebuilt cell must hash to the digest stored with it. Cells that
// share a block are shared in the result.
func Load(ctx context.Context, store cbor.IpldStore, root cid.Cid, opts ...Option) (*Cell, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		if err := o(cfg); err != nil {
			return nil, err
		}
	}

	nodes, err := fetchDAG(ctx, store, root, cfg)
	if err != nil {
		return nil, err
	}

	b := &dagBuilder{
		nodes:    nodes,
		cells:    make(map[cid.Cid]*Cell, len(nodes)),
		visiting: make(map[cid.Cid]bool),
		maxDepth: cfg.maxDepth,
	}
	c, err := b.build(root)
	if err != nil {
		return nil, xerrors.Errorf("loading cell dag %s: %w", root, err)
	}
	if cfg.expectHash != nil {
		if h := c.HashBytes(); !bytes.Equal(h[:], cfg.expectHash) {
			return nil, xerrors.Errorf("root %s hashes to %s: %w", root, c.Hash(), errHashMismatch)
		}
	}
	log.Debugw("loaded cell dag", "root", root, "hash", c.Hash(), "cells", len(nodes))
	return c, nil
}

// fetchDAG loads every node reachable from root, one level at a time, with
// at most cfg.concurrency requests in flight.
func fetchDAG(ctx context.Context, store cbor.IpldStore, root cid.Cid, cfg *config) (map[cid.Cid]*internal.Node, error) {
	nodes := make(map[cid.Cid]*internal.Node)
	level := []cid.Cid{root}
	for height := 0; len(level) > 0; height++ {
		if height > cfg.maxDepth {
			return nil, xerrors.Errorf("more than %d levels below %s: %w", cfg.maxDepth, root, errTooDeep)
		}

		fetched := make([]*internal.Node, len(level))
		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(cfg.concurrency)
		for i, k := range level {
			i, k := i, k
			grp.Go(func() error {
				nd := new(internal.Node)
				if err := store.Get(gctx, k, nd); err != nil {
					return xerrors.Errorf("getting cell node %s: %w", k, err)
				}
				if err := checkNode(nd); err != nil {
					return xerrors.Errorf("invalid cell node %s: %w", k, err)
				}
				fetched[i] = nd
				return nil
			})
		}
		if err := grp.Wait(); err != nil {
			return nil, err
		}

		for i, k := range level {
			nodes[k] = fetched[i]
		}
		var next []cid.Cid
		queued := make(map[cid.Cid]struct{})
		for _, nd := range fetched {
			for _, ref := range nd.Refs {
				if _, ok := nodes[ref]; ok {
					continue
				}
				if _, ok := queued[ref]; ok {
					continue
				}
				queued[ref] = struct{}{}
				next = append(next, ref)
			}
		}
		level = next
	}
	return nodes, nil
}

func checkNode(nd *internal.Node) error {
	if nd.BitLen > MaxBits {
		return xerrors.Errorf("%d bits: %w", nd.BitLen, ErrCellOverflow)
	}
	if len(nd.Refs) > MaxRefs {
		return xerrors.Errorf("%d refs: %w", len(nd.Refs), ErrCellOverflow)
	}
	for _, r := range nd.Refs {
		if !r.Defined() {
			return errUndefinedCID
		}
		if codec := r.Prefix().Codec; codec != cid.DagCBOR {
			return fmt.Errorf("cell links must be cbor, found %d", codec)
		}
	}
	dec, err := mh.Decode(nd.Hash)
	if err != nil {
		return err
	}
	if dec.Code != mh.SHA2_256 || len(dec.Digest) != HashSize {
		return errBadHashCode
	}
	return nil
}

type dagBuilder struct {
	nodes    map[cid.Cid]*internal.Node
	cells    map[cid.Cid]*Cell
	visiting map[cid.Cid]bool
	maxDepth int
}

func (b *dagBuilder) build(k cid.Cid) (*Cell, error) {
	if c, ok := b.cells[k]; ok {
		return c, nil
	}
	if b.visiting[k] {
		return nil, errCycle
	}
	b.visiting[k] = true
	defer delete(b.visiting, k)

	nd, ok := b.nodes[k]
	if !ok {
		return nil, xerrors.Errorf("node %s was not fetched", k)
	}
	bits, err := bitStringFromBytes(nd.Bits, int(nd.BitLen))
	if err != nil {
		return nil, xerrors.Errorf("node %s: %w", k, err)
	}

	bld := &Builder{bits: bits}
	for _, ref := range nd.Refs {
		child, err := b.build(ref)
		if err != nil {
			return nil, err
		}
		if err := bld.StoreRef(child); err != nil {
			return nil, err
		}
	}
	c := bld.EndCell()
	if c.depth > b.maxDepth {
		return nil, xerrors.Errorf("node %s has depth %d: %w", k, c.depth, errTooDeep)
	}

	dec, err := mh.Decode(nd.Hash)
	if err != nil {
		return nil, err
	}
	if h := c.HashBytes(); !bytes.Equal(dec.Digest, h[:]) {
		return nil, xerrors.Errorf("node %s: %w", k, errHashMismatch)
	}
	b.cells[k] = c
	return c, nil
}
