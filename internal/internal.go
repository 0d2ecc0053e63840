package internal

import (
	cid "github.com/ipfs/go-cid"
)

// Node is the stored form of one cell.
type Node struct {
	// Bits holds the packed data bits, unused trailing bits zero.
	Bits   []byte
	BitLen uint64
	Refs   []cid.Cid
	// Hash is the SHA2-256 multihash of the cell's standard hash.
	Hash []byte
}
