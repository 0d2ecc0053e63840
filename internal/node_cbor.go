// Tuple encoding of Node in the cbor-gen layout. Maintained by hand: the
// length limits below are sized for a single cell rather than cbor-gen's
// generic defaults, so do not overwrite this file with generator output.

package internal

import (
	"fmt"
	"io"

	cid "github.com/ipfs/go-cid"
	cbg "github.com/whyrusleeping/cbor-gen"
	xerrors "golang.org/x/xerrors"
)

var _ = xerrors.Errorf
var _ = cid.Undef

// A cell carries at most 1023 bits (128 bytes) and its hash is a 34-byte
// multihash; 128 bytes leaves room for other digests to be rejected later
// with a useful error instead of at decode time.
const (
	maxBitsBytes = 128
	maxRefs      = 8192
	maxHashBytes = 128
)

var lengthBufNode = []byte{132}

func (t *Node) MarshalCBOR(w io.Writer) error {
	if t == nil {
		_, err := w.Write(cbg.CborNull)
		return err
	}
	if _, err := w.Write(lengthBufNode); err != nil {
		return err
	}

	// t.Bits ([]uint8) (slice)
	if len(t.Bits) > maxBitsBytes {
		return xerrors.Errorf("Byte array in field t.Bits was too long")
	}

	if err := cbg.WriteMajorTypeHeader(w, cbg.MajByteString, uint64(len(t.Bits))); err != nil {
		return err
	}

	if _, err := w.Write(t.Bits[:]); err != nil {
		return err
	}

	// t.BitLen (uint64) (uint64)

	if err := cbg.WriteMajorTypeHeader(w, cbg.MajUnsignedInt, t.BitLen); err != nil {
		return err
	}

	// t.Refs ([]cid.Cid) (slice)
	if len(t.Refs) > maxRefs {
		return xerrors.Errorf("Slice value in field t.Refs was too long")
	}

	if err := cbg.WriteMajorTypeHeader(w, cbg.MajArray, uint64(len(t.Refs))); err != nil {
		return err
	}
	for _, v := range t.Refs {
		if err := cbg.WriteCid(w, v); err != nil {
			return xerrors.Errorf("failed writing cid field t.Refs: %w", err)
		}
	}

	// t.Hash ([]uint8) (slice)
	if len(t.Hash) > maxHashBytes {
		return xerrors.Errorf("Byte array in field t.Hash was too long")
	}

	if err := cbg.WriteMajorTypeHeader(w, cbg.MajByteString, uint64(len(t.Hash))); err != nil {
		return err
	}

	if _, err := w.Write(t.Hash[:]); err != nil {
		return err
	}
	return nil
}

func (t *Node) UnmarshalCBOR(r io.Reader) (err error) {
	*t = Node{}

	cr := cbg.NewCborReader(r)

	maj, extra, err := cr.ReadHeader()
	if err != nil {
		return err
	}
	defer func() {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
	}()

	if maj != cbg.MajArray {
		return fmt.Errorf("cbor input should be of type array")
	}

	if extra != 4 {
		return fmt.Errorf("cbor input had wrong number of fields")
	}

	// t.Bits ([]uint8) (slice)

	t.Bits, err = cbg.ReadByteArray(cr, maxBitsBytes)
	if err != nil {
		return xerrors.Errorf("reading t.Bits: %w", err)
	}

	// t.BitLen (uint64) (uint64)

	{
		maj, extra, err = cr.ReadHeader()
		if err != nil {
			return err
		}
		if maj != cbg.MajUnsignedInt {
			return fmt.Errorf("wrong type for uint64 field")
		}
		t.BitLen = uint64(extra)
	}

	// t.Refs ([]cid.Cid) (slice)

	maj, extra, err = cr.ReadHeader()
	if err != nil {
		return err
	}

	if extra > maxRefs {
		return fmt.Errorf("t.Refs: array too large (%d)", extra)
	}

	if maj != cbg.MajArray {
		return fmt.Errorf("expected cbor array")
	}

	if extra > 0 {
		t.Refs = make([]cid.Cid, extra)
	}

	for i := 0; i < int(extra); i++ {
		c, err := cbg.ReadCid(cr)
		if err != nil {
			return xerrors.Errorf("reading cid field t.Refs failed: %w", err)
		}
		t.Refs[i] = c
	}

	// t.Hash ([]uint8) (slice)

	t.Hash, err = cbg.ReadByteArray(cr, maxHashBytes)
	if err != nil {
		return xerrors.Errorf("reading t.Hash: %w", err)
	}
	return nil
}
