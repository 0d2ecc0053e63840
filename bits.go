package cell

import (
	"math/big"
	"strings"
)

const hexDigits = "0123456789abcdef"

// BitString is an ordered sequence of bits packed MSB-first into bytes.
// Bits of the last byte past Len are always zero.
type BitString struct {
	data []byte
	n    int
}

func bitStringFromBytes(data []byte, n int) (BitString, error) {
	if n < 0 || len(data) != (n+7)/8 {
		return BitString{}, errBadBitLength
	}
	if rem := n % 8; rem != 0 && data[len(data)-1]&(0xff>>uint(rem)) != 0 {
		return BitString{}, errTrailingBits
	}
	out := make([]byte, len(data))
	copy(out, data)
	return BitString{data: out, n: n}, nil
}

// Len returns the number of bits.
func (b BitString) Len() int {
	return b.n
}

// Bit returns the bit at position i, where 0 is the first bit stored.
func (b BitString) Bit(i int) uint8 {
	return (b.data[i/8] >> (7 - uint(i%8))) & 1
}

// Sub returns a copy of the bits in [from, to).
func (b BitString) Sub(from, to int) BitString {
	var out BitString
	out.appendRange(b, from, to)
	return out
}

// Bytes returns a copy of the packed bits.
func (b BitString) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// String renders the bits as a slice literal: x{...} when the length is a
// multiple of four, b{...} otherwise.
func (b BitString) String() string {
	var sb strings.Builder
	if b.n%4 == 0 {
		sb.WriteString("x{")
		for i := 0; i < b.n; i += 4 {
			v := b.Bit(i)<<3 | b.Bit(i+1)<<2 | b.Bit(i+2)<<1 | b.Bit(i+3)
			sb.WriteByte(hexDigits[v])
		}
	} else {
		sb.WriteString("b{")
		for i := 0; i < b.n; i++ {
			sb.WriteByte('0' + b.Bit(i))
		}
	}
	sb.WriteByte('}')
	return sb.String()
}

func (b *BitString) appendBit(bit uint8) {
	if b.n%8 == 0 {
		b.data = append(b.data, 0)
	}
	if bit != 0 {
		b.data[b.n/8] |= 0x80 >> uint(b.n%8)
	}
	b.n++
}

func (b *BitString) appendRange(src BitString, from, to int) {
	for i := from; i < to; i++ {
		b.appendBit(src.Bit(i))
	}
}

// appendInteger stores the low n bits of x's two's-complement form, most
// significant first. The caller checks that x fits.
func (b *BitString) appendInteger(x *big.Int, n uint) {
	v := x
	if x.Sign() < 0 {
		v = new(big.Int).Lsh(big.NewInt(1), n)
		v.Add(v, x)
	}
	for i := int(n) - 1; i >= 0; i-- {
		b.appendBit(uint8(v.Bit(i)))
	}
}

// padded returns the content bytes with the completion tag applied: when the
// length is not a multiple of 8, a single 1 bit follows the last data bit.
func (b BitString) padded() []byte {
	out := make([]byte, (b.n+7)/8)
	copy(out, b.data)
	if rem := b.n % 8; rem != 0 {
		out[len(out)-1] |= 0x80 >> uint(rem)
	}
	return out
}

// BitsToUint decodes bits as a big-endian unsigned integer. An empty
// sequence decodes to 0.
func BitsToUint(bits BitString) *big.Int {
	x := new(big.Int).SetBytes(bits.data[:(bits.n+7)/8])
	if rem := bits.n % 8; rem != 0 {
		x.Rsh(x, uint(8-rem))
	}
	return x
}

// BitsToInt decodes bits as a two's-complement integer of len(bits) bits.
// An empty sequence decodes to 0.
func BitsToInt(bits BitString) *big.Int {
	x := BitsToUint(bits)
	if bits.n == 0 || x.Bit(bits.n-1) == 0 {
		return x
	}
	return x.Sub(x, new(big.Int).Lsh(big.NewInt(1), uint(bits.n)))
}
