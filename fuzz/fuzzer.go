package fuzzer

import (
	"encoding/binary"
	"fmt"
)

var Debug = false

type opCode byte

const (
	opStoreUint opCode = iota
	opStoreInt
	opStoreGrams
	opStoreRef
	opEnd
	opReload
	opMax
)

type op struct {
	code  opCode
	key   uint64
	value uint64
}

func Parse(data []byte) (ops []op) {
	scratch := make([]byte, 17)

	for len(data) > 0 {
		n := copy(scratch, data)
		data = data[n:]

		code := opCode(scratch[0] % byte(opMax))
		k := binary.LittleEndian.Uint64(scratch[1:])
		v := binary.LittleEndian.Uint64(scratch[9:])
		ops = append(ops, op{code, k, v})
	}
	return ops
}

func Fuzz(data []byte) int {
	if len(data) < 1 {
		return -1
	}

	c := newCheckedBuilder()
	for _, op := range Parse(data) {
		switch op.code {
		case opStoreUint, opStoreInt, opStoreGrams:
			c.store(op.code, uint(op.key%65), op.value)
		case opStoreRef:
			c.storeRef(op.key)
		case opEnd:
			c.end()
		case opReload:
			c.reload(op.key)
		default:
			panic("impossible")
		}
	}
	if Debug {
		fmt.Printf("checking\n")
	}
	c.end()
	return 0
}
