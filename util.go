package cell

import (
	"bytes"
	"sync"
)

// Scratch buffers for cell representations. A representation is at most
// 2 + 128 + 4*2 + 4*32 bytes.
var bufferPool sync.Pool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, 2+128+MaxRefs*(2+HashSize)))
	},
}
