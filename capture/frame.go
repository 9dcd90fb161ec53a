package capture

import (
	"github.com/mel2oo/netsniff/mempool"
	"github.com/mel2oo/netsniff/memview"
)

// RawFrame is one captured frame, immutable once produced. Its bytes live in
// a pooled buffer rather than a fresh allocation; Release returns that
// storage to the pool once the decode/aggregate stage is done with it.
type RawFrame struct {
	buf       mempool.Buffer
	Timestamp Timestamp
}

// NewRawFrame copies data into a buffer drawn from pool and pairs it with
// ts. The caller's data slice is only valid until the next NextPacket call,
// so it must be copied, not aliased.
func NewRawFrame(pool mempool.BufferPool, data []byte, ts Timestamp) (RawFrame, error) {
	buf := pool.NewBuffer()
	if _, err := buf.Write(data); err != nil {
		buf.Release()
		return RawFrame{}, err
	}
	return RawFrame{buf: buf, Timestamp: ts}, nil
}

// View returns the frame's bytes as a MemView, valid until Release is
// called.
func (f RawFrame) View() memview.MemView {
	return f.buf.Bytes()
}

// Len reports the number of captured bytes.
func (f RawFrame) Len() int {
	return f.buf.Len()
}

// Release returns the frame's backing storage to its buffer pool. Callers
// must not use View after calling Release.
func (f RawFrame) Release() {
	f.buf.Release()
}
