// Package pool provides pooled byte buffers for row encoding. Every
// append encodes its batch of rows into one buffer before the single
// write+sync, so buffers churn at measurement rate and are worth reusing.
package pool

import "sync"

const (
	// defaultSize is the initial capacity of pooled buffers.
	defaultSize = 16 * 1024
	// maxRetained is the largest buffer returned to the pool; bigger ones
	// are dropped so one huge append does not pin memory forever.
	maxRetained = 1024 * 1024
)

// ByteBuffer is an append-only byte buffer.
type ByteBuffer struct {
	B []byte
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Reset empties the buffer, retaining allocated memory.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Write appends p, implementing io.Writer. It never fails.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.B = append(bb.B, p...)
	return len(p), nil
}

// WriteString appends s.
func (bb *ByteBuffer) WriteString(s string) {
	bb.B = append(bb.B, s...)
}

// WriteByte appends c.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.B = append(bb.B, c)
	return nil
}

var byteBufferPool = sync.Pool{
	New: func() any {
		return &ByteBuffer{B: make([]byte, 0, defaultSize)}
	},
}

// GetByteBuffer obtains an empty buffer from the pool.
func GetByteBuffer() *ByteBuffer {
	bb, _ := byteBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutByteBuffer returns a buffer to the pool.
func PutByteBuffer(bb *ByteBuffer) {
	if cap(bb.B) > maxRetained {
		return
	}
	byteBufferPool.Put(bb)
}
