package pool

import (
	"strings"
	"sync"
)

// BufferPool implements a pool of byte slices for efficient memory reuse
type BufferPool struct {
	pool sync.Pool
	size int
}

// NewBufferPool creates a new buffer pool with buffers of the specified length
func NewBufferPool(size int) *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				buffer := make([]byte, size)
				return &buffer
			},
		},
		size: size,
	}
}

// Get retrieves a buffer of Size bytes from the pool
func (bp *BufferPool) Get() *[]byte {
	buffer := bp.pool.Get().(*[]byte)
	if cap(*buffer) < bp.size {
		*buffer = make([]byte, bp.size)
	}
	*buffer = (*buffer)[:bp.size]
	return buffer
}

// Put returns a buffer to the pool for reuse
func (bp *BufferPool) Put(buffer *[]byte) {
	bp.pool.Put(buffer)
}

// Size returns the length of the buffers handed out by the pool
func (bp *BufferPool) Size() int {
	return bp.size
}

// StringBuilderPool implements a pool of strings.Builder for efficient string building
type StringBuilderPool struct {
	pool sync.Pool
}

// NewStringBuilderPool creates a new strings.Builder pool
func NewStringBuilderPool() *StringBuilderPool {
	return &StringBuilderPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(strings.Builder)
			},
		},
	}
}

// Get retrieves a builder from the pool or creates a new one if none are available
func (sbp *StringBuilderPool) Get() *strings.Builder {
	return sbp.pool.Get().(*strings.Builder)
}

// Put resets the builder and returns it to the pool
func (sbp *StringBuilderPool) Put(sb *strings.Builder) {
	sb.Reset()
	sbp.pool.Put(sb)
}
