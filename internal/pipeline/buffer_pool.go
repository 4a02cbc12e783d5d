package pipeline

import "sync"

// bufferPool provides reusable read buffers of a fixed chunk size so
// concurrent pipeline runs stay at O(chunk size) working memory each
// without re-allocating per chunk.
type bufferPool struct {
	pool sync.Pool
}

func newBufferPool(size int) *bufferPool {
	return &bufferPool{
		pool: sync.Pool{
			New: func() any {
				return make([]byte, size)
			},
		},
	}
}

func (p *bufferPool) Get() []byte {
	buf, _ := p.pool.Get().([]byte) //nolint:errcheck // pool only ever holds []byte

	return buf
}

func (p *bufferPool) Put(buf []byte) {
	p.pool.Put(buf) //nolint:staticcheck // buffer is a slice, allocation is intentional
}
