package render

import (
	"errors"
	"fmt"
)

var ErrBufferInUse = errors.New("shared buffer is in use")

// BufferPool hands out the one vertex buffer every object draws through.
// Each render acquires it, uploads its geometry, draws and finishes it
// before the next object may acquire it. Not safe for concurrent use.
type BufferPool struct {
	device  Device
	id      BufferID
	created bool
	held    *Buffer
}

func NewBufferPool(d Device) *BufferPool {
	return &BufferPool{device: d}
}

// Buffer is the bound shared buffer between Acquire and Finish.
type Buffer struct {
	pool   *BufferPool
	stride int
	count  int
}

// Acquire binds the shared buffer. It fails with ErrBufferInUse until the
// current holder calls Finish.
func (p *BufferPool) Acquire() (*Buffer, error) {
	if p.held != nil {
		return nil, ErrBufferInUse
	}

	if !p.created {
		id, err := p.device.NewBuffer()
		if err != nil {
			return nil, fmt.Errorf("creating shared buffer: %w", err)
		}
		p.id = id
		p.created = true
	}

	p.held = &Buffer{pool: p}
	return p.held, nil
}

// InUse reports whether the buffer is acquired.
func (p *BufferPool) InUse() bool {
	return p.held != nil
}

// Release frees the device buffer. The pool creates a new one on the next
// Acquire.
func (p *BufferPool) Release() {
	if p.created {
		p.device.Release(p.id)
		p.created = false
	}
	p.held = nil
}

// Upload replaces the buffer contents with data laid out stride floats per
// vertex.
func (b *Buffer) Upload(data []float32, stride int) error {
	if b.pool.held != b {
		return fmt.Errorf("upload to a finished buffer")
	}
	if stride <= 0 || len(data)%stride != 0 {
		return fmt.Errorf("%d floats do not divide into vertices of %d", len(data), stride)
	}

	if err := b.pool.device.Upload(b.pool.id, data); err != nil {
		return err
	}
	b.stride = stride
	b.count = len(data) / stride
	return nil
}

// Count is the number of vertices last uploaded.
func (b *Buffer) Count() int { return b.count }

// Finish unbinds the buffer. Calling it twice is harmless.
func (b *Buffer) Finish() {
	if b.pool.held == b {
		b.pool.held = nil
	}
}
