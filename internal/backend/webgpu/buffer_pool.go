//go:build windows

package webgpu

import (
	"math/bits"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// maxPooled bounds the idle buffers kept per bucket.
const maxPooled = 8

// poolKey groups buffers by usage and power-of-two size class.
type poolKey struct {
	class uint
	usage wgpu.BufferUsage
}

// BufferPool reuses output and staging buffers across timed executions.
// Buffers handed out are at least as large as requested.
type BufferPool struct {
	device *wgpu.Device

	mu   sync.Mutex
	idle map[poolKey][]*wgpu.Buffer

	hits, misses uint64
}

// NewBufferPool creates a pool allocating from device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{
		device: device,
		idle:   make(map[poolKey][]*wgpu.Buffer),
	}
}

// sizeClass returns the exponent of the smallest power of two >= size.
func sizeClass(size uint64) uint {
	if size <= 4 {
		return 2
	}
	return uint(bits.Len64(size - 1))
}

// Acquire returns a buffer of at least size bytes with the given usage.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	key := poolKey{class: sizeClass(size), usage: usage}

	p.mu.Lock()
	if list := p.idle[key]; len(list) > 0 {
		buf := list[len(list)-1]
		p.idle[key] = list[:len(list)-1]
		p.hits++
		p.mu.Unlock()
		return buf
	}
	p.misses++
	p.mu.Unlock()

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  uint64(1) << key.class,
	})
}

// Release returns buf, acquired for size bytes, to the pool.
func (p *BufferPool) Release(buf *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	key := poolKey{class: sizeClass(size), usage: usage}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.idle[key]) >= maxPooled {
		buf.Release()
		return
	}
	p.idle[key] = append(p.idle[key], buf)
}

// Clear releases every idle buffer.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for key, list := range p.idle {
		for _, buf := range list {
			buf.Release()
		}
		delete(p.idle, key)
	}
}

// Stats returns the pool hit and miss counts.
func (p *BufferPool) Stats() (hits, misses uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits, p.misses
}
