//go:build windows

package webgpu

import (
	"fmt"
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
)

// pipeline returns the cached compute pipeline of v, compiling it on first use.
func (b *Backend) pipeline(v variant) *wgpu.ComputePipeline {
	b.mu.RLock()
	p, ok := b.pipelines[v.name]
	b.mu.RUnlock()
	if ok {
		return p
	}

	shader := b.device.CreateShaderModuleWGSL(shaderSource(v))
	p = b.device.CreateComputePipelineSimple(nil, shader, "main")

	b.mu.Lock()
	b.shaders = append(b.shaders, shader)
	b.pipelines[v.name] = p
	b.mu.Unlock()
	return p
}

// upload creates a buffer initialised with data.
func (b *Backend) upload(data []byte, usage wgpu.BufferUsage) *wgpu.Buffer {
	size := uint64(len(data))
	buffer := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            usage,
		Size:             size,
		MappedAtCreation: wgpu.True,
	})
	mapped := buffer.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice over the mapped range
	copy(unsafe.Slice((*byte)(mapped), size), data)
	buffer.Unmap()
	return buffer
}

// download copies size bytes of src into dst through a pooled staging buffer.
func (b *Backend) download(src *wgpu.Buffer, dst []byte) error {
	size := uint64(len(dst))
	usage := wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
	staging := b.pool.Acquire(size, usage)
	defer b.pool.Release(staging, size, usage)

	encoder := b.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(src, 0, staging, 0, size)
	b.queue.Submit(encoder.Finish(nil))

	if err := staging.MapAsync(b.device, wgpu.MapModeRead, 0, size); err != nil {
		return fmt.Errorf("webgpu: map staging buffer: %w", err)
	}
	mapped := staging.GetMappedRange(0, size)
	//nolint:gosec // unsafe.Slice over the mapped range
	copy(dst, unsafe.Slice((*byte)(mapped), size))
	staging.Unmap()
	return nil
}

// f32Bytes views s as raw bytes.
func f32Bytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	//nolint:gosec // reinterpretation of a float32 slice
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}
