//go:build windows

package webgpu

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Backend executes GEMM candidates on a WebGPU device.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	pool     *BufferPool
	log      zerolog.Logger

	mu        sync.RWMutex
	shaders   []*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
}

// New opens the default high-performance adapter. Any failure wraps
// kernel.ErrUnavailable.
func New(cfg Config) (b *Backend, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("webgpu: native library not available: %v: %w", r, kernel.ErrUnavailable)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, fmt.Errorf("webgpu: create instance: %w", kernel.ErrUnavailable)
	}
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: request adapter: %w: %w", err, kernel.ErrUnavailable)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: request device: %w: %w", err, kernel.ErrUnavailable)
	}
	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: no queue: %w", kernel.ErrUnavailable)
	}

	cfg.Log.Debug().Int("variants", len(variants)).Msg("webgpu backend ready")
	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		pool:      NewBufferPool(device),
		log:       cfg.Log,
		pipelines: make(map[string]*wgpu.ComputePipeline),
	}, nil
}

// Name returns the backend name.
func (b *Backend) Name() string { return "webgpu" }

// VariantNames returns the shader names by variant index.
func (b *Backend) VariantNames() []string {
	return lo.Map(variants, func(v variant, _ int) string { return v.name })
}

// Candidates lists every shader variant for single-precision GEMM.
func (b *Backend) Candidates(_ context.Context, c *blas.Call) ([]int, error) {
	if err := supported(c); err != nil {
		return nil, err
	}
	return lo.Range(len(variants)), nil
}

// Execute runs one variant over every batch entry and returns the wall time
// from first upload to last readback.
func (b *Backend) Execute(ctx context.Context, v int, c *blas.Call, ops *blas.Operands) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if v < 0 || v >= len(variants) {
		return 0, fmt.Errorf("webgpu: variant %d: %w", v, kernel.ErrUnknownVariant)
	}
	if err := supported(c); err != nil {
		return 0, err
	}
	p, err := paramsOf(c, ops.Alpha.Value(), ops.Beta.Value())
	if err != nil {
		return 0, err
	}
	if c.M == 0 || c.N == 0 {
		return 0, nil
	}
	if p.alpha == 0 {
		p.k = 0
	}

	start := time.Now()
	out := ops.C
	stride := c.StrideC
	if c.Function.Ex {
		out, stride = ops.D, c.StrideD
	}
	na, nb, nc := extents(c)
	for i := range c.Batch() {
		a := blas.Slice[float32](ops.A, i, c.StrideA)
		bb := blas.Slice[float32](ops.B, i, c.StrideB)
		cc := blas.Slice[float32](ops.C, i, c.StrideC)
		dst := blas.Slice[float32](out, i, stride)
		if len(cc) < nc || len(dst) < nc || (p.k > 0 && (len(a) < na || len(bb) < nb)) {
			return 0, fmt.Errorf("webgpu: batch %d: %w", i, blas.InvalidPointer)
		}
		if err := b.run(variants[v], p, operand(a, na), operand(bb, nb), cc[:nc], dst[:nc]); err != nil {
			return 0, err
		}
	}
	return time.Since(start), nil
}

// operand trims s to n elements, substituting a one-element buffer for
// operands the kernel does not read.
func operand(s []float32, n int) []float32 {
	if n == 0 || len(s) < n {
		return make([]float32, 1)
	}
	return s[:n]
}

// run dispatches one GEMM and writes the result into dst.
func (b *Backend) run(v variant, p params, a, bb, cc, dst []float32) error {
	pipeline := b.pipeline(v)

	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc
	bufA := b.upload(f32Bytes(a), storage)
	defer bufA.Release()
	bufB := b.upload(f32Bytes(bb), storage)
	defer bufB.Release()
	bufC := b.upload(f32Bytes(cc), storage|wgpu.BufferUsageCopyDst)
	defer bufC.Release()
	bufParams := b.upload(p.bytes(), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	defer bufParams.Release()

	bindGroup := b.device.CreateBindGroupSimple(pipeline.GetBindGroupLayout(0), []wgpu.BindGroupEntry{
		wgpu.BufferBindingEntry(0, bufA, 0, uint64(len(a)*4)),
		wgpu.BufferBindingEntry(1, bufB, 0, uint64(len(bb)*4)),
		wgpu.BufferBindingEntry(2, bufC, 0, uint64(len(cc)*4)),
		wgpu.BufferBindingEntry(3, bufParams, 0, paramsSize),
	})
	defer bindGroup.Release()

	encoder := b.device.CreateCommandEncoder(nil)
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	x, y := v.workgroups(int(p.m), int(p.n))
	pass.DispatchWorkgroups(x, y, 1)
	pass.End()
	b.queue.Submit(encoder.Finish(nil))

	return b.download(bufC, f32Bytes(dst))
}

// Close releases pipelines, pooled buffers and the device.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, p := range b.pipelines {
		p.Release()
	}
	clear(b.pipelines)
	for _, s := range b.shaders {
		s.Release()
	}
	b.shaders = nil
	if b.pool != nil {
		b.pool.Clear()
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	return nil
}
