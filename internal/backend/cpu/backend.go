// Package cpu implements a host-side stand-in accelerator. GEMM offers
// several benchmarkable kernel variants; the other families run on gonum's
// BLAS.
package cpu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/dispatch"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/born-ml/blastune/internal/parallel"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/x448/float16"
)

var errNoVariant = errors.New("no such variant")

// Config configures the CPU backend.
type Config struct {
	// Workers bounds the goroutines a blocked kernel uses. Zero means one
	// per CPU.
	Workers int
	Log     zerolog.Logger
}

// Backend is the CPU implementation of kernel.Backend.
type Backend struct {
	log      zerolog.Logger
	par      parallel.Config
	features Features
	variants []variant
	gemm     *dispatch.Table[gemmKernel]
}

var _ kernel.Backend = (*Backend)(nil)

// New creates a CPU backend.
func New(cfg Config) *Backend {
	par := parallel.DefaultConfig().WithWorkers(cfg.Workers)
	par.MinChunkSize = 1

	f := DetectFeatures()
	b := &Backend{
		log:      cfg.Log.With().Str("backend", "cpu").Logger(),
		par:      par,
		features: f,
		variants: gemmVariants(f.DefaultTile()),
		gemm:     gemmTable(),
	}
	b.log.Debug().
		Stringer("features", f).
		Int("workers", par.NumWorkers).
		Strs("variants", b.VariantNames()).
		Msg("cpu backend ready")
	return b
}

// gemmVariants lists the GEMM kernels. Index 0 is the blocked kernel at the
// tile width that suits the host.
func gemmVariants(defaultTile int) []variant {
	vs := []variant{
		{name: fmt.Sprintf("blocked%d", defaultTile), algo: algoBlocked, tile: defaultTile},
		{name: "naive", algo: algoNaive},
		{name: "axpy", algo: algoAxpy},
	}
	for _, t := range lo.Without([]int{16, 32, 64}, defaultTile) {
		vs = append(vs, variant{name: fmt.Sprintf("blocked%d", t), algo: algoBlocked, tile: t})
	}
	return append(vs, variant{name: "gonum", algo: algoVendor})
}

// gemmTable returns the supported GEMM type triples. Half-precision
// inputs accumulate in float32 because the host has no f16 arithmetic.
func gemmTable() *dispatch.Table[gemmKernel] {
	t := dispatch.NewTable[gemmKernel]()
	key := func(in, out, compute blas.Datatype) dispatch.Key {
		return dispatch.Key{In: in, Out: out, Compute: compute}
	}
	t.Register(key(blas.F32R, blas.F32R, blas.F32R), gemmCase[float32, float32, float32]{})
	t.Register(key(blas.F64R, blas.F64R, blas.F64R), gemmCase[float64, float64, float64]{})
	t.Register(key(blas.F32C, blas.F32C, blas.F32C), gemmCase[complex64, complex64, complex64]{})
	t.Register(key(blas.F64C, blas.F64C, blas.F64C), gemmCase[complex128, complex128, complex128]{})
	t.Register(key(blas.F16R, blas.F16R, blas.F16R), gemmCase[float16.Float16, float16.Float16, float32]{})
	t.Register(key(blas.F16R, blas.F16R, blas.F32R), gemmCase[float16.Float16, float16.Float16, float32]{})
	t.Register(key(blas.F16R, blas.F32R, blas.F32R), gemmCase[float16.Float16, float32, float32]{})
	t.Register(key(blas.BF16R, blas.BF16R, blas.F32R), gemmCase[bfloat16.BFloat16, bfloat16.BFloat16, float32]{})
	t.Register(key(blas.BF16R, blas.F32R, blas.F32R), gemmCase[bfloat16.BFloat16, float32, float32]{})
	t.Register(key(blas.I8R, blas.I32R, blas.I32R), gemmCase[int8, int32, int32]{})
	return t
}

// Name returns the backend name.
func (b *Backend) Name() string { return "cpu" }

// Features returns the detected host features.
func (b *Backend) Features() Features { return b.features }

// VariantNames returns the GEMM kernel names by variant index.
func (b *Backend) VariantNames() []string {
	return lo.Map(b.variants, func(v variant, _ int) string { return v.name })
}

// GemmKeys returns the GEMM type triples the backend executes.
func (b *Backend) GemmKeys() []dispatch.Key { return b.gemm.Keys() }

// Candidates lists the variants that can run c. Families other than GEMM
// have a single kernel.
func (b *Backend) Candidates(_ context.Context, c *blas.Call) ([]int, error) {
	if c.Function.Family != blas.Gemm {
		return []int{0}, nil
	}
	k, ok := b.gemm.Lookup(dispatch.KeyOf(c))
	if !ok {
		return nil, fmt.Errorf("cpu: gemm %s: %w", dispatch.KeyOf(c), kernel.ErrNotImplemented)
	}
	idx := lo.Range(len(b.variants))
	return lo.Filter(idx, func(i int, _ int) bool {
		return b.variants[i].algo != algoVendor || k.vendor()
	}), nil
}

// Execute runs variant on c. Panics raised by gonum on malformed operands
// are returned as errors.
func (b *Backend) Execute(ctx context.Context, v int, c *blas.Call, ops *blas.Operands) (elapsed time.Duration, err error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cpu: %s: kernel panic: %v", c.Name, r)
		}
	}()

	start := time.Now()
	switch c.Function.Family {
	case blas.Gemm:
		k, ok := b.gemm.Lookup(dispatch.KeyOf(c))
		if !ok {
			return 0, fmt.Errorf("cpu: gemm %s: %w", dispatch.KeyOf(c), kernel.ErrNotImplemented)
		}
		if v < 0 || v >= len(b.variants) || (b.variants[v].algo == algoVendor && !k.vendor()) {
			return 0, fmt.Errorf("cpu: gemm variant %d: %w", v, kernel.ErrUnknownVariant)
		}
		err = k.run(b.variants[v], c, ops, b.par)
	default:
		if v != 0 {
			return 0, fmt.Errorf("cpu: %s variant %d: %w", c.Function, v, kernel.ErrUnknownVariant)
		}
		err = runLevel(c, ops)
	}
	if err != nil {
		return 0, fmt.Errorf("cpu: %w", err)
	}
	return time.Since(start), nil
}

// Close releases nothing; the CPU backend holds no external resources.
func (b *Backend) Close() error { return nil }
