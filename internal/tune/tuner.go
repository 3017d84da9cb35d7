// Package tune benchmarks every candidate kernel of each distinct GEMM
// problem in a call stream and records the fastest one.
package tune

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"time"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/dispatch"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/born-ml/blastune/internal/validate"
	"github.com/born-ml/blastune/internal/workload"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WarnPrefix starts every unsupported-call warning.
const WarnPrefix = "blastune"

// Options tune the benchmarking loop.
type Options struct {
	// ColdIters and Iters override the per-call iteration counts when positive.
	ColdIters int
	Iters     int

	// Seed seeds operand fill.
	Seed uint64

	// MaxElements bounds a single operand allocation. Zero means
	// workload.DefaultLimit.
	MaxElements int

	// OnSample, when set, receives every successful measurement.
	OnSample func(Sample)
}

// caseHandler benchmarks one call for a fixed type triple.
type caseHandler interface {
	tune(ctx context.Context, t *Tuner, c *blas.Call, fp Fingerprint) (int, error)
}

// Tuner drives one tuning run. It is not safe for concurrent use.
type Tuner struct {
	backend    kernel.Backend
	dispatcher *dispatch.Dispatcher[caseHandler]
	opts       Options
	log        zerolog.Logger
	rng        *rand.Rand
	runID      uuid.UUID

	processed map[string]struct{}
	result    *Result
}

// New creates a tuner that benchmarks on backend.
func New(backend kernel.Backend, log zerolog.Logger, opts Options) *Tuner {
	if opts.MaxElements <= 0 {
		opts.MaxElements = workload.DefaultLimit
	}
	runID := uuid.New()
	log = log.With().Str("run_id", runID.String()).Str("backend", backend.Name()).Logger()

	return &Tuner{
		backend: backend,
		dispatcher: dispatch.New(caseTable(), dispatch.NewWarnCache(log), WarnPrefix, func(f blas.Function) bool {
			return f.Family == blas.Gemm
		}),
		opts:      opts,
		log:       log,
		rng:       rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		runID:     runID,
		processed: make(map[string]struct{}),
		result:    NewResult(),
	}
}

// caseTable lists the type triples the tuner can allocate operands for.
func caseTable() *dispatch.Table[caseHandler] {
	t := dispatch.NewTable[caseHandler]()
	key := func(in, out, compute blas.Datatype) dispatch.Key {
		return dispatch.Key{In: in, Out: out, Compute: compute}
	}
	t.Register(key(blas.F32R, blas.F32R, blas.F32R), gemmCase[float32, float32, float32]{})
	t.Register(key(blas.F64R, blas.F64R, blas.F64R), gemmCase[float64, float64, float64]{})
	t.Register(key(blas.F32C, blas.F32C, blas.F32C), gemmCase[complex64, complex64, complex64]{})
	t.Register(key(blas.F64C, blas.F64C, blas.F64C), gemmCase[complex128, complex128, complex128]{})
	t.Register(key(blas.F16R, blas.F16R, blas.F16R), gemmCase[float16T, float16T, float16T]{})
	t.Register(key(blas.F16R, blas.F16R, blas.F32R), gemmCase[float16T, float16T, float32]{})
	t.Register(key(blas.F16R, blas.F32R, blas.F32R), gemmCase[float16T, float32, float32]{})
	t.Register(key(blas.BF16R, blas.BF16R, blas.F32R), gemmCase[bfloat16T, bfloat16T, float32]{})
	t.Register(key(blas.BF16R, blas.F32R, blas.F32R), gemmCase[bfloat16T, float32, float32]{})
	t.Register(key(blas.I8R, blas.I32R, blas.I32R), gemmCase[int8, int32, int32]{})
	return t
}

// RunID returns the identifier attached to every log line of the run.
func (t *Tuner) RunID() uuid.UUID { return t.runID }

// Result returns the rows collected so far.
func (t *Tuner) Result() *Result { return t.result }

// Tune processes one call and returns the selected variant, or NoSolution.
// A call whose fingerprint was already processed is not benchmarked again.
// Unsupported calls return a dispatch error; only context errors are fatal.
func (t *Tuner) Tune(ctx context.Context, c *blas.Call) (int, error) {
	fp := FingerprintOf(c)
	key := fp.Key()
	if _, done := t.processed[key]; done {
		if best, ok := t.result.Best(fp); ok {
			return best, nil
		}
		return NoSolution, nil
	}
	t.processed[key] = struct{}{}

	h, err := t.dispatcher.Dispatch(c)
	if err != nil {
		return NoSolution, err
	}

	if st := validate.Check(c, blas.ReservedOperands(c), blas.PointerHost); st != blas.Continue {
		t.log.Debug().Object("call", c).Stringer("status", st).Msg("skipping call")
		return NoSolution, nil
	}

	best, err := h.tune(ctx, t, c, fp)
	if err != nil {
		return NoSolution, err
	}
	if t.result.Add(fp, best) {
		t.log.Info().Str("fingerprint", key).Int("solution", best).Msg("tuned")
	}
	return best, nil
}

// Run tunes every call of seq. Source read errors and context cancellation
// stop the run; everything else is logged and skipped.
func (t *Tuner) Run(ctx context.Context, seq iter.Seq2[*blas.Call, error]) (*Result, error) {
	start := time.Now()
	calls := 0
	for c, err := range seq {
		if err != nil {
			return t.result, err
		}
		if err := ctx.Err(); err != nil {
			return t.result, err
		}
		calls++
		if _, err := t.Tune(ctx, c); err != nil {
			if errors.Is(err, dispatch.ErrUnsupportedDatatype) || errors.Is(err, dispatch.ErrUnsupportedFunction) {
				continue
			}
			return t.result, err
		}
	}
	t.log.Info().
		Int("calls", calls).
		Int("problems", len(t.processed)).
		Int("rows", t.result.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("tuning finished")
	return t.result, nil
}

// benchmark times every candidate on ops and returns the fastest one.
// A failing candidate is dropped; ties keep the earlier candidate.
func (t *Tuner) benchmark(ctx context.Context, c *blas.Call, fp Fingerprint, ops *blas.Operands) (int, error) {
	candidates, err := t.backend.Candidates(ctx, c)
	if err != nil {
		t.log.Warn().Err(err).Str("fingerprint", fp.Key()).Msg("no candidates")
		return NoSolution, nil
	}

	cold, hot := t.iterations(c)
	best, bestTime := NoSolution, time.Duration(0)
	for _, v := range candidates {
		if err := ctx.Err(); err != nil {
			return NoSolution, err
		}
		total, err := t.measure(ctx, v, c, ops, cold, hot)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return NoSolution, ctxErr
			}
			t.log.Debug().Err(err).Int("variant", v).Msg("candidate failed")
			continue
		}
		s := Sample{Fingerprint: fp, Variant: v, Elapsed: total}
		t.log.Debug().Str("fingerprint", fp.Key()).Int("variant", v).Dur("elapsed", total).Msg("sample")
		if t.opts.OnSample != nil {
			t.opts.OnSample(s)
		}
		if best == NoSolution || total < bestTime {
			best, bestTime = v, total
		}
	}
	return best, nil
}

func (t *Tuner) iterations(c *blas.Call) (cold, hot int) {
	cold, hot = c.ColdIters, c.Iters
	if t.opts.ColdIters > 0 {
		cold = t.opts.ColdIters
	}
	if t.opts.Iters > 0 {
		hot = t.opts.Iters
	}
	return max(cold, 0), max(hot, 1)
}

func (t *Tuner) measure(ctx context.Context, v int, c *blas.Call, ops *blas.Operands, cold, hot int) (time.Duration, error) {
	for range cold {
		if _, err := t.backend.Execute(ctx, v, c, ops); err != nil {
			return 0, fmt.Errorf("variant %d: cold run: %w", v, err)
		}
	}
	var total time.Duration
	for range hot {
		d, err := t.backend.Execute(ctx, v, c, ops)
		if err != nil {
			return 0, fmt.Errorf("variant %d: %w", v, err)
		}
		total += d
	}
	return total, nil
}
