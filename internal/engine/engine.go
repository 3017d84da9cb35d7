// Package engine executes calls: it validates the arguments, guards the
// operands for non-finite values and hands the call to a kernel backend.
package engine

import (
	"context"
	"reflect"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/born-ml/blastune/internal/numerics"
	"github.com/born-ml/blastune/internal/validate"
	"github.com/rs/zerolog"
)

// Handle carries the execution state shared by calls: backend, pointer
// mode and numeric guard. A Handle is not safe for concurrent use.
type Handle struct {
	backend kernel.Backend
	mode    blas.PointerMode
	checks  numerics.Mode
	guard   *numerics.Guard
	log     zerolog.Logger
}

// Option configures a Handle.
type Option func(*Handle)

// WithPointerMode sets where scalars live.
func WithPointerMode(m blas.PointerMode) Option {
	return func(h *Handle) { h.mode = m }
}

// WithCheckNumerics enables the numeric guard.
func WithCheckNumerics(m numerics.Mode) Option {
	return func(h *Handle) { h.checks = m }
}

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handle) { h.log = log }
}

// New creates a handle over backend.
func New(backend kernel.Backend, opts ...Option) *Handle {
	h := &Handle{
		backend: backend,
		mode:    blas.PointerHost,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.guard = numerics.New(h.checks, h.log)
	return h
}

// PointerMode returns the scalar pointer mode.
func (h *Handle) PointerMode() blas.PointerMode { return h.mode }

// SetPointerMode changes the scalar pointer mode.
func (h *Handle) SetPointerMode(m blas.PointerMode) { h.mode = m }

// CheckNumerics returns the numeric guard mode.
func (h *Handle) CheckNumerics() numerics.Mode { return h.checks }

// Backend returns the kernel backend.
func (h *Handle) Backend() kernel.Backend { return h.backend }

// Validate returns the validator's verdict for c under the handle's
// pointer mode.
func (h *Handle) Validate(c *blas.Call, ops *blas.Operands) blas.Status {
	if h == nil || h.backend == nil {
		return blas.InvalidHandle
	}
	return validate.Check(c, ops, h.mode)
}

// Run validates and executes c. Quick returns and rejections never reach
// the backend. GEMM calls run the variant named by c.Solution.
func (h *Handle) Run(ctx context.Context, c *blas.Call, ops *blas.Operands) blas.Status {
	if h == nil {
		return blas.InvalidHandle
	}
	st := h.Validate(c, ops)
	if st != blas.Continue {
		if st != blas.Success {
			h.log.Debug().Object("call", c).Stringer("status", st).Msg("call rejected")
		}
		return st
	}

	if ops == nil {
		ops = &blas.Operands{}
	}
	ops = normalize(ops)
	if st := h.guard.Check(c, ops, true); st != blas.Success {
		return st
	}

	variant := 0
	if c.Function.Family == blas.Gemm {
		variant = c.Solution
	}
	if _, err := h.backend.Execute(ctx, variant, c, ops); err != nil {
		st := kernel.Status(err)
		h.log.Warn().Err(err).Str("function", c.Name).Stringer("status", st).Msg("execution failed")
		return st
	}

	return h.guard.Check(c, ops, false)
}

// Close releases the backend.
func (h *Handle) Close() error {
	if h == nil || h.backend == nil {
		return nil
	}
	return h.backend.Close()
}

// normalize folds buffer offsets into the slices so backends see every
// operand starting at element zero.
func normalize(ops *blas.Operands) *blas.Operands {
	out := *ops
	for _, b := range []*blas.Buffer{&out.A, &out.B, &out.C, &out.D, &out.X, &out.Y} {
		*b = rebase(*b)
	}
	return &out
}

func rebase(b blas.Buffer) blas.Buffer {
	if b.Offset == 0 || b.IsNull() || b.IsReserved() {
		return b
	}
	v := reflect.ValueOf(b.Data)
	if v.Kind() != reflect.Slice {
		return b
	}
	if v.Type().Elem().Kind() != reflect.Slice {
		if b.Offset > v.Len() {
			return b
		}
		return blas.Buffer{Data: v.Slice(b.Offset, v.Len()).Interface()}
	}

	// Batched: rebase every entry.
	entries := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
	for i := range v.Len() {
		e := v.Index(i)
		if b.Offset > e.Len() {
			return b
		}
		entries.Index(i).Set(e.Slice(b.Offset, e.Len()))
	}
	return blas.Buffer{Data: entries.Interface()}
}
