package tune

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/workload"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

type (
	float16T  = float16.Float16
	bfloat16T = bfloat16.BFloat16
)

// gemmCase allocates GEMM operands with inputs of type Ti and outputs of
// type To. Tc is the accumulation type the backend reports against.
type gemmCase[Ti, To, Tc blas.Element] struct{}

func (g gemmCase[Ti, To, Tc]) tune(ctx context.Context, t *Tuner, c *blas.Call, fp Fingerprint) (int, error) {
	ops, err := g.operands(c, t.rng, t.opts.MaxElements)
	if err != nil {
		t.log.Warn().Err(err).Str("fingerprint", fp.Key()).Msg("cannot allocate operands")
		return NoSolution, nil
	}
	t.log.Debug().
		Str("fingerprint", fp.Key()).
		Stringer("compute", blas.DatatypeOf[Tc]()).
		Msg("benchmarking")
	return t.benchmark(ctx, c, fp, ops)
}

// operands allocates and fills every buffer the call reads or writes.
func (gemmCase[Ti, To, Tc]) operands(c *blas.Call, rng *rand.Rand, limit int) (*blas.Operands, error) {
	ops := &blas.Operands{
		Alpha: blas.ScalarOf(c.Alpha),
		Beta:  blas.ScalarOf(c.Beta),
	}
	for _, r := range workload.Regions(c) {
		var (
			buf blas.Buffer
			err error
		)
		switch r.Operand {
		case 'A', 'B':
			buf, err = workload.Allocate[Ti](c, r, rng, limit)
		default:
			buf, err = workload.Allocate[To](c, r, rng, limit)
		}
		if err != nil {
			return nil, fmt.Errorf("allocate: %w", err)
		}
		switch r.Operand {
		case 'A':
			ops.A = buf
		case 'B':
			ops.B = buf
		case 'C':
			ops.C = buf
		case 'D':
			ops.D = buf
		}
	}
	return ops, nil
}
