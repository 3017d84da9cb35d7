// Package workload allocates host operands for calls read from a bench log.
package workload

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/numerics"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// DefaultLimit caps the elements allocated for a single operand.
const DefaultLimit = 1 << 28

// Allocation errors.
var (
	ErrTooLarge    = errors.New("workload: operand too large")
	ErrUnsupported = errors.New("workload: unsupported datatype")
	ErrNegative    = errors.New("workload: negative batch count")
)

// Regions returns every operand region c touches, inputs first, each
// operand once.
func Regions(c *blas.Call) []numerics.Region {
	var out []numerics.Region
	seen := map[byte]bool{}
	for _, input := range []bool{true, false} {
		for _, r := range numerics.Regions(c, input) {
			if !seen[r.Operand] {
				seen[r.Operand] = true
				out = append(out, r)
			}
		}
	}
	return out
}

// Datatype returns the element type stored in operand op of c.
func Datatype(c *blas.Call, op byte) blas.Datatype {
	switch op {
	case 'B':
		return c.B
	case 'C':
		return c.C
	case 'D':
		return c.D
	}
	return c.A
}

// Allocate returns a buffer holding region r of c, laid out for the call
// variant and filled with values from rng.
func Allocate[T blas.Element](c *blas.Call, r numerics.Region, rng *rand.Rand, limit int) (blas.Buffer, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	size := max(r.Extent(), 1)
	batch := c.Batch()
	if batch < 0 {
		return blas.Buffer{}, fmt.Errorf("%w: %c: batch %d", ErrNegative, r.Operand, batch)
	}
	switch c.Function.Variant {
	case blas.Batched:
		if size*batch > limit {
			return blas.Buffer{}, fmt.Errorf("%w: %c: %d x %d elements", ErrTooLarge, r.Operand, batch, size)
		}
		data := make([][]T, batch)
		for i := range data {
			data[i] = Random[T](size, rng)
		}
		return blas.Buffer{Data: data}, nil
	case blas.StridedBatched:
		size = max(size, r.Stride*(batch-1)+size)
	}
	if size > limit {
		return blas.Buffer{}, fmt.Errorf("%w: %c: %d elements", ErrTooLarge, r.Operand, size)
	}
	return blas.Buffer{Data: Random[T](size, rng)}, nil
}

// Operands allocates every buffer c reads or writes. Scalars carry the
// call's coefficients.
func Operands(c *blas.Call, rng *rand.Rand, limit int) (*blas.Operands, error) {
	ops := &blas.Operands{
		Alpha: blas.ScalarOf(c.Alpha),
		Beta:  blas.ScalarOf(c.Beta),
	}
	for _, r := range Regions(c) {
		buf, err := allocateAs(Datatype(c, r.Operand), c, r, rng, limit)
		if err != nil {
			return nil, err
		}
		set(ops, r.Operand, buf)
	}
	return ops, nil
}

func allocateAs(dt blas.Datatype, c *blas.Call, r numerics.Region, rng *rand.Rand, limit int) (blas.Buffer, error) {
	switch dt {
	case blas.F16R:
		return Allocate[float16.Float16](c, r, rng, limit)
	case blas.BF16R:
		return Allocate[bfloat16.BFloat16](c, r, rng, limit)
	case blas.F32R:
		return Allocate[float32](c, r, rng, limit)
	case blas.F64R:
		return Allocate[float64](c, r, rng, limit)
	case blas.F32C:
		return Allocate[complex64](c, r, rng, limit)
	case blas.F64C:
		return Allocate[complex128](c, r, rng, limit)
	case blas.I8R:
		return Allocate[int8](c, r, rng, limit)
	case blas.I32R:
		return Allocate[int32](c, r, rng, limit)
	}
	return blas.Buffer{}, fmt.Errorf("%w: %s", ErrUnsupported, dt)
}

func set(ops *blas.Operands, op byte, buf blas.Buffer) {
	switch op {
	case 'A':
		ops.A = buf
	case 'B':
		ops.B = buf
	case 'C':
		ops.C = buf
	case 'D':
		ops.D = buf
	case 'X':
		ops.X = buf
	case 'Y':
		ops.Y = buf
	}
}

// Random returns n values in [-1, 1), or small integers for integer types.
func Random[T blas.Element](n int, rng *rand.Rand) []T {
	dt := blas.DatatypeOf[T]()
	scale := 1.0
	if dt == blas.I8R || dt == blas.I32R {
		scale = 4
	}
	out := make([]T, n)
	for i := range out {
		re := (rng.Float64()*2 - 1) * scale
		im := 0.0
		if dt.IsComplex() {
			im = rng.Float64()*2 - 1
		}
		out[i] = blas.FromComplex[T](complex(re, im))
	}
	return out
}
