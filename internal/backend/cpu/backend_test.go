package cpu

import (
	"context"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	b := New(Config{Workers: 4, Log: zerolog.Nop()})
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func randComplex(r *rand.Rand, n int, complexValues bool) []complex128 {
	out := make([]complex128, n)
	for i := range out {
		re := r.Float64()*2 - 1
		im := 0.0
		if complexValues {
			im = r.Float64()*2 - 1
		}
		out[i] = complex(re, im)
	}
	return out
}

func convert[T blas.Element](src []complex128) []T {
	out := make([]T, len(src))
	for i, v := range src {
		out[i] = blas.FromComplex[T](v)
	}
	return out
}

func widen[T blas.Element](src []T) []complex128 {
	out := make([]complex128, len(src))
	for i, v := range src {
		out[i] = blas.ToComplex(v)
	}
	return out
}

// opAt returns element (i, j) of op(A) for a column-major A.
func opAt(a []complex128, ld int, trans blas.Operation, i, j int) complex128 {
	switch trans {
	case blas.Trans:
		return a[j+i*ld]
	case blas.ConjTrans:
		return cmplx.Conj(a[j+i*ld])
	default:
		return a[i+j*ld]
	}
}

func refGemm(c *blas.Call, a, b, cIn []complex128) []complex128 {
	out := make([]complex128, len(cIn))
	copy(out, cIn)
	for j := range c.N {
		for i := range c.M {
			var sum complex128
			for l := range c.K {
				sum += opAt(a, c.LDA, c.TransA, i, l) * opAt(b, c.LDB, c.TransB, l, j)
			}
			out[i+j*c.LDC] = c.Alpha*sum + c.Beta*cIn[i+j*c.LDC]
		}
	}
	return out
}

func assertClose(t *testing.T, want, got []complex128, tol float64, msg string) {
	t.Helper()
	require.Len(t, got, len(want), msg)
	for i := range want {
		if cmplx.Abs(want[i]-got[i]) > tol*(1+cmplx.Abs(want[i])) {
			t.Fatalf("%s: element %d: want %v, got %v", msg, i, want[i], got[i])
		}
	}
}

func gemmCall(dt blas.Datatype, m, n, k int, ta, tb blas.Operation) *blas.Call {
	c := blas.NewCall()
	c.Name = "gemm"
	c.Function = blas.Function{Family: blas.Gemm}
	c.A, c.B, c.C, c.D, c.Compute = dt, dt, dt, dt, dt
	c.M, c.N, c.K = m, n, k
	c.TransA, c.TransB = ta, tb
	c.LDA = 3
	if ta == blas.NoTrans {
		c.LDA += m
	} else {
		c.LDA += k
	}
	c.LDB = 1
	if tb == blas.NoTrans {
		c.LDB += k
	} else {
		c.LDB += n
	}
	c.LDC, c.LDD = m+2, m+2
	return c
}

func cols(trans blas.Operation, r, k int) int {
	if trans == blas.NoTrans {
		return k
	}
	return r
}

func TestBackend_Name(t *testing.T) {
	b := newTestBackend(t)
	assert.Equal(t, "cpu", b.Name())
	assert.NotEmpty(t, b.Features().Arch)
	assert.Contains(t, b.VariantNames(), "naive")
	assert.Equal(t, "gonum", b.VariantNames()[len(b.VariantNames())-1])
}

func TestCandidates(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	all := len(b.VariantNames())

	got, err := b.Candidates(ctx, gemmCall(blas.F32R, 4, 4, 4, blas.NoTrans, blas.NoTrans))
	require.NoError(t, err)
	assert.Len(t, got, all)
	assert.Equal(t, 0, got[0])

	half := gemmCall(blas.F16R, 4, 4, 4, blas.NoTrans, blas.NoTrans)
	half.Compute = blas.F32R
	got, err = b.Candidates(ctx, half)
	require.NoError(t, err)
	assert.Len(t, got, all-1)

	bad := gemmCall(blas.F32R, 4, 4, 4, blas.NoTrans, blas.NoTrans)
	bad.Compute = blas.F64R
	_, err = b.Candidates(ctx, bad)
	assert.ErrorIs(t, err, kernel.ErrNotImplemented)

	herk := blas.NewCall()
	herk.Function = blas.Function{Family: blas.Herk}
	got, err = b.Candidates(ctx, herk)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, got)
}

func TestGemm_VariantsMatchReference(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	r := rand.New(rand.NewPCG(1, 2))

	tests := []struct {
		name   string
		dt     blas.Datatype
		ta, tb blas.Operation
		tol    float64
	}{
		{"f32 NN", blas.F32R, blas.NoTrans, blas.NoTrans, 1e-4},
		{"f32 TN", blas.F32R, blas.Trans, blas.NoTrans, 1e-4},
		{"f64 NT", blas.F64R, blas.NoTrans, blas.Trans, 1e-10},
		{"c64 CN", blas.F32C, blas.ConjTrans, blas.NoTrans, 1e-4},
		{"c128 TC", blas.F64C, blas.Trans, blas.ConjTrans, 1e-10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := gemmCall(tt.dt, 37, 29, 41, tt.ta, tt.tb)
			c.Alpha, c.Beta = 1.5, -0.5
			if tt.dt.IsComplex() {
				c.Alpha, c.Beta = complex(0.5, 1), complex(-0.25, 0.5)
			}
			a := randComplex(r, c.LDA*cols(tt.ta, c.M, c.K), tt.dt.IsComplex())
			bm := randComplex(r, c.LDB*cols(tt.tb, c.K, c.N), tt.dt.IsComplex())
			cIn := randComplex(r, c.LDC*c.N, tt.dt.IsComplex())

			// Reference on values already rounded to the element type.
			var round func([]complex128) []complex128
			switch tt.dt {
			case blas.F32R:
				round = func(v []complex128) []complex128 { return widen(convert[float32](v)) }
			case blas.F32C:
				round = func(v []complex128) []complex128 { return widen(convert[complex64](v)) }
			default:
				round = func(v []complex128) []complex128 { return v }
			}
			want := refGemm(c, round(a), round(bm), round(cIn))

			candidates, err := b.Candidates(ctx, c)
			require.NoError(t, err)
			for _, v := range candidates {
				var ops *blas.Operands
				var got func() []complex128
				switch tt.dt {
				case blas.F32R:
					out := convert[float32](cIn)
					ops = &blas.Operands{A: blas.Buffer{Data: convert[float32](a)}, B: blas.Buffer{Data: convert[float32](bm)}, C: blas.Buffer{Data: out}}
					got = func() []complex128 { return widen(out) }
				case blas.F64R:
					out := convert[float64](cIn)
					ops = &blas.Operands{A: blas.Buffer{Data: convert[float64](a)}, B: blas.Buffer{Data: convert[float64](bm)}, C: blas.Buffer{Data: out}}
					got = func() []complex128 { return widen(out) }
				case blas.F32C:
					out := convert[complex64](cIn)
					ops = &blas.Operands{A: blas.Buffer{Data: convert[complex64](a)}, B: blas.Buffer{Data: convert[complex64](bm)}, C: blas.Buffer{Data: out}}
					got = func() []complex128 { return widen(out) }
				case blas.F64C:
					out := append([]complex128(nil), cIn...)
					ops = &blas.Operands{A: blas.Buffer{Data: a}, B: blas.Buffer{Data: bm}, C: blas.Buffer{Data: out}}
					got = func() []complex128 { return out }
				}
				ops.Alpha, ops.Beta = blas.ScalarOf(c.Alpha), blas.ScalarOf(c.Beta)

				_, err := b.Execute(ctx, v, c, ops)
				require.NoError(t, err, b.VariantNames()[v])
				assertClose(t, want, got(), tt.tol, b.VariantNames()[v])
			}
		})
	}
}

func TestGemm_MixedPrecision(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	t.Run("f16 in f32 out", func(t *testing.T) {
		c := gemmCall(blas.F16R, 5, 6, 7, blas.NoTrans, blas.NoTrans)
		c.C, c.D, c.Compute = blas.F32R, blas.F32R, blas.F32R
		c.Function.Ex = true
		c.Beta = 1

		r := rand.New(rand.NewPCG(3, 4))
		a := widen(convert[float16.Float16](randComplex(r, c.LDA*c.K, false)))
		bm := widen(convert[float16.Float16](randComplex(r, c.LDB*c.N, false)))
		cIn := widen(convert[float32](randComplex(r, c.LDC*c.N, false)))
		want := refGemm(c, a, bm, cIn)

		for v := range len(b.VariantNames()) - 1 {
			d := make([]float32, c.LDD*c.N)
			ops := &blas.Operands{
				Alpha: blas.ScalarOf(1), Beta: blas.ScalarOf(1),
				A: blas.Buffer{Data: convert[float16.Float16](a)},
				B: blas.Buffer{Data: convert[float16.Float16](bm)},
				C: blas.Buffer{Data: convert[float32](cIn)},
				D: blas.Buffer{Data: d},
			}
			_, err := b.Execute(ctx, v, c, ops)
			require.NoError(t, err)

			got := widen(d)
			for j := range c.N {
				for i := range c.M {
					assert.InDelta(t, real(want[i+j*c.LDC]), real(got[i+j*c.LDD]), 1e-4)
				}
			}
		}
	})

	t.Run("int8 in int32 out", func(t *testing.T) {
		c := gemmCall(blas.I8R, 3, 2, 4, blas.NoTrans, blas.Trans)
		c.C, c.D, c.Compute = blas.I32R, blas.I32R, blas.I32R
		c.LDA, c.LDB, c.LDC = 3, 2, 3
		a := []int8{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
		bm := []int8{1, -1, 2, -2, 3, -3, 4, -4}
		want := refGemm(c, widen(a), widen(bm), make([]complex128, 6))

		for v := range len(b.VariantNames()) - 1 {
			out := make([]int32, 6)
			ops := &blas.Operands{
				Alpha: blas.ScalarOf(1), Beta: blas.ScalarOf(0),
				A: blas.Buffer{Data: a}, B: blas.Buffer{Data: bm}, C: blas.Buffer{Data: out},
			}
			_, err := b.Execute(ctx, v, c, ops)
			require.NoError(t, err)
			assert.Equal(t, want, widen(out))
		}
	})
}

func TestGemm_Batched(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()

	c := gemmCall(blas.F32R, 2, 2, 2, blas.NoTrans, blas.NoTrans)
	c.LDA, c.LDB, c.LDC = 2, 2, 2

	t.Run("batched", func(t *testing.T) {
		bc := *c
		bc.Function.Variant = blas.Batched
		bc.BatchCount = 2
		out := [][]float32{make([]float32, 4), make([]float32, 4)}
		ops := &blas.Operands{
			Alpha: blas.ScalarOf(1), Beta: blas.ScalarOf(0),
			A: blas.Buffer{Data: [][]float32{{1, 0, 0, 1}, {2, 0, 0, 2}}},
			B: blas.Buffer{Data: [][]float32{{1, 2, 3, 4}, {1, 2, 3, 4}}},
			C: blas.Buffer{Data: out},
		}
		_, err := b.Execute(ctx, 0, &bc, ops)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3, 4}, out[0])
		assert.Equal(t, []float32{2, 4, 6, 8}, out[1])
	})

	t.Run("strided", func(t *testing.T) {
		sc := *c
		sc.Function.Variant = blas.StridedBatched
		sc.BatchCount = 2
		sc.StrideA, sc.StrideB, sc.StrideC = 4, 0, 5
		out := make([]float32, 9)
		ops := &blas.Operands{
			Alpha: blas.ScalarOf(1), Beta: blas.ScalarOf(0),
			A: blas.Buffer{Data: []float32{1, 0, 0, 1, 3, 0, 0, 3}},
			B: blas.Buffer{Data: []float32{1, 2, 3, 4}},
			C: blas.Buffer{Data: out},
		}
		_, err := b.Execute(ctx, 1, &sc, ops)
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 2, 3, 4, 0, 3, 6, 9, 12}, out)
	})
}

func TestGemm_KZeroScalesC(t *testing.T) {
	b := newTestBackend(t)
	c := gemmCall(blas.F64R, 2, 2, 0, blas.NoTrans, blas.NoTrans)
	c.LDA, c.LDB, c.LDC = 2, 1, 2

	for _, beta := range []complex128{1, 2} {
		out := []float64{1, 2, 3, 4}
		ops := &blas.Operands{Alpha: blas.ScalarOf(1), Beta: blas.ScalarOf(beta), C: blas.Buffer{Data: out}}
		_, err := b.Execute(context.Background(), 0, c, ops)
		require.NoError(t, err)
		assert.Equal(t, []float64{real(beta), 2 * real(beta), 3 * real(beta), 4 * real(beta)}, out)
	}
}

func TestExecute_Errors(t *testing.T) {
	b := newTestBackend(t)
	ctx := context.Background()
	c := gemmCall(blas.F32R, 2, 2, 2, blas.NoTrans, blas.NoTrans)

	_, err := b.Execute(ctx, 99, c, blas.ReservedOperands(c))
	assert.ErrorIs(t, err, kernel.ErrUnknownVariant)

	_, err = b.Execute(ctx, 0, c, blas.ReservedOperands(c))
	assert.ErrorIs(t, err, blas.InvalidPointer)

	// Short buffers make the kernel panic; the panic comes back as an error.
	short := &blas.Operands{
		Alpha: blas.ScalarOf(1), Beta: blas.ScalarOf(0),
		A: blas.Buffer{Data: []float32{1}}, B: blas.Buffer{Data: []float32{1}}, C: blas.Buffer{Data: []float32{0}},
	}
	_, err = b.Execute(ctx, 0, c, short)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kernel panic")

	gemmt := *c
	gemmt.Function.Family = blas.Gemmt
	_, err = b.Execute(ctx, 0, &gemmt, short)
	assert.ErrorIs(t, err, kernel.ErrNotImplemented)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = b.Execute(cancelled, 0, c, short)
	assert.ErrorIs(t, err, context.Canceled)
}
