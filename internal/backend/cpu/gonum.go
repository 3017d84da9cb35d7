package cpu

import (
	"fmt"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
	gblas "gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/gonum"
)

// gonum's BLAS is row-major. A column-major m-by-n matrix with leading
// dimension ld is the row-major n-by-m matrix of its transpose, so every
// call below swaps dimensions and flips uplo, side and transposition.

var impl gonum.Implementation

type gonumElem interface {
	float32 | float64 | complex64 | complex128
}

// routines binds the gonum entry points of one element type.
type routines[T gonumElem] struct {
	gemm  func(tA, tB gblas.Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int)
	gemv  func(tA gblas.Transpose, m, n int, alpha T, a []T, lda int, x []T, incX int, beta T, y []T, incY int)
	gbmv  func(tA gblas.Transpose, m, n, kL, kU int, alpha T, a []T, lda int, x []T, incX int, beta T, y []T, incY int)
	geru  func(m, n int, alpha T, x []T, incX int, y []T, incY int, a []T, lda int)
	syrk  func(ul gblas.Uplo, t gblas.Transpose, n, k int, alpha T, a []T, lda int, beta T, c []T, ldc int)
	syr2k func(ul gblas.Uplo, t gblas.Transpose, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int)
	trsm  func(s gblas.Side, ul gblas.Uplo, tA gblas.Transpose, d gblas.Diag, m, n int, alpha T, a []T, lda int, b []T, ldb int)
	spr   func(ul gblas.Uplo, n int, alpha T, x []T, incX int, ap []T)
}

var (
	f32Routines = routines[float32]{impl.Sgemm, impl.Sgemv, impl.Sgbmv, impl.Sger, impl.Ssyrk, impl.Ssyr2k, impl.Strsm, impl.Sspr}
	f64Routines = routines[float64]{impl.Dgemm, impl.Dgemv, impl.Dgbmv, impl.Dger, impl.Dsyrk, impl.Dsyr2k, impl.Dtrsm, impl.Dspr}
	c64Routines = routines[complex64]{impl.Cgemm, impl.Cgemv, impl.Cgbmv, impl.Cgeru, impl.Csyrk, impl.Csyr2k, impl.Ctrsm, symPacked[complex64]}
	z64Routines = routines[complex128]{impl.Zgemm, impl.Zgemv, impl.Zgbmv, impl.Zgeru, impl.Zsyrk, impl.Zsyr2k, impl.Ztrsm, symPacked[complex128]}
)

// hermitian binds the Hermitian routines; herk and her2k take real
// scalars of type R.
type hermitian[T complex64 | complex128, R float32 | float64] struct {
	herk  func(ul gblas.Uplo, t gblas.Transpose, n, k int, alpha R, a []T, lda int, beta R, c []T, ldc int)
	her2k func(ul gblas.Uplo, t gblas.Transpose, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta R, c []T, ldc int)
	hemv  func(ul gblas.Uplo, n int, alpha T, a []T, lda int, x []T, incX int, beta T, y []T, incY int)
}

var (
	c64Hermitian = hermitian[complex64, float32]{impl.Cherk, impl.Cher2k, impl.Chemv}
	z64Hermitian = hermitian[complex128, float64]{impl.Zherk, impl.Zher2k, impl.Zhemv}
)

// symPacked is the complex symmetric packed rank-1 update gonum lacks:
// ap += alpha*x*x^T over the ul triangle of a row-major packed n-by-n
// matrix.
func symPacked[T complex64 | complex128](ul gblas.Uplo, n int, alpha T, x []T, incX int, ap []T) {
	k := 0
	for i := range n {
		lo, hi := 0, i+1
		if ul == gblas.Upper {
			lo, hi = i, n
		}
		xi := alpha * x[vecIndex(i, n, incX)]
		for j := lo; j < hi; j++ {
			ap[k] += xi * x[vecIndex(j, n, incX)]
			k++
		}
	}
}

func transpose(op blas.Operation) gblas.Transpose {
	switch op {
	case blas.Trans:
		return gblas.Trans
	case blas.ConjTrans:
		return gblas.ConjTrans
	default:
		return gblas.NoTrans
	}
}

// flipTrans maps op(A) on a column-major matrix to the transposition the
// row-major view needs. conjugate picks ConjTrans over Trans.
func flipTrans(op blas.Operation, conjugate bool) gblas.Transpose {
	if op != blas.NoTrans {
		return gblas.NoTrans
	}
	if conjugate {
		return gblas.ConjTrans
	}
	return gblas.Trans
}

func flipUplo(f blas.Fill) gblas.Uplo {
	if f == blas.Upper {
		return gblas.Lower
	}
	return gblas.Upper
}

func flipSide(s blas.Side) gblas.Side {
	if s == blas.Left {
		return gblas.Right
	}
	return gblas.Left
}

func diag(d blas.Diagonal) gblas.Diag {
	if d == blas.Unit {
		return gblas.Unit
	}
	return gblas.NonUnit
}

// vendorGemm runs gonum's gemm over uniformly typed operands.
func vendorGemm(c *blas.Call, alpha, beta complex128, a, b, out any, ldc int) {
	switch a := a.(type) {
	case []float32:
		gemmVia(f32Routines, c, alpha, beta, a, b.([]float32), out.([]float32), ldc)
	case []float64:
		gemmVia(f64Routines, c, alpha, beta, a, b.([]float64), out.([]float64), ldc)
	case []complex64:
		gemmVia(c64Routines, c, alpha, beta, a, b.([]complex64), out.([]complex64), ldc)
	case []complex128:
		gemmVia(z64Routines, c, alpha, beta, a, b.([]complex128), out.([]complex128), ldc)
	}
}

func gemmVia[T gonumElem](r routines[T], c *blas.Call, alpha, beta complex128, a, b, out []T, ldc int) {
	r.gemm(transpose(c.TransB), transpose(c.TransA), c.N, c.M, c.K,
		blas.FromComplex[T](alpha), b, c.LDB, a, c.LDA, blas.FromComplex[T](beta), out, ldc)
}

// runLevel executes the non-GEMM families through gonum.
func runLevel(c *blas.Call, ops *blas.Operands) error {
	var data any
	switch c.Function.Family {
	case blas.Gemv, blas.Gbmv, blas.Hemv:
		data = ops.Y.Data
	case blas.Ger, blas.Geru, blas.Gerc, blas.Spr:
		data = ops.A.Data
	case blas.Trsm:
		data = ops.B.Data
	default:
		data = ops.C.Data
	}

	switch data.(type) {
	case []float32, [][]float32:
		return level(f32Routines, c, ops)
	case []float64, [][]float64:
		return level(f64Routines, c, ops)
	case []complex64, [][]complex64:
		if isHermitian(c.Function.Family) {
			return levelHermitian(c64Hermitian, c, ops)
		}
		return level(c64Routines, c, ops)
	case []complex128, [][]complex128:
		if isHermitian(c.Function.Family) {
			return levelHermitian(z64Hermitian, c, ops)
		}
		return level(z64Routines, c, ops)
	}
	return fmt.Errorf("%s on %T: %w", c.Function, data, kernel.ErrNotImplemented)
}

func isHermitian(f blas.Family) bool {
	return f == blas.Herk || f == blas.Her2k || f == blas.Hemv
}

func level[T gonumElem](r routines[T], c *blas.Call, ops *blas.Operands) error {
	alpha := blas.FromComplex[T](ops.Alpha.Value())
	beta := blas.FromComplex[T](ops.Beta.Value())
	_, complexT := any(alpha).(complex64)
	if _, ok := any(alpha).(complex128); ok {
		complexT = true
	}

	for p := range c.Batch() {
		a := blas.Slice[T](ops.A, p, c.StrideA)
		b := blas.Slice[T](ops.B, p, c.StrideB)
		cs := blas.Slice[T](ops.C, p, c.StrideC)
		x := blas.Slice[T](ops.X, p, c.StrideX)
		y := blas.Slice[T](ops.Y, p, c.StrideY)

		switch c.Function.Family {
		case blas.Gemv, blas.Gbmv:
			if y == nil {
				return fmt.Errorf("%s: y: %w", c.Function.Family, blas.InvalidPointer)
			}
			ly := c.M
			if c.TransA != blas.NoTrans {
				ly = c.N
			}
			if alpha == 0 {
				scaleVec(y, ly, c.IncY, beta)
				continue
			}
			// The row-major view of a band matrix is the band storage of
			// its transpose with kl and ku swapped.
			mv := func(t gblas.Transpose, alpha T, x []T, beta T) {
				if c.Function.Family == blas.Gbmv {
					r.gbmv(t, c.N, c.M, c.KU, c.KL, alpha, a, c.LDA, x, c.IncX, beta, y, c.IncY)
					return
				}
				r.gemv(t, c.N, c.M, alpha, a, c.LDA, x, c.IncX, beta, y, c.IncY)
			}
			if c.TransA == blas.ConjTrans && complexT {
				// A^H x = conj(A^T conj(x)), and A^T is the row-major view.
				xc := conjCopy(x, c.M, c.IncX)
				conjVec(y, ly, c.IncY)
				mv(gblas.NoTrans, conj(alpha), xc, conj(beta))
				conjVec(y, ly, c.IncY)
				continue
			}
			mv(flipTrans(c.TransA, false), alpha, x, beta)

		case blas.Ger, blas.Geru:
			r.geru(c.N, c.M, alpha, y, c.IncY, x, c.IncX, a, c.LDA)

		case blas.Gerc:
			r.geru(c.N, c.M, alpha, conjCopy(y, c.N, c.IncY), c.IncY, x, c.IncX, a, c.LDA)

		case blas.Spr:
			if alpha == 0 {
				continue
			}
			// Column-major upper packed storage is row-major lower packed.
			r.spr(flipUplo(c.Uplo), c.N, alpha, x, c.IncX, a)

		case blas.Gemmt:
			if c.K == 0 || alpha == 0 {
				scaleTriangle(cs, c.LDC, c.N, c.Uplo, beta)
				continue
			}
			prod := make([]T, c.N*c.N)
			r.gemm(transpose(c.TransB), transpose(c.TransA), c.N, c.N, c.K, alpha, b, c.LDB, a, c.LDA, 0, prod, c.N)
			addTriangle(cs, c.LDC, c.N, c.Uplo, prod, beta)

		case blas.Syrk, blas.Syr2k:
			if c.K == 0 || alpha == 0 {
				scaleTriangle(cs, c.LDC, c.N, c.Uplo, beta)
				continue
			}
			if c.Function.Family == blas.Syrk {
				r.syrk(flipUplo(c.Uplo), flipTrans(c.TransA, false), c.N, c.K, alpha, a, c.LDA, beta, cs, c.LDC)
			} else {
				r.syr2k(flipUplo(c.Uplo), flipTrans(c.TransA, false), c.N, c.K, alpha, a, c.LDA, b, c.LDB, beta, cs, c.LDC)
			}

		case blas.Trsm:
			if alpha == 0 {
				for j := range c.N {
					clear(b[j*c.LDB : j*c.LDB+c.M])
				}
				continue
			}
			r.trsm(flipSide(c.Side), flipUplo(c.Uplo), transpose(c.TransA), diag(c.Diag), c.N, c.M, alpha, a, c.LDA, b, c.LDB)

		default:
			return fmt.Errorf("%s: %w", c.Function, kernel.ErrNotImplemented)
		}
	}
	return nil
}

func levelHermitian[T complex64 | complex128, R float32 | float64](h hermitian[T, R], c *blas.Call, ops *blas.Operands) error {
	alpha := blas.FromComplex[T](ops.Alpha.Value())
	beta := R(real(ops.Beta.Value()))

	for p := range c.Batch() {
		a := blas.Slice[T](ops.A, p, c.StrideA)
		if c.Function.Family == blas.Hemv {
			if err := hemv(h, c, ops, p, alpha, a); err != nil {
				return err
			}
			continue
		}
		b := blas.Slice[T](ops.B, p, c.StrideB)
		cs := blas.Slice[T](ops.C, p, c.StrideC)

		if c.K == 0 || alpha == 0 {
			scaleTriangle(cs, c.LDC, c.N, c.Uplo, blas.FromComplex[T](complex(real(ops.Beta.Value()), 0)))
			continue
		}
		if c.Function.Family == blas.Herk {
			h.herk(flipUplo(c.Uplo), flipTrans(c.TransA, true), c.N, c.K, R(real(ops.Alpha.Value())), a, c.LDA, beta, cs, c.LDC)
		} else {
			// The row-major view holds conj(C); swapping A and B keeps
			// alpha unconjugated.
			h.her2k(flipUplo(c.Uplo), flipTrans(c.TransA, true), c.N, c.K, alpha, b, c.LDB, a, c.LDA, beta, cs, c.LDC)
		}
	}
	return nil
}

func hemv[T complex64 | complex128, R float32 | float64](h hermitian[T, R], c *blas.Call, ops *blas.Operands, p int, alpha T, a []T) error {
	beta := blas.FromComplex[T](ops.Beta.Value())
	x := blas.Slice[T](ops.X, p, c.StrideX)
	y := blas.Slice[T](ops.Y, p, c.StrideY)
	if y == nil {
		return fmt.Errorf("hemv: y: %w", blas.InvalidPointer)
	}
	if alpha == 0 {
		scaleVec(y, c.N, c.IncY, beta)
		return nil
	}
	// The row-major view of a Hermitian A is conj(A), so
	// A x = conj(conj(A) conj(x)).
	xc := conjCopy(x, c.N, c.IncX)
	conjVec(y, c.N, c.IncY)
	h.hemv(flipUplo(c.Uplo), c.N, conj(alpha), a, c.LDA, xc, c.IncX, conj(beta), y, c.IncY)
	conjVec(y, c.N, c.IncY)
	return nil
}

// addTriangle sets the uplo triangle of the column-major n-by-n matrix c to
// p + beta*c, where p has leading dimension n.
func addTriangle[T gonumElem](c []T, ldc, n int, uplo blas.Fill, p []T, beta T) {
	for j := range n {
		lo, hi := 0, j+1
		if uplo == blas.Lower {
			lo, hi = j, n
		}
		for i := lo; i < hi; i++ {
			v := p[i+j*n]
			if beta != 0 {
				v += beta * c[i+j*ldc]
			}
			c[i+j*ldc] = v
		}
	}
}

// scaleTriangle multiplies the uplo triangle of the column-major n-by-n
// matrix c by beta.
func scaleTriangle[T gonumElem](c []T, ldc, n int, uplo blas.Fill, beta T) {
	if beta == 1 {
		return
	}
	for j := range n {
		lo, hi := 0, j+1
		if uplo == blas.Lower {
			lo, hi = j, n
		}
		for i := lo; i < hi; i++ {
			if beta == 0 {
				c[i+j*ldc] = 0
			} else {
				c[i+j*ldc] *= beta
			}
		}
	}
}

func vecIndex(i, n, inc int) int {
	if inc < 0 {
		return (n - 1 - i) * -inc
	}
	return i * inc
}

func scaleVec[T gonumElem](y []T, n, inc int, beta T) {
	for i := range n {
		k := vecIndex(i, n, inc)
		if beta == 0 {
			y[k] = 0
		} else {
			y[k] *= beta
		}
	}
}

func conjVec[T gonumElem](y []T, n, inc int) {
	for i := range n {
		k := vecIndex(i, n, inc)
		y[k] = conj(y[k])
	}
}

// conjCopy returns the conjugate of the first 1+(n-1)*|inc| elements of x.
func conjCopy[T gonumElem](x []T, n, inc int) []T {
	if x == nil || n == 0 {
		return x
	}
	out := make([]T, 1+(n-1)*abs(inc))
	for i := range out {
		out[i] = conj(x[i])
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
