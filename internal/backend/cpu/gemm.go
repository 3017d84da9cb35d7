package cpu

import (
	"fmt"
	"math/cmplx"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/parallel"
)

// number is the set of types GEMM can accumulate in.
type number interface {
	float32 | float64 | complex64 | complex128 | int32
}

type algorithm uint8

const (
	algoBlocked algorithm = iota
	algoNaive
	algoAxpy
	algoVendor
)

// variant is one benchmarkable GEMM kernel.
type variant struct {
	name string
	algo algorithm
	tile int
}

// gemmKernel runs GEMM for one (input, output, compute) type triple.
type gemmKernel interface {
	run(v variant, c *blas.Call, ops *blas.Operands, par parallel.Config) error
	// vendor reports whether the gonum variant can serve the triple.
	vendor() bool
}

// gemmCase computes in Tc. Operands are converted to Tc once per call,
// the product is accumulated there, and the result is narrowed to To.
type gemmCase[Ti, To blas.Element, Tc number] struct{}

func (gemmCase[Ti, To, Tc]) vendor() bool {
	var i Ti
	var o To
	var acc Tc
	if _, ok := any(acc).(int32); ok {
		return false
	}
	_, sameIn := any(i).(Tc)
	_, sameOut := any(o).(Tc)
	return sameIn && sameOut
}

func (g gemmCase[Ti, To, Tc]) run(v variant, c *blas.Call, ops *blas.Operands, par parallel.Config) error {
	m, n, k := c.M, c.N, c.K
	alpha := blas.FromComplex[Tc](ops.Alpha.Value())
	beta := blas.FromComplex[Tc](ops.Beta.Value())

	widen := blas.Converter[Ti, Tc]()
	load := blas.Converter[To, Tc]()
	store := blas.Converter[Tc, To]()

	ldd, strideD, dBuf := c.LDC, c.StrideC, ops.C
	if c.Function.Ex {
		ldd, strideD, dBuf = c.LDD, c.StrideD, ops.D
	}

	for p := range c.Batch() {
		cs := blas.Slice[To](ops.C, p, c.StrideC)
		ds := blas.Slice[To](dBuf, p, strideD)
		if cs == nil || ds == nil {
			return fmt.Errorf("gemm: output operand: %w", blas.InvalidPointer)
		}

		if k == 0 || alpha == 0 {
			for j := range n {
				for i := range m {
					var x Tc
					if beta != 0 {
						x = beta * load(cs[i+j*c.LDC])
					}
					ds[i+j*ldd] = store(x)
				}
			}
			continue
		}

		as := blas.Slice[Ti](ops.A, p, c.StrideA)
		bs := blas.Slice[Ti](ops.B, p, c.StrideB)
		if as == nil || bs == nil {
			return fmt.Errorf("gemm: input operand: %w", blas.InvalidPointer)
		}

		if v.algo == algoVendor {
			if !g.vendor() {
				return fmt.Errorf("gemm: vendor kernel for %s: %w", blas.DatatypeOf[Ti](), errNoVariant)
			}
			if c.Function.Ex {
				for j := range n {
					copy(ds[j*ldd:j*ldd+m], cs[j*c.LDC:j*c.LDC+m])
				}
			}
			vendorGemm(c, ops.Alpha.Value(), ops.Beta.Value(), any(as), any(bs), any(ds), ldd)
			continue
		}

		a := pack(as, c.LDA, c.TransA, m, k, widen)
		b := pack(bs, c.LDB, c.TransB, k, n, widen)
		acc := make([]Tc, m*n)
		if beta != 0 {
			for j := range n {
				for i := range m {
					acc[i+j*m] = load(cs[i+j*c.LDC])
				}
			}
		}

		switch v.algo {
		case algoNaive:
			gemmNaive(m, n, k, alpha, a, b, beta, acc)
		case algoAxpy:
			gemmAxpy(m, n, k, alpha, a, b, beta, acc)
		default:
			gemmBlocked(m, n, k, alpha, a, b, beta, acc, v.tile, par)
		}

		for j := range n {
			for i := range m {
				ds[i+j*ldd] = store(acc[i+j*m])
			}
		}
	}
	return nil
}

// pack copies op(src) into a dense column-major rows-by-cols matrix in the
// compute type.
func pack[Ti blas.Element, Tc number](src []Ti, ld int, trans blas.Operation, rows, cols int, conv func(Ti) Tc) []Tc {
	out := make([]Tc, rows*cols)
	for j := range cols {
		for i := range rows {
			var x Tc
			if trans == blas.NoTrans {
				x = conv(src[i+j*ld])
			} else {
				x = conv(src[j+i*ld])
			}
			if trans == blas.ConjTrans {
				x = conj(x)
			}
			out[i+j*rows] = x
		}
	}
	return out
}

func conj[T any](v T) T {
	switch x := any(v).(type) {
	case complex64:
		return any(complex64(cmplx.Conj(complex128(x)))).(T)
	case complex128:
		return any(cmplx.Conj(x)).(T)
	}
	return v
}

// scaleCols multiplies columns [j0, j1) of the dense m-row matrix c by beta.
// A zero beta clears the columns without reading them.
func scaleCols[T number](c []T, m, j0, j1 int, beta T) {
	if beta == 1 {
		return
	}
	cols := c[j0*m : j1*m]
	for i := range cols {
		if beta == 0 {
			cols[i] = 0
		} else {
			cols[i] *= beta
		}
	}
}

// gemmNaive is the reference triple loop: one dot product per element.
func gemmNaive[T number](m, n, k int, alpha T, a, b []T, beta T, c []T) {
	for j := range n {
		for i := range m {
			var sum T
			for l := range k {
				sum += a[i+l*m] * b[l+j*k]
			}
			if beta == 0 {
				c[i+j*m] = alpha * sum
			} else {
				c[i+j*m] = alpha*sum + beta*c[i+j*m]
			}
		}
	}
}

// gemmAxpy accumulates columns of A into C, walking memory contiguously.
func gemmAxpy[T number](m, n, k int, alpha T, a, b []T, beta T, c []T) {
	scaleCols(c, m, 0, n, beta)
	for j := range n {
		col := c[j*m : (j+1)*m]
		for l := range k {
			t := alpha * b[l+j*k]
			if t == 0 {
				continue
			}
			al := a[l*m : (l+1)*m]
			for i := range col {
				col[i] += t * al[i]
			}
		}
	}
}

// gemmBlocked tiles all three loops. Column blocks of C are independent
// and run in parallel.
func gemmBlocked[T number](m, n, k int, alpha T, a, b []T, beta T, c []T, tile int, par parallel.Config) {
	if tile <= 0 {
		tile = 32
	}
	blocks := (n + tile - 1) / tile
	parallel.For(blocks, func(bj int) {
		j0 := bj * tile
		j1 := min(j0+tile, n)
		scaleCols(c, m, j0, j1, beta)
		for l0 := 0; l0 < k; l0 += tile {
			l1 := min(l0+tile, k)
			for i0 := 0; i0 < m; i0 += tile {
				i1 := min(i0+tile, m)
				for j := j0; j < j1; j++ {
					col := c[j*m : (j+1)*m]
					for l := l0; l < l1; l++ {
						t := alpha * b[l+j*k]
						al := a[l*m : (l+1)*m]
						for i := i0; i < i1; i++ {
							col[i] += t * al[i]
						}
					}
				}
			}
		}
	}, par)
}
