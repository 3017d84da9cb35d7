package numerics

import "github.com/born-ml/blastune/internal/blas"

// Kind is the storage shape of a region.
type Kind uint8

// Region kinds.
const (
	Matrix Kind = iota
	Vector
	Packed
)

// Region is one operand area the guard scans. Matrices are column-major;
// Rows and Cols describe the stored extent, not op(X).
type Region struct {
	Operand byte
	Kind    Kind
	Fill    blas.Fill

	Rows, Cols, LD int
	N, Inc         int
	Stride         int
}

func matrix(op byte, rows, cols, ld, stride int, fill blas.Fill) Region {
	return Region{Operand: op, Kind: Matrix, Rows: rows, Cols: cols, LD: ld, Stride: stride, Fill: fill}
}

func vector(op byte, n, inc, stride int) Region {
	return Region{Operand: op, Kind: Vector, N: n, Inc: inc, Stride: stride}
}

// Extent returns the number of elements one batch entry of r spans.
func (r Region) Extent() int {
	switch r.Kind {
	case Matrix:
		if r.Rows <= 0 || r.Cols <= 0 {
			return 0
		}
		return r.LD*(r.Cols-1) + r.Rows
	case Vector:
		if r.N <= 0 {
			return 0
		}
		inc := r.Inc
		if inc < 0 {
			inc = -inc
		}
		return 1 + (r.N-1)*inc
	default:
		return max(r.N, 0)
	}
}

// stored returns the stored rows and columns of op(X) when op(X) is r-by-c.
func stored(trans blas.Operation, r, c int) (int, int) {
	if trans == blas.NoTrans {
		return r, c
	}
	return c, r
}

// Regions lists the operand regions of c that are read (input) or written
// (output) by the call.
func Regions(c *blas.Call, input bool) []Region {
	switch c.Function.Family {
	case blas.Gemm:
		if !input {
			if c.Function.Ex {
				return []Region{matrix('D', c.M, c.N, c.LDD, c.StrideD, blas.Full)}
			}
			return []Region{matrix('C', c.M, c.N, c.LDC, c.StrideC, blas.Full)}
		}
		ar, ac := stored(c.TransA, c.M, c.K)
		br, bc := stored(c.TransB, c.K, c.N)
		return []Region{
			matrix('A', ar, ac, c.LDA, c.StrideA, blas.Full),
			matrix('B', br, bc, c.LDB, c.StrideB, blas.Full),
			matrix('C', c.M, c.N, c.LDC, c.StrideC, blas.Full),
		}

	case blas.Gemmt, blas.Syr2k, blas.Her2k, blas.Syrk, blas.Herk:
		out := matrix('C', c.N, c.N, c.LDC, c.StrideC, c.Uplo)
		if !input {
			return []Region{out}
		}
		ar, ac := stored(c.TransA, c.N, c.K)
		rs := []Region{matrix('A', ar, ac, c.LDA, c.StrideA, blas.Full)}
		switch c.Function.Family {
		case blas.Gemmt:
			br, bc := stored(c.TransB, c.K, c.N)
			rs = append(rs, matrix('B', br, bc, c.LDB, c.StrideB, blas.Full))
		case blas.Syr2k, blas.Her2k:
			rs = append(rs, matrix('B', ar, ac, c.LDB, c.StrideB, blas.Full))
		}
		return append(rs, out)

	case blas.Trsm:
		out := matrix('B', c.M, c.N, c.LDB, c.StrideB, blas.Full)
		if !input {
			return []Region{out}
		}
		ka := c.M
		if c.Side == blas.Right {
			ka = c.N
		}
		return []Region{matrix('A', ka, ka, c.LDA, c.StrideA, c.Uplo), out}

	case blas.Gemv, blas.Gbmv:
		lx, ly := c.N, c.M
		if c.TransA != blas.NoTrans {
			lx, ly = c.M, c.N
		}
		y := vector('Y', ly, c.IncY, c.StrideY)
		if !input {
			return []Region{y}
		}
		a := matrix('A', c.M, c.N, c.LDA, c.StrideA, blas.Full)
		if c.Function.Family == blas.Gbmv {
			a.Rows = c.KL + c.KU + 1
		}
		return []Region{a, vector('X', lx, c.IncX, c.StrideX), y}

	case blas.Hemv:
		y := vector('Y', c.N, c.IncY, c.StrideY)
		if !input {
			return []Region{y}
		}
		return []Region{
			matrix('A', c.N, c.N, c.LDA, c.StrideA, c.Uplo),
			vector('X', c.N, c.IncX, c.StrideX),
			y,
		}

	case blas.Ger, blas.Geru, blas.Gerc:
		a := matrix('A', c.M, c.N, c.LDA, c.StrideA, blas.Full)
		if !input {
			return []Region{a}
		}
		return []Region{vector('X', c.M, c.IncX, c.StrideX), vector('Y', c.N, c.IncY, c.StrideY), a}

	case blas.Spr:
		ap := Region{Operand: 'A', Kind: Packed, N: c.N * (c.N + 1) / 2, Inc: 1, Stride: c.StrideA}
		if !input {
			return []Region{ap}
		}
		return []Region{vector('X', c.N, c.IncX, c.StrideX), ap}
	}
	return nil
}

// buffer returns the operand buffer a region refers to.
func buffer(ops *blas.Operands, op byte) blas.Buffer {
	switch op {
	case 'A':
		return ops.A
	case 'B':
		return ops.B
	case 'C':
		return ops.C
	case 'D':
		return ops.D
	case 'X':
		return ops.X
	case 'Y':
		return ops.Y
	}
	return blas.Buffer{}
}
