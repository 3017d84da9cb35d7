package validate

import "github.com/born-ml/blastune/internal/blas"

// checkGemm validates gemm, gemm_ex and their batched variants.
//
// k == 0 with beta == 1 is not a quick return: the call still reaches the
// backend, only A and B may be null.
func checkGemm(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	if !c.TransA.Valid() || !c.TransB.Valid() {
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.M < 0 || c.N < 0 || c.K < 0 || batch < 0 {
		return blas.InvalidSize
	}
	if c.LDA < rows(c.TransA, c.M, c.K) || c.LDB < rows(c.TransB, c.K, c.N) || c.LDC < c.M {
		return blas.InvalidSize
	}
	if c.Function.Ex && c.LDD < c.M {
		return blas.InvalidSize
	}

	if c.M == 0 || c.N == 0 || batch == 0 {
		return blas.Success
	}

	if ops.Alpha.IsNull() || ops.Beta.IsNull() {
		return blas.InvalidPointer
	}
	if !host(mode) {
		return blas.Continue
	}

	alpha, beta := ops.Alpha.Value(), ops.Beta.Value()
	if alpha == 0 && beta == 1 {
		return blas.Success
	}
	if alpha != 0 && c.K != 0 && (ops.A.IsNull() || ops.B.IsNull()) {
		return blas.InvalidPointer
	}
	if ops.C.IsNull() || (c.Function.Ex && ops.D.IsNull()) {
		return blas.InvalidPointer
	}
	return blas.Continue
}

// checkGemmt validates the triangular-output gemm.
func checkGemmt(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	if !c.Uplo.Triangular() || !c.TransA.Valid() || !c.TransB.Valid() {
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.N < 0 || c.K < 0 || batch < 0 {
		return blas.InvalidSize
	}
	if c.LDA < rows(c.TransA, c.N, c.K) || c.LDB < rows(c.TransB, c.K, c.N) || c.LDC < c.N {
		return blas.InvalidSize
	}

	if c.N == 0 || batch == 0 {
		return blas.Success
	}

	if ops.Alpha.IsNull() || ops.Beta.IsNull() {
		return blas.InvalidPointer
	}
	if !host(mode) {
		return blas.Continue
	}

	alpha, beta := ops.Alpha.Value(), ops.Beta.Value()
	if (c.K == 0 || alpha == 0) && beta == 1 {
		return blas.Success
	}
	if alpha != 0 && c.K > 0 && (ops.A.IsNull() || ops.B.IsNull()) {
		return blas.InvalidPointer
	}
	if ops.C.IsNull() {
		return blas.InvalidPointer
	}
	return blas.Continue
}

// checkRankK validates syrk, herk (one input operand) and syr2k, her2k
// (two input operands). Alpha may be null when k is zero.
func checkRankK(c *blas.Call, ops *blas.Operands, mode blas.PointerMode, twoOperands, hermitian bool) blas.Status {
	if !c.Uplo.Triangular() {
		return blas.InvalidValue
	}
	switch {
	case hermitian:
		if c.TransA != blas.NoTrans && c.TransA != blas.ConjTrans {
			return blas.InvalidValue
		}
	case !c.TransA.Valid():
		return blas.InvalidValue
	case c.A.IsComplex() && c.TransA == blas.ConjTrans:
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.N < 0 || c.K < 0 || batch < 0 {
		return blas.InvalidSize
	}
	minLD := rows(c.TransA, c.N, c.K)
	if c.LDA < minLD || c.LDC < c.N || (twoOperands && c.LDB < minLD) {
		return blas.InvalidSize
	}

	if c.N == 0 || batch == 0 {
		return blas.Success
	}

	if (c.K > 0 && ops.Alpha.IsNull()) || ops.Beta.IsNull() {
		return blas.InvalidPointer
	}
	if !host(mode) {
		return blas.Continue
	}

	alpha, beta := ops.Alpha.Value(), ops.Beta.Value()
	if (c.K == 0 || alpha == 0) && beta == 1 {
		return blas.Success
	}
	if alpha != 0 && c.K > 0 && (ops.A.IsNull() || (twoOperands && ops.B.IsNull())) {
		return blas.InvalidPointer
	}
	if ops.C.IsNull() {
		return blas.InvalidPointer
	}
	return blas.Continue
}

// checkTrsm validates the triangular solve. B is overwritten, so it is
// required even when alpha is zero; A is not read in that case.
func checkTrsm(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	if (c.Side != blas.Left && c.Side != blas.Right) || !c.Uplo.Triangular() ||
		!c.TransA.Valid() || !c.Diag.Valid() {
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.M < 0 || c.N < 0 || batch < 0 {
		return blas.InvalidSize
	}
	ka := c.M
	if c.Side == blas.Right {
		ka = c.N
	}
	if c.LDA < ka || c.LDB < c.M {
		return blas.InvalidSize
	}

	if c.M == 0 || c.N == 0 || batch == 0 {
		return blas.Success
	}

	if ops.Alpha.IsNull() {
		return blas.InvalidPointer
	}
	if !host(mode) {
		return blas.Continue
	}

	if ops.B.IsNull() || (ops.Alpha.Value() != 0 && ops.A.IsNull()) {
		return blas.InvalidPointer
	}
	return blas.Continue
}
