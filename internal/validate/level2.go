package validate

import "github.com/born-ml/blastune/internal/blas"

// checkMV holds the pointer rules shared by gemv, gbmv and hemv.
func checkMV(ops *blas.Operands, mode blas.PointerMode) blas.Status {
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
	if ops.Y.IsNull() || (alpha != 0 && (ops.A.IsNull() || ops.X.IsNull())) {
		return blas.InvalidPointer
	}
	return blas.Continue
}

func checkGemv(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	if !c.TransA.Valid() {
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.M < 0 || c.N < 0 || c.LDA < c.M || c.LDA < 1 || c.IncX == 0 || c.IncY == 0 || batch < 0 {
		return blas.InvalidSize
	}
	if c.M == 0 || c.N == 0 || batch == 0 {
		return blas.Success
	}
	return checkMV(ops, mode)
}

// checkGbmv validates the banded matrix-vector product; A holds kl+ku+1
// stored diagonals per column.
func checkGbmv(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	if !c.TransA.Valid() {
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.M < 0 || c.N < 0 || c.KL < 0 || c.KU < 0 || batch < 0 {
		return blas.InvalidSize
	}
	if c.LDA < c.KL+c.KU+1 || c.IncX == 0 || c.IncY == 0 {
		return blas.InvalidSize
	}
	if c.M == 0 || c.N == 0 || batch == 0 {
		return blas.Success
	}
	return checkMV(ops, mode)
}

func checkHemv(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	if !c.Uplo.Triangular() {
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.N < 0 || c.LDA < c.N || c.LDA < 1 || c.IncX == 0 || c.IncY == 0 || batch < 0 {
		return blas.InvalidSize
	}
	if c.N == 0 || batch == 0 {
		return blas.Success
	}
	return checkMV(ops, mode)
}

// checkGer validates the rank-1 updates ger, geru and gerc.
func checkGer(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	batch := c.Batch()
	if c.M < 0 || c.N < 0 || c.IncX == 0 || c.IncY == 0 || c.LDA < c.M || c.LDA < 1 || batch < 0 {
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
	if ops.Alpha.Value() == 0 {
		return blas.Success
	}
	if ops.A.IsNull() || ops.X.IsNull() || ops.Y.IsNull() {
		return blas.InvalidPointer
	}
	return blas.Continue
}

// checkSpr validates the packed symmetric rank-1 update. The packed matrix
// travels in ops.A.
func checkSpr(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	if !c.Uplo.Triangular() {
		return blas.InvalidValue
	}

	batch := c.Batch()
	if c.N < 0 || c.IncX == 0 || batch < 0 {
		return blas.InvalidSize
	}
	if c.N == 0 || batch == 0 {
		return blas.Success
	}

	if ops.Alpha.IsNull() {
		return blas.InvalidPointer
	}
	if !host(mode) {
		return blas.Continue
	}
	if ops.Alpha.Value() == 0 {
		return blas.Success
	}
	if ops.A.IsNull() || ops.X.IsNull() {
		return blas.InvalidPointer
	}
	return blas.Continue
}
