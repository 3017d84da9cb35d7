// Package validate classifies a call before any operand memory is touched.
//
// Every family checker applies its rules in the same order: enumerated
// values, then sizes, then the degenerate-shape quick return, then scalar
// and operand pointers. An earlier failure masks every later one, so a
// malformed size is reported even when the call would be a no-op and even
// when every pointer is null.
package validate

import "github.com/born-ml/blastune/internal/blas"

// Checker validates one operation family.
type Checker func(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status

var checkers = map[blas.Family]Checker{
	blas.Gemm:  checkGemm,
	blas.Gemmt: checkGemmt,
	blas.Syrk:  rankK(false, false),
	blas.Herk:  rankK(false, true),
	blas.Syr2k: rankK(true, false),
	blas.Her2k: rankK(true, true),
	blas.Trsm:  checkTrsm,
	blas.Gemv:  checkGemv,
	blas.Gbmv:  checkGbmv,
	blas.Hemv:  checkHemv,
	blas.Ger:   checkGer,
	blas.Geru:  checkGer,
	blas.Gerc:  checkGer,
	blas.Spr:   checkSpr,
}

func rankK(twoOperands, hermitian bool) Checker {
	return func(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
		return checkRankK(c, ops, mode, twoOperands, hermitian)
	}
}

// Check returns the verdict for c: InvalidValue, InvalidSize or
// InvalidPointer to reject, Success for a quick return, or Continue when
// the call must be executed. It has no side effects.
func Check(c *blas.Call, ops *blas.Operands, mode blas.PointerMode) blas.Status {
	check, ok := checkers[c.Function.Family]
	if !ok {
		return blas.NotImplemented
	}
	if ops == nil {
		ops = &blas.Operands{}
	}
	return check(c, ops, mode)
}

// Supports reports whether a checker exists for the family.
func Supports(f blas.Family) bool {
	_, ok := checkers[f]
	return ok
}

// host reports whether scalar values may be inspected.
func host(mode blas.PointerMode) bool { return mode == blas.PointerHost }

// rows returns the number of rows of op(X) stored for an n-by-k operand.
func rows(trans blas.Operation, n, k int) int {
	if trans == blas.NoTrans {
		return n
	}
	return k
}
