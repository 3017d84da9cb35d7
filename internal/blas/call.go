package blas

import "github.com/rs/zerolog"

// Call describes one operation invocation. It is produced by the argument
// source and only read afterwards.
type Call struct {
	// Name is the function name exactly as it appeared in the input.
	Name     string
	Function Function

	// Element types of the operands and of the accumulation.
	A, B, C, D, Compute Datatype

	TransA, TransB Operation
	Uplo           Fill
	Side           Side
	Diag           Diagonal

	M, N, K, KL, KU    int
	LDA, LDB, LDC, LDD int
	IncX, IncY         int

	StrideA, StrideB, StrideC, StrideD int
	StrideX, StrideY                   int

	BatchCount int

	Alpha, Beta complex128

	// Solution is the requested kernel variant; 0 selects the default.
	Solution int

	ColdIters, Iters int
}

// NewCall returns a call with the defaults the bench log format assumes for
// absent fields.
func NewCall() *Call {
	return &Call{
		A:          F32R,
		B:          F32R,
		C:          F32R,
		D:          F32R,
		Compute:    F32R,
		TransA:     NoTrans,
		TransB:     NoTrans,
		Uplo:       Upper,
		Side:       Left,
		Diag:       NonUnit,
		IncX:       1,
		IncY:       1,
		BatchCount: 1,
		Alpha:      1,
		ColdIters:  2,
		Iters:      10,
	}
}

// Batch returns the effective batch count: BatchCount for batched variants
// and 1 for plain calls.
func (c *Call) Batch() int {
	if c.Function.Variant == Plain {
		return 1
	}
	return c.BatchCount
}

// MarshalZerologObject lets calls be attached to log events.
func (c *Call) MarshalZerologObject(e *zerolog.Event) {
	e.Str("function", c.Name).
		Stringer("transA", c.TransA).
		Stringer("transB", c.TransB).
		Int("M", c.M).
		Int("N", c.N).
		Int("K", c.K).
		Int("lda", c.LDA).
		Int("ldb", c.LDB).
		Int("ldc", c.LDC).
		Int("batch_count", c.BatchCount).
		Stringer("a_type", c.A).
		Stringer("c_type", c.C).
		Stringer("compute_type", c.Compute)
}
