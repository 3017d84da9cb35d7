// Package kernel defines the boundary between the host-side engine and the
// code that actually runs an operation.
package kernel

import (
	"context"
	"errors"
	"time"

	"github.com/born-ml/blastune/internal/blas"
)

var (
	// ErrUnavailable means the backend cannot be used at all. It is fatal at
	// startup.
	ErrUnavailable = errors.New("kernel: backend unavailable")

	// ErrNotImplemented means the backend has no kernel for the call.
	ErrNotImplemented = errors.New("kernel: not implemented")

	// ErrUnknownVariant is returned when a variant index is not offered by
	// the backend for the call.
	ErrUnknownVariant = errors.New("kernel: unknown variant")
)

// Backend executes validated calls.
//
// Variant 0 is always the backend's default kernel. Candidates lists the
// variant indices that may be benchmarked for a call, in the order the
// backend prefers them.
type Backend interface {
	Name() string
	Candidates(ctx context.Context, c *blas.Call) ([]int, error)
	// Execute runs one kernel variant over ops and returns the time spent
	// in the kernel itself.
	Execute(ctx context.Context, variant int, c *blas.Call, ops *blas.Operands) (time.Duration, error)
	Close() error
}

// Status maps an execution error to a status code.
func Status(err error) blas.Status {
	var st blas.Status
	switch {
	case err == nil:
		return blas.Success
	case errors.As(err, &st):
		return st
	case errors.Is(err, ErrNotImplemented):
		return blas.NotImplemented
	case errors.Is(err, ErrUnknownVariant):
		return blas.InvalidValue
	default:
		return blas.InternalError
	}
}
