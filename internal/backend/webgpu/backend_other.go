//go:build !windows

package webgpu

import (
	"context"
	"fmt"
	"time"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
)

// Backend is unavailable on this platform.
type Backend struct{}

// New always fails with kernel.ErrUnavailable.
func New(Config) (*Backend, error) {
	return nil, fmt.Errorf("webgpu: not supported on this platform: %w", kernel.ErrUnavailable)
}

// Name returns the backend name.
func (*Backend) Name() string { return "webgpu" }

// VariantNames returns the shader names by variant index.
func (*Backend) VariantNames() []string { return nil }

// Candidates always fails.
func (*Backend) Candidates(context.Context, *blas.Call) ([]int, error) {
	return nil, kernel.ErrUnavailable
}

// Execute always fails.
func (*Backend) Execute(context.Context, int, *blas.Call, *blas.Operands) (time.Duration, error) {
	return 0, kernel.ErrUnavailable
}

// Close does nothing.
func (*Backend) Close() error { return nil }
