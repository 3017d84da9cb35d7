package kernel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want blas.Status
	}{
		{nil, blas.Success},
		{fmt.Errorf("cpu: gemm: %w", ErrNotImplemented), blas.NotImplemented},
		{fmt.Errorf("cpu: %w", ErrUnknownVariant), blas.InvalidValue},
		{fmt.Errorf("wrapped: %w", blas.InvalidPointer), blas.InvalidPointer},
		{errors.New("boom"), blas.InternalError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "%v", tt.err)
	}
}
