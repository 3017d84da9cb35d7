//go:build !windows

package webgpu

import (
	"testing"

	"github.com/born-ml/blastune/internal/kernel"
	"github.com/stretchr/testify/assert"
)

func TestNew_Unavailable(t *testing.T) {
	b, err := New(Config{})
	assert.Nil(t, b)
	assert.ErrorIs(t, err, kernel.ErrUnavailable)
}
