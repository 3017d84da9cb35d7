//go:build windows

package webgpu

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Config{Log: zerolog.Nop()})
	if errors.Is(err, kernel.ErrUnavailable) {
		t.Skipf("WebGPU not available: %v", err)
	}
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestBackend_GemmVariantsAgree(t *testing.T) {
	b := newBackend(t)
	c := sgemm()
	c.TransA = blas.Trans
	c.LDA = c.K

	rng := rand.New(rand.NewPCG(1, 2))
	fill := func(n int) []float32 {
		s := make([]float32, n)
		for i := range s {
			s[i] = rng.Float32()*2 - 1
		}
		return s
	}
	na, nb, nc := extents(c)
	a, bb, c0 := fill(na), fill(nb), fill(nc)

	want := make([]float32, nc)
	for j := range c.N {
		for i := range c.M {
			var acc float32
			for p := range c.K {
				acc += a[p+i*c.LDA] * bb[p+j*c.LDB]
			}
			want[i+j*c.LDC] = 2*acc + 0.5*c0[i+j*c.LDC]
		}
	}

	candidates, err := b.Candidates(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, candidates, len(variants))
	for _, v := range candidates {
		out := append([]float32(nil), c0...)
		ops := &blas.Operands{
			Alpha: blas.ScalarOf(2),
			Beta:  blas.ScalarOf(0.5),
			A:     blas.Buffer{Data: a},
			B:     blas.Buffer{Data: bb},
			C:     blas.Buffer{Data: out},
		}
		_, err := b.Execute(context.Background(), v, c, ops)
		require.NoError(t, err, variants[v].name)
		assert.InDeltaSlice(t, want, out, 1e-4, variants[v].name)
	}
}

func TestBackend_Errors(t *testing.T) {
	b := newBackend(t)
	c := sgemm()

	_, err := b.Execute(context.Background(), len(variants), c, blas.ReservedOperands(c))
	assert.ErrorIs(t, err, kernel.ErrUnknownVariant)

	_, err = b.Execute(context.Background(), 0, c, blas.ReservedOperands(c))
	assert.ErrorIs(t, err, blas.InvalidPointer)

	c.A = blas.F64R
	_, err = b.Candidates(context.Background(), c)
	assert.ErrorIs(t, err, kernel.ErrNotImplemented)
}
