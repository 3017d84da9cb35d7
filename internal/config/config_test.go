package config

import (
	"testing"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/numerics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendCPU, cfg.Backend)
	assert.Positive(t, cfg.Workers)

	mode, err := cfg.Pointer()
	require.NoError(t, err)
	assert.Equal(t, blas.PointerHost, mode)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Backend = "cuda" }},
		{"iters", func(c *Config) { c.Iters = -1 }},
		{"cold iters", func(c *Config) { c.ColdIters = -2 }},
		{"workers", func(c *Config) { c.Workers = 0 }},
		{"pointer mode", func(c *Config) { c.PointerMode = "shared" }},
		{"check numerics", func(c *Config) { c.CheckNumerics = "loud" }},
		{"log format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestParsedFields(t *testing.T) {
	cfg := Default()
	cfg.PointerMode = "Device"
	cfg.CheckNumerics = "warn|fail"

	mode, err := cfg.Pointer()
	require.NoError(t, err)
	assert.Equal(t, blas.PointerDevice, mode)

	checks, err := cfg.Numerics()
	require.NoError(t, err)
	assert.Equal(t, numerics.Warn|numerics.Fail, checks)
}
