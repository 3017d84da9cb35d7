// Package config holds the settings shared by every blastune command.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/numerics"
)

// Backend names.
const (
	BackendCPU    = "cpu"
	BackendWebGPU = "webgpu"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid")

// Config controls a blastune run.
type Config struct {
	// Backend selects the kernel backend: "cpu" or "webgpu".
	Backend string

	// ColdIters and Iters override the per-call iteration counts when positive.
	ColdIters int
	Iters     int

	// Seed seeds operand fill.
	Seed uint64

	PointerMode   string
	CheckNumerics string

	LogLevel  string
	LogFormat string

	// Output is the tuning log path; empty writes to stdout.
	Output string

	// Workers bounds the CPU backend worker pool.
	Workers int
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Backend:       BackendCPU,
		PointerMode:   "host",
		CheckNumerics: "off",
		LogLevel:      "info",
		LogFormat:     FormatConsole,
		Workers:       runtime.NumCPU(),
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendCPU, BackendWebGPU:
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend)
	}
	if c.ColdIters < 0 || c.Iters < 0 {
		return fmt.Errorf("%w: iterations must not be negative", ErrInvalid)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	}
	if _, err := c.Pointer(); err != nil {
		return err
	}
	if _, err := c.Numerics(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.LogFormat {
	case FormatConsole, FormatJSON:
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// Pointer parses PointerMode.
func (c Config) Pointer() (blas.PointerMode, error) {
	switch strings.ToLower(c.PointerMode) {
	case "", "host":
		return blas.PointerHost, nil
	case "device":
		return blas.PointerDevice, nil
	}
	return blas.PointerHost, fmt.Errorf("%w: pointer mode %q", ErrInvalid, c.PointerMode)
}

// Numerics parses CheckNumerics.
func (c Config) Numerics() (numerics.Mode, error) {
	return numerics.ParseMode(c.CheckNumerics)
}
