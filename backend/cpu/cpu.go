// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go kernel backend.
//
// GEMM offers several candidates: blocked kernels with tile widths chosen
// from the host CPU features, a naive and an axpy kernel, and gonum's BLAS
// for the types it covers. Level-2 and the other level-3 families run on
// gonum with a single variant.
//
// Example:
//
//	backend := cpu.New(cpu.Config{Workers: runtime.NumCPU(), Log: log})
//	defer backend.Close()
//	fmt.Println(backend.VariantNames())
package cpu

import (
	internalcpu "github.com/born-ml/blastune/internal/backend/cpu"
	"github.com/born-ml/blastune/internal/kernel"
)

// Backend is the CPU kernel backend.
type Backend = internalcpu.Backend

// Config configures the worker pool and logger.
type Config = internalcpu.Config

// Features are the detected host CPU features.
type Features = internalcpu.Features

// Compile-time check that Backend implements kernel.Backend.
var _ kernel.Backend = (*Backend)(nil)

// New creates a CPU backend.
func New(cfg Config) *Backend {
	return internalcpu.New(cfg)
}

// DetectFeatures reports the host CPU features.
func DetectFeatures() Features {
	return internalcpu.DetectFeatures()
}
