// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides single-precision GEMM candidates running as WGSL
// compute shaders. Devices are only opened on windows builds; New fails
// with an error wrapping kernel.ErrUnavailable elsewhere.
//
// Example:
//
//	gpu, err := webgpu.New(webgpu.Config{Log: log})
//	if err != nil {
//	    return err
//	}
//	defer gpu.Close()
package webgpu

import (
	internalwebgpu "github.com/born-ml/blastune/internal/backend/webgpu"
	"github.com/born-ml/blastune/internal/kernel"
)

// Backend is the WebGPU kernel backend.
type Backend = internalwebgpu.Backend

// Config configures the backend logger.
type Config = internalwebgpu.Config

// Compile-time check that Backend implements kernel.Backend.
var _ kernel.Backend = (*Backend)(nil)

// New opens the default WebGPU adapter.
func New(cfg Config) (*Backend, error) {
	return internalwebgpu.New(cfg)
}
