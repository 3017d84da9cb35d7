// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tune

import (
	"io"

	"github.com/born-ml/blastune/internal/bench"
	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/born-ml/blastune/internal/tune"
	"github.com/rs/zerolog"
)

// Call describes one BLAS invocation read from a bench log.
type Call = blas.Call

// Backend executes kernel variants.
type Backend = kernel.Backend

// Tuner drives a tuning run.
type Tuner = tune.Tuner

// Options control iteration counts, operand seeding and sample reporting.
type Options = tune.Options

// Result holds the selected variant per problem.
type Result = tune.Result

// Fingerprint identifies a tuning problem.
type Fingerprint = tune.Fingerprint

// Sample is one timed candidate.
type Sample = tune.Sample

// Reader reads calls from a bench log.
type Reader = bench.Reader

// NoSolution is reported for problems on which no candidate ran.
const NoSolution = tune.NoSolution

// New creates a tuner benchmarking on backend.
func New(backend Backend, log zerolog.Logger, opts Options) *Tuner {
	return tune.New(backend, log, opts)
}

// NewResult creates an empty tuning result.
func NewResult() *Result {
	return tune.NewResult()
}

// NewReader creates a bench log reader over src. Malformed lines are
// logged to log and skipped.
func NewReader(src io.Reader, log zerolog.Logger) *Reader {
	return bench.NewReader(src, log)
}

// FingerprintOf returns the problem fingerprint of c.
func FingerprintOf(c *Call) Fingerprint {
	return tune.FingerprintOf(c)
}
