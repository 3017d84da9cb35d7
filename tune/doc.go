// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tune selects the fastest GEMM kernel variant for every distinct
// problem found in a BLAS bench log.
//
// # Overview
//
// A tuning run reads calls from a bench log, drops repeated problems,
// rejects unsupported type triples and functions with a single warning each,
// validates the arguments and times every candidate the backend offers.
// The result is a CSV tuning log with a non-strided and a strided section.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/blastune/backend/cpu"
//	    "github.com/born-ml/blastune/tune"
//	)
//
//	func main() {
//	    backend := cpu.New(cpu.Config{Workers: 8, Log: log})
//	    defer backend.Close()
//
//	    f, _ := os.Open("bench.log")
//	    defer f.Close()
//
//	    tuner := tune.New(backend, log, tune.Options{Iters: 10})
//	    result, err := tuner.Run(ctx, tune.NewReader(f, log).Calls())
//	    if err != nil {
//	        return err
//	    }
//	    result.WriteTo(os.Stdout)
//	}
//
// # Tuning Log
//
// Each section starts with a header naming the problem fields followed by
// solution_index. Problems for which no candidate ran are left out:
//
//	function,transA,transB,M,N,batch_count,K,lda,ldb,ldc,input_type,output_type,compute_type,solution_index
//	gemm,N,T,1024,1024,1,512,1024,1024,1024,f32_r,f32_r,f32_r,2
package tune
