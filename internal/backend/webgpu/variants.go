// Package webgpu runs single-precision GEMM candidates as WGSL compute
// shaders through go-webgpu. The device backend is built on windows only;
// elsewhere New reports kernel.ErrUnavailable.
package webgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/born-ml/blastune/internal/kernel"
	"github.com/rs/zerolog"
)

// Config configures the WebGPU backend.
type Config struct {
	Log zerolog.Logger
}

// variant is one workgroup shape of the GEMM shader.
type variant struct {
	name string
	x, y uint32
}

// variants are the GEMM candidates in report order; index 0 is the default.
var variants = []variant{
	{name: "wg16x16", x: 16, y: 16},
	{name: "wg8x8", x: 8, y: 8},
	{name: "wg32x8", x: 32, y: 8},
	{name: "wg64x1", x: 64, y: 1},
}

// gemmShader computes C = alpha*op(A)*op(B) + beta*C on column-major
// operands. One invocation owns one element of C.
const gemmShader = `
struct Params {
    m: u32,
    n: u32,
    k: u32,
    lda: u32,
    ldb: u32,
    ldc: u32,
    trans_a: u32,
    trans_b: u32,
    alpha: f32,
    beta: f32,
    pad0: u32,
    pad1: u32,
}

@group(0) @binding(0) var<storage, read> a: array<f32>;
@group(0) @binding(1) var<storage, read> b: array<f32>;
@group(0) @binding(2) var<storage, read_write> c: array<f32>;
@group(0) @binding(3) var<uniform> params: Params;

@compute @workgroup_size(%d, %d, 1)
fn main(@builtin(global_invocation_id) gid: vec3<u32>) {
    let row = gid.x;
    let col = gid.y;
    if (row >= params.m || col >= params.n) {
        return;
    }

    var acc: f32 = 0.0;
    for (var p: u32 = 0u; p < params.k; p = p + 1u) {
        var av: f32;
        if (params.trans_a == 0u) {
            av = a[row + p * params.lda];
        } else {
            av = a[p + row * params.lda];
        }
        var bv: f32;
        if (params.trans_b == 0u) {
            bv = b[p + col * params.ldb];
        } else {
            bv = b[col + p * params.ldb];
        }
        acc = acc + av * bv;
    }

    let idx = row + col * params.ldc;
    var out = params.alpha * acc;
    if (params.beta != 0.0) {
        out = out + params.beta * c[idx];
    }
    c[idx] = out;
}
`

// shaderSource returns the WGSL source of v.
func shaderSource(v variant) string {
	return fmt.Sprintf(gemmShader, v.x, v.y)
}

// workgroups returns the dispatch grid covering an m x n output.
func (v variant) workgroups(m, n int) (x, y uint32) {
	//nolint:gosec // G115: dimensions are checked against MaxUint32 by paramsOf
	return (uint32(m) + v.x - 1) / v.x, (uint32(n) + v.y - 1) / v.y
}

// params mirrors the WGSL Params struct.
type params struct {
	m, n, k       uint32
	lda, ldb, ldc uint32
	transA        bool
	transB        bool
	alpha, beta   float32
}

const paramsSize = 48

// bytes encodes p with the uniform buffer layout.
func (p params) bytes() []byte {
	out := make([]byte, paramsSize)
	le := binary.LittleEndian
	le.PutUint32(out[0:], p.m)
	le.PutUint32(out[4:], p.n)
	le.PutUint32(out[8:], p.k)
	le.PutUint32(out[12:], p.lda)
	le.PutUint32(out[16:], p.ldb)
	le.PutUint32(out[20:], p.ldc)
	le.PutUint32(out[24:], flag(p.transA))
	le.PutUint32(out[28:], flag(p.transB))
	le.PutUint32(out[32:], math.Float32bits(p.alpha))
	le.PutUint32(out[36:], math.Float32bits(p.beta))
	return out
}

func flag(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// paramsOf builds shader parameters for c.
func paramsOf(c *blas.Call, alpha, beta complex128) (params, error) {
	dims := []int{c.M, c.N, c.K, c.LDA, c.LDB, c.LDC}
	for _, d := range dims {
		if d < 0 || int64(d) > math.MaxUint32 {
			return params{}, fmt.Errorf("webgpu: dimension %d out of range: %w", d, blas.InvalidSize)
		}
	}
	//nolint:gosec // G115: range checked above
	return params{
		m: uint32(c.M), n: uint32(c.N), k: uint32(c.K),
		lda: uint32(c.LDA), ldb: uint32(c.LDB), ldc: uint32(c.LDC),
		transA: c.TransA != blas.NoTrans,
		transB: c.TransB != blas.NoTrans,
		alpha:  float32(real(alpha)),
		beta:   float32(real(beta)),
	}, nil
}

// supported reports whether the shaders can execute c.
func supported(c *blas.Call) error {
	if c.Function.Family != blas.Gemm {
		return fmt.Errorf("webgpu: %s: %w", c.Function, kernel.ErrNotImplemented)
	}
	types := []blas.Datatype{c.A, c.B, c.C, c.Compute}
	if c.Function.Ex {
		types = append(types, c.D)
		if c.LDD != c.LDC {
			return fmt.Errorf("webgpu: ldd %d != ldc %d: %w", c.LDD, c.LDC, kernel.ErrNotImplemented)
		}
	}
	for _, t := range types {
		if t != blas.F32R {
			return fmt.Errorf("webgpu: gemm %s: %w", t, kernel.ErrNotImplemented)
		}
	}
	return nil
}

// extents returns the element counts of A, B and C for one batch entry.
func extents(c *blas.Call) (a, b, cc int) {
	colsA, colsB := c.K, c.N
	if c.TransA != blas.NoTrans {
		colsA = c.M
	}
	if c.TransB != blas.NoTrans {
		colsB = c.K
	}
	return c.LDA * colsA, c.LDB * colsB, c.LDC * c.N
}
