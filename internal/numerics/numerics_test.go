package numerics

import (
	"bytes"
	"math"
	"math/cmplx"
	"testing"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"off", Off},
		{"", Off},
		{"info", Info},
		{"warn|fail", Warn | Fail},
		{"info,warn,fail", Info | Warn | Fail},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseMode("loud")
	assert.Error(t, err)

	assert.Equal(t, "warn|fail", (Warn | Fail).String())
	assert.Equal(t, "off", Off.String())
}

func gemmCall(m, n, k int) *blas.Call {
	c := blas.NewCall()
	c.Name = "rocblas_sgemm"
	c.Function = blas.Function{Family: blas.Gemm}
	c.M, c.N, c.K = m, n, k
	c.LDA, c.LDB, c.LDC = m, k, m
	return c
}

func TestScan_ElementTypes(t *testing.T) {
	r := Region{Kind: Vector, N: 3, Inc: 1}
	nan32 := float32(math.NaN())
	inf32 := float32(math.Inf(1))

	tests := []struct {
		name string
		data any
		want Finding
	}{
		{"f32 clean", []float32{1, 2, 3}, Finding{}},
		{"f32 nan", []float32{1, nan32, 3}, Finding{NaN: true}},
		{"f64 inf", []float64{1, math.Inf(-1), 3}, Finding{Inf: true}},
		{"c64 nan", []complex64{1, complex(0, nan32), 3}, Finding{NaN: true}},
		{"c128 inf", []complex128{1, 2, cmplx.Inf()}, Finding{Inf: true}},
		{"f16 inf", []float16.Float16{float16.Fromfloat32(1), float16.Inf(1), float16.Fromfloat32(2)}, Finding{Inf: true}},
		{"f16 nan", []float16.Float16{float16.NaN(), float16.Fromfloat32(1), float16.Fromfloat32(2)}, Finding{NaN: true}},
		{"bf16 nan", []bfloat16.BFloat16{bfloat16.FromFloat32(1), bfloat16.FromFloat32(nan32), bfloat16.FromFloat32(2)}, Finding{NaN: true}},
		{"bf16 inf", []bfloat16.BFloat16{bfloat16.FromFloat32(inf32), bfloat16.FromFloat32(1), bfloat16.FromFloat32(2)}, Finding{Inf: true}},
		{"int8", []int8{1, 2, 3}, Finding{}},
		{"int32", []int32{1, 2, 3}, Finding{}},
		{"batched f32", [][]float32{{1, 2, 3}, {1, 2, inf32}}, Finding{Inf: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := 1
			if b, ok := tt.data.([][]float32); ok {
				batch = len(b)
			}
			assert.Equal(t, tt.want, Scan(blas.Buffer{Data: tt.data}, r, batch))
		})
	}
}

func TestScan_SkipsNullAndReserved(t *testing.T) {
	r := Region{Kind: Vector, N: 3, Inc: 1}
	assert.False(t, Scan(blas.Buffer{}, r, 1).Bad())
	assert.False(t, Scan(blas.Reserved, r, 1).Bad())
}

func TestScan_RespectsFillAndLeadingDimension(t *testing.T) {
	nan := float32(math.NaN())
	// 2x2 column-major with ld=3; row 2 is padding.
	data := []float32{
		1, nan, nan, // column 0: A[1,0] is strictly lower
		2, 3, 0, // column 1
	}
	data[2] = nan // padding row

	upper := Region{Kind: Matrix, Rows: 2, Cols: 2, LD: 3, Fill: blas.Upper}
	assert.False(t, Scan(blas.Buffer{Data: data}, upper, 1).Bad())

	lower := upper
	lower.Fill = blas.Lower
	assert.True(t, Scan(blas.Buffer{Data: data}, lower, 1).NaN)
}

func TestScan_StridedBatches(t *testing.T) {
	data := make([]float64, 8)
	data[6] = math.Inf(1)
	r := Region{Kind: Vector, N: 2, Inc: 1, Stride: 3}
	assert.False(t, Scan(blas.Buffer{Data: data}, r, 2).Bad())
	assert.True(t, Scan(blas.Buffer{Data: data}, r, 3).Inf)
}

func TestScan_NegativeIncrement(t *testing.T) {
	data := []float32{float32(math.NaN()), 0, 0, 0}
	r := Region{Kind: Vector, N: 2, Inc: -2}
	assert.True(t, Scan(blas.Buffer{Data: data}, r, 1).NaN)
}

func TestGuard_Check(t *testing.T) {
	c := gemmCall(2, 2, 2)
	clean := func() []float32 { return []float32{1, 2, 3, 4} }
	dirty := clean()
	dirty[3] = float32(math.Inf(1))

	ops := &blas.Operands{
		A: blas.Buffer{Data: clean()},
		B: blas.Buffer{Data: dirty},
		C: blas.Buffer{Data: clean()},
	}

	var logs bytes.Buffer
	log := zerolog.New(&logs)

	assert.Equal(t, blas.Success, New(Off, log).Check(c, ops, true))
	assert.Empty(t, logs.String())

	assert.Equal(t, blas.Success, New(Warn, log).Check(c, ops, true))
	assert.Contains(t, logs.String(), "non-finite values detected")
	assert.Contains(t, logs.String(), `"operand":"B"`)

	assert.Equal(t, blas.CheckNumericsFail, New(Fail, log).Check(c, ops, true))

	// B is not an output region.
	assert.Equal(t, blas.Success, New(Fail, log).Check(c, ops, false))

	logs.Reset()
	assert.Equal(t, blas.Success, New(Info, log).Check(c, ops, false))
	assert.Contains(t, logs.String(), `"stage":"output"`)

	var nilGuard *Guard
	assert.Equal(t, blas.Success, nilGuard.Check(c, ops, true))
}

func TestRegions(t *testing.T) {
	c := gemmCall(4, 5, 6)
	c.TransA = blas.Trans
	in := Regions(c, true)
	require.Len(t, in, 3)
	assert.Equal(t, byte('A'), in[0].Operand)
	assert.Equal(t, 6, in[0].Rows)
	assert.Equal(t, 4, in[0].Cols)

	c.Function.Ex = true
	out := Regions(c, false)
	require.Len(t, out, 1)
	assert.Equal(t, byte('D'), out[0].Operand)

	herk := blas.NewCall()
	herk.Function = blas.Function{Family: blas.Her2k}
	herk.Uplo = blas.Lower
	in = Regions(herk, true)
	require.Len(t, in, 3)
	assert.Equal(t, blas.Lower, in[2].Fill)

	spr := blas.NewCall()
	spr.Function = blas.Function{Family: blas.Spr}
	spr.N = 4
	out = Regions(spr, false)
	require.Len(t, out, 1)
	assert.Equal(t, Packed, out[0].Kind)
	assert.Equal(t, 10, out[0].N)

	unknown := blas.NewCall()
	assert.Nil(t, Regions(unknown, true))
}

func TestRegion_Extent(t *testing.T) {
	tests := []struct {
		name string
		r    Region
		want int
	}{
		{"matrix", matrix('A', 3, 4, 5, 0, blas.Full), 5*3 + 3},
		{"empty matrix", matrix('A', 0, 4, 5, 0, blas.Full), 0},
		{"vector", vector('X', 4, 2, 0), 7},
		{"negative inc", vector('X', 4, -3, 0), 10},
		{"empty vector", vector('X', 0, 1, 0), 0},
		{"packed", Region{Kind: Packed, N: 10}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Extent())
		})
	}
}
