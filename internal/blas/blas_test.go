package blas

import (
	"math"
	"testing"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/x448/float16"
)

func TestParseFunction(t *testing.T) {
	tests := []struct {
		name      string
		want      Function
		precision Datatype
	}{
		{"gemm", Function{Family: Gemm}, Invalid},
		{"rocblas_sgemm", Function{Family: Gemm}, F32R},
		{"gemm_ex", Function{Family: Gemm, Ex: true}, Invalid},
		{"rocblas_gemm_batched_ex", Function{Family: Gemm, Variant: Batched, Ex: true}, Invalid},
		{"gemm_strided_batched_ex", Function{Family: Gemm, Variant: StridedBatched, Ex: true}, Invalid},
		{"rocblas_zher2k_batched", Function{Family: Her2k, Variant: Batched}, F64C},
		{"rocblas_cgerc", Function{Family: Gerc}, F32C},
		{"spr", Function{Family: Spr}, Invalid},
		{"rocblas_sspr_strided_batched", Function{Family: Spr, Variant: StridedBatched}, F32R},
		{"syrk", Function{Family: Syrk}, Invalid},
		{"rocblas_dsyrk", Function{Family: Syrk}, F64R},
		{"rocblas_hgemm", Function{Family: Gemm}, F16R},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, dt, err := ParseFunction(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, fn)
			assert.Equal(t, tt.precision, dt)
		})
	}
}

func TestParseFunction_Unknown(t *testing.T) {
	for _, name := range []string{"", "rocblas_", "sgemmx", "qgemm", "gemm_batched_bad_arg"} {
		_, _, err := ParseFunction(name)
		assert.ErrorIs(t, err, ErrUnknownFunction, name)
	}
}

func TestFunctionString(t *testing.T) {
	assert.Equal(t, "gemm_strided_batched_ex",
		Function{Family: Gemm, Variant: StridedBatched, Ex: true}.String())
	assert.Equal(t, "herk_batched", Function{Family: Herk, Variant: Batched}.String())
	assert.Equal(t, "trsm", Function{Family: Trsm}.String())
}

func TestDatatypeRoundTrip(t *testing.T) {
	for d, name := range datatypeNames {
		got, err := ParseDatatype(name)
		require.NoError(t, err)
		assert.Equal(t, d, got)
		assert.Equal(t, name, d.String())
	}
	_, err := ParseDatatype("f128_r")
	assert.Error(t, err)
	assert.Equal(t, "invalid", Datatype(7).String())
}

func TestEnumParsing(t *testing.T) {
	assert.Equal(t, ConjTrans, ParseOperation('c'))
	assert.Equal(t, Operation(0), ParseOperation('X'))
	assert.False(t, Operation(Full).Valid())
	assert.True(t, Trans.Valid())

	assert.Equal(t, Full, ParseFill('F'))
	assert.False(t, Full.Triangular())
	assert.True(t, Lower.Triangular())

	assert.Equal(t, Unit, ParseDiagonal('u'))
	assert.Equal(t, Right, ParseSide('R'))
}

func TestStatusVerdict(t *testing.T) {
	assert.Equal(t, Proceed, Continue.Verdict())
	assert.Equal(t, QuickReturn, Success.Verdict())
	assert.Equal(t, Reject, InvalidSize.Verdict())
	assert.NoError(t, Continue.Err())
	assert.ErrorIs(t, InvalidPointer.Err(), InvalidPointer)
	assert.Equal(t, "blas: invalid value", InvalidValue.Error())
}

func TestBufferNullity(t *testing.T) {
	assert.True(t, Buffer{}.IsNull())
	assert.False(t, Reserved.IsNull())
	assert.True(t, Reserved.IsReserved())
	assert.True(t, Scalar{}.IsNull())
	assert.False(t, ScalarOf(0).IsNull())
}

func TestSlice(t *testing.T) {
	flat := Buffer{Data: []float32{0, 1, 2, 3, 4, 5}, Offset: 1}
	assert.Equal(t, []float32{3, 4, 5}, Slice[float32](flat, 1, 2))
	assert.Nil(t, Slice[float64](flat, 0, 0))
	assert.Nil(t, Slice[float32](flat, 5, 2))

	batched := Buffer{Data: [][]float32{{1, 2}, {3, 4}}}
	assert.Equal(t, []float32{3, 4}, Slice[float32](batched, 1, 0))
	assert.Nil(t, Slice[float32](batched, 2, 0))
}

func TestConverters(t *testing.T) {
	toF32 := Converter[float16.Float16, float32]()
	assert.Equal(t, float32(1.5), toF32(float16.Fromfloat32(1.5)))

	same := Converter[float64, float64]()
	assert.Equal(t, 2.25, same(2.25))

	toI8 := Converter[float64, int8]()
	assert.Equal(t, int8(127), toI8(1000))
	assert.Equal(t, int8(-3), toI8(-2.6))

	assert.Equal(t, complex64(complex(2, 0)), FromComplex[complex64](2))
	assert.Equal(t, F32C, DatatypeOf[complex64]())
	assert.Equal(t, BF16R, DatatypeOf[bfloat16.BFloat16]())
}

func TestNonFinite(t *testing.T) {
	nan, inf := NonFinite(float32(math.NaN()))
	assert.True(t, nan)
	assert.False(t, inf)

	nan, inf = NonFinite(complex(math.Inf(1), 0))
	assert.False(t, nan)
	assert.True(t, inf)

	nan, inf = NonFinite(float16.Inf(-1))
	assert.False(t, nan)
	assert.True(t, inf)

	nan, _ = NonFinite(bfloat16.FromFloat32(float32(math.NaN())))
	assert.True(t, nan)

	nan, inf = NonFinite(int32(5))
	assert.False(t, nan || inf)
}
