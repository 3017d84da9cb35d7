package blas

import (
	"math"
	"math/cmplx"

	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/x448/float16"
)

// Element is the set of host element types operands can be stored in.
type Element interface {
	float32 | float64 | complex64 | complex128 | float16.Float16 | bfloat16.BFloat16 | int8 | int32
}

// DatatypeOf returns the datatype tag of T.
func DatatypeOf[T Element]() Datatype {
	var zero T
	switch any(zero).(type) {
	case float16.Float16:
		return F16R
	case bfloat16.BFloat16:
		return BF16R
	case float32:
		return F32R
	case float64:
		return F64R
	case complex64:
		return F32C
	case complex128:
		return F64C
	case int8:
		return I8R
	case int32:
		return I32R
	default:
		return Invalid
	}
}

// ToComplex widens v to complex128.
func ToComplex[T Element](v T) complex128 {
	switch x := any(v).(type) {
	case float16.Float16:
		return complex(float64(x.Float32()), 0)
	case bfloat16.BFloat16:
		return complex(float64(x.Float32()), 0)
	case float32:
		return complex(float64(x), 0)
	case float64:
		return complex(x, 0)
	case complex64:
		return complex128(x)
	case complex128:
		return x
	case int8:
		return complex(float64(x), 0)
	case int32:
		return complex(float64(x), 0)
	default:
		return 0
	}
}

// FromComplex narrows c to T. Real types drop the imaginary part and
// integer types round to nearest with saturation.
func FromComplex[T Element](c complex128) T {
	var out T
	switch p := any(&out).(type) {
	case *float16.Float16:
		*p = float16.Fromfloat32(float32(real(c)))
	case *bfloat16.BFloat16:
		*p = bfloat16.FromFloat32(float32(real(c)))
	case *float32:
		*p = float32(real(c))
	case *float64:
		*p = real(c)
	case *complex64:
		*p = complex64(c)
	case *complex128:
		*p = c
	case *int8:
		*p = int8(saturate(real(c), math.MinInt8, math.MaxInt8))
	case *int32:
		*p = int32(saturate(real(c), math.MinInt32, math.MaxInt32))
	}
	return out
}

func saturate(v, lo, hi float64) float64 {
	v = math.Round(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Converter returns a conversion function from From to To. The type switch
// is resolved once, so the returned closure is cheap to call in loops.
func Converter[From, To Element]() func(From) To {
	var zero From
	if _, same := any(zero).(To); same {
		return func(v From) To { return any(v).(To) }
	}
	return func(v From) To { return FromComplex[To](ToComplex(v)) }
}

// NonFinite reports whether v is a NaN or an infinity.
func NonFinite[T Element](v T) (nan, inf bool) {
	switch x := any(v).(type) {
	case float16.Float16:
		return x.IsNaN(), x.IsInf(0)
	case bfloat16.BFloat16:
		f := float64(x.Float32())
		return math.IsNaN(f), math.IsInf(f, 0)
	case float32:
		f := float64(x)
		return math.IsNaN(f), math.IsInf(f, 0)
	case float64:
		return math.IsNaN(x), math.IsInf(x, 0)
	case complex64:
		c := complex128(x)
		return cmplx.IsNaN(c), cmplx.IsInf(c)
	case complex128:
		return cmplx.IsNaN(x), cmplx.IsInf(x)
	default:
		return false, false
	}
}
