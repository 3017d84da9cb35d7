// Package blas holds the data model shared by the dispatcher, the validator,
// the numerical guard, the execution core and the autotuner.
package blas

import "fmt"

// Datatype is the runtime tag of an element type. Values follow the
// rocblas_datatype enumeration so that logged numeric tags round-trip.
type Datatype int

// Supported datatype tags.
const (
	F16R    Datatype = 150
	F32R    Datatype = 151
	F64R    Datatype = 152
	F16C    Datatype = 153
	F32C    Datatype = 154
	F64C    Datatype = 155
	I8R     Datatype = 160
	U8R     Datatype = 161
	I32R    Datatype = 162
	U32R    Datatype = 163
	BF16R   Datatype = 168
	BF16C   Datatype = 169
	Invalid Datatype = 255
)

var datatypeNames = map[Datatype]string{
	F16R:  "f16_r",
	F32R:  "f32_r",
	F64R:  "f64_r",
	F16C:  "f16_c",
	F32C:  "f32_c",
	F64C:  "f64_c",
	I8R:   "i8_r",
	U8R:   "u8_r",
	I32R:  "i32_r",
	U32R:  "u32_r",
	BF16R: "bf16_r",
	BF16C: "bf16_c",
}

// String returns the log name of the datatype (e.g. "f32_r").
func (d Datatype) String() string {
	if s, ok := datatypeNames[d]; ok {
		return s
	}
	return "invalid"
}

// Size returns the byte size of one element, or 0 for an unknown tag.
func (d Datatype) Size() int {
	switch d {
	case I8R, U8R:
		return 1
	case F16R, BF16R:
		return 2
	case F32R, I32R, U32R, F16C, BF16C:
		return 4
	case F64R, F32C:
		return 8
	case F64C:
		return 16
	default:
		return 0
	}
}

// IsComplex reports whether the datatype is a complex type.
func (d Datatype) IsComplex() bool {
	switch d {
	case F16C, F32C, F64C, BF16C:
		return true
	default:
		return false
	}
}

// ParseDatatype converts a log name into a Datatype.
func ParseDatatype(s string) (Datatype, error) {
	for d, name := range datatypeNames {
		if name == s {
			return d, nil
		}
	}
	return Invalid, fmt.Errorf("blas: unknown datatype %q", s)
}

// precisionTypes maps the precision letter of a typed function name
// (rocblas_sgemm, rocblas_zherk, ...) to its datatype.
var precisionTypes = map[byte]Datatype{
	'h': F16R,
	's': F32R,
	'd': F64R,
	'c': F32C,
	'z': F64C,
}

// PrecisionType returns the datatype for a precision letter.
func PrecisionType(letter byte) (Datatype, bool) {
	d, ok := precisionTypes[letter]
	return d, ok
}

// RealType returns the real counterpart of a complex datatype; real types
// are returned unchanged.
func (d Datatype) RealType() Datatype {
	switch d {
	case F16C:
		return F16R
	case F32C:
		return F32R
	case F64C:
		return F64R
	case BF16C:
		return BF16R
	default:
		return d
	}
}
