package blas

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFunction is returned by ParseFunction for names outside the
// closed set of operation families.
var ErrUnknownFunction = errors.New("blas: unknown function")

// Family is the operation family of a call.
type Family int

// Operation families.
const (
	FamilyUnknown Family = iota
	Gemm
	Gemmt
	Syrk
	Herk
	Syr2k
	Her2k
	Trsm
	Gemv
	Gbmv
	Hemv
	Ger
	Geru
	Gerc
	Spr
)

var familyNames = map[Family]string{
	Gemm:  "gemm",
	Gemmt: "gemmt",
	Syrk:  "syrk",
	Herk:  "herk",
	Syr2k: "syr2k",
	Her2k: "her2k",
	Trsm:  "trsm",
	Gemv:  "gemv",
	Gbmv:  "gbmv",
	Hemv:  "hemv",
	Ger:   "ger",
	Geru:  "geru",
	Gerc:  "gerc",
	Spr:   "spr",
}

var familiesByName = func() map[string]Family {
	m := make(map[string]Family, len(familyNames))
	for f, name := range familyNames {
		m[name] = f
	}
	return m
}()

// String returns the base function name of the family.
func (f Family) String() string {
	if s, ok := familyNames[f]; ok {
		return s
	}
	return "unknown"
}

// Variant is the batching layout of a call.
type Variant int

// Batching variants.
const (
	Plain Variant = iota
	Batched
	StridedBatched
)

// String returns the function-name suffix of the variant.
func (v Variant) String() string {
	switch v {
	case Batched:
		return "batched"
	case StridedBatched:
		return "strided_batched"
	default:
		return "plain"
	}
}

// Function is the resolved (family, variant) pair of a call. It is computed
// once when a call is parsed and compared by value afterwards.
type Function struct {
	Family  Family
	Variant Variant
	// Ex marks the mixed-precision entry points (gemm_ex and friends)
	// whose datatypes come from explicit type fields.
	Ex bool
}

// String returns the canonical function name, e.g. "gemm_strided_batched_ex".
func (f Function) String() string {
	var sb strings.Builder
	sb.WriteString(f.Family.String())
	switch f.Variant {
	case Batched:
		sb.WriteString("_batched")
	case StridedBatched:
		sb.WriteString("_strided_batched")
	}
	if f.Ex {
		sb.WriteString("_ex")
	}
	return sb.String()
}

// ParseFunction resolves a logged function name into a Function. Typed
// names such as "rocblas_zherk_batched" also yield the precision implied by
// their prefix letter; otherwise the returned datatype is Invalid.
func ParseFunction(name string) (Function, Datatype, error) {
	s := strings.TrimPrefix(name, "rocblas_")

	var fn Function
	if rest, ok := strings.CutSuffix(s, "_ex"); ok {
		fn.Ex = true
		s = rest
	}
	if rest, ok := strings.CutSuffix(s, "_strided_batched"); ok {
		fn.Variant = StridedBatched
		s = rest
	} else if rest, ok := strings.CutSuffix(s, "_batched"); ok {
		fn.Variant = Batched
		s = rest
	}

	if fam, ok := familiesByName[s]; ok {
		fn.Family = fam
		return fn, Invalid, nil
	}
	if len(s) > 1 {
		if dt, ok := PrecisionType(s[0]); ok {
			if fam, ok := familiesByName[s[1:]]; ok {
				fn.Family = fam
				return fn, dt, nil
			}
		}
	}
	return Function{}, Invalid, fmt.Errorf("%w: %q", ErrUnknownFunction, name)
}
