// Package bench reads call descriptions from bench and profile logs.
//
// Each entry is a YAML flow mapping on its own line, optionally written as
// a one-element sequence:
//
//   - {'rocblas_function': 'rocblas_sgemm', 'transA': 'T', 'transB': 'N', 'M': 512, ...}
package bench

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/blastune/internal/blas"
	"gopkg.in/yaml.v3"
)

// IsEntry reports whether a log line looks like a call entry. Other lines
// (banners, blank lines, comments) are not entries.
func IsEntry(line string) bool {
	s := strings.TrimSpace(line)
	s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	return strings.HasPrefix(s, "{")
}

// ParseLine decodes one entry into a call. Fields that are absent keep the
// defaults of blas.NewCall. Function names outside the known families
// produce a call with an unknown family so that dispatch can report them.
func ParseLine(line string) (*blas.Call, error) {
	fields, err := decode(line)
	if err != nil {
		return nil, err
	}
	return fromFields(fields)
}

func decode(line string) (map[string]any, error) {
	s := strings.TrimSpace(line)
	if strings.HasPrefix(s, "-") {
		var list []map[string]any
		if err := yaml.Unmarshal([]byte(s), &list); err != nil {
			return nil, &ParseError{Err: err}
		}
		if len(list) == 0 {
			return nil, &ParseError{Err: ErrEmptyEntries}
		}
		return list[0], nil
	}

	var m map[string]any
	if err := yaml.Unmarshal([]byte(s), &m); err != nil {
		return nil, &ParseError{Err: err}
	}
	if m == nil {
		return nil, &ParseError{Err: ErrNotMapping}
	}
	return m, nil
}

// field setters keyed by lower-cased field name.
var (
	intFields = map[string]func(c *blas.Call) *int{
		"m":              func(c *blas.Call) *int { return &c.M },
		"n":              func(c *blas.Call) *int { return &c.N },
		"k":              func(c *blas.Call) *int { return &c.K },
		"kl":             func(c *blas.Call) *int { return &c.KL },
		"ku":             func(c *blas.Call) *int { return &c.KU },
		"lda":            func(c *blas.Call) *int { return &c.LDA },
		"ldb":            func(c *blas.Call) *int { return &c.LDB },
		"ldc":            func(c *blas.Call) *int { return &c.LDC },
		"ldd":            func(c *blas.Call) *int { return &c.LDD },
		"incx":           func(c *blas.Call) *int { return &c.IncX },
		"incy":           func(c *blas.Call) *int { return &c.IncY },
		"stride_a":       func(c *blas.Call) *int { return &c.StrideA },
		"stride_b":       func(c *blas.Call) *int { return &c.StrideB },
		"stride_c":       func(c *blas.Call) *int { return &c.StrideC },
		"stride_d":       func(c *blas.Call) *int { return &c.StrideD },
		"stride_x":       func(c *blas.Call) *int { return &c.StrideX },
		"stride_y":       func(c *blas.Call) *int { return &c.StrideY },
		"batch_count":    func(c *blas.Call) *int { return &c.BatchCount },
		"solution_index": func(c *blas.Call) *int { return &c.Solution },
		"cold_iters":     func(c *blas.Call) *int { return &c.ColdIters },
		"iters":          func(c *blas.Call) *int { return &c.Iters },
	}

	typeFields = map[string]func(c *blas.Call) *blas.Datatype{
		"a_type":       func(c *blas.Call) *blas.Datatype { return &c.A },
		"b_type":       func(c *blas.Call) *blas.Datatype { return &c.B },
		"c_type":       func(c *blas.Call) *blas.Datatype { return &c.C },
		"d_type":       func(c *blas.Call) *blas.Datatype { return &c.D },
		"compute_type": func(c *blas.Call) *blas.Datatype { return &c.Compute },
	}
)

func fromFields(fields map[string]any) (*blas.Call, error) {
	c := blas.NewCall()

	lower := make(map[string]any, len(fields))
	for k, v := range fields {
		lower[strings.ToLower(k)] = v
	}

	name, _ := lower["rocblas_function"].(string)
	if name == "" {
		name, _ = lower["function"].(string)
	}
	if name == "" {
		return nil, &ParseError{Err: ErrNoFunction}
	}
	c.Name = name

	if fn, dt, err := blas.ParseFunction(name); err == nil {
		c.Function = fn
		if dt != blas.Invalid {
			c.A, c.B, c.C, c.D, c.Compute = dt, dt, dt, dt, dt
		}
	}

	for key, v := range lower {
		switch {
		case intFields[key] != nil:
			n, err := toInt(v)
			if err != nil {
				return nil, &ParseError{Field: key, Err: err}
			}
			*intFields[key](c) = n

		case typeFields[key] != nil:
			s, _ := v.(string)
			dt, err := blas.ParseDatatype(s)
			if err != nil {
				return nil, &ParseError{Field: key, Err: fmt.Errorf("%w: %v", ErrBadDatatype, v)}
			}
			*typeFields[key](c) = dt
		}
	}

	for _, f := range []struct {
		key string
		set func(byte)
	}{
		{"transa", func(b byte) { c.TransA = blas.ParseOperation(b) }},
		{"transb", func(b byte) { c.TransB = blas.ParseOperation(b) }},
		{"uplo", func(b byte) { c.Uplo = blas.ParseFill(b) }},
		{"side", func(b byte) { c.Side = blas.ParseSide(b) }},
		{"diag", func(b byte) { c.Diag = blas.ParseDiagonal(b) }},
	} {
		v, ok := lower[f.key]
		if !ok {
			continue
		}
		s := fmt.Sprint(v)
		if s == "" {
			return nil, &ParseError{Field: f.key, Err: ErrBadField}
		}
		f.set(enumLetter(f.key, s))
	}

	var err error
	if c.Alpha, err = scalar(lower, "alpha", c.Alpha); err != nil {
		return nil, err
	}
	if c.Beta, err = scalar(lower, "beta", c.Beta); err != nil {
		return nil, err
	}
	return c, nil
}

// longEnums maps the spelled-out enum values some logs carry to their
// letters.
var longEnums = map[string]map[string]byte{
	"transa": {"none": 'N', "transpose": 'T', "conjugate_transpose": 'C'},
	"transb": {"none": 'N', "transpose": 'T', "conjugate_transpose": 'C'},
	"uplo":   {"upper": 'U', "lower": 'L', "full": 'F'},
	"side":   {"left": 'L', "right": 'R', "both": 'B'},
	"diag":   {"non_unit": 'N', "unit": 'U'},
}

// enumLetter returns the letter of an enum field value. Anything other
// than a single letter or a known long form yields 0, which the enum
// parsers map to an invalid value.
func enumLetter(key, s string) byte {
	if len(s) == 1 {
		return s[0]
	}
	return longEnums[key][strings.ToLower(s)]
}

// scalar reads key and key+"i" (the imaginary part) into a complex value.
func scalar(fields map[string]any, key string, def complex128) (complex128, error) {
	re, im := real(def), imag(def)
	if v, ok := fields[key]; ok {
		f, err := toFloat(v)
		if err != nil {
			return 0, &ParseError{Field: key, Err: err}
		}
		re = f
	}
	if v, ok := fields[key+"i"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return 0, &ParseError{Field: key + "i", Err: err}
		}
		im = f
	}
	return complex(re, im), nil
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		if x > math.MaxInt {
			return 0, fmt.Errorf("%w: %d overflows int", ErrBadField, x)
		}
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrBadField, x)
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadField, x)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrBadField, v)
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrBadField, x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %T", ErrBadField, v)
}
