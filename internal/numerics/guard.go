// Package numerics scans operand memory for NaN and infinity before and
// after a kernel runs.
package numerics

import (
	"github.com/born-ml/blastune/internal/blas"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/rs/zerolog"
	"github.com/x448/float16"
)

// Finding summarises a scan.
type Finding struct {
	NaN, Inf bool
}

// Bad reports whether anything non-finite was seen.
func (f Finding) Bad() bool { return f.NaN || f.Inf }

func (f *Finding) merge(o Finding) {
	f.NaN = f.NaN || o.NaN
	f.Inf = f.Inf || o.Inf
}

// Guard runs numeric scans according to its mode.
type Guard struct {
	mode Mode
	log  zerolog.Logger
}

// New creates a guard.
func New(mode Mode, log zerolog.Logger) *Guard {
	return &Guard{mode: mode, log: log.With().Str("component", "numerics").Logger()}
}

// Mode returns the configured mode.
func (g *Guard) Mode() Mode { return g.mode }

// Check scans the input or output regions of c. It returns
// CheckNumericsFail only when the Fail level is set and a non-finite value
// is present; otherwise Success.
func (g *Guard) Check(c *blas.Call, ops *blas.Operands, input bool) blas.Status {
	if g == nil || g.mode == Off || ops == nil {
		return blas.Success
	}

	stage := "output"
	if input {
		stage = "input"
	}

	batch := c.Batch()
	var total Finding
	for _, r := range Regions(c, input) {
		f := Scan(buffer(ops, r.Operand), r, batch)
		if f.Bad() && g.mode&Warn != 0 {
			g.log.Warn().
				Str("function", c.Name).
				Str("stage", stage).
				Str("operand", string(r.Operand)).
				Bool("nan", f.NaN).
				Bool("inf", f.Inf).
				Msg("non-finite values detected")
		}
		total.merge(f)
	}

	if g.mode&Info != 0 {
		g.log.Info().
			Str("function", c.Name).
			Str("stage", stage).
			Bool("nan", total.NaN).
			Bool("inf", total.Inf).
			Msg("check numerics")
	}

	if total.Bad() && g.mode&Fail != 0 {
		return blas.CheckNumericsFail
	}
	return blas.Success
}

// Scan inspects one region of buf across batch entries. Null and reserved
// buffers, and integer element types, yield an empty finding.
func Scan(buf blas.Buffer, r Region, batch int) Finding {
	if buf.IsNull() || buf.IsReserved() {
		return Finding{}
	}
	switch buf.Data.(type) {
	case []float32, [][]float32:
		return scanAs[float32](buf, r, batch)
	case []float64, [][]float64:
		return scanAs[float64](buf, r, batch)
	case []complex64, [][]complex64:
		return scanAs[complex64](buf, r, batch)
	case []complex128, [][]complex128:
		return scanAs[complex128](buf, r, batch)
	case []float16.Float16, [][]float16.Float16:
		return scanAs[float16.Float16](buf, r, batch)
	case []bfloat16.BFloat16, [][]bfloat16.BFloat16:
		return scanAs[bfloat16.BFloat16](buf, r, batch)
	}
	return Finding{}
}

func scanAs[T blas.Element](buf blas.Buffer, r Region, batch int) Finding {
	var f Finding
	for b := 0; b < batch && !(f.NaN && f.Inf); b++ {
		data := blas.Slice[T](buf, b, r.Stride)
		if data == nil {
			break
		}
		f.merge(scanEntry(data, r))
	}
	return f
}

func scanEntry[T blas.Element](data []T, r Region) Finding {
	var f Finding
	visit := func(i int) {
		if i < 0 || i >= len(data) {
			return
		}
		nan, inf := blas.NonFinite(data[i])
		f.NaN = f.NaN || nan
		f.Inf = f.Inf || inf
	}

	switch r.Kind {
	case Matrix:
		for j := 0; j < r.Cols; j++ {
			lo, hi := 0, r.Rows
			switch r.Fill {
			case blas.Upper:
				hi = min(j+1, r.Rows)
			case blas.Lower:
				lo = j
			}
			for i := lo; i < hi; i++ {
				visit(j*r.LD + i)
			}
		}
	case Vector, Packed:
		inc := r.Inc
		start := 0
		if inc < 0 {
			start = (r.N - 1) * -inc
		}
		for i := 0; i < r.N; i++ {
			visit(start + i*inc)
		}
	}
	return f
}
