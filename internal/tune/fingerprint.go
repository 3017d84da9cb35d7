package tune

import (
	"strconv"
	"strings"

	"github.com/born-ml/blastune/internal/blas"
)

// Section selects the tuning-log section a call belongs to.
type Section int

// Log sections, in output order.
const (
	NonStrided Section = iota
	Strided
)

// String returns the section name.
func (s Section) String() string {
	if s == Strided {
		return "strided"
	}
	return "non-strided"
}

var (
	nonStridedHeader = []string{
		"function", "transA", "transB", "M", "N", "batch_count", "K",
		"lda", "ldb", "ldc",
		"input_type", "output_type", "compute_type", "solution_index",
	}
	stridedHeader = []string{
		"function", "transA", "transB", "M", "N", "batch_count", "K",
		"lda", "ldb", "ldc", "stride_a", "stride_b", "stride_c",
		"input_type", "output_type", "compute_type", "solution_index",
	}
)

// Header returns the column names of a section.
func (s Section) Header() []string {
	if s == Strided {
		return stridedHeader
	}
	return nonStridedHeader
}

// Fingerprint identifies a tuning problem. Calls with equal fingerprints
// are the same problem and are benchmarked once. The scaling coefficients
// are not part of it.
type Fingerprint struct {
	Section Section
	Fields  []string
}

// Key returns the comma-joined fields.
func (f Fingerprint) Key() string { return strings.Join(f.Fields, ",") }

// String implements fmt.Stringer.
func (f Fingerprint) String() string { return f.Key() }

// FingerprintOf computes the fingerprint of c.
func FingerprintOf(c *blas.Call) Fingerprint {
	section := NonStrided
	if c.Function.Variant == blas.StridedBatched {
		section = Strided
	}
	variant := blas.Function{Family: c.Function.Family, Variant: c.Function.Variant}.String()
	if c.Function.Family == blas.FamilyUnknown {
		variant = c.Name
	}

	itoa := strconv.Itoa
	fields := []string{
		variant,
		c.TransA.String(), c.TransB.String(),
		itoa(c.M), itoa(c.N), itoa(c.BatchCount), itoa(c.K),
		itoa(c.LDA), itoa(c.LDB), itoa(c.LDC),
	}
	if section == Strided {
		fields = append(fields, itoa(c.StrideA), itoa(c.StrideB), itoa(c.StrideC))
	}
	fields = append(fields, c.A.String(), c.C.String(), c.Compute.String())
	return Fingerprint{Section: section, Fields: fields}
}
