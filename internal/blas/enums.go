package blas

// Operation is the transpose mode of a matrix operand.
type Operation int

// Operation values (rocblas_operation).
const (
	NoTrans   Operation = 111
	Trans     Operation = 112
	ConjTrans Operation = 113
)

// Valid reports whether o is one of the legal enumerators.
func (o Operation) Valid() bool {
	return o == NoTrans || o == Trans || o == ConjTrans
}

// Letter returns the bench-log letter of the operation.
func (o Operation) Letter() byte {
	switch o {
	case NoTrans:
		return 'N'
	case Trans:
		return 'T'
	case ConjTrans:
		return 'C'
	default:
		return '?'
	}
}

// String implements fmt.Stringer.
func (o Operation) String() string { return string(o.Letter()) }

// ParseOperation maps a log letter to an Operation. Unknown letters yield
// the zero Operation, which the validator rejects as an invalid value.
func ParseOperation(c byte) Operation {
	switch c {
	case 'N', 'n':
		return NoTrans
	case 'T', 't':
		return Trans
	case 'C', 'c':
		return ConjTrans
	default:
		return 0
	}
}

// Fill selects the referenced triangle of a matrix.
type Fill int

// Fill values (rocblas_fill).
const (
	Upper Fill = 121
	Lower Fill = 122
	Full  Fill = 123
)

// Triangular reports whether f selects exactly one triangle.
func (f Fill) Triangular() bool { return f == Upper || f == Lower }

// Letter returns the bench-log letter of the fill mode.
func (f Fill) Letter() byte {
	switch f {
	case Upper:
		return 'U'
	case Lower:
		return 'L'
	case Full:
		return 'F'
	default:
		return '?'
	}
}

// String implements fmt.Stringer.
func (f Fill) String() string { return string(f.Letter()) }

// ParseFill maps a log letter to a Fill.
func ParseFill(c byte) Fill {
	switch c {
	case 'U', 'u':
		return Upper
	case 'L', 'l':
		return Lower
	case 'F', 'f':
		return Full
	default:
		return 0
	}
}

// Diagonal states whether a triangular matrix has an implicit unit diagonal.
type Diagonal int

// Diagonal values (rocblas_diagonal).
const (
	NonUnit Diagonal = 131
	Unit    Diagonal = 132
)

// Valid reports whether d is one of the legal enumerators.
func (d Diagonal) Valid() bool { return d == NonUnit || d == Unit }

// String implements fmt.Stringer.
func (d Diagonal) String() string {
	switch d {
	case NonUnit:
		return "N"
	case Unit:
		return "U"
	default:
		return "?"
	}
}

// ParseDiagonal maps a log letter to a Diagonal.
func ParseDiagonal(c byte) Diagonal {
	switch c {
	case 'N', 'n':
		return NonUnit
	case 'U', 'u':
		return Unit
	default:
		return 0
	}
}

// Side selects on which side a triangular operand multiplies.
type Side int

// Side values (rocblas_side).
const (
	Left  Side = 141
	Right Side = 142
	Both  Side = 143
)

// String implements fmt.Stringer.
func (s Side) String() string {
	switch s {
	case Left:
		return "L"
	case Right:
		return "R"
	case Both:
		return "B"
	default:
		return "?"
	}
}

// ParseSide maps a log letter to a Side.
func ParseSide(c byte) Side {
	switch c {
	case 'L', 'l':
		return Left
	case 'R', 'r':
		return Right
	case 'B', 'b':
		return Both
	default:
		return 0
	}
}

// PointerMode tells whether scalar coefficients live in host memory, where
// their values can be inspected, or on the device.
type PointerMode int

// Pointer modes.
const (
	PointerHost PointerMode = iota
	PointerDevice
)

// String implements fmt.Stringer.
func (m PointerMode) String() string {
	if m == PointerDevice {
		return "device"
	}
	return "host"
}
