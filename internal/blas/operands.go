package blas

// Scalar is a coefficient slot. The zero Scalar is a null pointer.
type Scalar struct {
	value complex128
	set   bool
}

// ScalarOf returns a non-null scalar holding v.
func ScalarOf(v complex128) Scalar { return Scalar{value: v, set: true} }

// IsNull reports whether the slot is a null pointer.
func (s Scalar) IsNull() bool { return !s.set }

// Value returns the held value. It is only meaningful for non-null scalars
// under host pointer mode.
func (s Scalar) Value() complex128 { return s.value }

// reserved marks a handle that is known to be non-null but has no memory
// behind it yet.
type reserved struct{}

// Reserved is a non-null buffer handle without storage. It lets callers
// validate a call before allocating operands.
var Reserved = Buffer{Data: reserved{}}

// Buffer is an operand handle. The zero Buffer is a null pointer.
//
// Data is a []T for plain and strided-batched calls and a [][]T (one slice
// per batch entry) for batched calls. Offset is the element offset of the
// operand inside Data.
type Buffer struct {
	Data   any
	Offset int
}

// IsNull reports whether the buffer is a null pointer.
func (b Buffer) IsNull() bool { return b.Data == nil }

// IsReserved reports whether the buffer is a storage-less placeholder.
func (b Buffer) IsReserved() bool {
	_, ok := b.Data.(reserved)
	return ok
}

// Operands carries the scalar slots and operand buffers of one execution.
// Packed matrices (spr) travel in A.
type Operands struct {
	Alpha, Beta      Scalar
	A, B, C, D, X, Y Buffer
}

// ReservedOperands returns operands whose scalars hold the call's
// coefficients and whose buffers are all Reserved.
func ReservedOperands(c *Call) *Operands {
	return &Operands{
		Alpha: ScalarOf(c.Alpha),
		Beta:  ScalarOf(c.Beta),
		A:     Reserved,
		B:     Reserved,
		C:     Reserved,
		D:     Reserved,
		X:     Reserved,
		Y:     Reserved,
	}
}

// Slice returns the storage of batch entry i of buf as a []T, applying the
// buffer offset and, for strided layouts, i*stride. It returns nil when the
// buffer holds no []T / [][]T storage.
func Slice[T any](buf Buffer, i, stride int) []T {
	switch d := buf.Data.(type) {
	case []T:
		start := buf.Offset + i*stride
		if start < 0 || start > len(d) {
			return nil
		}
		return d[start:]
	case [][]T:
		if i < 0 || i >= len(d) {
			return nil
		}
		if buf.Offset > len(d[i]) {
			return nil
		}
		return d[i][buf.Offset:]
	default:
		return nil
	}
}
