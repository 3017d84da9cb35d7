// Package dispatch routes call descriptions to typed handlers through a
// capability table keyed by (input, output, compute) datatypes.
package dispatch

import (
	"slices"

	"github.com/born-ml/blastune/internal/blas"
)

// Key is the capability key of a typed handler.
type Key struct {
	In, Out, Compute blas.Datatype
}

// KeyOf returns the key selected by a call: a_type, c_type and compute_type.
func KeyOf(c *blas.Call) Key {
	return Key{In: c.A, Out: c.C, Compute: c.Compute}
}

// String renders the key as "in, out, compute".
func (k Key) String() string {
	return k.In.String() + ", " + k.Out.String() + ", " + k.Compute.String()
}

// Table maps capability keys to handlers. It is populated once at
// construction and only read afterwards.
type Table[H any] struct {
	handlers map[Key]H
}

// NewTable creates an empty table.
func NewTable[H any]() *Table[H] {
	return &Table[H]{handlers: make(map[Key]H)}
}

// Register adds or replaces the handler for k.
func (t *Table[H]) Register(k Key, h H) {
	t.handlers[k] = h
}

// Lookup returns the handler for k.
func (t *Table[H]) Lookup(k Key) (H, bool) {
	h, ok := t.handlers[k]
	return h, ok
}

// Keys returns the registered keys in a stable order.
func (t *Table[H]) Keys() []Key {
	keys := make([]Key, 0, len(t.handlers))
	for k := range t.handlers {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if a.In != b.In {
			return int(a.In - b.In)
		}
		if a.Out != b.Out {
			return int(a.Out - b.Out)
		}
		return int(a.Compute - b.Compute)
	})
	return keys
}

// Len returns the number of registered handlers.
func (t *Table[H]) Len() int { return len(t.handlers) }
