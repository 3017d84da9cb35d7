package dispatch

import (
	"errors"
	"fmt"

	"github.com/born-ml/blastune/internal/blas"
)

// Dispatch errors. Neither is fatal: callers skip the call and move on.
var (
	ErrUnsupportedDatatype = errors.New("unsupported datatype")
	ErrUnsupportedFunction = errors.New("unsupported function")
)

// Dispatcher selects the typed handler for a call and rejects unsupported
// datatype triples and function names, warning once per distinct key.
type Dispatcher[H any] struct {
	table   *Table[H]
	warn    *WarnCache
	accepts func(blas.Function) bool
	prefix  string
}

// New creates a dispatcher over table. accepts decides which resolved
// functions the handlers implement; prefix starts every warning line.
func New[H any](table *Table[H], warn *WarnCache, prefix string, accepts func(blas.Function) bool) *Dispatcher[H] {
	return &Dispatcher[H]{
		table:   table,
		warn:    warn,
		accepts: accepts,
		prefix:  prefix,
	}
}

// Dispatch returns the handler for c.
func (d *Dispatcher[H]) Dispatch(c *blas.Call) (H, error) {
	var zero H

	key := KeyOf(c)
	h, ok := d.table.Lookup(key)
	if !ok {
		d.warn.Once(KindDatatype, key.String(),
			fmt.Sprintf("%s WARN: unsupported datatype: %s", d.prefix, key))
		return zero, fmt.Errorf("%w: %s", ErrUnsupportedDatatype, key)
	}

	if !d.accepts(c.Function) {
		d.warn.Once(KindFunction, c.Name,
			fmt.Sprintf("%s WARN: unsupported function: %s", d.prefix, c.Name))
		return zero, fmt.Errorf("%w: %s", ErrUnsupportedFunction, c.Name)
	}

	return h, nil
}
