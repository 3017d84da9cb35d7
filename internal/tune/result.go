package tune

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

// NoSolution is the index reported when no candidate could run.
const NoSolution = -1

// Row is one line of the tuning log.
type Row struct {
	Fingerprint Fingerprint
	Solution    int
}

// Sample is one timed candidate: the summed time of all hot iterations.
type Sample struct {
	Fingerprint Fingerprint
	Variant     int
	Elapsed     time.Duration
}

// Result collects the best solution per fingerprint in first-seen order.
// It has a single writer and is not synchronized.
type Result struct {
	rows  [2][]Row
	index map[string]int
}

// NewResult creates an empty result.
func NewResult() *Result {
	return &Result{index: make(map[string]int)}
}

// Add records a solution. Negative solutions are not logged and a
// fingerprint that is already present keeps its first solution.
func (r *Result) Add(fp Fingerprint, solution int) bool {
	if solution < 0 {
		return false
	}
	key := fp.Key()
	if _, ok := r.index[key]; ok {
		return false
	}
	r.index[key] = solution
	r.rows[fp.Section] = append(r.rows[fp.Section], Row{Fingerprint: fp, Solution: solution})
	return true
}

// Best returns the solution recorded for fp.
func (r *Result) Best(fp Fingerprint) (int, bool) {
	s, ok := r.index[fp.Key()]
	return s, ok
}

// Rows returns the rows of one section.
func (r *Result) Rows(s Section) []Row { return r.rows[s] }

// Len returns the total number of rows.
func (r *Result) Len() int { return len(r.rows[NonStrided]) + len(r.rows[Strided]) }

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// WriteTo writes the tuning log: the non-strided section, a blank line,
// then the strided section. Empty sections are omitted.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	first := true
	for _, s := range []Section{NonStrided, Strided} {
		rows := r.rows[s]
		if len(rows) == 0 {
			continue
		}
		if !first {
			if _, err := io.WriteString(cw, "\n"); err != nil {
				return cw.n, err
			}
		}
		first = false

		out := csv.NewWriter(cw)
		if err := out.Write(s.Header()); err != nil {
			return cw.n, err
		}
		for _, row := range rows {
			rec := append(append([]string(nil), row.Fingerprint.Fields...), strconv.Itoa(row.Solution))
			if err := out.Write(rec); err != nil {
				return cw.n, err
			}
		}
		out.Flush()
		if err := out.Error(); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}
