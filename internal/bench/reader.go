package bench

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/born-ml/blastune/internal/blas"
	"github.com/rs/zerolog"
)

// maxLine bounds a single log line.
const maxLine = 1 << 20

// Reader yields calls from a bench log. Malformed entries are logged and
// skipped; only read errors reach the caller.
type Reader struct {
	src     io.Reader
	log     zerolog.Logger
	skipped int
}

// NewReader creates a reader over src.
func NewReader(src io.Reader, log zerolog.Logger) *Reader {
	return &Reader{src: src, log: log.With().Str("component", "bench").Logger()}
}

// Calls iterates over the entries of the log in order. The sequence stops
// after the first read error, which is yielded with a nil call.
func (r *Reader) Calls() iter.Seq2[*blas.Call, error] {
	return func(yield func(*blas.Call, error) bool) {
		sc := bufio.NewScanner(r.src)
		sc.Buffer(make([]byte, 0, 64*1024), maxLine)

		line := 0
		for sc.Scan() {
			line++
			text := sc.Text()
			if !IsEntry(text) {
				continue
			}

			c, err := ParseLine(text)
			if err != nil {
				var pe *ParseError
				if errors.As(err, &pe) {
					pe.Line = line
				}
				r.skipped++
				r.log.Warn().Err(err).Msg("skipping malformed entry")
				continue
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, fmt.Errorf("bench: read: %w", err))
		}
	}
}

// Skipped returns the number of malformed entries seen so far.
func (r *Reader) Skipped() int { return r.skipped }
