package dispatch

import "github.com/rs/zerolog"

// Warning kinds tracked by a WarnCache.
const (
	KindDatatype = "datatype"
	KindFunction = "function"
)

// WarnCache logs a warning at most once per (kind, key) for the lifetime of
// the cache. It is passed to dispatchers explicitly so that tests can reset
// it between cases.
type WarnCache struct {
	log  zerolog.Logger
	seen map[string]map[string]struct{}

	// Disabled makes every warning print; it never changes dispatch results.
	Disabled bool
}

// NewWarnCache creates a cache that writes through log.
func NewWarnCache(log zerolog.Logger) *WarnCache {
	return &WarnCache{
		log:  log,
		seen: make(map[string]map[string]struct{}),
	}
}

// Once logs msg for (kind, key) unless it was logged before. It reports
// whether a line was written.
func (w *WarnCache) Once(kind, key, msg string) bool {
	if !w.Disabled {
		set := w.seen[kind]
		if set == nil {
			set = make(map[string]struct{})
			w.seen[kind] = set
		}
		if _, dup := set[key]; dup {
			return false
		}
		set[key] = struct{}{}
	}
	w.log.Warn().Str("kind", kind).Str("key", key).Msg(msg)
	return true
}

// Seen reports whether (kind, key) was already warned about.
func (w *WarnCache) Seen(kind, key string) bool {
	_, ok := w.seen[kind][key]
	return ok
}

// Reset forgets every recorded key.
func (w *WarnCache) Reset() {
	clear(w.seen)
}
