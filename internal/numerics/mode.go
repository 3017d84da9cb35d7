package numerics

import (
	"fmt"
	"strings"
)

// Mode selects what the guard does. Levels combine as a bitmask.
type Mode uint8

const (
	// Off disables scanning entirely.
	Off Mode = 0
	// Info logs the outcome of every scan.
	Info Mode = 1 << (iota - 1)
	// Warn logs a warning when a non-finite value is found.
	Warn
	// Fail makes a detection fail the call with CheckNumericsFail.
	Fail
)

var modeNames = []struct {
	bit  Mode
	name string
}{
	{Info, "info"},
	{Warn, "warn"},
	{Fail, "fail"},
}

// String renders the mode as "off" or a "|"-joined list of levels.
func (m Mode) String() string {
	if m == Off {
		return "off"
	}
	var parts []string
	for _, n := range modeNames {
		if m&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseMode parses "off" or any "|" or "," separated combination of
// info, warn and fail.
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "off" || s == "0" {
		return Off, nil
	}
	var m Mode
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		found := false
		for _, n := range modeNames {
			if strings.TrimSpace(part) == n.name {
				m |= n.bit
				found = true
				break
			}
		}
		if !found {
			return Off, fmt.Errorf("numerics: unknown check mode %q", part)
		}
	}
	return m, nil
}
