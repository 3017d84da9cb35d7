package blas

// Status is the outcome of validating or executing a call. Every status
// except Success and Continue is also usable as an error value.
type Status int

// Status values. Continue is the validator's "proceed to execution" verdict;
// a quick return is reported as Success.
const (
	Success Status = iota
	InvalidHandle
	NotImplemented
	InvalidPointer
	InvalidSize
	MemoryError
	InternalError
	PerfDegraded
	SizeQueryMismatch
	SizeIncreased
	SizeUnchanged
	InvalidValue
	Continue
	CheckNumericsFail
)

var statusNames = map[Status]string{
	Success:           "success",
	InvalidHandle:     "invalid handle",
	NotImplemented:    "not implemented",
	InvalidPointer:    "invalid pointer",
	InvalidSize:       "invalid size",
	MemoryError:       "memory error",
	InternalError:     "internal error",
	PerfDegraded:      "performance degraded",
	SizeQueryMismatch: "size query mismatch",
	SizeIncreased:     "size increased",
	SizeUnchanged:     "size unchanged",
	InvalidValue:      "invalid value",
	Continue:          "continue",
	CheckNumericsFail: "check numerics fail",
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "unknown status"
}

// Error implements error.
func (s Status) Error() string { return "blas: " + s.String() }

// Err returns nil for Success and Continue and the status itself otherwise.
func (s Status) Err() error {
	if s == Success || s == Continue {
		return nil
	}
	return s
}

// Verdict names the validator outcome of a status.
type Verdict int

// Validator verdicts.
const (
	Proceed Verdict = iota
	QuickReturn
	Reject
)

// Verdict classifies a validator status.
func (s Status) Verdict() Verdict {
	switch s {
	case Continue:
		return Proceed
	case Success:
		return QuickReturn
	default:
		return Reject
	}
}

// String implements fmt.Stringer.
func (v Verdict) String() string {
	switch v {
	case Proceed:
		return "proceed"
	case QuickReturn:
		return "quick-return"
	default:
		return "reject"
	}
}
