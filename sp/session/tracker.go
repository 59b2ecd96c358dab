package session

import "bytes"

// Decision is what the response side must do with the session cookie.
type Decision int

const (
	// DecisionSkip leaves the client cookie untouched.
	DecisionSkip Decision = iota
	// DecisionEmit re-encrypts the session and sends it.
	DecisionEmit
	// DecisionClear removes the cookie from the client.
	DecisionClear
)

func (d Decision) String() string {
	switch d {
	case DecisionSkip:
		return "skip"
	case DecisionEmit:
		return "emit"
	case DecisionClear:
		return "clear"
	}
	return "unknown"
}

// Tracker remembers the serialized session seen at request start.
type Tracker struct {
	orig []byte
	err  error
}

func NewTracker(s *Session) Tracker {
	orig, err := s.Canonical()
	return Tracker{orig: orig, err: err}
}

// Decide compares current against the baseline. A session that cannot be
// serialized is reported as DecisionEmit together with the error so the
// caller can log it and drop the cookie.
func (t Tracker) Decide(current *Session, touched bool) (Decision, error) {
	if current == nil {
		return DecisionClear, nil
	}
	val, err := current.Canonical()
	if err != nil {
		return DecisionEmit, err
	}
	if t.err == nil && bytes.Equal(val, t.orig) && !touched {
		return DecisionSkip, nil
	}
	return DecisionEmit, nil
}
