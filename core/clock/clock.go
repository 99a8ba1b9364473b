package clock

import "time"

// Clock abstracts "now" so that status derivation, block expiry and
// recurrence expansion can be tested with a fixed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// New returns a Clock backed by the system wall clock.
func New() Clock {
	return systemClock{}
}

// Fixed is a Clock frozen at a settable instant.
type Fixed struct {
	T time.Time
}

func (f *Fixed) Now() time.Time {
	return f.T
}

// NewFixed returns a Clock that always reports t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{T: t}
}
