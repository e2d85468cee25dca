package timing

import "time"

// Stopwatch measures elapsed time since its last reset.
type Stopwatch struct {
	clock Clock
	start time.Time
}

// NewStopwatch returns a stopwatch started at the clock's current time.
// A nil clock selects the system clock.
func NewStopwatch(clock Clock) *Stopwatch {
	if clock == nil {
		clock = System()
	}
	return &Stopwatch{clock: clock, start: clock.Now()}
}

// Reset restarts the measurement at the current time.
func (s *Stopwatch) Reset() {
	s.start = s.clock.Now()
}

// Elapsed returns the time since the last reset.
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

// Exceeded reports whether more than budget has elapsed.
func (s *Stopwatch) Exceeded(budget time.Duration) bool {
	return s.Elapsed() > budget
}
