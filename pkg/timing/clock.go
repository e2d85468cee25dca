// Package timing provides the time sources used to budget per-frame work.
package timing

import "time"

// Clock provides the current time. The scheduler measures its frame budget
// through a Clock so tests can inject a FakeClock.
type Clock interface {
	Now() time.Time
}

// systemClock uses wall-clock time.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System returns the wall-clock Clock.
func System() Clock {
	return systemClock{}
}
