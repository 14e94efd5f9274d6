package clock

import "time"

// Clock abstracts the wall clock so passes can be tested with fixed times.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}
