package clock

import "time"

// Clock abstracts time so time-dependent logic can be tested deterministically.
type Clock interface {
	Now() time.Time
}

// System reads the real system clock.
type System struct{}

// Now returns the current system time.
func (System) Now() time.Time {
	return time.Now()
}
