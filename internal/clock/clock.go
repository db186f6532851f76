package clock

import "time"

// Clock supplies the current time for timestamps and expiry checks.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

// Real returns a Clock backed by the system time, in UTC.
func Real() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed always reports the same instant. Used by tests and by one-off jobs that need a stable cut-off.
type Fixed time.Time

func (f Fixed) Now() time.Time {
	return time.Time(f)
}
