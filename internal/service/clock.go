package service

import "time"

// Clock supplies wall-clock timestamps to the services. Injected so that
// window expiry and recorded timestamps are testable with a simulated
// clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the production clock
func SystemClock() Clock {
	return systemClock{}
}
