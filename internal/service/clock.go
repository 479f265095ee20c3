package service

import "time"

// Clock supplies timestamps for attempt events. Injected so tests can drive
// time deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewSystemClock() Clock {
	return systemClock{}
}
