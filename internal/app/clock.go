package app

import "time"

// Clock abstracts wall-clock access so eligibility and scheduling decisions
// can be tested against a fixed date.
type Clock interface {
	Now() time.Time
	// Today returns the current calendar date truncated to midnight UTC.
	Today() time.Time
}

type systemClock struct{}

func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) Today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
