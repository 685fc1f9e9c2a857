package physix

import (
	"time"
)

// Time tracks the wall clock between host frames.
type Time struct {
	Time time.Time
	Dt   time.Duration
}

func NewTime(now time.Time) *Time {
	return &Time{Time: now}
}

// Tick records now and the time elapsed since the previous tick.
func (t *Time) Tick(now time.Time) {
	t.Dt = now.Sub(t.Time)
	t.Time = now
}

// Seconds returns Dt in seconds.
func (t *Time) Seconds() float64 {
	return t.Dt.Seconds()
}
