package engine

import "time"

// Timer is a handle to a scheduled callback.
type Timer interface {
	// Stop cancels the callback and reports whether it was still
	// pending.
	Stop() bool
}

// Scheduler schedules one-shot callbacks. The engine reaches the clock
// only through this seam, so tests can drive reveal timing by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type wallScheduler struct{}

// NewScheduler returns the wall-clock scheduler backed by
// time.AfterFunc.
func NewScheduler() Scheduler {
	return wallScheduler{}
}

func (wallScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
