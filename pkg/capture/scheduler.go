package capture

import (
	"time"

	"github.com/benbjohnson/clock"
)

type Timer interface {
	Stop() bool
}

// Scheduler is the time source of a Controller.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct {
	clock.Clock
}

// NewScheduler wraps a clock, nil means the wall clock.
func NewScheduler(clk clock.Clock) Scheduler {
	if clk == nil {
		clk = clock.New()
	}
	return &clockScheduler{Clock: clk}
}

func (s *clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.Clock.AfterFunc(d, f)
}
