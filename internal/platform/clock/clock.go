// Package clock exposes the time source shared by the scheduler, the quote cache
// and every expiration check. Production code uses the real clock; tests inject
// a clockwork fake and advance it explicitly.
package clock

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type Clock = clockwork.Clock

func Real() Clock {
	return clockwork.NewRealClock()
}

func NewFake(at time.Time) *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(at)
}

// OrReal returns c, or the real clock when c is nil.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real()
	}
	return c
}
