package client

import (
	"time"

	"github.com/mesa-rpg/battlemap-backend/internal/token"
)

// DefaultDragInterval bounds how often a live drag gesture emits an
// updateToken intent.
const DefaultDragInterval = 60 * time.Millisecond

// Throttle rate-limits continuous drag samples. At most one emit per
// interval while the gesture is in progress; Flush always emits the latest
// sample so the final position converges even when intermediate ones were
// swallowed.
type Throttle struct {
	interval time.Duration
	emit     func(token.Token)
	now      func() time.Time

	last    time.Time
	pending *token.Token
}

func NewThrottle(interval time.Duration, emit func(token.Token)) *Throttle {
	if interval <= 0 {
		interval = DefaultDragInterval
	}
	return &Throttle{interval: interval, emit: emit, now: time.Now}
}

// Offer feeds one drag sample. It emits immediately when the interval has
// elapsed since the last emit, otherwise keeps the sample as the pending
// final value.
func (th *Throttle) Offer(t token.Token) {
	now := th.now()
	if now.Sub(th.last) >= th.interval {
		th.last = now
		th.pending = nil
		th.emit(t)
		return
	}
	th.pending = &t
}

// Flush ends the gesture: whatever sample is still pending goes out
// unthrottled.
func (th *Throttle) Flush() {
	if th.pending == nil {
		return
	}
	t := *th.pending
	th.pending = nil
	th.last = th.now()
	th.emit(t)
}
