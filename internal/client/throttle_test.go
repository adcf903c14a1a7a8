package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mesa-rpg/battlemap-backend/internal/token"
)

func dragSample(x float64) token.Token {
	return token.Token{ID: token.NumberID(1), Src: "/a.png", X: x, Y: 0, Width: 100, Height: 100}
}

func TestThrottle_BoundsEmitRate(t *testing.T) {
	var emitted []token.Token
	th := NewThrottle(60*time.Millisecond, func(tok token.Token) {
		emitted = append(emitted, tok)
	})

	clock := time.Unix(0, 0)
	th.now = func() time.Time { return clock }

	// burst of samples inside one interval: only the first goes out
	th.Offer(dragSample(10))
	clock = clock.Add(5 * time.Millisecond)
	th.Offer(dragSample(20))
	clock = clock.Add(5 * time.Millisecond)
	th.Offer(dragSample(30))

	assert.Len(t, emitted, 1)
	assert.Equal(t, 10.0, emitted[0].X)

	// interval elapses: next sample emits immediately
	clock = clock.Add(60 * time.Millisecond)
	th.Offer(dragSample(40))
	assert.Len(t, emitted, 2)
	assert.Equal(t, 40.0, emitted[1].X)
}

func TestThrottle_FlushEmitsFinalPosition(t *testing.T) {
	var emitted []token.Token
	th := NewThrottle(60*time.Millisecond, func(tok token.Token) {
		emitted = append(emitted, tok)
	})

	clock := time.Unix(0, 0)
	th.now = func() time.Time { return clock }

	th.Offer(dragSample(10))
	clock = clock.Add(10 * time.Millisecond)
	th.Offer(dragSample(99)) // swallowed by the rate limit

	th.Flush()
	assert.Len(t, emitted, 2, "gesture end must emit the pending final sample")
	assert.Equal(t, 99.0, emitted[1].X)
}

func TestThrottle_FlushWithoutPendingIsNoOp(t *testing.T) {
	count := 0
	th := NewThrottle(60*time.Millisecond, func(token.Token) { count++ })

	th.Flush()
	assert.Zero(t, count)

	th.Offer(dragSample(10)) // emits immediately, nothing pending
	th.Flush()
	assert.Equal(t, 1, count)
}

func TestThrottle_DefaultInterval(t *testing.T) {
	th := NewThrottle(0, func(token.Token) {})
	assert.Equal(t, DefaultDragInterval, th.interval)
}
