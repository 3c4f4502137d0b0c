package driver

import (
	"time"

	"github.com/mnafees/chopper/v2/internal"
)

// Limiter paces the frame loop
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	WaitForNextFrame()

	// Stop releases any resources held by the limiter
	Stop()
}

// FrameDuration is the wall clock length of one 60 Hz frame
func FrameDuration() time.Duration {
	return time.Second / internal.TimerFrequency
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return noOpLimiter{}
}

type noOpLimiter struct{}

func (noOpLimiter) WaitForNextFrame() {}
func (noOpLimiter) Stop()             {}

// TickerLimiter uses time.Ticker for simple, consistent frame timing.
type TickerLimiter struct {
	ticker *time.Ticker
}

func NewTickerLimiter() *TickerLimiter {
	return &TickerLimiter{
		ticker: time.NewTicker(FrameDuration()),
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
