package backtest

import "time"

// ClockState is the lifecycle state of a simulation clock.
type ClockState string

const (
	ClockRunning  ClockState = "running"
	ClockComplete ClockState = "complete"
)

// Clock walks a date range one calendar day at a time. All dates are
// normalized to midnight UTC so day comparisons are exact.
type Clock struct {
	start   time.Time
	end     time.Time
	current time.Time
	state   ClockState
}

// NewClock builds a clock spanning [start, end] inclusive.
func NewClock(start, end time.Time) *Clock {
	c := &Clock{start: midnight(start), end: midnight(end)}
	c.Reset()
	return c
}

// Current returns the simulated date.
func (c *Clock) Current() time.Time { return c.current }

// Start returns the first day of the range.
func (c *Clock) Start() time.Time { return c.start }

// End returns the last day of the range.
func (c *Clock) End() time.Time { return c.end }

// Running reports whether the clock has days left to process.
func (c *Clock) Running() bool { return c.state == ClockRunning }

// Advance moves to the next calendar day, flipping to complete once the
// end of the range is passed.
func (c *Clock) Advance() {
	if c.state != ClockRunning {
		return
	}
	c.current = c.current.AddDate(0, 0, 1)
	if c.current.After(c.end) {
		c.state = ClockComplete
	}
}

// IsMarketDay reports whether the current date is a weekday. Exchange
// holidays are not modeled; days without price data are handled by the
// price provider returning no quote.
func (c *Clock) IsMarketDay() bool {
	wd := c.current.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Reset rewinds the clock to the start of the range for another pass.
func (c *Clock) Reset() {
	c.current = c.start
	c.state = ClockRunning
	if c.end.Before(c.start) {
		c.state = ClockComplete
	}
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
