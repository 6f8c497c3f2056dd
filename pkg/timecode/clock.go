package timecode

import "time"

// Clock supplies the current instant. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock with its monotonic reading.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Epoch is a start instant captured once; timestamps are measured from it.
type Epoch struct {
	clock Clock
	start time.Time
}

// NewEpoch captures the current instant of clock as the epoch.
// A nil clock uses the system clock.
func NewEpoch(clock Clock) *Epoch {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Epoch{
		clock: clock,
		start: clock.Now(),
	}
}

// Start returns the captured epoch instant.
func (e *Epoch) Start() time.Time {
	return e.start
}

// Seconds returns the time elapsed since the epoch in seconds.
// A clock that steps backwards before the epoch yields 0.
func (e *Epoch) Seconds() float64 {
	d := e.clock.Now().Sub(e.start)
	if d < 0 {
		return 0
	}
	return d.Seconds()
}

// Timecode formats the current elapsed time.
func (e *Epoch) Timecode() string {
	return Format(e.Seconds())
}

// ManualClock is a Clock advanced explicitly. It is not safe for concurrent use.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a clock reading start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual reading.
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.now = t
}
