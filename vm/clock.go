package vm

// A Clock is the logical clock of a run. It is ticked once per simulated
// access and serves as the recency key of the LRU policy.
type Clock struct {
	now uint64
}

// NewClock creates a clock that has not ticked yet.
func NewClock() *Clock {
	return &Clock{}
}

// Tick advances the clock and returns the new moment.
func (c *Clock) Tick() uint64 {
	c.now++
	return c.now
}

// Now returns the moment of the latest tick.
func (c *Clock) Now() uint64 {
	return c.now
}
