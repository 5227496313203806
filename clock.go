// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

// 20833ps elapse between edges of the 24MHz FPGA clock. In simulation an
// 8MHz clock is sufficient for combinational logic to settle, i.e. 62500ps
// between edges and 4 fast periods between PHI2 transitions.
const (
	timestep        = 62500 // picoseconds per fast-clock edge
	periodsPerPhase = 4

	picosPerSecond = 1000000000000
)

// A Clock drives the two-phase bus clock of a device at a fixed sub-cycle
// resolution and optionally toggles the slow time-of-day input from an
// independent frequency divider.
//
type Clock struct {
	dev      Device
	todStep  uint64 // half TOD period in picoseconds, 0 disables the toggle
	todCount uint64
	todHigh  bool
	phiHigh  bool
}

// NewClock returns a clock driver for dev. todFrequency is the TOD signal
// frequency in Hz; 0 disables TOD generation entirely.
//
func NewClock(dev Device, todFrequency uint64) *Clock {
	c := &Clock{dev: dev}
	if todFrequency > 0 {
		c.todStep = picosPerSecond / todFrequency / 2
	}
	return c
}

// period runs one full fast-clock period. The device clocks sequential logic
// on the rising edge, so non-clock inputs changed on the falling edge are
// settled with a single Eval call per level.
func (c *Clock) period() {
	c.dev.SetClk(false)
	c.dev.Eval()
	c.dev.TimeInc(timestep)
	c.dev.SetClk(true)
	c.dev.Eval()
	c.dev.TimeInc(timestep)

	if c.todStep == 0 {
		return
	}
	if c.todCount += 2 * timestep; c.todCount >= c.todStep {
		c.todHigh = !c.todHigh
		// keep the remainder so the toggle does not drift over long runs
		c.todCount -= c.todStep
		in := c.dev.BusIn() &^ (1 << InTOD)
		if c.todHigh {
			in |= 1 << InTOD
		}
		c.dev.SetBusIn(in)
	}
}

// Phi2 drives the high phase of the bus clock. Re-entering the high phase is
// a no-op, so address and data changes inserted mid-phase do not cost extra
// evaluations.
func (c *Clock) Phi2() {
	if c.phiHigh {
		return
	}
	c.phiHigh = true
	c.dev.SetBusIn(c.dev.BusIn() | 1<<InPHI2)
	for i := 0; i < periodsPerPhase; i++ {
		c.period()
	}
}

// Phi1 drives the low phase of the bus clock.
func (c *Clock) Phi1() {
	c.phiHigh = false
	c.dev.SetBusIn(c.dev.BusIn() &^ (1 << InPHI2))
	for i := 0; i < periodsPerPhase; i++ {
		c.period()
	}
}

// Cycle runs one full bus cycle: a high phase followed by a low phase.
func (c *Clock) Cycle() {
	c.Phi2()
	c.Phi1()
}
