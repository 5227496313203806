package ciasim_test

import (
	"github.com/db47h/ciasim"
)

// fakeDev is a scripted device for engine tests: it latches register writes
// into a flat register file, mirrors them back on reads, counts full bus
// cycles after reset release, and asserts /IRQ once a configured cycle count
// is reached.
type fakeDev struct {
	busIn  uint64
	busOut uint64
	clk    bool
	rst    bool
	time   uint64

	cycles     int // full bus cycles since reset release
	fireAfter  int // assert /IRQ once cycles >= fireAfter, 0 = never
	icr        uint8
	pins       uint64 // static pin/port driver bits merged into the output word
	todToggles int
	evals      int

	regs    [16]uint8
	dataOut uint8
	clkPrev bool
	phiPrev bool
}

func newFakeDev() *fakeDev {
	d := &fakeDev{
		icr:  0x81,
		pins: 1<<ciasim.OutSP | 1<<ciasim.OutCNT | 1<<ciasim.OutPCn,
	}
	d.update()
	return d
}

func (d *fakeDev) BusIn() uint64  { return d.busIn }
func (d *fakeDev) BusOut() uint64 { return d.busOut }
func (d *fakeDev) ICR() uint8     { return d.icr }

func (d *fakeDev) SetClk(level bool) { d.clk = level }

func (d *fakeDev) SetRst(level bool) {
	d.rst = level
	if !level {
		d.cycles = 0
	}
}

func (d *fakeDev) TimeInc(ps uint64) { d.time += ps }

func (d *fakeDev) SetBusIn(v uint64) {
	if v&(1<<ciasim.InPHI2) != 0 && d.busIn&(1<<ciasim.InPHI2) == 0 {
		d.cycles++
	}
	if (v^d.busIn)&(1<<ciasim.InTOD) != 0 {
		d.todToggles++
	}
	d.busIn = v
}

func (d *fakeDev) Eval() {
	d.evals++
	if d.clk && !d.clkPrev {
		phi := d.busIn&(1<<ciasim.InPHI2) != 0
		if phi && !d.phiPrev && d.busIn&(1<<ciasim.InCSn) == 0 {
			addr := uint8(d.busIn>>ciasim.InAddr) & 0xF
			if d.busIn&(1<<ciasim.InWn) == 0 {
				d.regs[addr] = uint8(d.busIn >> ciasim.InData)
			}
			d.dataOut = d.regs[addr]
		}
		d.phiPrev = phi
	}
	d.clkPrev = d.clk
	d.update()
}

func (d *fakeDev) update() {
	out := d.pins
	if d.fireAfter == 0 || d.cycles < d.fireAfter {
		out |= 1 << ciasim.OutIRQn
	}
	out |= uint64(d.dataOut) << ciasim.OutData
	d.busOut = out
}
