// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package mos6526 provides a behavioral model of the MOS 6526/8521 complex
// interface adapter, implementing the ciasim.Device contract.
//
// The model covers what replay traces exercise: the sixteen register
// addresses, both ports with their data direction registers, the interval
// timers with their phi2 and CNT count modes, the interrupt control
// register, /FLAG edge detection, the /PC handshake pulse and TOD pin
// counting. Serial shifting and the TOD alarm are not modeled.
//
package mos6526

import (
	"github.com/db47h/ciasim"
)

// A Model selects the chip variant.
type Model int

// Chip variants. The NMOS 6526 asserts /IRQ one cycle after the enabling
// condition; the CMOS 8521 asserts it in the same cycle.
const (
	MOS6526 Model = iota
	MOS8521
)

// Register addresses.
const (
	regPRA = iota
	regPRB
	regDDRA
	regDDRB
	regTALO
	regTAHI
	regTBLO
	regTBHI
	regTOD10
	regTODSEC
	regTODMIN
	regTODHR
	regSDR
	regICR
	regCRA
	regCRB
)

// Control register bits.
const (
	crStart   = 1 << 0
	crPBOn    = 1 << 1
	crOutMode = 1 << 2
	crOneShot = 1 << 3
	crLoad    = 1 << 4 // strobe, reads back 0
	craInCNT  = 1 << 5 // timer A counts CNT rising edges
	crbInMask = 3 << 5 // timer B count source
	crbInPhi  = 0 << 5
	crbInCNT  = 1 << 5
	crbInTA   = 2 << 5 // timer A underflows
	cra50Hz   = 1 << 7 // TOD pin runs at 50Hz (divide by 5)
)

// Interrupt control register bits.
const (
	icrTA    = 1 << 0
	icrTB    = 1 << 1
	icrAlarm = 1 << 2
	icrSP    = 1 << 3
	icrFLAG  = 1 << 4
	icrIR    = 1 << 7
)

// A CIA is a clocked behavioral 6526/8521 core. Sequential logic advances on
// the rising edge of the fast clock: register accesses are performed when
// PHI2 rises with /CS asserted, timers count when PHI2 falls.
//
type CIA struct {
	model Model

	busIn  uint64
	busOut uint64
	clk    bool
	rst    bool
	time   uint64

	clkPrev bool
	phiPrev bool

	pra, prb   uint8
	ddra, ddrb uint8

	taLatch, taCount uint16
	tbLatch, tbCount uint16
	cra, crb         uint8

	tod      [4]uint8 // tenths, seconds, minutes, hours
	todTicks int

	sdr     uint8
	icrData uint8
	icrMask uint8
	irq     bool
	irqNext bool // 6526 only: one-cycle delayed assertion

	cntPrev  bool
	flagPrev bool
	todPrev  bool
	pcLow    int // cycles left with /PC held low

	dataOut uint8
}

// New returns a powered-up core of the given model.
func New(model Model) *CIA {
	c := &CIA{model: model}
	c.reset()
	c.update()
	return c
}

// BusIn returns the packed input bus word.
func (c *CIA) BusIn() uint64 { return c.busIn }

// SetBusIn replaces the packed input bus word.
func (c *CIA) SetBusIn(v uint64) { c.busIn = v }

// BusOut returns the packed output bus word.
func (c *CIA) BusOut() uint64 { return c.busOut }

// SetClk sets the fast clock input level.
func (c *CIA) SetClk(level bool) { c.clk = level }

// SetRst sets the reset input level.
func (c *CIA) SetRst(level bool) { c.rst = level }

// TimeInc advances virtual time by ps picoseconds.
func (c *CIA) TimeInc(ps uint64) { c.time += ps }

// ICR returns the debug snapshot of the interrupt control register,
// including the IR flag, without the read-clears side effect of a bus read.
func (c *CIA) ICR() uint8 {
	v := c.icrData
	if c.irq {
		v |= icrIR
	}
	return v
}

// Eval recomputes the output bus word. Sequential logic runs when the fast
// clock input has risen since the previous evaluation.
func (c *CIA) Eval() {
	if c.clk && !c.clkPrev {
		c.rise()
	}
	c.clkPrev = c.clk
	c.update()
}

func (c *CIA) rise() {
	if c.rst || c.busIn&(1<<ciasim.InRESn) == 0 {
		c.reset()
		return
	}

	phi := c.busIn&(1<<ciasim.InPHI2) != 0
	switch {
	case phi && !c.phiPrev:
		c.phiRise()
	case !phi && c.phiPrev:
		c.phiFall()
	}
	c.phiPrev = phi

	c.samplePins()
}

// phiRise performs the bus access for the current cycle, if any.
func (c *CIA) phiRise() {
	if c.busIn&(1<<ciasim.InCSn) != 0 {
		return
	}
	addr := uint8(c.busIn>>ciasim.InAddr) & 0xF
	if c.busIn&(1<<ciasim.InWn) == 0 {
		c.write(addr, uint8(c.busIn>>ciasim.InData))
	} else {
		c.dataOut = c.read(addr)
	}
	if addr == regPRB {
		// handshake: /PC goes low for the cycle following a port B access
		c.pcLow = 2
	}
}

// phiFall clocks the timers and the interrupt output.
func (c *CIA) phiFall() {
	if c.pcLow > 0 {
		c.pcLow--
	}

	taUnder := false
	if c.cra&crStart != 0 && c.cra&craInCNT == 0 {
		taUnder = c.stepTimerA()
	}
	if c.crb&crStart != 0 {
		switch c.crb & crbInMask {
		case crbInPhi:
			c.stepTimerB()
		case crbInTA:
			if taUnder {
				c.stepTimerB()
			}
		}
	}

	c.updateIRQ()
}

func (c *CIA) stepTimerA() bool {
	if c.taCount == 0 {
		c.taCount = c.taLatch
		c.icrData |= icrTA
		if c.cra&crOneShot != 0 {
			c.cra &^= crStart
		}
		return true
	}
	c.taCount--
	return false
}

func (c *CIA) stepTimerB() bool {
	if c.tbCount == 0 {
		c.tbCount = c.tbLatch
		c.icrData |= icrTB
		if c.crb&crOneShot != 0 {
			c.crb &^= crStart
		}
		return true
	}
	c.tbCount--
	return false
}

func (c *CIA) updateIRQ() {
	pending := c.icrData&c.icrMask&0x1F != 0
	if c.model == MOS6526 {
		c.irq = c.irqNext
		c.irqNext = pending
	} else {
		c.irq = pending
	}
}

// samplePins runs the asynchronous pin edge detectors.
func (c *CIA) samplePins() {
	flag := c.busIn&(1<<ciasim.InFLAG) != 0
	if c.flagPrev && !flag {
		c.icrData |= icrFLAG
	}
	c.flagPrev = flag

	cnt := c.busIn&(1<<ciasim.InCNT) != 0
	if cnt && !c.cntPrev {
		if c.cra&(crStart|craInCNT) == crStart|craInCNT {
			c.stepTimerA()
		}
		if c.crb&crStart != 0 && c.crb&crbInMask == crbInCNT {
			c.stepTimerB()
		}
	}
	c.cntPrev = cnt

	tod := c.busIn&(1<<ciasim.InTOD) != 0
	if tod && !c.todPrev {
		c.tickTOD()
	}
	c.todPrev = tod
}

// tickTOD advances the time-of-day counter by one pin period, ticking the
// tenths digit every 6th period (5th when the 50Hz bit is set).
func (c *CIA) tickTOD() {
	div := 6
	if c.cra&cra50Hz != 0 {
		div = 5
	}
	if c.todTicks++; c.todTicks < div {
		return
	}
	c.todTicks = 0
	if c.tod[0]++; c.tod[0] < 10 {
		return
	}
	c.tod[0] = 0
	if c.tod[1]++; c.tod[1] < 60 {
		return
	}
	c.tod[1] = 0
	if c.tod[2]++; c.tod[2] < 60 {
		return
	}
	c.tod[2] = 0
	c.tod[3] = (c.tod[3] + 1) % 24
}

func (c *CIA) read(addr uint8) uint8 {
	switch addr {
	case regPRA:
		return c.pra&c.ddra | uint8(c.busIn>>ciasim.InPA)&^c.ddra
	case regPRB:
		return c.prb&c.ddrb | uint8(c.busIn>>ciasim.InPB)&^c.ddrb
	case regDDRA:
		return c.ddra
	case regDDRB:
		return c.ddrb
	case regTALO:
		return uint8(c.taCount)
	case regTAHI:
		return uint8(c.taCount >> 8)
	case regTBLO:
		return uint8(c.tbCount)
	case regTBHI:
		return uint8(c.tbCount >> 8)
	case regTOD10, regTODSEC, regTODMIN, regTODHR:
		return c.tod[addr-regTOD10]
	case regSDR:
		return c.sdr
	case regICR:
		v := c.icrData
		if c.irq {
			v |= icrIR
		}
		// reading acknowledges all pending interrupts
		c.icrData = 0
		c.irq = false
		c.irqNext = false
		return v
	case regCRA:
		return c.cra &^ crLoad
	default: // regCRB
		return c.crb &^ crLoad
	}
}

func (c *CIA) write(addr, data uint8) {
	switch addr {
	case regPRA:
		c.pra = data
	case regPRB:
		c.prb = data
	case regDDRA:
		c.ddra = data
	case regDDRB:
		c.ddrb = data
	case regTALO:
		c.taLatch = c.taLatch&0xFF00 | uint16(data)
	case regTAHI:
		c.taLatch = c.taLatch&0x00FF | uint16(data)<<8
		if c.cra&crStart == 0 {
			c.taCount = c.taLatch
		}
	case regTBLO:
		c.tbLatch = c.tbLatch&0xFF00 | uint16(data)
	case regTBHI:
		c.tbLatch = c.tbLatch&0x00FF | uint16(data)<<8
		if c.crb&crStart == 0 {
			c.tbCount = c.tbLatch
		}
	case regTOD10, regTODSEC, regTODMIN, regTODHR:
		c.tod[addr-regTOD10] = data
	case regSDR:
		c.sdr = data
	case regICR:
		if data&icrIR != 0 {
			c.icrMask |= data & 0x1F
		} else {
			c.icrMask &^= data & 0x1F
		}
	case regCRA:
		if data&crLoad != 0 {
			c.taCount = c.taLatch
		}
		c.cra = data &^ crLoad
	default: // regCRB
		if data&crLoad != 0 {
			c.tbCount = c.tbLatch
		}
		c.crb = data &^ crLoad
	}
}

func (c *CIA) reset() {
	c.pra, c.prb = 0, 0
	c.ddra, c.ddrb = 0, 0
	c.taLatch, c.tbLatch = 0xFFFF, 0xFFFF
	c.taCount, c.tbCount = 0xFFFF, 0xFFFF
	c.cra, c.crb = 0, 0
	c.tod = [4]uint8{}
	c.todTicks = 0
	c.sdr = 0
	c.icrData, c.icrMask = 0, 0
	c.irq, c.irqNext = false, false
	c.pcLow = 0
	c.dataOut = 0

	c.phiPrev = c.busIn&(1<<ciasim.InPHI2) != 0
	c.cntPrev = c.busIn&(1<<ciasim.InCNT) != 0
	c.flagPrev = c.busIn&(1<<ciasim.InFLAG) != 0
	c.todPrev = c.busIn&(1<<ciasim.InTOD) != 0
}

// update recomputes the combinational output bus word.
func (c *CIA) update() {
	var out uint64
	if !c.irq {
		out |= 1 << ciasim.OutIRQn
	}
	// SP and CNT are open-drain lines, released high when not shifting
	out |= 1 << ciasim.OutSP
	out |= 1 << ciasim.OutCNT
	if c.pcLow == 0 {
		out |= 1 << ciasim.OutPCn
	}
	out |= uint64(c.prb) << ciasim.OutPB
	out |= uint64(c.ddrb) << ciasim.OutDDRB
	out |= uint64(c.pra) << ciasim.OutPA
	out |= uint64(c.ddra) << ciasim.OutDDRA
	out |= uint64(c.dataOut) << ciasim.OutData
	c.busOut = out
}
