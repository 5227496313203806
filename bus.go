// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

// Control-bit groups in the input bus word.
const (
	busRelease = 0x7 << InWn // /RES high, /CS and /W released
	readCtl    = 0xD << InWn // PHI2 and /RES high, /CS asserted, /W high
	writeCtl   = 0xC << InWn // PHI2 and /RES high, /CS and /W asserted

	keepPins = 1<<InAddr - 1 // preserve pin, port and data fields
	keepData = 1<<InData - 1 // preserve pin and port fields
)

// An Engine applies bus transactions to a device through its packed bus
// words, honoring the direction-dependent semantics of bidirectional ports
// and pulled pins. The engine owns the input bus word for the lifetime of a
// replay; all mutation goes through its methods.
//
type Engine struct {
	dev Device
	clk *Clock
}

// NewEngine returns a transaction engine driving dev through clk.
func NewEngine(dev Device, clk *Clock) *Engine {
	return &Engine{dev: dev, clk: clk}
}

// Reset asserts the device reset over one full bus cycle. The inactive
// levels of /RES, /CS and /W are established before the first cycle.
func (e *Engine) Reset() {
	e.dev.SetClk(false)
	e.dev.SetRst(false)
	e.dev.SetBusIn(busRelease)
	e.dev.SetRst(true)
	e.clk.Cycle()
	e.dev.SetRst(false)
}

// ReadRegister runs one bus cycle with /CS asserted and the register address
// driven, returning the byte sampled from the data field of the output word
// during the high phase.
func (e *Engine) ReadRegister(addr uint8) uint8 {
	e.dev.SetBusIn(e.dev.BusIn()&keepPins | readCtl | uint64(addr)<<InAddr)
	e.clk.Phi2()
	val := uint8(e.dev.BusOut() >> OutData)
	e.clk.Phi1()
	e.dev.SetBusIn(e.dev.BusIn() | 1<<InCSn) // release /CS
	return val
}

// WriteRegister runs one bus cycle with /CS and /W asserted and the register
// address and data driven.
func (e *Engine) WriteRegister(addr, data uint8) {
	e.dev.SetBusIn(e.dev.BusIn()&keepData | writeCtl |
		uint64(addr)<<InAddr | uint64(data)<<InData)
	e.clk.Cycle()
	e.dev.SetBusIn(e.dev.BusIn() | 0x3<<InWn) // release /CS and /W
}

// ReadPort samples a port from the output word. A bit reads back the driven
// value where the direction register marks it as output, and reads as
// released high otherwise.
func (e *Engine) ReadPort(sig Signal) uint8 {
	out := e.dev.BusOut()
	drv := uint8(out >> sig.out)
	ddr := uint8(out >> sig.ddr)
	return drv | ^ddr
}

// WritePort drives a port input field. Bits the device configures as
// outputs keep the device's own driven level; input-configured bits take
// val.
func (e *Engine) WritePort(sig Signal, val uint8) {
	out := e.dev.BusOut()
	drv := uint8(out >> sig.out)
	ddr := uint8(out >> sig.ddr)
	latched := drv&ddr | val&^ddr
	e.dev.SetBusIn(e.dev.BusIn()&^(0xFF<<sig.in) | uint64(latched)<<sig.in)
}

// ReadPin samples a single output pin.
func (e *Engine) ReadPin(sig Signal) uint8 {
	return uint8(e.dev.BusOut()>>sig.out) & 1
}

// WritePin drives a single input pin. SP and CNT are shared pulled-down
// lines that the device itself can drive low, so the external level is
// wire-ANDed with the device's own output driver before being applied.
func (e *Engine) WritePin(sig Signal, val uint8) {
	val &= 1
	if sig.pulled {
		val &= uint8(e.dev.BusOut()>>sig.drv) & 1
	}
	e.dev.SetBusIn(e.dev.BusIn()&^(1<<sig.in) | uint64(val)<<sig.in)
}
