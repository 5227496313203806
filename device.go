// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

// A Device is the simulated chip core driven by the engine. The engine never
// inspects device state beyond the packed output bus word and the debug ICR
// snapshot.
//
// The input bus word is read-write by the engine, the output bus word is
// read-only. Eval recomputes outputs from current inputs; TimeInc advances
// virtual time. Implementations are expected to clock their sequential logic
// on the rising edge of the fast clock set by SetClk.
//
type Device interface {
	// BusIn returns the current packed input bus word.
	BusIn() uint64
	// SetBusIn replaces the packed input bus word.
	SetBusIn(uint64)
	// BusOut returns the packed output bus word.
	BusOut() uint64
	// ICR returns the debug-only interrupt control register snapshot.
	ICR() uint8
	// SetClk sets the fast clock input level.
	SetClk(level bool)
	// SetRst sets the reset input level.
	SetRst(level bool)
	// Eval recomputes device outputs from current inputs.
	Eval()
	// TimeInc advances virtual time by the given number of picoseconds.
	TimeInc(ps uint64)
}
