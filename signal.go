// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

import (
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Input bus word bit offsets. The control lines follow the bus's active-low
// convention: /W, /CS and /RES are released high.
const (
	InSP   = 0  // SP pin input
	InCNT  = 1  // CNT pin input
	InTOD  = 2  // TOD pin input
	InFLAG = 3  // /FLAG pin input
	InPB   = 4  // port B input, 8 bits
	InPA   = 12 // port A input, 8 bits
	InData = 20 // write data, 8 bits
	InAddr = 28 // register address, 4 bits
	InWn   = 32 // /W: high selects a read
	InCSn  = 33 // /CS, active low
	InRESn = 34 // /RES, active low
	InPHI2 = 35 // bus clock phase
)

// Output bus word bit offsets.
const (
	OutIRQn = 0  // /IRQ, active low
	OutSP   = 1  // SP pin output driver
	OutCNT  = 2  // CNT pin output driver
	OutPCn  = 3  // /PC, active low
	OutPB   = 4  // port B output driver, 8 bits
	OutDDRB = 12 // port B direction register, 8 bits
	OutPA   = 20 // port A output driver, 8 bits
	OutDDRA = 28 // port A direction register, 8 bits
	OutData = 36 // read data, 8 bits
)

// A Kind classifies a trace target.
type Kind int

// Target kinds, in classification precedence order.
const (
	Register Kind = iota
	Port
	InputPin
	OutputPin
)

// A Direction selects how a signal is accessed: Read samples the device,
// Write asserts a value. SP and CNT resolve to different signals depending
// on direction.
type Direction int

// Access directions.
const (
	Read Direction = iota
	Write
)

// A Signal describes a named position in one of the packed bus words. Signal
// values are looked up from fixed tables and never constructed by callers.
//
type Signal struct {
	Kind Kind
	Name string
	Reg  uint8 // register address, Kind == Register only

	in     uint // value bit offset in the input word (write direction)
	out    uint // value bit offset in the output word (read direction)
	ddr    uint // direction register offset in the output word, ports only
	drv    uint // paired output driver bit, pulled input pins only
	pulled bool // line can also be driven low by the device itself
}

// Width returns the bit width of the signal's value field.
func (s *Signal) Width() uint {
	if s.Kind == Register || s.Kind == Port {
		return 8
	}
	return 1
}

var portTab = map[string]Signal{
	"PA": {Kind: Port, Name: "PA", in: InPA, out: OutPA, ddr: OutDDRA},
	"PB": {Kind: Port, Name: "PB", in: InPB, out: OutPB, ddr: OutDDRB},
}

var outPinTab = map[string]Signal{
	"IRQ": {Kind: OutputPin, Name: "IRQ", out: OutIRQn},
	"SP":  {Kind: OutputPin, Name: "SP", out: OutSP},
	"CNT": {Kind: OutputPin, Name: "CNT", out: OutCNT},
	"PC":  {Kind: OutputPin, Name: "PC", out: OutPCn},
}

var inPinTab = map[string]Signal{
	"SP":   {Kind: InputPin, Name: "SP", in: InSP, drv: OutSP, pulled: true},
	"CNT":  {Kind: InputPin, Name: "CNT", in: InCNT, drv: OutCNT, pulled: true},
	"TOD":  {Kind: InputPin, Name: "TOD", in: InTOD},
	"FLAG": {Kind: InputPin, Name: "FLAG", in: InFLAG},
	"RES":  {Kind: InputPin, Name: "RES", in: InRESn},
}

// Resolve maps a symbolic target name to its signal descriptor for the given
// access direction. Classification is performed in fixed precedence order:
// register address, then port name, then pin name. The register test is a
// strict hexadecimal parse consuming the whole name; a name that parses but
// falls outside the 0-F address range is invalid regardless of any table
// entry.
//
func Resolve(name string, dir Direction) (Signal, error) {
	if reg, err := strconv.ParseUint(name, 16, 64); err == nil {
		if reg > 0xF {
			return Signal{}, errors.Wrapf(ErrInvalidTarget, "register address %s out of range", name)
		}
		return Signal{Kind: Register, Name: fmt.Sprintf("%X", reg), Reg: uint8(reg)}, nil
	}
	if s, ok := portTab[name]; ok {
		return s, nil
	}
	tab := inPinTab
	if dir == Read {
		tab = outPinTab
	}
	if s, ok := tab[name]; ok {
		return s, nil
	}
	return Signal{}, errors.Wrapf(ErrInvalidTarget, "invalid pin/port name %s", name)
}
