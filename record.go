// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// An Op identifies a trace record operation.
type Op byte

// Trace operations.
const (
	OpRead      Op = 'R'
	OpWrite     Op = 'W'
	OpInterrupt Op = 'I'
)

// icrAddr is the interrupt control register address, reachable through a
// debug-only port. It is the only legal target for interrupt records.
const icrAddr = 0xD

var icrSignal = Signal{Kind: Register, Name: "D", Reg: icrAddr}

// A Record is one parsed trace line: a cycle delta relative to the previous
// record, an operation, a resolved target and a value.
//
type Record struct {
	Cycles int
	Op     Op
	Target Signal
	Value  uint8
}

// ParseRecord parses one trace line of the form
//
//	cycles R/W/I register/port/pin value
//
// into a record, resolving the target for the direction implied by the
// operation. Values are hexadecimal for register and port targets and a
// decimal bit for pins; a value exceeding the target's width is an error.
//
func ParseRecord(line string) (Record, error) {
	var r Record

	fields := strings.Fields(line)
	if len(fields) != 4 {
		return r, errors.Wrapf(ErrMalformedRecord, "%d fields, want 4", len(fields))
	}

	cycles, err := strconv.Atoi(fields[0])
	if err != nil || cycles < 0 {
		return r, errors.Wrapf(ErrMalformedRecord, "bad cycle count %s", fields[0])
	}
	r.Cycles = cycles

	if len(fields[1]) != 1 {
		return r, errors.Wrapf(ErrInvalidOperation, "%s", fields[1])
	}
	switch op := Op(fields[1][0]); op {
	case OpRead, OpWrite, OpInterrupt:
		r.Op = op
	default:
		return r, errors.Wrapf(ErrInvalidOperation, "%s", fields[1])
	}

	dir := Write
	if r.Op == OpRead {
		dir = Read
	}
	if r.Target, err = Resolve(fields[2], dir); err != nil {
		return r, err
	}
	if r.Op == OpInterrupt && (r.Target.Kind != Register || r.Target.Reg != icrAddr) {
		return r, errors.Wrapf(ErrInvalidTarget, "interrupt record target %s", fields[2])
	}

	if r.Value, err = parseValue(fields[3], &r.Target); err != nil {
		return r, err
	}
	return r, nil
}

func parseValue(s string, sig *Signal) (uint8, error) {
	base := 10
	if sig.Width() == 8 {
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedRecord, "bad value %s", s)
	}
	if max := uint64(1)<<sig.Width() - 1; v > max {
		return 0, errors.Wrapf(ErrValueOutOfRange, "value %s exceeds %d bit(s)", s, sig.Width())
	}
	return uint8(v), nil
}

// String renders the record in trace format: a fixed two-hex-digit value
// field for register and port targets, a single decimal digit for pins.
// The line terminator is left to the writer.
func (r *Record) String() string {
	if r.Target.Width() == 8 {
		return fmt.Sprintf("%d %c %s %02X", r.Cycles, r.Op, r.Target.Name, r.Value)
	}
	return fmt.Sprintf("%d %c %s %d", r.Cycles, r.Op, r.Target.Name, r.Value)
}
