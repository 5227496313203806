// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// A Replay drives a device through a trace one record at a time: it resolves
// carried cycle debt, steps bus cycles while watching the interrupt output,
// applies the operation and emits the (possibly rewritten) record.
//
// The cycle accounting invariant: the cycles consumed while processing one
// input record always equal its requested delta plus any carried debt,
// modulo the cycle elided after a register access. Spliced interrupt records
// partition a wait into sub-intervals but never add or remove cycles.
//
type Replay struct {
	eng *Engine
	clk *Clock
	irq *IRQDetector
	w   *bufio.Writer

	// accounting state, mutated only post-step, post-apply and
	// post-interrupt-emit
	skipCycle bool // next wait must not re-step the cycle a register access consumed
	carried   int  // cycles folded in from preceding interrupt input records
}

// NewReplay returns a replay driver for dev, generating the TOD input at
// todFrequency Hz (0 disables it). The device is reset before the first
// record is processed.
//
func NewReplay(dev Device, todFrequency uint64) *Replay {
	clk := NewClock(dev, todFrequency)
	rp := &Replay{
		eng: NewEngine(dev, clk),
		clk: clk,
		irq: NewIRQDetector(dev),
	}
	rp.eng.Reset()
	return rp
}

// Run replays the trace read from r and writes the normalized trace to w.
// The first fatal error stops the replay and is returned as a *LineError;
// output emitted before the failure is flushed for forensic diffing.
//
func (rp *Replay) Run(r io.Reader, w io.Writer) error {
	rp.w = bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		if err := rp.step(line); err != nil {
			rp.w.Flush()
			return &LineError{Line: lineno, Text: line, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		rp.w.Flush()
		return errors.Wrap(err, "read trace")
	}
	return rp.w.Flush()
}

func (rp *Replay) step(line string) error {
	rec, err := ParseRecord(line)
	if err != nil {
		return err
	}

	if rec.Op == OpInterrupt {
		// Interrupt input records carry no replay semantics: their cycle
		// amount folds into the next record's wait. A pending skip is left
		// for that wait to consume.
		rp.carried += rec.Cycles
		return nil
	}

	cycles := rec.Cycles + rp.carried
	rp.carried = 0

	if rp.skipCycle && cycles == 0 && rec.Op == OpWrite &&
		(rec.Target.Kind == Register || rec.Target.Kind == Port) {
		return errors.Wrap(ErrProtocolViolation,
			"cycle skip pending on a zero-cycle bus write")
	}

	// Step the requested wait, splicing in a record for every interrupt
	// edge. The first cycle is elided when the previous register access
	// already consumed it.
	spent := 0
	for i := 0; i < cycles; i++ {
		if !rp.skipCycle || i > 0 {
			rp.clk.Cycle()
		}
		if icr, fired := rp.irq.Sample(); fired {
			if err := rp.emitInterrupt(i-spent, icr); err != nil {
				return err
			}
			spent = i
		}
	}
	if cycles > 0 {
		rp.skipCycle = false
	}
	cycles -= spent

	switch rec.Target.Kind {
	case Register:
		if rec.Op == OpRead {
			rec.Value = rp.eng.ReadRegister(rec.Target.Reg)
		} else {
			rp.eng.WriteRegister(rec.Target.Reg, rec.Value)
		}
		// the access itself consumed one bus cycle
		rp.skipCycle = true
	case Port:
		if rec.Op == OpRead {
			rec.Value = rp.eng.ReadPort(rec.Target)
		} else {
			rp.eng.WritePort(rec.Target, rec.Value)
		}
	case OutputPin:
		rec.Value = rp.eng.ReadPin(rec.Target)
	default:
		rp.eng.WritePin(rec.Target, rec.Value)
	}

	rec.Cycles = cycles
	if err := rp.emit(&rec); err != nil {
		return err
	}

	if rec.Target.Kind == Register {
		// an edge raised during the access cycle itself belongs after this
		// record, at zero cycle distance
		if icr, fired := rp.irq.Sample(); fired {
			return rp.emitInterrupt(0, icr)
		}
	}
	return nil
}

func (rp *Replay) emit(rec *Record) error {
	if _, err := fmt.Fprintln(rp.w, rec.String()); err != nil {
		return errors.Wrap(err, "write trace")
	}
	return nil
}

func (rp *Replay) emitInterrupt(cycles int, icr uint8) error {
	return rp.emit(&Record{Cycles: cycles, Op: OpInterrupt, Target: icrSignal, Value: icr})
}
