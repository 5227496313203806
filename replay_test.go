package ciasim_test

import (
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/db47h/ciasim"
	"github.com/db47h/ciasim/mos6526"
	"github.com/db47h/ciasim/tracetest"
)

func replayString(t *testing.T, dev ciasim.Device, input string) (string, error) {
	t.Helper()
	var out strings.Builder
	err := ciasim.NewReplay(dev, 0).Run(strings.NewReader(input), &out)
	return out.String(), err
}

// A register write inherently consumes one bus cycle, so an immediately
// following read with a cycle delta of 0 reads back the written value and is
// emitted with delta 0.
func TestReplayWriteThenRead(t *testing.T) {
	tracetest.Compare(t, mos6526.New(mos6526.MOS8521), 0,
		"10 W 5 3F\n0 R 5 3F\n",
		"10 W 5 3F\n0 R 5 3F\n")
}

// An interrupt edge 3 cycles into a 10 cycle wait splits the wait: the
// synthesized record carries delta 3 and the write's own record delta 7.
func TestReplayInterruptSplice(t *testing.T) {
	dev := newFakeDev()
	dev.fireAfter = 4
	tracetest.Compare(t, dev, 0,
		"10 W 5 3F\n",
		"3 I D 81\n7 W 5 3F\n")
}

// Interrupt splicing preserves the order of non-interrupt records and the
// sum of emitted deltas between two consecutive ones.
func TestReplaySpliceCycleSum(t *testing.T) {
	dev := newFakeDev()
	dev.fireAfter = 6
	out := tracetest.Replay(t, dev, 0, "4 W 1 11\n8 W 2 22\n")
	// the write consumes cycle 5, the wait for the second record steps
	// cycles 6-12 with its first iteration elided
	want := "4 W 1 11\n1 I D 81\n7 W 2 22\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

// Interrupt input records carry no replay semantics: their cycle amount is
// folded into the following real record's wait.
func TestReplayInterruptFold(t *testing.T) {
	tracetest.Compare(t, newFakeDev(), 0,
		"3 I D 81\n2 W 5 01\n",
		"5 W 5 01\n")
}

func TestReplayZeroCycleWriteViolation(t *testing.T) {
	out, err := replayString(t, newFakeDev(), "1 W 5 01\n0 W 5 02\n")
	if errors.Cause(err) != ciasim.ErrProtocolViolation {
		t.Fatalf("error = %v, want %v", err, ciasim.ErrProtocolViolation)
	}
	le, ok := err.(*ciasim.LineError)
	if !ok {
		t.Fatalf("error type = %T, want *ciasim.LineError", err)
	}
	if le.Line != 2 || le.Text != "0 W 5 02" {
		t.Errorf("error location = line %d %q, want line 2 %q", le.Line, le.Text, "0 W 5 02")
	}
	if out != "1 W 5 01\n" {
		t.Errorf("output before failure = %q, want %q", out, "1 W 5 01\n")
	}
}

// A zero-cycle record is fine when no cycle skip is owed.
func TestReplayZeroCycleNoSkip(t *testing.T) {
	tracetest.Compare(t, newFakeDev(), 0,
		"0 W 5 01\n1 R 5 00\n",
		"0 W 5 01\n1 R 5 01\n")
}

// A pending skip survives zero-cycle pin records: they consume no bus cycle,
// so the debt carries to the next real wait.
func TestReplaySkipSurvivesPinRecord(t *testing.T) {
	tracetest.Compare(t, newFakeDev(), 0,
		"1 W 5 01\n0 W TOD 1\n1 R 5 00\n",
		"1 W 5 01\n0 W TOD 1\n1 R 5 01\n")
}

func TestReplayInvalidTarget(t *testing.T) {
	out, err := replayString(t, newFakeDev(), "0 W PZ 00\n")
	if errors.Cause(err) != ciasim.ErrInvalidTarget {
		t.Fatalf("error = %v, want %v", err, ciasim.ErrInvalidTarget)
	}
	le, ok := err.(*ciasim.LineError)
	if !ok {
		t.Fatalf("error type = %T, want *ciasim.LineError", err)
	}
	if le.Line != 1 {
		t.Errorf("error line = %d, want 1", le.Line)
	}
	if out != "" {
		t.Errorf("output = %q, want no records", out)
	}
}

func TestReplayPinRecords(t *testing.T) {
	tracetest.Compare(t, newFakeDev(), 0,
		"0 W TOD 1\n0 R IRQ 0\n0 R PC 0\n",
		"0 W TOD 1\n0 R IRQ 1\n0 R PC 1\n")
}

// Replaying an emitted trace against a fresh device is a fixed point. The
// trace programs timer A with a period of 5 cycles: the first underflow
// splices an interrupt record into the long wait, the second one fires again
// after the acknowledging ICR read.
func TestReplayRoundTrip(t *testing.T) {
	const input = `1 W 2 F0
1 W 0 A0
1 R PA 00
1 W 4 05
1 W 5 00
1 W D 81
1 W E 01
20 W 0 00
1 R D 00
5 W 1 42
1 R PB 00
`
	const golden = `1 W 2 F0
1 W 0 A0
1 R PA AF
1 W 4 05
1 W 5 00
1 W D 81
1 W E 01
5 I D 81
15 W 0 00
1 R D 81
2 I D 81
3 W 1 42
1 R PB FF
`
	out := tracetest.RoundTrip(t, func() ciasim.Device {
		return mos6526.New(mos6526.MOS8521)
	}, 0, input)

	if out != golden {
		t.Errorf("normalized trace:\n%swant:\n%s", out, golden)
	}
}

// The TOD generator only affects replay output through the device, but its
// cycle accounting must stay neutral: with interrupts masked off the output
// equals the input.
func TestReplayWithTOD(t *testing.T) {
	tracetest.Compare(t, mos6526.New(mos6526.MOS8521), 50,
		"10 W 0 11\n10 R 0 00\n",
		"10 W 0 11\n10 R 0 00\n")
}
