// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package tracetest provides utility functions for testing trace replays.
//
package tracetest

import (
	"strings"
	"testing"

	"github.com/db47h/ciasim"
)

// Replay replays the input trace against dev and returns the emitted trace.
// Any replay error fails the test.
//
func Replay(t *testing.T, dev ciasim.Device, todFrequency uint64, input string) string {
	t.Helper()
	var out strings.Builder
	rp := ciasim.NewReplay(dev, todFrequency)
	if err := rp.Run(strings.NewReader(input), &out); err != nil {
		t.Fatalf("replay: %v", err)
	}
	return out.String()
}

// Compare replays input against dev and fails the test at the first line
// where the emitted trace diverges from the golden trace.
//
func Compare(t *testing.T, dev ciasim.Device, todFrequency uint64, input, golden string) {
	t.Helper()
	got := Replay(t, dev, todFrequency, input)
	g := lines(got)
	w := lines(golden)
	for i := 0; i < len(g) && i < len(w); i++ {
		if g[i] != w[i] {
			t.Fatalf("line %d: got %q, want %q", i+1, g[i], w[i])
		}
	}
	if len(g) != len(w) {
		t.Fatalf("emitted %d lines, want %d", len(g), len(w))
	}
}

// RoundTrip replays input against a fresh device, replays the emitted trace
// against another fresh device, and fails unless the second output is
// byte-for-byte identical to the first. It returns the first output.
//
func RoundTrip(t *testing.T, newDev func() ciasim.Device, todFrequency uint64, input string) string {
	t.Helper()
	first := Replay(t, newDev(), todFrequency, input)
	second := Replay(t, newDev(), todFrequency, first)
	if first != second {
		t.Fatalf("replay of emitted trace diverged:\nfirst:\n%ssecond:\n%s", first, second)
	}
	return first
}

func lines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
