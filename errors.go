// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds reported while replaying a trace. All of them are fatal and
// non-recoverable: the input is a pre-recorded deterministic trace, so any
// inconsistency indicates either a corrupt golden file or a logic bug in the
// engine, both of which require human attention.
var (
	ErrMalformedRecord   = errors.New("malformed record")
	ErrInvalidOperation  = errors.New("invalid operation")
	ErrInvalidTarget     = errors.New("invalid target")
	ErrValueOutOfRange   = errors.New("value out of range")
	ErrProtocolViolation = errors.New("protocol violation")
)

// A LineError wraps a fatal replay error together with the 1-based line
// number and verbatim content of the offending trace line.
//
type LineError struct {
	Line int    // 1-based line number
	Text string // verbatim line content
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

// Cause returns the wrapped error so that errors.Cause can recover the
// error kind.
//
func (e *LineError) Cause() error { return e.Err }
