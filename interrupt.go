// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package ciasim

// An IRQDetector watches the active-low interrupt output of a device for
// falling edges and captures the debug ICR snapshot when one fires.
//
type IRQDetector struct {
	dev  Device
	prev bool // previous /IRQ level, true = inactive
}

// NewIRQDetector returns a detector with the line initially not asserted.
func NewIRQDetector(dev Device) *IRQDetector {
	return &IRQDetector{dev: dev, prev: true}
}

// Sample checks the interrupt output level. It reports whether the line
// transitioned from inactive to active since the previous sample, together
// with the ICR snapshot captured at the transition. Firings are never
// merged: each transition is reported exactly once.
func (d *IRQDetector) Sample() (icr uint8, fired bool) {
	n := d.dev.BusOut()&(1<<OutIRQn) != 0
	fired = d.prev && !n
	d.prev = n
	if !fired {
		return 0, false
	}
	return d.dev.ICR(), true
}
