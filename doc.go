/*
Package ciasim replays a textual trace of CIA bus transactions against a
simulated MOS 6526/8521 device core and emits a normalized trace suitable for
diffing against a golden reference.

Traces contain one record per line:

	cycles R/W/I register/port/pin value

Record targets:

  - 0-F: register address (R/W/I)
  - PA, PB: port input/output (R/W)
  - RES, SP, CNT, TOD, FLAG: pin input (W)
  - IRQ, SP, CNT, PC: pin output (R)

No processing is done for interrupt (I) input records, however a line carrying
the ICR register address and value is emitted for every interrupt detected
while stepping, in order to facilitate comparison with the input file.

The engine is strictly single-threaded: one device instance is driven one
record at a time, and simulated time is advanced explicitly by the clock
driver.

*/
package ciasim
