// Package spicompat exposes a QSPI device in single-lane mode through the
// TinyGo drivers.SPI interface, so existing peripheral drivers can run on
// a QSPI controller without change.
//
// QSPI hardware is half duplex: a full-duplex Tx is emulated as a write
// followed by a read under separate command headers. That is fine for
// register-style peripherals, which is what the adapter is for; it cannot
// serve devices that depend on true simultaneous shift-in/shift-out.
package spicompat

import (
	"tinygo.org/x/drivers"

	"quadspi-go/qspi"
)

// Bus adapts a *qspi.Device to drivers.SPI.
type Bus struct {
	dev *qspi.Device
}

var _ drivers.SPI = (*Bus)(nil)

// New wraps dev. Callers should configure the device for single-lane data
// with no instruction, address or dummy phases (the constructor default).
func New(dev *qspi.Device) *Bus {
	return &Bus{dev: dev}
}

// Tx sends w and then fills r, each as its own data phase.
func (b *Bus) Tx(w, r []byte) error {
	return b.dev.CommandTransfer(qspi.None, qspi.None, w, r)
}

// Transfer sends one byte and reads one byte back.
func (b *Bus) Transfer(c byte) (byte, error) {
	w := [1]byte{c}
	var r [1]byte
	if err := b.dev.CommandTransfer(qspi.None, qspi.None, w[:], r[:]); err != nil {
		return 0, err
	}
	return r[0], nil
}
