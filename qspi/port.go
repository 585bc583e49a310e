package qspi

import (
	"time"

	"quadspi-go/qspi/pinmap"
)

// DefaultTimeout bounds every blocking hardware primitive. There is no
// cancellation; an operation either completes in time or reports an error.
const DefaultTimeout = 5 * time.Second

// ClockMode selects clock polarity/phase at idle.
type ClockMode uint8

const (
	Mode0 ClockMode = 0 // clock idle low
	Mode3 ClockMode = 3 // clock idle high
)

// ControllerConfig is the full controller initialisation block applied
// whenever an instance takes ownership of the hardware.
type ControllerConfig struct {
	Prescaler     uint8 // bus clock divider minus one
	ClockMode     ClockMode
	SampleShift   bool  // sample half a cycle late
	CSHighCycles  uint8 // chip-select high time between commands
	FlashSizeLog2 uint8 // addressable bytes = 1 << (FlashSizeLog2 + 1)
	DualFlash     bool  // flag only; dual-bank arbitration is out of scope

	IO0, IO1, IO2, IO3 pinmap.Pin
	SCLK, SSEL         pinmap.Pin
}

// Port is the opaque execution capability of one physical controller.
// Implementations own register-level detail; the driver core never sees it.
// All calls block until completion or timeout.
type Port interface {
	// Configure fully (re)initialises the controller.
	Configure(cfg ControllerConfig) error
	// Command issues the instruction/address/alt/dummy header.
	Command(d *Descriptor, timeout time.Duration) error
	// Transmit sends the data phase after a Command.
	Transmit(p []byte, timeout time.Duration) error
	// Receive reads the data phase after a Command.
	Receive(p []byte, timeout time.Duration) error
	// BusClockHz reports the source clock feeding the prescaler.
	BusClockHz() uint32
}
