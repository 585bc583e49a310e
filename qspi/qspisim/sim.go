// Package qspisim provides a host-side qspi.Port backed by a simulated
// peripheral: a byte-addressable memory plus an instruction-keyed register
// file. It records every descriptor it executes and supports fault
// injection, which is what the integration tests and the selftest binary
// run against.
package qspisim

import (
	"time"

	"quadspi-go/errcode"
	"quadspi-go/qspi"
	"quadspi-go/x/mathx"
)

// Controller implements qspi.Port.
type Controller struct {
	clockHz uint32

	cfg        qspi.ControllerConfig
	configured bool
	inits      int

	history []qspi.Descriptor
	pending *qspi.Descriptor

	mem  []byte
	regs map[uint32][]byte

	cycles uint64

	// Sticky fault injection; clear to resume normal operation.
	ConfigureErr error
	CommandErr   error
	TransmitErr  error
	ReceiveErr   error
}

var _ qspi.Port = (*Controller)(nil)

// New returns a simulator with the given source clock and memory size.
func New(clockHz uint32, memSize int) *Controller {
	return &Controller{
		clockHz: clockHz,
		mem:     make([]byte, memSize),
		regs:    make(map[uint32][]byte),
	}
}

func (c *Controller) BusClockHz() uint32 { return c.clockHz }

func (c *Controller) Configure(cfg qspi.ControllerConfig) error {
	if c.ConfigureErr != nil {
		return c.ConfigureErr
	}
	c.cfg = cfg
	c.configured = true
	c.inits++
	c.pending = nil
	return nil
}

func (c *Controller) Command(d *qspi.Descriptor, _ time.Duration) error {
	if !c.configured {
		return errcode.Error
	}
	if c.CommandErr != nil {
		return c.CommandErr
	}
	cp := *d
	c.history = append(c.history, cp)
	c.pending = &cp
	c.cycles += headerCycles(&cp)
	return nil
}

func (c *Controller) Transmit(p []byte, _ time.Duration) error {
	if c.TransmitErr != nil {
		return c.TransmitErr
	}
	d := c.pending
	if d == nil {
		return errcode.Error
	}
	c.pending = nil
	if d.AddressMode != qspi.LinesNone {
		end := int(d.Address) + len(p)
		if end > len(c.mem) {
			return errcode.Timeout
		}
		copy(c.mem[d.Address:end], p)
	} else {
		c.regs[d.Instruction] = append([]byte(nil), p...)
	}
	c.cycles += dataCycles(d, len(p))
	return nil
}

func (c *Controller) Receive(p []byte, _ time.Duration) error {
	if c.ReceiveErr != nil {
		return c.ReceiveErr
	}
	d := c.pending
	if d == nil {
		return errcode.Error
	}
	c.pending = nil
	if d.AddressMode != qspi.LinesNone {
		end := int(d.Address) + len(p)
		if end > len(c.mem) {
			return errcode.Timeout
		}
		copy(p, c.mem[d.Address:end])
	} else {
		reg := c.regs[d.Instruction]
		n := copy(p, reg)
		for i := n; i < len(p); i++ {
			p[i] = 0
		}
	}
	c.cycles += dataCycles(d, len(p))
	return nil
}

// SetRegister preloads the register file for an instruction, e.g. a device
// identification value read back via CommandTransfer.
func (c *Controller) SetRegister(instruction uint32, value []byte) {
	c.regs[instruction] = append([]byte(nil), value...)
}

// Memory exposes the backing memory for assertions.
func (c *Controller) Memory() []byte { return c.mem }

// Config returns the configuration applied by the last ownership change.
func (c *Controller) Config() qspi.ControllerConfig { return c.cfg }

// Inits counts full controller initialisations.
func (c *Controller) Inits() int { return c.inits }

// History returns every command header executed so far.
func (c *Controller) History() []qspi.Descriptor { return c.history }

// Cycles returns the accumulated SCLK cycle count for all transactions.
func (c *Controller) Cycles() uint64 { return c.cycles }

// headerCycles counts the clocks spent on the instruction, address, alt
// and dummy phases of one command.
func headerCycles(d *qspi.Descriptor) uint64 {
	var n uint64
	if lanes := d.InstructionMode.Lanes(); lanes > 0 {
		n += uint64(mathx.CeilDiv(8, lanes))
	}
	if lanes := d.AddressMode.Lanes(); lanes > 0 {
		n += uint64(mathx.CeilDiv(d.AddressBits(), lanes))
	}
	if lanes := d.AltMode.Lanes(); lanes > 0 {
		n += uint64(mathx.CeilDiv(d.AltBits(), lanes))
	}
	n += uint64(d.DummyCycles)
	return n
}

func dataCycles(d *qspi.Descriptor, byteLen int) uint64 {
	lanes := d.DataMode.Lanes()
	if lanes == 0 {
		return 0
	}
	return uint64(mathx.CeilDiv(byteLen*8, lanes))
}
