// Package qspi drives a multi-lane serial flash/peripheral bus. A
// transaction is described phase by phase (instruction, address, alternate
// bytes, dummy cycles, data), each phase on 1, 2 or 4 lines; the package
// validates and encodes the description and hands it to an opaque Port for
// execution. Ownership of the physical controller is arbitrated so that
// several logical instances with different formats can share it safely.
//
// All operations are synchronous and bounded by DefaultTimeout. Device
// drivers for specific chips (command sets, erase/program protocols) sit
// on top of this layer.
package qspi

import (
	"quadspi-go/errcode"
	"quadspi-go/qspi/pinmap"
)

// None disables the instruction, address or alt phase when passed for the
// corresponding argument.
const None = -1

// DefaultFrequencyHz is applied when a Config leaves FrequencyHz zero.
const DefaultFrequencyHz = 1_000_000

// Controller init defaults, applied on every ownership change.
const (
	defaultCSHighCycles  = 5
	defaultFlashSizeLog2 = 4
)

// Config describes one logical QSPI instance.
type Config struct {
	IO0, IO1, IO2, IO3 pinmap.Pin
	SCLK               pinmap.Pin
	SSEL               pinmap.Pin // pinmap.NoPin for software chip select

	Mode        ClockMode // Mode0 or Mode3
	FrequencyHz uint32    // 0 means DefaultFrequencyHz
	DualFlash   bool      // passed through to the controller, flag only

	Registry *Registry // nil means the process-wide shared registry
}

// Device is one logical driver instance. Multiple Devices may map to the
// same physical controller; the ownership registry reconfigures the
// hardware whenever a different instance transacts.
type Device struct {
	port       Port
	reg        *Registry
	controller pinmap.Controller
	cfg        Config

	// Transaction format, mutated only via ConfigureFormat/SetFrequency.
	instWidth   BusWidth
	addrWidth   BusWidth
	addrSize    FieldSize
	altWidth    BusWidth
	altSize     FieldSize
	dataWidth   BusWidth
	dummyCycles int
	hz          uint32
}

// New resolves the pin set to a physical controller and returns a logical
// instance over it. The hardware is not touched until the first operation
// acquires ownership. Format defaults to single-lane phases, 24-bit
// address, 8-bit alt, no dummy cycles.
func New(port Port, maps *pinmap.Maps, cfg Config) (*Device, error) {
	if port == nil || maps == nil {
		return nil, errcode.InvalidParams
	}
	if cfg.Mode != Mode0 && cfg.Mode != Mode3 {
		return nil, errcode.InvalidParams
	}
	ctrl, err := pinmap.Identify(maps, cfg.IO0, cfg.IO1, cfg.IO2, cfg.IO3, cfg.SCLK, cfg.SSEL)
	if err != nil {
		return nil, err
	}
	if cfg.FrequencyHz == 0 {
		cfg.FrequencyHz = DefaultFrequencyHz
	}
	reg := cfg.Registry
	if reg == nil {
		reg = sharedRegistry
	}
	return &Device{
		port:       port,
		reg:        reg,
		controller: ctrl,
		cfg:        cfg,
		instWidth:  WidthSingle,
		addrWidth:  WidthSingle,
		addrSize:   Size24,
		altWidth:   WidthSingle,
		altSize:    Size8,
		dataWidth:  WidthSingle,
		hz:         cfg.FrequencyHz,
	}, nil
}

// Controller reports the physical controller this instance resolved to.
func (d *Device) Controller() pinmap.Controller { return d.controller }

// ConfigureFormat sets the per-phase bus widths, field sizes and default
// dummy cycle count used by subsequent transactions. Dummy cycles are
// stored verbatim; controller-specific limits are enforced at execution,
// not here.
func (d *Device) ConfigureFormat(instWidth, addrWidth BusWidth, addrSize FieldSize,
	altWidth BusWidth, altSize FieldSize, dataWidth BusWidth, dummyCycles int) error {
	d.instWidth = instWidth
	d.addrWidth = addrWidth
	d.addrSize = addrSize
	d.altWidth = altWidth
	d.altSize = altSize
	d.dataWidth = dataWidth
	d.dummyCycles = dummyCycles
	return nil
}

// SetFrequency changes the SCLK frequency. An unreachable frequency
// (divider outside [1,256]) fails with invalid_params and leaves the
// stored configuration untouched; otherwise the controller is fully
// reinitialised and this instance becomes its owner.
func (d *Device) SetFrequency(hz uint32) error {
	if _, err := dividerFor(d.port.BusClockHz(), hz); err != nil {
		return err
	}
	d.hz = hz
	return d.reg.reinit(d)
}

// Lock takes the caller-level bus bracket, so a multi-step sequence
// (write a control register, then read status) cannot be interleaved by
// another instance's acquire. Not re-entrant; individual operations do not
// take it themselves, bracketing is the caller's duty.
func (d *Device) Lock() { d.reg.bus.Lock() }

// Unlock releases the bracket taken by Lock.
func (d *Device) Unlock() { d.reg.bus.Unlock() }

// Read fills p from the given address using the configured format, with
// the instruction phase disabled. Returns the number of bytes read.
func (d *Device) Read(address uint32, p []byte) (int, error) {
	return d.readOp(None, None, d.dummyCycles, int64(address), p)
}

// Write sends p to the given address using the configured format, with
// the instruction phase disabled. Returns the number of bytes written.
func (d *Device) Write(address uint32, p []byte) (int, error) {
	return d.writeOp(None, None, d.dummyCycles, int64(address), p)
}

// ReadWith reads with per-call instruction, alt value and dummy cycle
// count overriding the stored defaults. Pass None to disable the
// instruction or alt phase.
func (d *Device) ReadWith(instruction, alt, dummyCycles int, address uint32, p []byte) (int, error) {
	return d.readOp(instruction, alt, dummyCycles, int64(address), p)
}

// WriteWith writes with per-call instruction, alt value and dummy cycle
// count overriding the stored defaults. Pass None to disable the
// instruction or alt phase.
func (d *Device) WriteWith(instruction, alt, dummyCycles int, address uint32, p []byte) (int, error) {
	return d.writeOp(instruction, alt, dummyCycles, int64(address), p)
}

// CommandTransfer performs the register-access idiom: an instruction
// (optionally addressed, None to skip the address phase), an optional
// transmit phase and an optional receive phase, strictly in that order.
// The controller cannot combine transmit and receive under one command
// header, so each data phase re-issues the header. With neither buffer
// supplied, exactly one command-only transaction is sent.
func (d *Device) CommandTransfer(instruction, address int, tx, rx []byte) error {
	if len(tx) == 0 && len(rx) == 0 {
		if err := d.acquire(); err != nil {
			return err
		}
		cmd := d.buildCommand(instruction, int64(address), None, d.dummyCycles)
		desc := Encode(&cmd, 0)
		// The execution primitive wants a nonzero count even with the
		// data phase off.
		desc.NbData = 1
		if err := d.port.Command(&desc, DefaultTimeout); err != nil {
			return hwErr("command", err)
		}
		return nil
	}
	if len(tx) > 0 {
		if _, err := d.writeOp(instruction, None, d.dummyCycles, int64(address), tx); err != nil {
			return err
		}
	}
	if len(rx) > 0 {
		if _, err := d.readOp(instruction, None, d.dummyCycles, int64(address), rx); err != nil {
			return err
		}
	}
	return nil
}

func (d *Device) acquire() error { return d.reg.acquire(d) }

// initialize applies this instance's full controller configuration.
// Called by the registry under its lock on every ownership change.
func (d *Device) initialize() error {
	div, err := dividerFor(d.port.BusClockHz(), d.hz)
	if err != nil {
		return err
	}
	cfg := ControllerConfig{
		Prescaler:     uint8(div - 1),
		ClockMode:     d.cfg.Mode,
		SampleShift:   true,
		CSHighCycles:  defaultCSHighCycles,
		FlashSizeLog2: defaultFlashSizeLog2,
		DualFlash:     d.cfg.DualFlash,
		IO0:           d.cfg.IO0,
		IO1:           d.cfg.IO1,
		IO2:           d.cfg.IO2,
		IO3:           d.cfg.IO3,
		SCLK:          d.cfg.SCLK,
		SSEL:          d.cfg.SSEL,
	}
	if err := d.port.Configure(cfg); err != nil {
		return hwErr("configure", err)
	}
	return nil
}

// buildCommand assembles the caller-level command from the stored format.
// Negative instruction/address/alt values disable the phase; the encoder
// then guarantees no stale value or size reaches the wire.
func (d *Device) buildCommand(instruction int, address int64, alt, dummyCycles int) Command {
	c := Command{
		Instruction: Phase{Width: d.instWidth},
		Address:     Phase{Width: d.addrWidth, Size: d.addrSize},
		Alt:         Phase{Width: d.altWidth, Size: d.altSize},
		Data:        Phase{Width: d.dataWidth},
		DummyCycles: dummyCycles,
	}
	if instruction < 0 {
		c.Instruction.Disabled = true
	} else {
		c.Instruction.Value = uint32(instruction)
	}
	if address < 0 {
		c.Address.Disabled = true
	} else {
		c.Address.Value = uint32(address)
	}
	if alt < 0 {
		c.Alt.Disabled = true
	} else {
		c.Alt.Value = uint32(alt)
	}
	return c
}

func (d *Device) writeOp(instruction, alt, dummyCycles int, address int64, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, errcode.InvalidParams
	}
	if err := d.acquire(); err != nil {
		return 0, err
	}
	cmd := d.buildCommand(instruction, address, alt, dummyCycles)
	desc := Encode(&cmd, len(p))
	if err := d.port.Command(&desc, DefaultTimeout); err != nil {
		return 0, hwErr("command", err)
	}
	if err := d.port.Transmit(p, DefaultTimeout); err != nil {
		return 0, hwErr("transmit", err)
	}
	return len(p), nil
}

func (d *Device) readOp(instruction, alt, dummyCycles int, address int64, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, errcode.InvalidParams
	}
	if err := d.acquire(); err != nil {
		return 0, err
	}
	cmd := d.buildCommand(instruction, address, alt, dummyCycles)
	desc := Encode(&cmd, len(p))
	if err := d.port.Command(&desc, DefaultTimeout); err != nil {
		return 0, hwErr("command", err)
	}
	if err := d.port.Receive(p, DefaultTimeout); err != nil {
		return 0, hwErr("receive", err)
	}
	return len(p), nil
}

func hwErr(op string, err error) error {
	if c, ok := err.(errcode.Code); ok && c == errcode.Timeout {
		return &errcode.E{C: errcode.Timeout, Op: "qspi." + op, Err: err}
	}
	return &errcode.E{C: errcode.Error, Op: "qspi." + op, Err: err}
}
