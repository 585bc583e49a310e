package qspi

// BusWidth selects how many parallel lines a transaction phase drives.
type BusWidth uint8

const (
	WidthNone BusWidth = iota
	WidthSingle
	WidthDual
	WidthQuad
)

// FieldSize is the bit width of the address or alternate-bytes phase.
type FieldSize uint8

const (
	Size8 FieldSize = iota
	Size16
	Size24
	Size32
)

// Bits returns the field width in bits.
func (s FieldSize) Bits() int {
	switch s {
	case Size8:
		return 8
	case Size16:
		return 16
	case Size24:
		return 24
	case Size32:
		return 32
	default:
		return 0
	}
}

// Phase describes one stage of a transaction. Disabled means the phase is
// absent from the wire entirely; WidthNone keeps the field plumbing but
// sends nothing.
type Phase struct {
	Width    BusWidth
	Value    uint32
	Size     FieldSize // address/alt only
	Disabled bool
}

// Command is the caller-level description of one bus transaction, built by
// the driver from its stored format plus per-call values.
type Command struct {
	Instruction Phase
	Address     Phase
	Alt         Phase
	Data        Phase // Value/Size unused

	// DummyCycles are inserted after the alt phase. No upper bound is
	// enforced here; controller-specific limits surface at execution.
	DummyCycles int
}

// LineMode is the controller's tri-state encoding of a phase's bus width.
type LineMode uint8

const (
	LinesNone LineMode = iota
	Lines1
	Lines2
	Lines4
)

// Lanes returns the number of active signal lines, 0 for LinesNone.
func (m LineMode) Lanes() int {
	switch m {
	case Lines1:
		return 1
	case Lines2:
		return 2
	case Lines4:
		return 4
	default:
		return 0
	}
}

// Address/alt size field positions in the encoded descriptor, matching the
// controller's communication configuration register layout.
const (
	addrSizePos  = 12
	addrSizeMask = 0x3 << addrSizePos
	altSizePos   = 16
	altSizeMask  = 0x3 << altSizePos
)

// Descriptor is the validated, hardware-ready form of a Command, handed to
// the Port for execution.
type Descriptor struct {
	InstructionMode LineMode
	Instruction     uint32

	AddressMode LineMode
	Address     uint32
	AddressSize uint32 // packed at addrSizePos

	AltMode  LineMode
	AltBytes uint32
	AltSize  uint32 // packed at altSizePos

	DummyCycles int

	DataMode LineMode
	NbData   int
}

// AddressBits returns the address field width in bits, 0 when the phase
// is off.
func (d *Descriptor) AddressBits() int {
	if d.AddressMode == LinesNone {
		return 0
	}
	return (int((d.AddressSize&addrSizeMask)>>addrSizePos) + 1) * 8
}

// AltBits returns the alternate-bytes field width in bits, 0 when the
// phase is off.
func (d *Descriptor) AltBits() int {
	if d.AltMode == LinesNone {
		return 0
	}
	return (int((d.AltSize&altSizeMask)>>altSizePos) + 1) * 8
}

// lineMode maps a requested bus width to the wire encoding. Unrecognised
// widths degrade to LinesNone, the controller's reset state.
func lineMode(w BusWidth) LineMode {
	switch w {
	case WidthSingle:
		return Lines1
	case WidthDual:
		return Lines2
	case WidthQuad:
		return Lines4
	default:
		return LinesNone
	}
}

// Encode translates a Command plus data byte count into a Descriptor.
// Pure function: no hardware access, no stored state.
//
// Disabled address/alt phases contribute nothing: mode is forced to
// LinesNone and both value and size are zeroed so stale field contents
// cannot leak onto the wire. A zero data length likewise forces the data
// phase off regardless of the configured data width.
func Encode(c *Command, dataLen int) Descriptor {
	d := Descriptor{
		InstructionMode: lineMode(c.Instruction.Width),
		Instruction:     c.Instruction.Value,
		DummyCycles:     c.DummyCycles,
		NbData:          dataLen,
	}
	if c.Instruction.Disabled {
		d.InstructionMode = LinesNone
		d.Instruction = 0
	}

	if c.Address.Disabled {
		d.AddressMode = LinesNone
	} else {
		d.AddressMode = lineMode(c.Address.Width)
		d.Address = c.Address.Value
		d.AddressSize = (uint32(c.Address.Size) << addrSizePos) & addrSizeMask
	}

	if c.Alt.Disabled {
		d.AltMode = LinesNone
	} else {
		d.AltMode = lineMode(c.Alt.Width)
		d.AltBytes = c.Alt.Value
		d.AltSize = (uint32(c.Alt.Size) << altSizePos) & altSizeMask
	}

	if dataLen == 0 {
		d.DataMode = LinesNone
	} else {
		d.DataMode = lineMode(c.Data.Width)
	}
	return d
}
