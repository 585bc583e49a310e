// Package pinmap resolves logical pin numbers to the QSPI controller each
// pin routes to. Boards publish one map per pin role (data, clock, select);
// the driver requires every pin of an instance to resolve to the same
// controller before it will touch hardware.
package pinmap

import "quadspi-go/errcode"

// Pin is a logical pin number in the board's numbering scheme.
type Pin int

// NoPin marks an unconnected role (hardware chip select is optional).
const NoPin Pin = -1

// Controller identifies one physical QSPI controller instance.
type Controller uint8

// NoController is the unresolved/unconnected sentinel.
const NoController Controller = 0xFF

// Entry binds one pin to the controller it routes to.
type Entry struct {
	Pin        Pin
	Controller Controller
}

// Map is one role's routing table.
type Map []Entry

// Maps carries the three role tables a board publishes for QSPI.
type Maps struct {
	Data   Map
	Clock  Map
	Select Map
}

// Lookup resolves a pin against one role table. NoPin resolves to
// NoController so optional roles pass through Merge unchanged.
func (m Map) Lookup(p Pin) (Controller, bool) {
	if p == NoPin {
		return NoController, true
	}
	for _, e := range m {
		if e.Pin == p {
			return e.Controller, true
		}
	}
	return NoController, false
}

// Merge combines two resolved controllers. NoController acts as a
// wildcard; any other disagreement is a wiring error.
func Merge(a, b Controller) (Controller, bool) {
	if a == b {
		return a, true
	}
	if a == NoController {
		return b, true
	}
	if b == NoController {
		return a, true
	}
	return NoController, false
}

// Identify resolves the six QSPI pin roles and checks they agree on one
// controller. It fails before any hardware state is touched: an
// inconsistent pin set is a configuration error, not a runtime one.
func Identify(m *Maps, io0, io1, io2, io3, sclk, ssel Pin) (Controller, error) {
	d0, ok := m.Data.Lookup(io0)
	if !ok {
		return NoController, errcode.UnknownPin
	}
	d1, ok := m.Data.Lookup(io1)
	if !ok {
		return NoController, errcode.UnknownPin
	}
	d2, ok := m.Data.Lookup(io2)
	if !ok {
		return NoController, errcode.UnknownPin
	}
	d3, ok := m.Data.Lookup(io3)
	if !ok {
		return NoController, errcode.UnknownPin
	}
	ck, ok := m.Clock.Lookup(sclk)
	if !ok {
		return NoController, errcode.UnknownPin
	}
	cs, ok := m.Select.Lookup(ssel)
	if !ok {
		return NoController, errcode.UnknownPin
	}

	first, ok := Merge(d0, d1)
	if !ok {
		return NoController, errcode.BusMismatch
	}
	second, ok := Merge(d2, d3)
	if !ok {
		return NoController, errcode.BusMismatch
	}
	third, ok := Merge(ck, cs)
	if !ok {
		return NoController, errcode.BusMismatch
	}

	merged, ok := Merge(first, second)
	if !ok {
		return NoController, errcode.BusMismatch
	}
	merged, ok = Merge(merged, third)
	if !ok {
		return NoController, errcode.BusMismatch
	}
	if merged == NoController {
		// Every role unconnected: nothing to drive.
		return NoController, errcode.InvalidParams
	}
	return merged, nil
}
