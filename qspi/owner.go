package qspi

import (
	"sync"

	"quadspi-go/qspi/pinmap"
)

// Registry arbitrates ownership of physical controllers. Several logical
// Device instances can resolve to the same controller (different formats,
// different chip selects on one bus); the registry guarantees the hardware
// is only ever configured for one of them at a time.
//
// The zero value is not usable; construct with NewRegistry. One shared
// registry covers the process; tests inject their own.
type Registry struct {
	mu    sync.Mutex // guards owner
	bus   sync.Mutex // caller-level bracketing, see Device.Lock
	owner map[pinmap.Controller]*Device
}

// NewRegistry returns an empty ownership registry.
func NewRegistry() *Registry {
	return &Registry{owner: make(map[pinmap.Controller]*Device)}
}

// sharedRegistry lives for the whole process; torn down only at exit.
var sharedRegistry = NewRegistry()

// SharedRegistry returns the process-wide registry used by New.
func SharedRegistry() *Registry { return sharedRegistry }

// acquire makes d the current owner of its controller. Fast path: if d
// already owns it, no hardware is touched. Otherwise the controller is
// fully reinitialised with d's configuration before ownership is recorded,
// so a previous owner's format can never leak into d's transactions.
func (r *Registry) acquire(d *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owner[d.controller] == d {
		return nil
	}
	if err := d.initialize(); err != nil {
		return err
	}
	r.owner[d.controller] = d
	return nil
}

// reinit forces a full reinitialisation even if d already owns the
// controller. Used after frequency changes.
func (r *Registry) reinit(d *Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := d.initialize(); err != nil {
		return err
	}
	r.owner[d.controller] = d
	return nil
}

// OwnerOf reports the instance currently configured on a controller, or
// nil if none has acquired it yet.
func (r *Registry) OwnerOf(c pinmap.Controller) *Device {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.owner[c]
}
