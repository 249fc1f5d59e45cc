// Package bus defines the address-mapped routing fabric that every CPU core
// and peripheral in the simulation reads and writes through. For an
// explanation of the wider device model (Addressable vs Steppable, and how a
// CPU-local BusPort differs from the Bus itself) see doc.go.
package bus

import (
	"fmt"
	"sort"

	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/curated"
)

// Addressable is implemented by anything that can be mapped into a Bus: RAM,
// ROM, a peripheral's register file, or another Bus (the Z80's banked view
// of the 68k address space on the Genesis composes a Bus inside a Bus).
//
// Reads may have side effects -- a FIFO pop, a counter latch -- which is why
// Read is not declared idempotent anywhere in this package.
type Addressable interface {
	// Length returns the number of bytes this device occupies in the
	// address space it is mapped into.
	Length() uint64

	// Read fills out with len(out) bytes starting at the device-relative
	// address addr.
	Read(addr uint64, out []byte) error

	// Write stores in into the device starting at the device-relative
	// address addr.
	Write(addr uint64, in []byte) error
}

// Steppable is implemented by any device the Scheduler advances on its own
// schedule, independent of being read or written. Step must return promptly:
// devices may not suspend mid-instruction, and the scheduler enforces no
// preemption within a call to Step.
type Steppable interface {
	// Step advances the device from the given clock value and returns the
	// delay, in nanoseconds, until the device next needs to run. A delay of
	// 0 is treated by the scheduler as 1ns, to guarantee forward progress.
	Step(clock clocks.Clock) clocks.ClockElapsed
}

// DebuggerBus is implemented by devices that want to expose out-of-band
// access for a debugger or monitor: Peek/Poke never trigger the side effects
// that a normal Read/Write might (a FIFO pop, a counter latch) and are never
// used by the running machine itself.
type DebuggerBus interface {
	Peek(addr uint64) (uint8, error)
	Poke(addr uint64, value uint8) error
}

// window is one entry in a Bus's sorted, non-overlapping address map.
type window struct {
	base   uint64
	length uint64
	name   string
	device Addressable
}

func (w window) top() uint64 {
	return w.base + w.length - 1
}

// Bus is a sorted set of non-overlapping address windows, each mapping a
// base address and length onto an owning Addressable. A Bus itself
// implements Addressable, so it can be composed recursively.
type Bus struct {
	windows []window
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Insert maps device into the bus at [base, base+length). Insertion keeps
// the window table sorted by base address. Overlapping with an
// already-mapped window is a configuration error: it is always a mistake in
// the machine builder, never a condition the running machine can recover
// from, so Insert returns a fatal, not a runtime, error.
func (b *Bus) Insert(base, length uint64, name string, device Addressable) error {
	w := window{base: base, length: length, name: name, device: device}

	i := sort.Search(len(b.windows), func(i int) bool { return b.windows[i].base >= base })

	if i > 0 && b.windows[i-1].top() >= base {
		return curated.Errorf(curated.ConfigurationError,
			fmt.Sprintf("window %q [%#x,%#x) overlaps %q [%#x,%#x)",
				name, base, base+length, b.windows[i-1].name, b.windows[i-1].base, b.windows[i-1].base+b.windows[i-1].length))
	}
	if i < len(b.windows) && w.top() >= b.windows[i].base {
		return curated.Errorf(curated.ConfigurationError,
			fmt.Sprintf("window %q [%#x,%#x) overlaps %q [%#x,%#x)",
				name, base, base+length, b.windows[i].name, b.windows[i].base, b.windows[i].base+b.windows[i].length))
	}

	b.windows = append(b.windows, window{})
	copy(b.windows[i+1:], b.windows[i:])
	b.windows[i] = w

	return nil
}

// lookup finds the window containing addr and returns it along with the
// device-relative address. ok is false on an unmapped address.
func (b *Bus) lookup(addr uint64) (window, uint64, bool) {
	i := sort.Search(len(b.windows), func(i int) bool { return b.windows[i].top() >= addr })
	if i >= len(b.windows) || addr < b.windows[i].base {
		return window{}, 0, false
	}
	return b.windows[i], addr - b.windows[i].base, true
}

// Read implements Addressable by routing to the mapped device, or returning
// a bus error for an unmapped address.
func (b *Bus) Read(addr uint64, out []byte) error {
	w, rel, ok := b.lookup(addr)
	if !ok {
		return curated.Errorf(curated.BusError, addr)
	}
	return w.device.Read(rel, out)
}

// Write implements Addressable by routing to the mapped device, or
// returning a bus error for an unmapped address.
func (b *Bus) Write(addr uint64, in []byte) error {
	w, rel, ok := b.lookup(addr)
	if !ok {
		return curated.Errorf(curated.BusError, addr)
	}
	return w.device.Write(rel, in)
}

// Peek behaves like Read but only if the mapped device implements
// DebuggerBus; otherwise it falls back to a plain Read.
func (b *Bus) Peek(addr uint64) (uint8, error) {
	w, rel, ok := b.lookup(addr)
	if !ok {
		return 0, curated.Errorf(curated.BusError, addr)
	}
	if d, ok := w.device.(DebuggerBus); ok {
		return d.Peek(rel)
	}
	var out [1]byte
	if err := w.device.Read(rel, out[:]); err != nil {
		return 0, err
	}
	return out[0], nil
}

// Poke behaves like Write but only if the mapped device implements
// DebuggerBus; otherwise it falls back to a plain Write.
func (b *Bus) Poke(addr uint64, value uint8) error {
	w, rel, ok := b.lookup(addr)
	if !ok {
		return curated.Errorf(curated.BusError, addr)
	}
	if d, ok := w.device.(DebuggerBus); ok {
		return d.Poke(rel, value)
	}
	return w.device.Write(rel, []byte{value})
}

// Length returns the address of the end of the highest-mapped window, which
// lets a Bus be composed as an Addressable inside another Bus.
func (b *Bus) Length() uint64 {
	if len(b.windows) == 0 {
		return 0
	}
	last := b.windows[len(b.windows)-1]
	return last.base + last.length
}

// WindowAt returns the name and base/length of the window containing addr,
// for use by the debug dump and disassembler.
func (b *Bus) WindowAt(addr uint64) (name string, base uint64, length uint64, ok bool) {
	w, _, found := b.lookup(addr)
	if !found {
		return "", 0, 0, false
	}
	return w.name, w.base, w.length, true
}
