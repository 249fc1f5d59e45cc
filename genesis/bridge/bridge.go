// Package bridge implements the Genesis/Mega Drive's Z80-to-68000 glue: the
// bank-switched 32KB window the Z80 uses to reach the 68k's address space,
// and the BUSREQ/RESET control registers the 68k uses to halt and reset the
// sound CPU. This is grounded on documented Mega Drive hardware behaviour
// rather than on the source project it was distilled from, whose bank
// switching is documented as buggy (see the project's open-question
// ledger).
package bridge

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/cpu/z80"
)

// Bridge owns the Z80-side bank register and the 68k-side control lines
// that gate whether the Z80 core is allowed to run.
type Bridge struct {
	z80        *z80.CPU
	genesisBus *bus.Bus
	z80Bus     *bus.Bus

	bank      uint32 // 9-bit bank value: top bits of a 24-bit 68k address
	busReq    bool
	resetHeld bool
}

// New creates a Bridge wiring z for suspension control, genesisBus as the
// target of the Z80's bank window, and z80Bus as the target of the 68k's
// own window into Z80 address space (Z80Window).
func New(z *z80.CPU, genesisBus, z80Bus *bus.Bus) *Bridge {
	return &Bridge{z80: z, genesisBus: genesisBus, z80Bus: z80Bus, resetHeld: true}
}

// Z80Window returns the Addressable the 68k's own bus map installs at
// 0xA00000-0xA0FFFF: reads and writes pass straight through to the Z80's
// 64KB address space (its 8KB of work RAM mirrored, the YM2612 ports, and
// the bank register/window this same Bridge installs on the Z80 side),
// masked to that 16-bit space. Per documented hardware behaviour, the 68k
// is only guaranteed consistent access here while it holds BUSREQ; this
// forwarder does not itself enforce that.
func (b *Bridge) Z80Window() *z80Window { return &z80Window{b} }

type z80Window struct{ b *Bridge }

func (w *z80Window) Length() uint64 { return 0x10000 }

func (w *z80Window) Read(addr uint64, out []byte) error {
	return w.b.z80Bus.Read(addr&0xffff, out)
}

func (w *z80Window) Write(addr uint64, in []byte) error {
	return w.b.z80Bus.Write(addr&0xffff, in)
}

func (b *Bridge) syncSuspend() {
	b.z80.SetSuspended(b.resetHeld || b.busReq)
}

// BankWindow returns the Addressable the Z80's bus map installs at
// 0xA00000-0xA0FFFF's upper 32KB (0x8000-0xFFFF banked region): reads and
// writes are forwarded to the 68k bus at (bank<<15)+offset.
func (b *Bridge) BankWindow() *bankWindow { return &bankWindow{b} }

type bankWindow struct{ b *Bridge }

func (w *bankWindow) Length() uint64 { return 0x8000 }

func (w *bankWindow) Read(addr uint64, out []byte) error {
	return w.b.genesisBus.Read(uint64(w.b.bank)<<15+addr, out)
}

func (w *bankWindow) Write(addr uint64, in []byte) error {
	return w.b.genesisBus.Write(uint64(w.b.bank)<<15+addr, in)
}

// BankRegister returns the Addressable for 0xA06000: each write shifts in
// one bit of the 9-bit bank value, LSB of the written byte first, matching
// the documented bit-serial bank-select protocol.
func (b *Bridge) BankRegister() *bankRegister { return &bankRegister{b} }

type bankRegister struct{ b *Bridge }

func (r *bankRegister) Length() uint64 { return 1 }

func (r *bankRegister) Read(addr uint64, out []byte) error {
	out[0] = 0xff
	return nil
}

func (r *bankRegister) Write(addr uint64, in []byte) error {
	bit := uint32(in[0] & 1)
	r.b.bank = (r.b.bank >> 1) | (bit << 8)
	return nil
}

// BusreqPort returns the Addressable for 0xA11100. Bit 0 reads as 1 exactly
// when the 68k currently holds the Z80's bus (BUSREQ asserted and the Z80
// core suspended); a write asserts or releases the request.
func (b *Bridge) BusreqPort() *busreqPort { return &busreqPort{b} }

type busreqPort struct{ b *Bridge }

func (p *busreqPort) Length() uint64 { return 1 }

func (p *busreqPort) Read(addr uint64, out []byte) error {
	var v byte
	if p.b.busReq {
		v = 1
	}
	out[0] = v
	return nil
}

func (p *busreqPort) Write(addr uint64, in []byte) error {
	p.b.busReq = in[0]&1 != 0
	p.b.syncSuspend()
	return nil
}

// ResetPort returns the Addressable for 0xA11200. The line is active-low,
// per hardware convention: a write of 0 asserts reset and snaps the Z80
// back to its power-on state; a write of 1 releases it.
func (b *Bridge) ResetPort() *resetPort { return &resetPort{b} }

type resetPort struct{ b *Bridge }

func (p *resetPort) Length() uint64 { return 1 }

func (p *resetPort) Read(addr uint64, out []byte) error {
	var v byte
	if !p.b.resetHeld {
		v = 1
	}
	out[0] = v
	return nil
}

func (p *resetPort) Write(addr uint64, in []byte) error {
	asserted := in[0]&1 == 0
	if asserted && !p.b.resetHeld {
		_ = p.b.z80.Reset()
	}
	p.b.resetHeld = asserted
	p.b.syncSuspend()
	return nil
}
