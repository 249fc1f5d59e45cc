// Package macintosh implements the Macintosh 512k's mainboard glue: the
// ROM/RAM overlay switch driven by the VIA's port A, the serial and floppy
// controller stubs wired onto their documented address windows, and the
// built-in 1-bit monochrome video scanner. This is a partial target: the
// serial (SCC) and floppy (IWM) controllers are register-shaped stand-ins
// with no real protocol behind them, matching this implementation's
// explicitly partial Macintosh 512k support.
package macintosh

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/curated"
	"github.com/moaemu/moa/interrupts"
)

const (
	scc1Base, scc1Top = 0x900000, 0xa00000
	scc2Base, scc2Top = 0xb00000, 0xc00000
	iwmBase, iwmTop   = 0xd00000, 0xe00000
	viaBase, viaTop   = 0xe80000, 0xf00000
	phaseBase, phaseTop = 0xf00000, 0xf80000
	debugBase, debugTop = 0xf80000, 0xf80010
)

const (
	viaInterruptLine     = 1
	viaInterruptPriority = 1
	viaInterruptVector   = 25
)

// Mainboard is the Macintosh 512k's single system-bus device: everything
// the CPU addresses below 16MB that isn't the video framebuffer (which is
// just ordinary RAM that MacVideo reads directly off the main bus).
type Mainboard struct {
	rom, ram bus.Addressable
	lowerBus *bus.Bus

	scc1, scc2 *SCC
	iwm        *IWM
	via        *VIA

	ic      *interrupts.Controller
	lastTick clocks.Clock
}

// NewMainboard builds a Mainboard with rom (read-only boot ROM image) and
// ram (work RAM, shared with MacVideo) wired through the VIA's overlay
// switch, reset into the ROM-overlay (startup) memory map the 68000 boots
// into.
func NewMainboard(ic *interrupts.Controller, rom *bus.ROM, ram *bus.RAM) *Mainboard {
	m := &Mainboard{
		rom: rom, ram: ram,
		scc1: NewSCC(), scc2: NewSCC(), iwm: NewIWM(),
		ic: ic,
	}
	m.via = NewVIA(m.applyOverlay)
	m.applyOverlay(m.via.portA.data)
	return m
}

// applyOverlay rebuilds the lower 8MB address decode for the memory map
// the overlay bit (VIA port A bit 4) selects.
func (m *Mainboard) applyOverlay(portAData byte) {
	b := bus.NewBus()
	if portAData&overlayBit == 0 {
		b.Insert(0x000000, 0x400000, "ram", bus.NewRepeater(m.ram, 0x400000))
		b.Insert(0x400000, 0x100000, "rom", bus.NewRepeater(m.rom, 0x100000))
		b.Insert(0x600000, 0x100000, "rom", bus.NewRepeater(m.rom, 0x100000))
	} else {
		b.Insert(0x000000, 0x100000, "rom", bus.NewRepeater(m.rom, 0x100000))
		b.Insert(0x200000, 0x100000, "rom", bus.NewRepeater(m.rom, 0x100000))
		b.Insert(0x400000, 0x100000, "rom", bus.NewRepeater(m.rom, 0x100000))
		b.Insert(0x600000, 0x200000, "ram", bus.NewRepeater(m.ram, 0x200000))
	}
	m.lowerBus = b
}

func (m *Mainboard) Length() uint64 { return 0x1000000 }

func (m *Mainboard) Read(addr uint64, out []byte) error {
	switch {
	case addr < 0x800000:
		return m.lowerBus.Read(addr, out)
	case addr >= scc1Base && addr < scc1Top:
		return m.scc1.Read((addr>>9)&0xf, out)
	case addr >= scc2Base && addr < scc2Top:
		return m.scc2.Read((addr>>9)&0xf, out)
	case addr >= iwmBase && addr < iwmTop:
		return m.iwm.Read((addr>>9)&0xf, out)
	case addr >= viaBase && addr < viaTop:
		return m.via.Read((addr>>9)&0xf, out)
	case addr >= phaseBase && addr < phaseTop:
		for i := range out {
			out[i] = 0
		}
		return nil
	case addr >= debugBase && addr < debugTop:
		return nil
	default:
		return curated.Errorf(curated.BusError, addr)
	}
}

func (m *Mainboard) Write(addr uint64, in []byte) error {
	switch {
	case addr < 0x800000:
		return m.lowerBus.Write(addr, in)
	case addr >= scc1Base && addr < scc1Top:
		return m.scc1.Write((addr>>9)&0xf, in)
	case addr >= scc2Base && addr < scc2Top:
		return m.scc2.Write((addr>>9)&0xf, in)
	case addr >= iwmBase && addr < iwmTop:
		return m.iwm.Write((addr>>9)&0xf, in)
	case addr >= viaBase && addr < viaTop:
		return m.via.Write((addr>>9)&0xf, in)
	case addr >= phaseBase && addr < phaseTop:
		return nil
	default:
		return curated.Errorf(curated.BusError, addr)
	}
}

// Step raises the VIA's once-a-second tick interrupt on the system's
// interrupt controller, matching the documented one-second VIA timer used
// to drive the Mac's software clock.
func (m *Mainboard) Step(clock clocks.Clock) clocks.ClockElapsed {
	if clock.Sub(m.lastTick) >= clocks.ClockElapsed(1_000_000_000) {
		m.lastTick = clock
		m.via.Tick()
	}
	m.ic.Set(viaInterruptLine, m.via.Pending(), viaInterruptPriority, viaInterruptVector)
	return tickInterval
}
