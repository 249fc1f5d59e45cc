// Package genesis wires together a Sega Genesis/Mega Drive machine: the
// 68000 main CPU, the VDP, two three-button controller ports, the Z80
// sound co-processor and its bridge to the main bus, and the system's
// memory map exactly as documented (cartridge ROM, the Z80 window and its
// BUSREQ/RESET/bank-select registers, the I/O chip's version register and
// controller ports, the VDP's port window, and mirrored work RAM).
package genesis

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/config"
	"github.com/moaemu/moa/cpu/m68k"
	"github.com/moaemu/moa/cpu/z80"
	"github.com/moaemu/moa/genesis/bridge"
	"github.com/moaemu/moa/genesis/controllers"
	"github.com/moaemu/moa/genesis/vdp"
	"github.com/moaemu/moa/host"
	"github.com/moaemu/moa/interrupts"
	"github.com/moaemu/moa/scheduler"
)

// Memory map, matching the documented NTSC Genesis/Mega Drive layout.
const (
	romBase     = 0x000000
	romMax      = 0x400000
	z80WinBase  = 0xa00000
	z80WinSize  = 0x010000
	ioBase      = 0xa10000
	versionAddr = 0xa10001
	pad1DataAddr = 0xa10003
	pad1CtrlAddr = 0xa10005
	pad2DataAddr = 0xa10007
	pad2CtrlAddr = 0xa10009
	// a10005, a10007, a10009, a1000b, a1000d cover the two ports' data and
	// control registers and a (unimplemented) expansion port; only the two
	// pad ports are wired here.
	memModeAddr = 0xa11000
	busreqAddr  = 0xa11100
	resetAddr   = 0xa11200
	vdpBase     = 0xc00000
	ramBase     = 0xff0000
	ramSize     = 0x10000

	z80RAMSize = 0x2000

	versionRegValue = 0xa0
)

const (
	deviceM68k scheduler.DeviceID = iota
	deviceZ80
	deviceVDP
)

// Machine is a fully wired Genesis, ready to be registered with a
// Scheduler and stepped.
type Machine struct {
	CPU       *m68k.CPU
	Z80       *z80.CPU
	VDP       *vdp.VDP
	Bridge    *bridge.Bridge
	Pad1      *controllers.Pad
	Pad2      *controllers.Pad
	Bus       *bus.Bus
	Scheduler *scheduler.Scheduler
}

// New builds a Genesis machine from a cartridge ROM image. If cap is
// non-nil, the VDP is registered as a display window and both pads as
// "genesis3button" controller sinks.
func New(rom []byte, cap host.Capability) (*Machine, error) {
	if len(rom) > romMax {
		rom = rom[:romMax]
	}

	mainBus := bus.NewBus()
	z80Bus := bus.NewBus()

	cart := bus.NewROM(rom)
	if err := mainBus.Insert(romBase, cart.Length(), "rom", cart); err != nil {
		return nil, err
	}

	ic := interrupts.New()
	zic := interrupts.New()

	z80Port := bus.NewBusPort(z80Bus, 16, 1)
	zcpu := z80.NewCPU(z80Port, zic, clocks.Z80NTSC, config.Default())
	if err := zcpu.Reset(); err != nil {
		return nil, err
	}

	br := bridge.New(zcpu, mainBus, z80Bus)

	z80RAM := bus.NewRAM(z80RAMSize)
	if err := z80Bus.Insert(0, z80RAM.Length(), "ram", z80RAM); err != nil {
		return nil, err
	}
	if err := z80Bus.Insert(0x6000, 1, "bankselect", br.BankRegister()); err != nil {
		return nil, err
	}
	if err := z80Bus.Insert(0x8000, 0x8000, "68kwindow", br.BankWindow()); err != nil {
		return nil, err
	}

	if err := mainBus.Insert(z80WinBase, z80WinSize, "z80window", br.Z80Window()); err != nil {
		return nil, err
	}

	pad1 := controllers.NewPad()
	pad2 := controllers.NewPad()
	if err := mainBus.Insert(versionAddr, 1, "version", versionReg{}); err != nil {
		return nil, err
	}
	if err := mainBus.Insert(pad1DataAddr, 1, "pad1data", pad1.DataPort()); err != nil {
		return nil, err
	}
	if err := mainBus.Insert(pad1CtrlAddr, 1, "pad1ctrl", pad1.ControlPort()); err != nil {
		return nil, err
	}
	if err := mainBus.Insert(pad2DataAddr, 1, "pad2data", pad2.DataPort()); err != nil {
		return nil, err
	}
	if err := mainBus.Insert(pad2CtrlAddr, 1, "pad2ctrl", pad2.ControlPort()); err != nil {
		return nil, err
	}
	if err := mainBus.Insert(memModeAddr, 1, "memmode", memModeReg{}); err != nil {
		return nil, err
	}
	if err := mainBus.Insert(busreqAddr, 1, "busreq", br.BusreqPort()); err != nil {
		return nil, err
	}
	if err := mainBus.Insert(resetAddr, 1, "z80reset", br.ResetPort()); err != nil {
		return nil, err
	}

	v := vdp.NewVDP(ic, mainBus)
	if err := mainBus.Insert(vdpBase, v.Length(), "vdp", v); err != nil {
		return nil, err
	}

	ram := bus.NewRAM(ramSize)
	if err := mainBus.Insert(ramBase, ram.Length(), "ram", ram); err != nil {
		return nil, err
	}

	port := bus.NewBusPort(mainBus, 24, 2)
	cpu := m68k.NewCPU(m68k.MC68000, port, ic, clocks.MC68000NTSC, config.Default())
	if err := cpu.Reset(); err != nil {
		return nil, err
	}

	if cap != nil {
		cap.AddWindow(v)
		cap.RegisterController("genesis3button", padSink{pad1, pad2})
	}

	sched := scheduler.New()
	sched.Register(deviceM68k, "cpu", cpu)
	sched.Register(deviceZ80, "z80", zcpu)
	sched.Register(deviceVDP, "vdp", v)

	return &Machine{
		CPU: cpu, Z80: zcpu, VDP: v, Bridge: br,
		Pad1: pad1, Pad2: pad2, Bus: mainBus, Scheduler: sched,
	}, nil
}

// versionReg is the fixed-value hardware/region identifier byte the I/O
// chip reports at 0xa10001: overseas region, NTSC, no expansion unit,
// hardware version 0 (no TMSS lockout).
type versionReg struct{}

func (versionReg) Length() uint64 { return 1 }
func (versionReg) Read(addr uint64, out []byte) error {
	for i := range out {
		out[i] = versionRegValue
	}
	return nil
}
func (versionReg) Write(addr uint64, in []byte) error { return nil }

// memModeReg accepts writes to the memory-mode register (0xa11000) without
// modeling any effect: nothing in this implementation depends on the
// 68000's RAM/ROM-overlay configuration it controls.
type memModeReg struct{}

func (memModeReg) Length() uint64 { return 1 }
func (memModeReg) Read(addr uint64, out []byte) error {
	for i := range out {
		out[i] = 0xff
	}
	return nil
}
func (memModeReg) Write(addr uint64, in []byte) error { return nil }

// padSink fans a single "genesis3button" controller event stream out to
// the two physical ports by the event's Button index: events 0-7 target
// pad1, 8-15 target pad2, matching a two-player input source that encodes
// which pad a button belongs to in bit 3 of the button index.
type padSink struct {
	pad1, pad2 *controllers.Pad
}

func (s padSink) Controller(ev host.ControllerEvent) {
	pad := s.pad1
	button := ev.Button
	if button >= 8 {
		pad = s.pad2
		button -= 8
	}
	if ev.Pressed {
		pad.Pressed |= controllers.Button(1 << uint(button))
	} else {
		pad.Pressed &^= controllers.Button(1 << uint(button))
	}
}
