// Package computie wires together a Computie single-board-computer
// machine: an MC68010 core, a monitor ROM, work RAM, and the MC68681 DUART
// the monitor and kernel use for both an interactive console and a SLIP
// network link, all driven by one Scheduler. A real Computie board also
// carries an ATA disk controller at 0x600000; loading and exposing a disk
// image is an external-collaborator concern (see the ROM/disk loader
// Non-goal) and is intentionally not modeled here -- the monitor boots and
// the console/network path works identically without it.
package computie

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/config"
	"github.com/moaemu/moa/cpu/m68k"
	"github.com/moaemu/moa/host"
	"github.com/moaemu/moa/interrupts"
	"github.com/moaemu/moa/peripherals/duart"
	"github.com/moaemu/moa/scheduler"
)

// Memory map, matching the documented Computie board layout.
const (
	monitorBase = 0x000000
	ramBase     = 0x100000
	ramSize     = 1 << 20 // 1 MiB
	duartBase   = 0x700000
)

const (
	deviceCPU scheduler.DeviceID = iota
	deviceDUART
)

// Machine is a fully wired Computie, ready to be registered with a
// Scheduler and stepped.
type Machine struct {
	CPU       *m68k.CPU
	DUART     *duart.DUART
	Bus       *bus.Bus
	Scheduler *scheduler.Scheduler
}

// New builds a Computie machine. monitor is the boot ROM image (the
// monitor program); kernel, if non-empty, is copied into the start of RAM
// the way the board's loader deposits a kernel image before reset. cap,
// if non-nil, is used to request the two host pseudo-terminals the DUART's
// channels are wired to (channel A: an interactive terminal; channel B: a
// SLIP network link); a nil cap leaves both channels unconnected.
func New(monitor, kernel []byte, cap host.Capability) (*Machine, error) {
	b := bus.NewBus()

	rom := bus.NewROM(monitor)
	if err := b.Insert(monitorBase, rom.Length(), "monitor", rom); err != nil {
		return nil, err
	}

	ram := bus.NewRAM(ramSize)
	if err := b.Insert(ramBase, ram.Length(), "ram", ram); err != nil {
		return nil, err
	}
	if len(kernel) > 0 {
		if err := b.Write(ramBase, kernel); err != nil {
			return nil, err
		}
	}

	ic := interrupts.New()
	d := duart.New(ic)
	if err := b.Insert(duartBase, d.Length(), "duart", d); err != nil {
		return nil, err
	}
	if cap != nil {
		if pty, err := cap.CreatePTY("console"); err == nil {
			d.ConnectA(pty)
		}
		if pty, err := cap.CreatePTY("slip"); err == nil {
			d.ConnectB(pty)
		}
	}

	port := bus.NewBusPort(b, 24, 2)
	cpu := m68k.NewCPU(m68k.MC68010, port, ic, clocks.MC68000Computie, config.Default())
	if err := cpu.Reset(); err != nil {
		return nil, err
	}

	sched := scheduler.New()
	sched.Register(deviceCPU, "cpu", cpu)
	sched.Register(deviceDUART, "duart", d)

	return &Machine{CPU: cpu, DUART: d, Bus: b, Scheduler: sched}, nil
}
