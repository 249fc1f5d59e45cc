// Package mac512k wires together a partial Macintosh 512k: an MC68000
// core, the mainboard's overlay-switched ROM/RAM map, its serial/floppy
// controller stubs, and the built-in monochrome video scanner. This is an
// explicitly partial target -- the SCC and IWM peripherals are register-
// shaped stubs with "nothing attached" behavior, and the ADB/sound
// hardware later Macintosh models added is simply absent, matching the
// 512k's own hardware. Enough of the boot path is modeled to bring the ROM
// through its overlay switch and into the framebuffer-driving startup
// code; a full ROM boot to the Finder is out of scope.
package mac512k

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/config"
	"github.com/moaemu/moa/cpu/m68k"
	"github.com/moaemu/moa/host"
	"github.com/moaemu/moa/interrupts"
	"github.com/moaemu/moa/peripherals/macintosh"
	"github.com/moaemu/moa/scheduler"
)

const ramSize = 0x80000 // 512 KiB

const (
	deviceCPU scheduler.DeviceID = iota
	deviceMainboard
	deviceVideo
)

// Machine is a fully wired, partially-functional Macintosh 512k.
type Machine struct {
	CPU       *m68k.CPU
	Mainboard *macintosh.Mainboard
	Video     *macintosh.MacVideo
	Bus       *bus.Bus
	Scheduler *scheduler.Scheduler
}

// New builds a Macintosh 512k machine from a boot ROM image. If cap is
// non-nil, the video scanner is registered as a display window.
func New(rom []byte, cap host.Capability) (*Machine, error) {
	b := bus.NewBus()

	romDev := bus.NewROM(rom)
	ram := bus.NewRAM(ramSize)

	ic := interrupts.New()
	mb := macintosh.NewMainboard(ic, romDev, ram)
	if err := b.Insert(0, mb.Length(), "mainboard", mb); err != nil {
		return nil, err
	}

	video := macintosh.NewMacVideo(b)
	if cap != nil {
		cap.AddWindow(video)
	}

	port := bus.NewBusPort(b, 24, 2)
	cpu := m68k.NewCPU(m68k.MC68000, port, ic, clocks.MC68000Mac512k, config.Default())
	if err := cpu.Reset(); err != nil {
		return nil, err
	}

	sched := scheduler.New()
	sched.Register(deviceCPU, "cpu", cpu)
	sched.Register(deviceMainboard, "mainboard", mb)
	sched.Register(deviceVideo, "video", video)

	return &Machine{CPU: cpu, Mainboard: mb, Video: video, Bus: b, Scheduler: sched}, nil
}
