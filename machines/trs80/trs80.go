// Package trs80 wires together a TRS-80 Model I machine: a Z80 core, the
// Level II BASIC ROM, 48KiB of work RAM, and the Model1 keyboard/video
// peripheral, all driven by one Scheduler.
package trs80

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/config"
	"github.com/moaemu/moa/cpu/z80"
	"github.com/moaemu/moa/host"
	"github.com/moaemu/moa/interrupts"
	"github.com/moaemu/moa/peripherals/trs80video"
	"github.com/moaemu/moa/scheduler"
)

// Memory map, matching the documented Model I layout.
const (
	romBase  = 0x0000
	romSize  = 0x3000
	ramBase  = 0x4000
	ramSize  = 0xc000 // 48 KiB
	videoBase = 0x37e0
)

const (
	deviceCPU scheduler.DeviceID = iota
	deviceVideo
)

// Machine is a fully wired TRS-80 Model I, ready to be registered with a
// Scheduler and stepped.
type Machine struct {
	CPU       *z80.CPU
	Video     *trs80video.Model1
	Bus       *bus.Bus
	Scheduler *scheduler.Scheduler
}

// New builds a TRS-80 Model I machine from rom (the Level II BASIC ROM
// image, up to 0x3000 bytes). If cap is non-nil, the video peripheral is
// registered as a frame source and keyboard sink with it.
func New(rom []byte, cap host.Capability) (*Machine, error) {
	b := bus.NewBus()

	image := make([]byte, romSize)
	copy(image, rom)
	romDev := bus.NewROM(image)
	if err := b.Insert(romBase, romDev.Length(), "rom", romDev); err != nil {
		return nil, err
	}

	ram := bus.NewRAM(ramSize)
	if err := b.Insert(ramBase, ram.Length(), "ram", ram); err != nil {
		return nil, err
	}

	video := trs80video.New()
	if err := b.Insert(videoBase, video.Length(), "model1", video); err != nil {
		return nil, err
	}
	if cap != nil {
		cap.AddWindow(video)
		cap.RegisterKeyboard(video)
	}

	port := bus.NewBusPort(b, 16, 1)
	ic := interrupts.New()
	cpu := z80.NewCPU(port, ic, clocks.Z80TRS80, config.Default())
	if err := cpu.Reset(); err != nil {
		return nil, err
	}

	sched := scheduler.New()
	sched.Register(deviceCPU, "cpu", cpu)
	sched.Register(deviceVideo, "model1", video)

	return &Machine{CPU: cpu, Video: video, Bus: b, Scheduler: sched}, nil
}
