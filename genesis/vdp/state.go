package vdp

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/host"
	"github.com/moaemu/moa/interrupts"
)

// Interrupt line indices within the shared interrupts.Controller. The 68k
// core's priority model means these double as the delivered priority.
const (
	LineHInt = 4
	LineVInt = 6
)

// Autovector numbers delivered for the H and V interrupts. These are the 68k
// autovector numbers (vectorTableAddress = VBR + vector*4), not the
// interrupt priority level, so level 4 and level 6 autovectors are 28 and 30
// respectively -- not 4 and 6.
const (
	vectorHInt = 28
	vectorVInt = 30
)

const (
	vramSize  = 0x10000
	cramSize  = 128 // 64 entries x 16-bit BGR
	vsramSize = 80
)

// region identifies which of the VDP's three memories a pending transfer
// targets.
type region int

const (
	regionVRAM region = iota
	regionCRAM
	regionVSRAM
)

func (r region) size() int {
	switch r {
	case regionCRAM:
		return cramSize
	case regionVSRAM:
		return vsramSize
	default:
		return vramSize
	}
}

// dmaMode selects which of the three DMA transfer shapes register 0x17's
// top bits request.
type dmaMode int

const (
	dmaMemToVDP dmaMode = iota
	dmaFill
	dmaCopy
)

// transfer describes the destination and kind of access configured by the
// two-word control-port command protocol.
type transfer struct {
	addr   uint16
	region region
	write  bool
	dma    bool
}

// VDP implements the Genesis Video Display Processor: its register file,
// memories, the control-port command protocol, the DMA engine, H/V timing
// and interrupt delivery, and the scanline renderer.
type VDP struct {
	Registers

	VRAM  [vramSize]byte
	CRAM  [cramSize]byte
	VSRAM [vsramSize]byte

	Status uint16

	ctrlFirstWord uint16
	ctrlHasFirst  bool
	target        transfer
	pendingFill   bool

	hClock, vClock clocks.ClockElapsed

	frame     *host.Frame
	published host.DoubleBuffer

	ic     *interrupts.Controller
	extBus *bus.Bus

	// hLineCounter is the per-line H-interrupt countdown, reloaded from
	// register 0x0A whenever it underflows.
	hLineCounter byte
}

// Status register bits.
const (
	statusFIFOEmpty      uint16 = 1 << 9
	statusFIFOFull       uint16 = 1 << 8
	statusVInterrupt     uint16 = 1 << 7
	statusSpriteOverflow uint16 = 1 << 6
	statusSpriteCollide  uint16 = 1 << 5
	statusOddFrame       uint16 = 1 << 4
	statusVBlank         uint16 = 1 << 3
	statusHBlank         uint16 = 1 << 2
	statusDMABusy        uint16 = 1 << 1
	statusPAL            uint16 = 1 << 0
)

// NewVDP creates a VDP wired to ic for interrupt delivery and extBus for
// DMA reads from the system bus (the Memory->VDP DMA mode).
func NewVDP(ic *interrupts.Controller, extBus *bus.Bus) *VDP {
	v := &VDP{
		ic:     ic,
		extBus: extBus,
		frame:  host.NewFrame(320, 224),
		Status: statusFIFOEmpty,
	}
	return v
}

// Frame implements host.FrameSource, returning the most recently completed
// field. It returns nil until the first VBLANK has rendered one.
func (v *VDP) Frame() *host.Frame { return v.published.Current() }

// Length implements bus.Addressable: the VDP's port window is 0x20 bytes,
// which the Genesis bus map places at 0xC00000-0xC0001F.
func (v *VDP) Length() uint64 { return 0x20 }

func (v *VDP) Read(addr uint64, out []byte) error {
	a := addr & 0x1f
	switch {
	case a < 0x04:
		return v.readDataPort(out)
	case a < 0x08:
		return v.readControlPort(out)
	default:
		return v.readHVCounter(out)
	}
}

func (v *VDP) Write(addr uint64, in []byte) error {
	a := addr & 0x1f
	switch {
	case a < 0x04:
		return v.writeDataPort(in)
	case a < 0x08:
		return v.writeControlPort(in)
	default:
		return nil // PSG and unused mirror region: accepted, ignored
	}
}

func (v *VDP) readDataPort(out []byte) error {
	val, err := v.readTarget()
	if err != nil {
		return err
	}
	fill16(out, val)
	v.advanceTarget()
	return nil
}

func (v *VDP) readControlPort(out []byte) error {
	fill16(out, v.Status)
	return nil
}

func (v *VDP) readHVCounter(out []byte) error {
	// Approximated as a free-running counter derived from the timing
	// accumulators; real hardware has two documented skip regions in the
	// blanking interval that this implementation does not reproduce (see
	// the project's open-question ledger).
	line := byte(v.vClock / clocks.NTSCLineDuration)
	col := byte(v.hClock * 256 / clocks.NTSCLineDuration)
	fill16(out, uint16(line)<<8|uint16(col))
	return nil
}

func fill16(out []byte, v uint16) {
	for i := range out {
		if i%2 == 0 {
			out[i] = byte(v >> 8)
		} else {
			out[i] = byte(v)
		}
	}
}

func word16(in []byte) uint16 {
	if len(in) == 1 {
		return uint16(in[0])<<8 | uint16(in[0])
	}
	return uint16(in[0])<<8 | uint16(in[1])
}

// writeControlPort implements the two-word command protocol described by
// §4.6.1: a word whose top two bits are 0b10 is a register write and
// invalidates any pending first-word latch; any other word participates in
// the two-word destination/mode command.
func (v *VDP) writeControlPort(in []byte) error {
	word := word16(in)

	if word&0xc000 == 0x8000 {
		reg := (word >> 8) & 0x1f
		if int(reg) < NumRegisters {
			v.R[reg] = byte(word)
		}
		v.ctrlHasFirst = false
		return nil
	}

	if !v.ctrlHasFirst {
		v.ctrlFirstWord = word
		v.ctrlHasFirst = true
		return nil
	}

	v.ctrlHasFirst = false
	addr := (v.ctrlFirstWord & 0x3fff) | (word&0x0003)<<14
	mode := byte(word>>4&0x0f)<<2 | byte(v.ctrlFirstWord>>14&0x03)

	// Region is selected by mask, not exact match: bits 3:1 of the code
	// distinguish VRAM/VSRAM/CRAM regardless of the read/write and DMA bits
	// (5:4), so a VRAM-copy DMA code (0x30) still resolves to VRAM instead
	// of falling through as malformed.
	t := transfer{addr: addr, write: mode&0x01 != 0}
	switch mode & 0x0e {
	case 0x00:
		t.region = regionVRAM
	case 0x04:
		t.region = regionVSRAM
	default:
		t.region = regionCRAM
	}
	t.dma = mode&0x20 != 0
	v.target = t

	if t.dma && v.DMAEnabled() {
		v.triggerDMA()
	}
	return nil
}

func (v *VDP) advanceTarget() {
	inc := int(v.autoIncrement())
	size := v.target.region.size()
	v.target.addr = uint16((int(v.target.addr) + inc) % size)
}

func (v *VDP) readTarget() (uint16, error) {
	switch v.target.region {
	case regionCRAM:
		a := v.target.addr % cramSize
		return uint16(v.CRAM[a])<<8 | uint16(v.CRAM[(a+1)%cramSize]), nil
	case regionVSRAM:
		a := v.target.addr % vsramSize
		return uint16(v.VSRAM[a])<<8 | uint16(v.VSRAM[(a+1)%vsramSize]), nil
	default:
		a := int(v.target.addr) % vramSize
		return uint16(v.VRAM[a])<<8 | uint16(v.VRAM[(a+1)%vramSize]), nil
	}
}

func (v *VDP) writeTargetWord(val uint16) {
	switch v.target.region {
	case regionCRAM:
		a := v.target.addr % cramSize
		v.CRAM[a] = byte(val >> 8)
		v.CRAM[(a+1)%cramSize] = byte(val)
	case regionVSRAM:
		a := v.target.addr % vsramSize
		v.VSRAM[a] = byte(val >> 8)
		v.VSRAM[(a+1)%vsramSize] = byte(val)
	default:
		a := int(v.target.addr) % vramSize
		v.VRAM[a] = byte(val >> 8)
		v.VRAM[(a+1)%vramSize] = byte(val)
	}
}

func (v *VDP) writeDataPort(in []byte) error {
	val := word16(in)
	if v.pendingFill {
		v.pendingFill = false
		v.runFill(val)
		return nil
	}
	v.writeTargetWord(val)
	v.advanceTarget()
	return nil
}
