// Package trs80video implements the TRS-80 Model I's built-in peripheral
// block: the keyboard matrix decoded through its documented address-bit
// OR-reduction quirk, the 64x16 character-mapped video RAM, and a Step that
// rasterizes the screen into a host.Frame once per field. All three live
// behind one Addressable, matching the hardware's single memory-mapped
// peripheral window at 0x37E0.
package trs80video

import (
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/host"
)

const (
	keyboardStart = 0x20
	keyboardEnd   = 0xa0
	videoStart    = 0x420
	videoEnd      = 0x820

	cols = 64
	rows = 16

	cellWidth  = 6
	cellHeight = 8
)

// Model1 is the Model I's keyboard+video peripheral, occupying 0x820 bytes
// at its base address.
type Model1 struct {
	keyboard [8]byte
	video    [cols * rows]byte

	frame *host.Frame
}

// New creates a Model1 with a blank screen (all space characters, code
// 0x00) and no keys held.
func New() *Model1 {
	return &Model1{frame: host.NewFrame(cols*cellWidth, rows*cellHeight)}
}

// Length implements bus.Addressable.
func (m *Model1) Length() uint64 { return 0x820 }

// Read implements bus.Addressable. Addresses in the keyboard window
// decode an 8-byte matrix snapshot using the documented OR-reduction
// quirk: each of the low 8 bits of the relative offset selects one matrix
// row to OR into every byte of the read, so an offset with more than one
// bit set (or a multi-byte read spanning several offsets) legitimately
// returns several rows OR'd together -- real software never does this, but
// nothing here "corrects" it either. Addresses in the video window index
// directly into character RAM. Anything else reads as 0xff.
func (m *Model1) Read(addr uint64, out []byte) error {
	for i := range out {
		a := addr + uint64(i)
		switch {
		case a >= keyboardStart && a < keyboardEnd:
			out[i] = m.readKeyboard(a - keyboardStart)
		case a >= videoStart && a < videoEnd:
			out[i] = m.video[a-videoStart]
		default:
			out[i] = 0xff
		}
	}
	return nil
}

func (m *Model1) readKeyboard(rel uint64) byte {
	var v byte
	b := byte(rel)
	for row := 0; row < 8; row++ {
		if b&(1<<uint(row)) != 0 {
			v |= m.keyboard[row]
		}
	}
	return v
}

// Write implements bus.Addressable. Only the video window is writable;
// writes elsewhere (including the keyboard window, which is read-only
// hardware) are silently discarded.
func (m *Model1) Write(addr uint64, in []byte) error {
	for i, b := range in {
		a := addr + uint64(i)
		if a >= videoStart && a < videoEnd {
			m.video[a-videoStart] = b
		}
	}
	return nil
}

// Key implements host.KeyboardSink, updating the keyboard matrix from a
// raw key transition.
func (m *Model1) Key(ev host.KeyEvent) {
	recordKeyPress(&m.keyboard, ev.Code, ev.Pressed)
}

// Step rasterizes the full 64x16 character grid into a fresh frame and
// publishes it, then returns the fixed NTSC frame interval -- the real
// hardware redraws the whole screen from video RAM every field regardless
// of whether anything changed.
func (m *Model1) Step(_ clocks.Clock) clocks.ClockElapsed {
	f := host.NewFrame(cols*cellWidth, rows*cellHeight)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			ch := m.video[row*cols+col]
			m.blitGlyph(f, ch, col*cellWidth, row*cellHeight)
		}
	}
	m.frame = f
	return clocks.NTSCFrameDuration
}

// blitGlyph draws one character's 5x8 glyph into f at (x0, y0), leaving
// the cell's rightmost column as a blank gutter pixel per the hardware's
// 6-pixel-wide cell over a 5-pixel-wide font.
func (m *Model1) blitGlyph(f *host.Frame, ch byte, x0, y0 int) {
	for y := 0; y < glyphHeight; y++ {
		for x := 0; x < glyphWidth; x++ {
			f.Set(x0+x, y0+y, glyphPixel(ch, x, y))
		}
	}
}

// Frame implements host.FrameSource.
func (m *Model1) Frame() *host.Frame { return m.frame }
