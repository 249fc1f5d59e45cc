package vdp

import (
	"testing"

	"github.com/moaemu/moa/interrupts"
)

func newTestVDP() *VDP {
	return NewVDP(nil, nil)
}

// VBLANK entry must assert the level-6 line with the 68000's level-6
// autovector number (30), not the priority level itself -- the core
// dispatches via VBR + vector*4, so vector 6 would instead hit the CHK
// exception's vector slot.
func TestVBlankAssertsLevel6Autovector(t *testing.T) {
	ic := interrupts.New()
	v := NewVDP(ic, nil)
	v.R[0x01] = 0x20 // mode2: V-interrupt enable

	v.enterVBlank()

	priority, vector, ok := ic.HighestPendingAbove(0)
	if !ok {
		t.Fatalf("V-interrupt must be asserted after VBLANK entry")
	}
	if priority != LineVInt {
		t.Fatalf("priority = %d, want %d", priority, LineVInt)
	}
	if vector != 30 {
		t.Fatalf("vector = %d, want 30 (level-6 autovector)", vector)
	}
}

// The per-line H-interrupt underflow must assert the level-4 line with the
// level-4 autovector number (28), not 4.
func TestHInterruptAssertsLevel4Autovector(t *testing.T) {
	ic := interrupts.New()
	v := NewVDP(ic, nil)
	v.R[0x00] = 0x10 // mode1: H-interrupt enable
	v.hLineCounter = 0

	v.stepHInterrupt()

	priority, vector, ok := ic.HighestPendingAbove(0)
	if !ok {
		t.Fatalf("H-interrupt must be asserted after counter underflow")
	}
	if priority != LineHInt {
		t.Fatalf("priority = %d, want %d", priority, LineHInt)
	}
	if vector != 28 {
		t.Fatalf("vector = %d, want 28 (level-4 autovector)", vector)
	}
}

// A register write (top two bits 0b10) must land in the register file and
// must not leave a two-word command latch pending.
func TestControlPortRegisterWrite(t *testing.T) {
	v := newTestVDP()
	if err := v.writeControlPort([]byte{0x80, 0x04}); err != nil {
		t.Fatalf("register write: %v", err)
	}
	if v.R[0] != 0x04 {
		t.Fatalf("R[0] = %#x, want 0x04", v.R[0])
	}
	if v.ctrlHasFirst {
		t.Fatalf("register write must not leave a pending first-word latch")
	}
}

// A register-set word arriving while a first command word is latched must
// invalidate the latch rather than being consumed as that command's second
// word.
func TestRegisterWriteInvalidatesPendingLatch(t *testing.T) {
	v := newTestVDP()
	if err := v.writeControlPort([]byte{0x40, 0x00}); err != nil {
		t.Fatalf("first word: %v", err)
	}
	if !v.ctrlHasFirst {
		t.Fatalf("first word must arm the latch")
	}
	if err := v.writeControlPort([]byte{0x80, 0x04}); err != nil {
		t.Fatalf("register write: %v", err)
	}
	if v.R[0] != 0x04 {
		t.Fatalf("R[0] = %#x, want 0x04", v.R[0])
	}
	if v.ctrlHasFirst {
		t.Fatalf("register write must clear a pending first-word latch")
	}
}

// The two-word command protocol must decode a VRAM-write target and address
// identically whether the CPU issues it as two 16-bit control-port writes,
// which is the only shape a 16-bit-databus BusPort ever produces (a 32-bit
// access is itself fragmented into the same two writes before reaching the
// VDP).
func TestControlPortTwoWordVRAMWriteTarget(t *testing.T) {
	v := newTestVDP()
	if err := v.writeControlPort([]byte{0x40, 0x00}); err != nil {
		t.Fatalf("first word: %v", err)
	}
	if !v.ctrlHasFirst {
		t.Fatalf("first word must arm the latch")
	}
	if err := v.writeControlPort([]byte{0x00, 0x00}); err != nil {
		t.Fatalf("second word: %v", err)
	}
	if v.ctrlHasFirst {
		t.Fatalf("second word must clear the latch")
	}
	if v.target.addr != 0 || v.target.region != regionVRAM || !v.target.write {
		t.Fatalf("target = %+v, want {0 VRAM write}", v.target)
	}
}

// A VRAM-fill DMA must write the fill word's high byte to every
// auto-incremented address for the configured length.
func TestDMAFillWritesHighByteAcrossRun(t *testing.T) {
	v := newTestVDP()

	setReg := func(reg, val byte) {
		word := uint16(0x8000) | uint16(reg)<<8 | uint16(val)
		if err := v.writeControlPort([]byte{byte(word >> 8), byte(word)}); err != nil {
			t.Fatalf("set register %#x: %v", reg, err)
		}
	}
	setReg(0x01, 0x10) // mode2: DMA enable
	setReg(0x0f, 0x02) // auto-increment 2
	setReg(0x13, 0x04) // length low = 4 words
	setReg(0x14, 0x00)
	setReg(0x17, 0x80) // DMA mode bits 10 = VRAM fill

	// Two-word command: VRAM write + DMA flag, destination 0x1000.
	if err := v.writeControlPort([]byte{0x50, 0x00}); err != nil {
		t.Fatalf("command word 1: %v", err)
	}
	if err := v.writeControlPort([]byte{0x00, 0x80}); err != nil {
		t.Fatalf("command word 2: %v", err)
	}
	if !v.pendingFill {
		t.Fatalf("fill DMA must arm, not run immediately")
	}

	if err := v.writeDataPort([]byte{0xab, 0x00}); err != nil {
		t.Fatalf("fill word write: %v", err)
	}

	for _, addr := range []uint16{0x1000, 0x1002, 0x1004, 0x1006} {
		if v.VRAM[addr] != 0xab {
			t.Fatalf("VRAM[%#x] = %#x, want 0xab", addr, v.VRAM[addr])
		}
	}
	if v.VRAM[0x1001] != 0 {
		t.Fatalf("fill must only touch the high byte of each word")
	}
}

// A VRAM-to-VRAM copy DMA (control-port code 0x30) must run immediately,
// copying byte-for-byte from the source address in registers 0x15/0x16 to
// the destination latched by the control-port command. This code sits
// outside the region switch's old exact-match cases and must still resolve
// to VRAM rather than being rejected as malformed.
func TestDMACopyWithinVRAM(t *testing.T) {
	v := newTestVDP()

	setReg := func(reg, val byte) {
		word := uint16(0x8000) | uint16(reg)<<8 | uint16(val)
		if err := v.writeControlPort([]byte{byte(word >> 8), byte(word)}); err != nil {
			t.Fatalf("set register %#x: %v", reg, err)
		}
	}
	setReg(0x01, 0x10) // mode2: DMA enable
	setReg(0x0f, 0x01) // auto-increment 1
	setReg(0x13, 0x04) // length low = 4 bytes
	setReg(0x14, 0x00)
	setReg(0x15, 0x00) // source low
	setReg(0x16, 0x02) // source mid -> source address 0x0200
	setReg(0x17, 0xc0) // DMA mode bits 11 = copy

	copy(v.VRAM[0x0200:], []byte{0x11, 0x22, 0x33, 0x44})

	// Two-word command: VRAM copy DMA code 0x30, destination 0x1000.
	if err := v.writeControlPort([]byte{0x10, 0x00}); err != nil {
		t.Fatalf("command word 1: %v", err)
	}
	if err := v.writeControlPort([]byte{0x00, 0xc0}); err != nil {
		t.Fatalf("command word 2: %v", err)
	}

	want := []byte{0x11, 0x22, 0x33, 0x44}
	for i, b := range want {
		if got := v.VRAM[0x1000+i]; got != b {
			t.Fatalf("VRAM[%#x] = %#x, want %#x", 0x1000+i, got, b)
		}
	}
	if v.Status&statusDMABusy != 0 {
		t.Fatalf("DMA busy flag must clear once the copy completes")
	}
}

// decodeColor must expand the Genesis's 3-bit-per-channel BGR format and
// apply the shadow/highlight brightness rule.
func TestDecodeColorAppliesShadowAndHighlight(t *testing.T) {
	entry := uint16(0x7<<9 | 0x7<<5 | 0x7<<1) // full-intensity white: R=G=B=7

	normal := decodeColor(entry, shadeNormal)
	shadow := decodeColor(entry, shadeShadow)
	highlight := decodeColor(entry, shadeHighlight)

	if normal == 0 {
		t.Fatalf("normal white must not decode to black")
	}
	if shadow >= normal {
		t.Fatalf("shadow must darken the pixel")
	}
	if highlight < normal {
		t.Fatalf("highlight must not darken the pixel")
	}
}

// A 40-cell mode4 setting must report a 320px screen width; 32-cell must
// report 256.
func TestScreenWidthFollowsH40(t *testing.T) {
	v := newTestVDP()
	if w := v.ScreenWidth(); w != 256 {
		t.Fatalf("default width = %d, want 256", w)
	}
	v.R[0x0c] = 0x01
	if w := v.ScreenWidth(); w != 320 {
		t.Fatalf("H40 width = %d, want 320", w)
	}
}

// Step must raise the VBLANK status bit at the documented offset into the
// frame, and clear it again at the documented offset into the next frame.
func TestStepRaisesAndClearsVBlank(t *testing.T) {
	v := newTestVDP()
	v.R[0x01] = 0x20 | 0x40 // V-interrupt enable + display enable

	for i := 0; i < 300; i++ {
		v.Step(0)
		if v.Status&statusVBlank != 0 {
			break
		}
	}
	if v.Status&statusVBlank == 0 {
		t.Fatalf("VBLANK never asserted within one frame's worth of steps")
	}

	cleared := false
	for i := 0; i < 300; i++ {
		v.Step(0)
		if v.Status&statusVBlank == 0 {
			cleared = true
			break
		}
	}
	if !cleared {
		t.Fatalf("VBLANK never cleared in the following frame")
	}
}
