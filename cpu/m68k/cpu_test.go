package m68k

import (
	"testing"

	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/config"
	"github.com/moaemu/moa/interrupts"
)

func newTestCPU(t *testing.T, image []byte) (*CPU, *bus.Bus) {
	t.Helper()
	b := bus.NewBus()
	ram := bus.NewRAM(uint64(len(image)))
	if err := b.Insert(0, ram.Length(), "ram", ram); err != nil {
		t.Fatalf("insert ram: %v", err)
	}
	if err := b.Write(0, image); err != nil {
		t.Fatalf("seed ram: %v", err)
	}
	port := bus.NewBusPort(b, 24, 2)
	ic := interrupts.New()
	cpu := NewCPU(MC68000, port, ic, clocks.MC68000NTSC, config.Default())
	if err := cpu.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return cpu, b
}

// Scenario A from the functional spec: a ROM image with a reset vector
// pointing SSP at 0x00FFFFFE and PC at 0x200, a NOP at 0x200, and a
// STOP #0x2700 at 0x202.
func TestResetVectorAndStop(t *testing.T) {
	image := make([]byte, 0x210)
	copy(image, []byte{0x00, 0xFF, 0xFF, 0xFE, 0x00, 0x00, 0x02, 0x00})
	copy(image[0x200:], []byte{0x4E, 0x71}) // NOP
	copy(image[0x202:], []byte{0x4E, 0x72, 0x27, 0x00}) // STOP #0x2700

	cpu, _ := newTestCPU(t, image)

	if cpu.SSP != 0x00FFFFFE {
		t.Fatalf("SSP after reset = %#x, want 0x00FFFFFE", cpu.SSP)
	}
	if cpu.PC != 0x200 {
		t.Fatalf("PC after reset = %#x, want 0x200", cpu.PC)
	}

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("step 1 (NOP): %v", err)
	}
	if cpu.PC != 0x202 {
		t.Fatalf("PC after NOP = %#x, want 0x202", cpu.PC)
	}

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("step 2 (STOP): %v", err)
	}
	if cpu.Status != Stopped {
		t.Fatalf("status after STOP = %v, want Stopped", cpu.Status)
	}
}

// Scenario B: LSR.B #1,D0 clearing X only when the shifted-out bit is zero,
// never retaining a previously set X.
func TestLSRByteClearsOrSetsXFromShiftedBit(t *testing.T) {
	image := make([]byte, 0x10)
	// LSR.B #1,D0 encodes as 1110 001 0 00 000 000 = 0xE208.
	copy(image, []byte{0xE2, 0x08})
	cpu, _ := newTestCPU(t, image)
	cpu.PC = 0

	cpu.D[0] = 0x01
	cpu.SR.X = true
	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if cpu.D[0]&0xff != 0x00 {
		t.Fatalf("D0 = %#x, want 0x00", cpu.D[0]&0xff)
	}
	if !cpu.SR.Z || !cpu.SR.C || !cpu.SR.X {
		t.Fatalf("flags = Z:%v C:%v X:%v, want all true", cpu.SR.Z, cpu.SR.C, cpu.SR.X)
	}

	cpu.PC = 0
	cpu.D[0] = 0x02
	cpu.SR.X = true
	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if cpu.D[0]&0xff != 0x01 {
		t.Fatalf("D0 = %#x, want 0x01", cpu.D[0]&0xff)
	}
	if cpu.SR.Z || cpu.SR.C || cpu.SR.X {
		t.Fatalf("flags = Z:%v C:%v X:%v, want all false", cpu.SR.Z, cpu.SR.C, cpu.SR.X)
	}
}

// Logic instructions must never disturb X, only the arithmetic family does.
func TestLogicOpsLeaveXUntouched(t *testing.T) {
	image := make([]byte, 0x10)
	// AND.B D1,D0 = 1100 000 000 000 001 = 0xC001
	copy(image, []byte{0xC0, 0x01})
	cpu, _ := newTestCPU(t, image)
	cpu.PC = 0
	cpu.D[0] = 0xff
	cpu.D[1] = 0x0f
	cpu.SR.X = true

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if !cpu.SR.X {
		t.Fatalf("X flag disturbed by AND, want still true")
	}
	if cpu.D[0]&0xff != 0x0f {
		t.Fatalf("D0 = %#x, want 0x0f", cpu.D[0]&0xff)
	}
}

// ADDA.W and CMPA.W must sign-extend a word source to 32 bits before
// operating on the address register.
func TestADDASignExtendsWordSource(t *testing.T) {
	image := make([]byte, 0x10)
	// ADDA.W D0,A1 = 1101 001 011 000 000 = 0xD2C0
	copy(image, []byte{0xD2, 0xC0})
	cpu, _ := newTestCPU(t, image)
	cpu.PC = 0
	cpu.D[0] = 0xffff // -1 as a word
	cpu.SetA(1, 0x00001000)

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if cpu.GetA(1) != 0x00000fff {
		t.Fatalf("A1 = %#x, want 0x00000fff", cpu.GetA(1))
	}
}

func TestMOVEQSetsFlagsFromResultNotXUntouched(t *testing.T) {
	image := make([]byte, 0x10)
	// MOVEQ #-1,D2 = 0111 010 0 11111111 = 0x74FF
	copy(image, []byte{0x74, 0xFF})
	cpu, _ := newTestCPU(t, image)
	cpu.PC = 0
	cpu.SR.X = true

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if cpu.D[2] != 0xffffffff {
		t.Fatalf("D2 = %#x, want 0xffffffff", cpu.D[2])
	}
	if !cpu.SR.N || cpu.SR.Z {
		t.Fatalf("N:%v Z:%v, want N=true Z=false", cpu.SR.N, cpu.SR.Z)
	}
	if !cpu.SR.X {
		t.Fatalf("X disturbed by MOVEQ, want still true")
	}
}

func TestMOVEMRegistersToMemoryThenBack(t *testing.T) {
	image := make([]byte, 0x100)
	// MOVEM.L D0-D1,-(A7): predecrement mode reverses the mask, so D0/D1
	// are bits 15/14 (0xC000).
	copy(image, []byte{0x48, 0xE7, 0xC0, 0x00})
	// MOVEM.L (A7)+,D2-D3: postincrement mode uses the normal ascending
	// mask, D2/D3 are bits 2/3 (0x000C).
	copy(image[4:], []byte{0x4C, 0xDF, 0x00, 0x0C})

	cpu, _ := newTestCPU(t, image)
	cpu.PC = 0
	cpu.SetA7(0x90)
	cpu.D[0] = 0x11111111
	cpu.D[1] = 0x22222222

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("movem store: %v", err)
	}
	if cpu.A7() != 0x88 {
		t.Fatalf("A7 after predecrement store = %#x, want 0x88", cpu.A7())
	}

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("movem load: %v", err)
	}
	if cpu.D[2] != 0x11111111 || cpu.D[3] != 0x22222222 {
		t.Fatalf("D2/D3 = %#x/%#x, want 0x11111111/0x22222222", cpu.D[2], cpu.D[3])
	}
	if cpu.A7() != 0x90 {
		t.Fatalf("A7 after postincrement load = %#x, want 0x90", cpu.A7())
	}
}

func TestDivideByZeroRaisesException(t *testing.T) {
	image := make([]byte, 0x210)
	// SSP points at 0x200 so the exception frame lands inside the test RAM.
	copy(image, []byte{0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x02, 0x00})
	// DIVU D1,D0 = 1000 000 011 000 001 = 0x80C1
	copy(image[0x200:], []byte{0x80, 0xC1})
	copy(image[0x204:], []byte{0xde, 0xad, 0xbe, 0xef}) // vector 5 target

	cpu, b := newTestCPU(t, image)
	// Point the divide-by-zero vector (vector 5, address 0x14) at a harmless
	// handler address in RAM.
	if err := b.Write(VectorDivideByZero*4, []byte{0x00, 0x00, 0x02, 0x04}); err != nil {
		t.Fatalf("seed vector: %v", err)
	}
	cpu.D[0] = 100
	cpu.D[1] = 0

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if cpu.PC != 0x204 {
		t.Fatalf("PC after divide-by-zero = %#x, want 0x204", cpu.PC)
	}
}
