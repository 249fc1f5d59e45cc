package z80

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
	ram := bus.NewRAM(0x10000)
	if err := b.Insert(0, ram.Length(), "ram", ram); err != nil {
		t.Fatalf("insert ram: %v", err)
	}
	if err := b.Write(0, image); err != nil {
		t.Fatalf("seed ram: %v", err)
	}
	port := bus.NewBusPort(b, 16, 1)
	ic := interrupts.New()
	cpu := NewCPU(port, ic, clocks.Z80NTSC, config.Default())
	if err := cpu.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return cpu, b
}

// LD B,n then INC B must set the half-carry flag exactly when the low
// nibble overflows, and never touch the carry flag.
func TestIncSetsHalfCarryNotCarry(t *testing.T) {
	// LD B,0x0F ; INC B
	cpu, _ := newTestCPU(t, []byte{0x06, 0x0f, 0x04})
	cpu.F = flagC.asByte() // seed carry so we can assert INC never clears it

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("LD B,n: %v", err)
	}
	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("INC B: %v", err)
	}
	if cpu.B != 0x10 {
		t.Fatalf("B = %#x, want 0x10", cpu.B)
	}
	f := Flags(cpu.F)
	if !f.h() {
		t.Fatalf("half-carry not set after 0x0f+1")
	}
	if !f.c() {
		t.Fatalf("INC must never touch carry, want still set")
	}
}

// AND/OR/XOR must clear carry, and AND sets half-carry while OR/XOR clear it.
func TestLogicOpsClearCarryAndSetHalfCarryOnlyForAnd(t *testing.T) {
	// LD A,0xFF ; LD B,0x0F ; AND B
	cpu, _ := newTestCPU(t, []byte{0x3e, 0xff, 0x06, 0x0f, 0xa0})
	cpu.F = flagC.asByte()

	for i := 0; i < 3; i++ {
		if _, err := cpu.execOne(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if cpu.A != 0x0f {
		t.Fatalf("A = %#x, want 0x0f", cpu.A)
	}
	f := Flags(cpu.F)
	if f.c() {
		t.Fatalf("AND must clear carry")
	}
	if !f.h() {
		t.Fatalf("AND must set half-carry")
	}
}

// CALL then RET must round-trip through the stack and leave SP unchanged.
func TestCallAndRetRoundTripStack(t *testing.T) {
	image := make([]byte, 0x20)
	// CALL 0x0010 at 0x0000; NOP at 0x0003 (return address)
	copy(image, []byte{0xcd, 0x10, 0x00, 0x00})
	// RET at 0x0010
	copy(image[0x10:], []byte{0xc9})

	cpu, _ := newTestCPU(t, image)
	spBefore := cpu.SP

	if _, err := cpu.execOne(); err != nil { // CALL
		t.Fatalf("call: %v", err)
	}
	if cpu.PC != 0x10 {
		t.Fatalf("PC after CALL = %#x, want 0x10", cpu.PC)
	}
	if _, err := cpu.execOne(); err != nil { // RET
		t.Fatalf("ret: %v", err)
	}
	if cpu.PC != 0x03 {
		t.Fatalf("PC after RET = %#x, want 0x03", cpu.PC)
	}
	if cpu.SP != spBefore {
		t.Fatalf("SP = %#x, want %#x (unchanged)", cpu.SP, spBefore)
	}
}

// HALT must park the CPU without advancing PC past the HALT opcode, so a
// subsequent interrupt resumes at the instruction after it.
func TestHaltParksWithoutAdvancing(t *testing.T) {
	cpu, _ := newTestCPU(t, []byte{0x76}) // HALT
	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("halt: %v", err)
	}
	if cpu.Status != Halted {
		t.Fatalf("status = %v, want Halted", cpu.Status)
	}
	if cpu.PC != 0 {
		t.Fatalf("PC = %#x, want 0 (re-executes HALT until an interrupt)", cpu.PC)
	}
}

// EXX must swap BC/DE/HL with their shadow copies and leave A alone.
func TestExxSwapsShadowBankOnly(t *testing.T) {
	cpu, _ := newTestCPU(t, []byte{0xd9}) // EXX
	cpu.SetBC(0x1234)
	cpu.SetDE(0x5678)
	cpu.SetHL(0x9abc)
	cpu.B_, cpu.C_ = 0x11, 0x22
	cpu.A = 0x42 // untouched by EXX

	if _, err := cpu.execOne(); err != nil {
		t.Fatalf("exx: %v", err)
	}
	if cpu.BC() != 0x1122 {
		t.Fatalf("BC after EXX = %#x, want 0x1122", cpu.BC())
	}
	if cpu.A != 0x42 {
		t.Fatalf("A disturbed by EXX, want unchanged")
	}
}

func (f Flags) asByte() byte { return byte(f) }
