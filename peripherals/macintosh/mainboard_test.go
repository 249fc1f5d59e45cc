package macintosh

import (
	"testing"

	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/interrupts"
)

func newTestMainboard(t *testing.T) *Mainboard {
	t.Helper()
	rom := bus.NewROM([]byte{0x11, 0x22, 0x33, 0x44})
	ram := bus.NewRAM(0x1000)
	return NewMainboard(interrupts.New(), rom, ram)
}

func TestResetMapsROMAtZero(t *testing.T) {
	mb := newTestMainboard(t)
	var out [4]byte
	if err := mb.Read(0, out[:]); err != nil {
		t.Fatalf("read: %v", err)
	}
	want := []byte{0x11, 0x22, 0x33, 0x44}
	for i, b := range want {
		if out[i] != b {
			t.Errorf("rom[%d] = %#x, want %#x", i, out[i], b)
		}
	}
}

func TestOverlaySwitchRemapsRAMToZero(t *testing.T) {
	mb := newTestMainboard(t)
	// Clear the overlay bit (bit 4 of VIA port A): normal memory map.
	if err := mb.Write(viaBase|regOutputA<<9, []byte{0x00}); err != nil {
		t.Fatalf("write via port a: %v", err)
	}
	if err := mb.Write(0, []byte{0xaa}); err != nil {
		t.Fatalf("write ram: %v", err)
	}
	var out [1]byte
	if err := mb.Read(0, out[:]); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 0xaa {
		t.Errorf("ram[0] = %#x, want 0xaa after overlay switch", out[0])
	}
}

func TestUnmappedAddressIsBusError(t *testing.T) {
	mb := newTestMainboard(t)
	var out [1]byte
	if err := mb.Read(0xf80010, out[:]); err == nil {
		t.Errorf("expected a bus error reading past the debugger window")
	}
}

func TestSCCAndIWMAreIdleStubs(t *testing.T) {
	mb := newTestMainboard(t)
	var out [1]byte
	if err := mb.Read(scc1Base, out[:]); err != nil {
		t.Fatalf("read scc1: %v", err)
	}
	if err := mb.Write(iwmBase, []byte{0x00}); err != nil {
		t.Fatalf("write iwm: %v", err)
	}
}

func TestStepRaisesOneSecondInterrupt(t *testing.T) {
	mb := newTestMainboard(t)
	mb.via.Write(regIntEnable, []byte{0x81}) // enable the tick bit, set enable-bit.

	mb.Step(0)
	mb.Step(2_000_000_000)

	if !mb.ic.Asserted(viaInterruptLine) {
		t.Errorf("expected VIA interrupt line asserted after a full second elapsed")
	}
}
