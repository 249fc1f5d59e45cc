package mac512k

import (
	"testing"

	"github.com/moaemu/moa/cpu/m68k"
)

// minimalROM carries a reset vector (SSP at 0, PC at 4) pointing at a
// stretch of NOPs, so Reset and a handful of Step calls succeed without any
// real Macintosh ROM code. The image is shorter than the documented 64KB
// ROM window; Mainboard's Repeater wraps it to fill the window.
func minimalROM() []byte {
	image := make([]byte, 0x40)
	copy(image, []byte{0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x08})
	for i := 0x08; i < 0x20; i += 2 {
		image[i], image[i+1] = 0x4e, 0x71 // NOP
	}
	return image
}

func TestNewBuildsRunnableMachine(t *testing.T) {
	m, err := New(minimalROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.CPU.Status != m68k.Running {
		t.Fatalf("expected CPU Running after Reset, got %v", m.CPU.Status)
	}
	if err := m.Scheduler.RunFor(1000); err != nil {
		t.Fatalf("RunFor: %v", err)
	}
	if m.CPU.Status == m68k.Halted {
		t.Errorf("CPU halted executing NOPs: fault=%v at PC=%#x", m.CPU.Fault, m.CPU.FaultPC)
	}
}

func TestVideoProducesDocumentedFrameSize(t *testing.T) {
	m, err := New(minimalROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Video.Step(0)
	f := m.Video.Frame()
	if f.Width != 512 || f.Height != 342 {
		t.Errorf("frame size = %dx%d, want 512x342", f.Width, f.Height)
	}
}
