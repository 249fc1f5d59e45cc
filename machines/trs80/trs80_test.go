package trs80

import (
	"testing"

	"github.com/moaemu/moa/cpu/z80"
	"github.com/moaemu/moa/host"
)

// minimalROM is a ROM image consisting entirely of NOPs, so Reset (PC=0)
// and a handful of Step calls succeed without any real BASIC ROM code.
func minimalROM() []byte {
	image := make([]byte, 0x100)
	for i := range image {
		image[i] = 0x00 // Z80 NOP
	}
	return image
}

func TestNewBuildsRunnableMachine(t *testing.T) {
	m, err := New(minimalROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if m.CPU.Status != z80.Running {
		t.Fatalf("expected CPU Running after Reset, got %v", m.CPU.Status)
	}
	if err := m.Scheduler.RunFor(1000); err != nil {
		t.Fatalf("RunFor: %v", err)
	}
	if m.CPU.Status == z80.Halted {
		t.Errorf("CPU halted executing NOPs: fault=%v at PC=%#x", m.CPU.Fault, m.CPU.FaultPC)
	}
}

func TestVideoWindowIsWritableThroughBus(t *testing.T) {
	m, err := New(minimalROM(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Bus.Write(videoBase+0x420, []byte{'Z'}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out [1]byte
	if err := m.Bus.Read(videoBase+0x420, out[:]); err != nil {
		t.Fatalf("read: %v", err)
	}
	if out[0] != 'Z' {
		t.Errorf("video read = %v, want 'Z'", out[0])
	}
}

type fakeCap struct {
	windows     []host.FrameSource
	keyboardReg host.KeyboardSink
}

func (f *fakeCap) AddWindow(s host.FrameSource)                  { f.windows = append(f.windows, s) }
func (f *fakeCap) RegisterController(string, host.ControllerSink) {}
func (f *fakeCap) RegisterKeyboard(s host.KeyboardSink)          { f.keyboardReg = s }
func (f *fakeCap) CreatePTY(string) (host.PTY, error)            { return nil, nil }
func (f *fakeCap) AddAudioSource(int, int) host.AudioSink        { return nil }

func TestCapabilityRegistersVideoAsWindowAndKeyboard(t *testing.T) {
	cap := &fakeCap{}
	m, err := New(minimalROM(), cap)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(cap.windows) != 1 || cap.windows[0] != m.Video {
		t.Errorf("expected video registered as the sole window")
	}
	if cap.keyboardReg != m.Video {
		t.Errorf("expected video registered as the keyboard sink")
	}
}
