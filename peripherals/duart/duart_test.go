package duart

import (
	"io"
	"testing"

	"github.com/moaemu/moa/interrupts"
)

// fakePTY is an in-memory host.PTY double: inbound holds bytes the test
// pretends arrived from the far end, outbound collects what the DUART
// writes out.
type fakePTY struct {
	inbound  []byte
	outbound []byte
}

func (f *fakePTY) Read(p []byte) (int, error) {
	if len(f.inbound) == 0 {
		return 0, nil
	}
	n := copy(p, f.inbound)
	f.inbound = f.inbound[n:]
	return n, nil
}

func (f *fakePTY) Write(p []byte) (int, error) {
	f.outbound = append(f.outbound, p...)
	return len(p), nil
}

func (f *fakePTY) Close() error { return nil }

var _ io.ReadWriteCloser = (*fakePTY)(nil)

func TestStatusStartsTransmitReady(t *testing.T) {
	d := New(interrupts.New())
	var status [1]byte
	if err := d.Read(regStatusA, status[:]); err != nil {
		t.Fatalf("read status: %v", err)
	}
	if status[0]&statusTxReady == 0 || status[0]&statusTxEmpty == 0 {
		t.Errorf("expected TX ready/empty on a fresh channel, got %#x", status[0])
	}
	if status[0]&statusRxReady != 0 {
		t.Errorf("expected no RX pending on a fresh channel, got %#x", status[0])
	}
}

func TestReceiveByteSetsRxReadyAndIsConsumedByRead(t *testing.T) {
	d := New(interrupts.New())
	pty := &fakePTY{inbound: []byte{0x41}}
	d.ConnectA(pty)
	d.Write(regCmdA, []byte{0x01}) // enable RX

	d.Step(0)

	var status [1]byte
	d.Read(regStatusA, status[:])
	if status[0]&statusRxReady == 0 {
		t.Fatalf("expected RX ready after Step pulled a byte, status=%#x", status[0])
	}

	var data [1]byte
	d.Read(regDataA, data[:])
	if data[0] != 0x41 {
		t.Errorf("data = %#x, want 0x41", data[0])
	}

	d.Read(regStatusA, status[:])
	if status[0]&statusRxReady != 0 {
		t.Errorf("expected RX ready cleared after data read, status=%#x", status[0])
	}
}

func TestWithoutRxEnabledNoByteIsPulled(t *testing.T) {
	d := New(interrupts.New())
	pty := &fakePTY{inbound: []byte{0x41}}
	d.ConnectA(pty)
	// RX left disabled.

	d.Step(0)

	var status [1]byte
	d.Read(regStatusA, status[:])
	if status[0]&statusRxReady != 0 {
		t.Errorf("expected no RX activity while RX disabled, status=%#x", status[0])
	}
}

func TestWriteDataForwardsToConnectedPTYWhenTxEnabled(t *testing.T) {
	d := New(interrupts.New())
	pty := &fakePTY{}
	d.ConnectB(pty)
	d.Write(regCmdB, []byte{0x04}) // enable TX

	d.Write(regDataB, []byte{0x58})

	if len(pty.outbound) != 1 || pty.outbound[0] != 0x58 {
		t.Errorf("outbound = %v, want [0x58]", pty.outbound)
	}
}

func TestWriteDataDiscardedWhenTxDisabled(t *testing.T) {
	d := New(interrupts.New())
	pty := &fakePTY{}
	d.ConnectB(pty)

	d.Write(regDataB, []byte{0x58})

	if len(pty.outbound) != 0 {
		t.Errorf("expected no bytes forwarded with TX disabled, got %v", pty.outbound)
	}
}

func TestInterruptAssertedWhenMaskedRxReadyAndClearedOnRead(t *testing.T) {
	ic := interrupts.New()
	d := New(ic)
	pty := &fakePTY{inbound: []byte{0x7a}}
	d.ConnectA(pty)
	d.Write(regCmdA, []byte{0x01})
	d.Write(regIMR, []byte{isrChARxReady})

	d.Step(0)

	if !ic.Asserted(interruptLine) {
		t.Fatalf("expected interrupt line asserted after masked RX ready")
	}

	var data [1]byte
	d.Read(regDataA, data[:])

	if ic.Asserted(interruptLine) {
		t.Errorf("expected interrupt line deasserted after RX data consumed")
	}
}

func TestUnconnectedChannelReadsIdleStatusForever(t *testing.T) {
	d := New(interrupts.New())
	d.Write(regCmdA, []byte{0x01})

	d.Step(0)

	var status [1]byte
	d.Read(regStatusA, status[:])
	if status[0]&statusRxReady != 0 {
		t.Errorf("expected no RX activity on an unconnected channel, status=%#x", status[0])
	}
}
