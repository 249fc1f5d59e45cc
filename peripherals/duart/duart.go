// Package duart implements a simplified MC68681 dual-UART: the Computie
// SBC's serial interface, presenting two independent byte channels (A and
// B) to the 68000 bus and, on the other side, to a pair of host.PTYs the
// embedder supplies (one for an interactive terminal, one for a SLIP
// network link). Only the register subset Computie's monitor and kernel
// actually exercise is implemented: per-channel status/data registers, a
// command register driving the documented RX/TX-enable bits, and a shared
// interrupt-status/mask pair. Timer and counter mode, parity/stop-bit
// configuration, and the auxiliary IPCR/output-port registers are not
// modeled; a machine that never configures them cannot tell the
// difference.
package duart

import (
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/host"
	"github.com/moaemu/moa/interrupts"
)

// stepInterval is how often Step polls for newly arrived serial input --
// fast enough that a monitor busy-waiting on RX-ready never stalls
// noticeably, without re-polling every single bus cycle.
const stepInterval = clocks.ClockElapsed(100_000)

// Register offsets, relative to the chip's base address, matching the
// documented MC68681 map. Channel B mirrors channel A at a +0x10 offset.
const (
	regModeA   = 0x01
	regStatusA = 0x03 // read
	regCmdA    = 0x05 // write
	regDataA   = 0x07 // read/write

	regModeB   = 0x11
	regStatusB = 0x13
	regCmdB    = 0x15
	regDataB   = 0x17

	regISR = 0x0b // read
	regIMR = 0x0b // write
)

// Status register bits.
const (
	statusTxEmpty = 0x08
	statusTxReady = 0x04
	statusRxFull  = 0x02
	statusRxReady = 0x01
)

// Interrupt status bits, indexed the same way the real chip's ISR is.
const (
	isrChBRxReady = 0x20
	isrChBTxReady = 0x10
	isrChARxReady = 0x02
	isrChATxReady = 0x01
)

// interruptLine and interruptPriority place the DUART on the shared
// interrupts.Controller at the level Computie's monitor expects an
// external device interrupt to arrive on.
const (
	interruptLine     = 2
	interruptPriority = 2
)

// port is one of the chip's two independent serial channels.
type port struct {
	pty host.PTY

	status        byte
	txEnabled     bool
	rxEnabled     bool
	pendingInput  byte
	hasPending    bool
	readBuf       [1]byte
}

func newPort() *port {
	return &port{status: statusTxEmpty | statusTxReady}
}

// connect attaches the host-side pseudo-terminal this channel reads from
// and writes to. Leaving a channel unconnected is valid: it then behaves
// as if nothing were plugged into that serial port (no RX data ever
// arrives, TX is discarded).
func (p *port) connect(pty host.PTY) {
	p.pty = pty
}

// poll is called once per chip Step to pull in at most one byte of pending
// input. The embedder's PTY is expected to be opened non-blocking -- a
// Read that returns (0, nil) or a transient error simply means no byte is
// available yet, not a closed connection.
func (p *port) poll() {
	if p.pty == nil || p.hasPending || !p.rxEnabled {
		return
	}
	n, err := p.pty.Read(p.readBuf[:])
	if err != nil || n == 0 {
		return
	}
	p.pendingInput = p.readBuf[0]
	p.hasPending = true
	p.status |= statusRxFull | statusRxReady
}

func (p *port) readData() byte {
	v := p.pendingInput
	p.hasPending = false
	p.status &^= statusRxFull | statusRxReady
	return v
}

func (p *port) writeData(v byte) {
	if p.pty != nil && p.txEnabled {
		_, _ = p.pty.Write([]byte{v})
	}
}

// handleCommand decodes the RX/TX-enable bits a command-register write
// sets, per the documented bit-serial protocol: bits 0-1 control RX
// (01 enables, 10 disables), bits 2-3 control TX the same way. The
// reset-and-break bits the real chip also carries in this register are
// not modeled.
func (p *port) handleCommand(v byte) {
	switch v & 0x03 {
	case 0x01:
		p.rxEnabled = true
	case 0x02:
		p.rxEnabled = false
		p.hasPending = false
		p.status &^= statusRxFull | statusRxReady
	}
	switch (v >> 2) & 0x03 {
	case 0x01:
		p.txEnabled = true
	case 0x02:
		p.txEnabled = false
	}
}

// DUART is a two-channel serial chip addressable at 0x20 bytes, matching
// the real MC68681's register block size.
type DUART struct {
	A, B *port

	ic  *interrupts.Controller
	imr byte
}

// New creates a DUART with both channels present but unconnected, wired to
// ic for interrupt delivery. Call ConnectA/ConnectB to attach the host's
// pseudo-terminals.
func New(ic *interrupts.Controller) *DUART {
	return &DUART{A: newPort(), B: newPort(), ic: ic}
}

// ConnectA attaches the interactive terminal pseudo-terminal to channel A.
func (d *DUART) ConnectA(pty host.PTY) { d.A.connect(pty) }

// ConnectB attaches the SLIP network pseudo-terminal to channel B.
func (d *DUART) ConnectB(pty host.PTY) { d.B.connect(pty) }

// Length implements bus.Addressable.
func (d *DUART) Length() uint64 { return 0x20 }

// Read implements bus.Addressable. Only single-byte register reads are
// meaningful; out must be exactly one byte, matching how the monitor code
// addresses this chip (byte-wide accesses on the low half of each 16-bit
// bus cycle).
func (d *DUART) Read(addr uint64, out []byte) error {
	var v byte
	switch addr {
	case regStatusA:
		v = d.A.status
	case regDataA:
		v = d.A.readData()
		d.syncISR()
	case regStatusB:
		v = d.B.status
	case regDataB:
		v = d.B.readData()
		d.syncISR()
	case regISR:
		v = d.isr()
	default:
		v = 0xff
	}
	for i := range out {
		out[i] = v
	}
	return nil
}

// Write implements bus.Addressable.
func (d *DUART) Write(addr uint64, in []byte) error {
	if len(in) == 0 {
		return nil
	}
	v := in[len(in)-1]
	switch addr {
	case regCmdA:
		d.A.handleCommand(v)
	case regDataA:
		d.A.writeData(v)
	case regCmdB:
		d.B.handleCommand(v)
	case regDataB:
		d.B.writeData(v)
	case regIMR:
		d.imr = v
	case regModeA, regModeB:
		// mode register accepted, not modeled -- this chip only ever runs
		// 8N1 async mode.
	}
	d.syncISR()
	return nil
}

func (d *DUART) isr() byte {
	var v byte
	if d.A.status&statusRxReady != 0 {
		v |= isrChARxReady
	}
	if d.A.status&statusTxReady != 0 {
		v |= isrChATxReady
	}
	if d.B.status&statusRxReady != 0 {
		v |= isrChBRxReady
	}
	if d.B.status&statusTxReady != 0 {
		v |= isrChBTxReady
	}
	return v
}

func (d *DUART) syncISR() {
	pending := d.isr() & d.imr
	d.ic.Set(interruptLine, pending != 0, interruptPriority, vectorForISR(pending))
}

// vectorForISR picks the lowest-numbered asserted source's vector, mirroring
// the real chip's priority-encoded single interrupt vector register. A
// machine this small never has more than one source pending in practice,
// since Computie's monitor services each channel before returning.
func vectorForISR(pending byte) int {
	switch {
	case pending&isrChARxReady != 0:
		return 0x40
	case pending&isrChATxReady != 0:
		return 0x41
	case pending&isrChBRxReady != 0:
		return 0x42
	case pending&isrChBTxReady != 0:
		return 0x43
	default:
		return 0x40
	}
}

// Step polls both channels for newly arrived input and updates the shared
// interrupt line. It is scheduled at a fixed cadence rather than once per
// bus cycle, since serial arrival is asynchronous to the CPU core in any
// case.
func (d *DUART) Step(_ clocks.Clock) clocks.ClockElapsed {
	d.A.poll()
	d.B.poll()
	d.syncISR()
	return stepInterval
}
