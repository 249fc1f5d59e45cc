// Package z80 implements the Zilog Z80 execution core used by the TRS-80
// Model I machine and by the Genesis's Z80 sound co-processor: decode,
// execute, the IFF1/IFF2/interrupt-mode model, and NMI/INT delivery.
package z80

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/config"
	"github.com/moaemu/moa/curated"
	"github.com/moaemu/moa/interrupts"
	"github.com/moaemu/moa/logger"
)

// RunStatus mirrors the m68k core's status model: a Z80 also has a halted
// state (entered by HALT, left by any accepted interrupt).
type RunStatus int

const (
	Init RunStatus = iota
	Running
	Halted
)

func (s RunStatus) String() string {
	switch s {
	case Init:
		return "Init"
	case Running:
		return "Running"
	case Halted:
		return "Halted"
	}
	return "Unknown"
}

// Interrupt line indices within the shared interrupts.Controller, matching
// that package's documented convention for the Z80: 0 is the single
// maskable line, 1 is NMI.
const (
	LineINT = 0
	LineNMI = 1
)

// IOPort is the Z80's separate 8-bit IO address space, addressed by IN/OUT
// and the block IO instructions. A machine builder wires a concrete IOPort
// onto the CPU for the ports its peripherals occupy (e.g. the TRS-80's
// cassette and keyboard ports, or the Genesis sound CPU's YM2612 ports).
type IOPort interface {
	In(port uint16) byte
	Out(port uint16, v byte)
}

// CPU implements the Z80 execution core.
type CPU struct {
	Registers

	Status RunStatus

	// Fault is the error that transitioned the core into Halted, and
	// FaultPC the PC it was fetched at. Both are nil/zero while Running.
	// The debug package's instruction dump reads these.
	Fault   error
	FaultPC uint16

	port *bus.BusPort
	ic   *interrupts.Controller
	io   IOPort

	clockHz clocks.Hz
	cfg     config.Config

	nmiWasAsserted bool
	suspended      bool
}

// halt records the fault that stopped the core and enters Halted.
func (c *CPU) halt(pc uint16, err error) {
	c.Fault = err
	c.FaultPC = pc
	c.Status = Halted
}

// AttachIO wires a machine's peripheral IO space onto the CPU's IN/OUT and
// block-IO instructions. Leaving it unattached is valid: ports then read as
// 0xff and writes are discarded, as if nothing were connected.
func (c *CPU) AttachIO(io IOPort) {
	c.io = io
}

// SetSuspended holds the core idle without consuming or advancing its own
// state, used by the Genesis bridge to model the 68000 holding the Z80's
// bus via BUSREQ/RESET.
func (c *CPU) SetSuspended(v bool) {
	c.suspended = v
}

// NewCPU creates a Z80 wired to port for bus access (an 8-bit-data,
// 16-bit-address BusPort) and ic for interrupt delivery, running at
// clockHz. Call Reset before stepping.
func NewCPU(port *bus.BusPort, ic *interrupts.Controller, clockHz clocks.Hz, cfg config.Config) *CPU {
	return &CPU{
		port:    port,
		ic:      ic,
		clockHz: clockHz,
		cfg:     cfg,
		Status:  Init,
	}
}

// Reset sets PC to 0, disables interrupts, selects IM0, and enters Running.
// Real hardware leaves every other register in an undefined power-on state;
// this core zeroes them, except that with Config.RandomState set it leaves
// them holding their previous values.
func (c *CPU) Reset() error {
	c.PC = 0
	c.SP = 0xffff
	c.IFF1 = false
	c.IFF2 = false
	c.IM = 0
	c.I = 0
	c.R = 0

	if !c.cfg.RandomState {
		c.A, c.F = 0, 0
		c.SetBC(0)
		c.SetDE(0)
		c.SetHL(0)
		c.IX, c.IY = 0, 0
	}

	c.Status = Running
	return nil
}

func (c *CPU) fetchByte() (byte, error) {
	b, err := c.port.ReadByte(uint64(c.PC))
	if err != nil {
		return 0, curated.Errorf(curated.BusError, c.PC)
	}
	c.PC++
	c.bumpR()
	return b, nil
}

func (c *CPU) fetchSignedByte() (int8, error) {
	b, err := c.fetchByte()
	return int8(b), err
}

func (c *CPU) fetchWordLE() (uint16, error) {
	lo, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) readByte(addr uint16) (byte, error) {
	b, err := c.port.ReadByte(uint64(addr))
	if err != nil {
		return 0, curated.Errorf(curated.BusError, addr)
	}
	return b, nil
}

func (c *CPU) writeByte(addr uint16, v byte) error {
	if err := c.port.WriteByte(uint64(addr), v); err != nil {
		return curated.Errorf(curated.BusError, addr)
	}
	return nil
}

func (c *CPU) readWordLE(addr uint16) (uint16, error) {
	lo, err := c.readByte(addr)
	if err != nil {
		return 0, err
	}
	hi, err := c.readByte(addr + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) writeWordLE(addr uint16, v uint16) error {
	if err := c.writeByte(addr, byte(v)); err != nil {
		return err
	}
	return c.writeByte(addr+1, byte(v>>8))
}

func (c *CPU) push(v uint16) error {
	c.SP -= 2
	return c.writeWordLE(c.SP, v)
}

func (c *CPU) pop() (uint16, error) {
	v, err := c.readWordLE(c.SP)
	if err != nil {
		return 0, err
	}
	c.SP += 2
	return v, nil
}

func (c *CPU) illegal(opcode byte) error {
	logger.Logf(logger.Allow, "z80", "illegal opcode %#02x at %#04x", opcode, c.PC-1)
	return curated.Errorf(curated.IllegalInstruction, opcode, c.PC-1)
}
