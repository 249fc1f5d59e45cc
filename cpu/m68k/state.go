package m68k

import (
	"github.com/moaemu/moa/bus"
	"github.com/moaemu/moa/clocks"
	"github.com/moaemu/moa/config"
	"github.com/moaemu/moa/interrupts"
	"github.com/moaemu/moa/random"
)

// Variant selects between the MC68000 and MC68010 exception-frame and VBR
// behaviour. Both share every other part of the core.
type Variant int

const (
	MC68000 Variant = iota
	MC68010
)

// CPU implements the MC68000/MC68010 execution core: decode, execute, the
// exception model, and bus-width adaptation via its BusPort.
type CPU struct {
	Variant Variant

	D [8]uint32
	A [7]uint32 // A0-A6; A7 is whichever of SSP/USP is currently active
	SSP, USP   uint32
	PC         uint32
	VBR        uint32 // MC68010 only; always 0 on MC68000

	SR SR

	Status RunStatus

	// Fault is the error that transitioned the core into Halted, and
	// FaultPC the PC it was fetched at. Both are nil/zero while Running.
	// The debug package's instruction dump reads these.
	Fault   error
	FaultPC uint32

	port *bus.BusPort
	ic   *interrupts.Controller

	clockHz  clocks.Hz
	cfg      config.Config
	rand     *random.Random
	lastIRQAck bool
}

// halt records the fault that stopped the core and enters Halted.
func (c *CPU) halt(pc uint32, err error) {
	c.Fault = err
	c.FaultPC = pc
	c.Status = Halted
}

// NewCPU creates a CPU wired to port for bus access and ic for interrupt
// delivery, running at clockHz. The CPU starts in Init status; call Reset to
// bring it to Running with the reset vectors loaded.
func NewCPU(variant Variant, port *bus.BusPort, ic *interrupts.Controller, clockHz clocks.Hz, cfg config.Config) *CPU {
	return &CPU{
		Variant: variant,
		port:    port,
		ic:      ic,
		clockHz: clockHz,
		cfg:     cfg,
		rand:    random.NewRandom(),
		Status:  Init,
	}
}

// A7 returns the currently active stack pointer (USP in user mode, SSP in
// supervisor mode), which is what indexed/indirect addressing modes using
// register 7 actually read and write.
func (c *CPU) A7() uint32 {
	if c.SR.Supervisor {
		return c.SSP
	}
	return c.USP
}

// SetA7 updates the currently active stack pointer.
func (c *CPU) SetA7(v uint32) {
	if c.SR.Supervisor {
		c.SSP = v
	} else {
		c.USP = v
	}
}

// GetA returns address register n (0-7), resolving register 7 to whichever
// stack pointer is currently active.
func (c *CPU) GetA(n int) uint32 {
	if n == 7 {
		return c.A7()
	}
	return c.A[n]
}

// SetA updates address register n (0-7), resolving register 7 to whichever
// stack pointer is currently active.
func (c *CPU) SetA(n int, v uint32) {
	if n == 7 {
		c.SetA7(v)
	} else {
		c.A[n] = v
	}
}

// addrMask returns the physical address mask for this core: 24 bits for the
// MC68000/MC68010 address bus.
const addrMask = 0x00ffffff

// Reset reads SSP from address 0 and PC from address 4 (both 32-bit
// big-endian), sets SR to 0x2700 (supervisor, mask 7, trace off), and enters
// Running. It does not clear D/A registers to zero unless the Host's Config
// requests deterministic power-on state; otherwise they are filled with
// clock-seeded noise, matching real hardware's undefined power-on values.
func (c *CPU) Reset() error {
	for i := range c.D {
		if c.cfg.RandomState {
			c.D[i] = c.rand.Uint32(clocks.Clock(i))
		} else {
			c.D[i] = 0
		}
	}
	for i := range c.A {
		if c.cfg.RandomState {
			c.A[i] = c.rand.Uint32(clocks.Clock(i + 8))
		} else {
			c.A[i] = 0
		}
	}

	c.VBR = 0
	c.SR = SR{Supervisor: true, Mask: 7}

	ssp, err := c.port.ReadLongBE(0)
	if err != nil {
		return err
	}
	pc, err := c.port.ReadLongBE(4)
	if err != nil {
		return err
	}

	c.SSP = ssp
	c.PC = pc
	c.Status = Running

	return nil
}

// fetchWord reads one big-endian word from PC and advances PC by 2.
func (c *CPU) fetchWord() (uint16, error) {
	v, err := c.port.ReadWordBE(uint64(c.PC) & addrMask)
	if err != nil {
		return 0, err
	}
	c.PC += 2
	return v, nil
}

// fetchLong reads one big-endian long from PC and advances PC by 4.
func (c *CPU) fetchLong() (uint32, error) {
	hi, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	lo, err := c.fetchWord()
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}
