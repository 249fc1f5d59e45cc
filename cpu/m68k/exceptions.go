package m68k

// Vector numbers for the exceptions this core raises internally. Peripheral
// (autovector) interrupts use vectors 25-31 for priorities 1-7; TRAP #n
// vectors to 32+n.
const (
	VectorBusError            = 2
	VectorAddressError        = 3
	VectorIllegalInstruction  = 4
	VectorDivideByZero        = 5
	VectorCHK                 = 6
	VectorTRAPV               = 7
	VectorPrivilegeViolation  = 8
	VectorTrace               = 9
	VectorLineA               = 10
	VectorLineF               = 11
	VectorAutovectorBase      = 24 // + priority (1-7)
	VectorTRAPBase            = 32 // + trap number (0-15)
)

func (c *CPU) push32(v uint32) error {
	sp := c.A7() - 4
	c.SetA7(sp)
	return c.port.WriteLongBE(uint64(sp)&addrMask, v)
}

func (c *CPU) push16(v uint16) error {
	sp := c.A7() - 2
	c.SetA7(sp)
	return c.port.WriteWordBE(uint64(sp)&addrMask, v)
}

func (c *CPU) pop32() (uint32, error) {
	sp := c.A7()
	v, err := c.port.ReadLongBE(uint64(sp) & addrMask)
	if err != nil {
		return 0, err
	}
	c.SetA7(sp + 4)
	return v, nil
}

func (c *CPU) pop16() (uint16, error) {
	sp := c.A7()
	v, err := c.port.ReadWordBE(uint64(sp) & addrMask)
	if err != nil {
		return 0, err
	}
	c.SetA7(sp + 2)
	return v, nil
}

// vectorTableAddress returns the address of the given vector's entry. On
// the MC68000 this is always vector*4; the MC68010 relocates the table via
// VBR.
func (c *CPU) vectorTableAddress(vector uint32) uint32 {
	return c.VBR + vector*4
}

// raiseException pushes the exception stack frame, enters supervisor mode
// with tracing disabled, and vectors PC into the handler. It is the single
// path by which any exception -- interrupt, trap, or fault -- is delivered;
// none of them propagate to the scheduler, only a Step-level device error
// does that.
func (c *CPU) raiseException(vector uint32) (int, error) {
	wasSupervisor := c.SR.Supervisor
	savedSR := c.SR.Value()

	c.SR.Supervisor = true
	c.SR.Trace = false

	if c.Variant == MC68010 {
		// format/vector word: format 0 (the short frame) in bits 12-15 and
		// the vector offset (vector*4) in bits 0-11
		formatWord := uint16(vector&0xff) << 2
		if err := c.push16(formatWord); err != nil {
			return 0, err
		}
	}

	if err := c.push16(savedSR); err != nil {
		return 0, err
	}
	if err := c.push32(c.PC); err != nil {
		return 0, err
	}
	_ = wasSupervisor

	target, err := c.port.ReadLongBE(uint64(c.vectorTableAddress(vector)) & addrMask)
	if err != nil {
		return 0, err
	}
	c.PC = target

	return 34, nil // approximate exception entry cost in cycles
}

// checkInterrupts polls the interrupt controller. If the pending priority is
// strictly above the CPU's current mask, it delivers the interrupt: pushes
// SR then PC (low then high order, per the hardware frame), enters
// supervisor mode with tracing off, raises the mask to the delivered
// priority, and vectors into the handler. It returns true if an interrupt
// was delivered.
func (c *CPU) checkInterrupts() (bool, int, error) {
	priority, vector, ok := c.ic.HighestPendingAbove(int(c.SR.Mask))
	if !ok {
		return false, 0, nil
	}

	if c.Status == Stopped {
		c.Status = Running
	}

	cycles, err := c.raiseException(uint32(vector))
	if err != nil {
		return false, 0, err
	}
	c.SR.Mask = uint8(priority)

	return true, cycles, nil
}
