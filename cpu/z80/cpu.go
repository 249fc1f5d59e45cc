package z80

import "github.com/moaemu/moa/clocks"

// Step implements bus.Steppable. NMI is edge-triggered and always taken;
// the maskable interrupt is level-sensed and gated by IFF1, with delivery
// shaped by the selected interrupt mode (IM0 and IM1 both execute an
// implicit RST 0x38 in this implementation -- IM0's "CPU reads the
// instruction placed on the bus by the interrupting device" is approximated
// to its overwhelmingly common real-world case, since every in-scope
// peripheral asserts IM1-style vectoring). IM2 reads a two-byte vector from
// the table at I:vector.
func (c *CPU) Step(clock clocks.Clock) clocks.ClockElapsed {
	if c.suspended {
		return c.clockHz.CyclesToDuration(4)
	}

	nmiAsserted := c.ic.Asserted(LineNMI)
	if nmiAsserted && !c.nmiWasAsserted {
		c.nmiWasAsserted = true
		if c.Status == Halted {
			c.PC++ // resume after the HALT opcode
		}
		c.Status = Running
		c.IFF2 = c.IFF1
		c.IFF1 = false
		if err := c.push(c.PC); err != nil {
			c.halt(c.PC, err)
			return c.clockHz.CyclesToDuration(4)
		}
		c.PC = 0x66
		return c.clockHz.CyclesToDuration(11)
	}
	if !nmiAsserted {
		c.nmiWasAsserted = false
	}

	if c.IFF1 && c.ic.Asserted(LineINT) {
		_, vector, _ := c.ic.HighestPendingAbove(-1)
		if c.Status == Halted {
			c.PC++ // resume after the HALT opcode
		}
		c.Status = Running
		c.IFF1, c.IFF2 = false, false
		if err := c.push(c.PC); err != nil {
			c.halt(c.PC, err)
			return c.clockHz.CyclesToDuration(4)
		}
		if c.IM == 2 {
			addr := uint16(c.I)<<8 | uint16(byte(vector))
			target, err := c.readWordLE(addr)
			if err != nil {
				c.halt(c.PC, err)
				return c.clockHz.CyclesToDuration(4)
			}
			c.PC = target
			return c.clockHz.CyclesToDuration(19)
		}
		c.PC = 0x38
		return c.clockHz.CyclesToDuration(13)
	}

	if c.Status == Halted {
		return c.clockHz.CyclesToDuration(4)
	}

	startPC := c.PC
	cycles, err := c.execOne()
	if err != nil {
		c.halt(startPC, err)
		return c.clockHz.CyclesToDuration(4)
	}
	if cycles <= 0 {
		cycles = 4
	}
	return c.clockHz.CyclesToDuration(cycles)
}
