package m68k

import "github.com/moaemu/moa/clocks"

// Step implements bus.Steppable. Halted cores return a long fixed delay so
// the scheduler doesn't spin on them; otherwise an unmasked interrupt is
// serviced if one is pending, and failing that a single instruction is
// decoded and executed. Cycle counts are converted to wall-clock time via
// the CPU's configured clock rate.
func (c *CPU) Step(clock clocks.Clock) clocks.ClockElapsed {
	if c.Status == Halted {
		return c.clockHz.CyclesToDuration(1000)
	}

	if delivered, cycles, err := c.checkInterrupts(); err != nil {
		c.halt(c.PC, err)
		return c.clockHz.CyclesToDuration(4)
	} else if delivered {
		return c.clockHz.CyclesToDuration(cycles)
	}

	if c.Status == Stopped {
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
