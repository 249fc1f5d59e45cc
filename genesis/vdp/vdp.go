package vdp

import "github.com/moaemu/moa/clocks"

// Step advances the VDP's H/V timing by one scanline per call. It is
// registered with the scheduler at NTSCLineDuration granularity: each call
// may flip the VBLANK status bit, deliver the level-6 interrupt at VBLANK
// entry (and render the completed field), and decrement the per-line
// H-interrupt countdown, delivering the level-4 interrupt on underflow.
func (v *VDP) Step(clock clocks.Clock) clocks.ClockElapsed {
	before := v.vClock
	v.vClock += clocks.NTSCLineDuration
	wrapped := false
	if v.vClock >= clocks.NTSCFrameDuration {
		v.vClock -= clocks.NTSCFrameDuration
		wrapped = true
	}

	if wrapped {
		v.Status ^= statusOddFrame
	} else {
		if before < clocks.NTSCVBlankStart && v.vClock >= clocks.NTSCVBlankStart {
			v.enterVBlank()
		}
		if before < clocks.NTSCVBlankEnd && v.vClock >= clocks.NTSCVBlankEnd {
			v.Status &^= statusVBlank
		}
	}

	v.stepHInterrupt()
	return clocks.NTSCLineDuration
}

func (v *VDP) enterVBlank() {
	v.Status |= statusVBlank | statusVInterrupt
	if v.ic != nil && v.VInterruptEnabled() {
		v.ic.Set(LineVInt, true, LineVInt, vectorVInt)
	}
	if v.DisplayEnabled() {
		v.RenderFrame()
	}
}

// stepHInterrupt implements the per-line H-interrupt countdown: register
// 0x0A is reloaded whenever the counter underflows, and the level-4
// interrupt fires on that underflow when H-interrupts are enabled.
func (v *VDP) stepHInterrupt() {
	if v.hLineCounter == 0 {
		v.hLineCounter = v.hIntCounter()
		if v.HInterruptEnabled() && v.ic != nil {
			v.ic.Set(LineHInt, true, LineHInt, vectorHInt)
		}
		return
	}
	v.hLineCounter--
}

// AckVInterrupt clears the V-interrupt status flag and the pending level-6
// interrupt line. The 68k core does not call it when it takes the
// interrupt, so the line stays asserted until this is called.
func (v *VDP) AckVInterrupt() {
	v.Status &^= statusVInterrupt
	if v.ic != nil {
		v.ic.Deassert(LineVInt)
	}
}

// AckHInterrupt clears the pending level-4 interrupt line.
func (v *VDP) AckHInterrupt() {
	if v.ic != nil {
		v.ic.Deassert(LineHInt)
	}
}
