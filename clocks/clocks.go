// Package clocks defines the simulation's notion of time: a monotonic,
// nanosecond-resolution Clock, and the constant clock speeds of the CPUs and
// video hardware that the scheduler advances against it.
//
// Values taken from published hardware reference timings for the Genesis/
// Mega Drive (68000 at ~7.67MHz NTSC, Z80 at ~3.58MHz, VDP pixel/line
// timings) and the Computie/TRS-80 boards (68000 and Z80 run at whatever
// rate the machine builder configures).
package clocks

// Clock is a monotonically increasing count of nanoseconds since the
// machine was built. All scheduling in the simulation is expressed as an
// absolute Clock value; nothing is scheduled relative to "now".
type Clock uint64

// ClockElapsed is a duration, in nanoseconds, returned by any operation that
// consumes simulated time.
type ClockElapsed uint64

// Add advances a Clock by the given elapsed duration.
func (c Clock) Add(d ClockElapsed) Clock {
	return c + Clock(d)
}

// Sub returns the elapsed duration between two clock values. Saturates at
// zero if later precedes earlier.
func (later Clock) Sub(earlier Clock) ClockElapsed {
	if later < earlier {
		return 0
	}
	return ClockElapsed(later - earlier)
}

// Hz expresses a clock speed in cycles per second. CyclesToDuration converts
// a cycle count at that speed into nanoseconds, rounding down.
type Hz float64

// CyclesToDuration converts a number of cycles at this frequency into a
// ClockElapsed duration in nanoseconds.
func (hz Hz) CyclesToDuration(cycles int) ClockElapsed {
	if cycles <= 0 {
		return 0
	}
	return ClockElapsed(float64(cycles) * (1e9 / float64(hz)))
}

// Published CPU clock speeds used by the core's machine builders.
const (
	// MC68000NTSC is the 68000 clock rate used on the NTSC Genesis/Mega Drive.
	MC68000NTSC Hz = 7_670_454

	// Z80NTSC is the Z80 coprocessor clock rate used on the NTSC Genesis.
	Z80NTSC Hz = 3_579_545

	// MC68000Computie is a convenient round rate for the Computie SBC, which
	// is not timing-critical the way the Genesis is.
	MC68000Computie Hz = 10_000_000

	// Z80TRS80 is the Z80 clock rate used by the TRS-80 Model I.
	Z80TRS80 Hz = 1_774_000

	// MC68000Mac512k is the 68000 clock rate used by the Macintosh 512k.
	MC68000Mac512k Hz = 7_833_600
)

// MacVideoFrameDuration is the redraw interval MacVideo uses to rasterize
// the framebuffer, matching the Macintosh's fixed ~60Hz vertical rate.
const MacVideoFrameDuration = ClockElapsed(16_600_000)

// NTSCFrameDuration is the duration of one NTSC video frame, in nanoseconds.
const NTSCFrameDuration = ClockElapsed(16_630_000)

// NTSCLineDuration is the duration of one NTSC scanline, in nanoseconds.
const NTSCLineDuration = ClockElapsed(63_500)

// NTSCVBlankStart is the offset into the frame, in nanoseconds, at which the
// VDP's VBLANK status bit transitions high and the level-6 interrupt fires.
const NTSCVBlankStart = ClockElapsed(15_424_008)

// NTSCVBlankEnd is the offset at which VBLANK is cleared again, at the start
// of the following frame's active display.
const NTSCVBlankEnd = ClockElapsed(1_205_992)
