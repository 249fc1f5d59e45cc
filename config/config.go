// Package config collates the build-time knobs that a Host supplies when
// assembling a machine: which CPU clock speeds to run at, whether to
// randomise power-on register state, and a label for the machine. It is
// deliberately not persisted to disk -- the core has no
// notion of a preferences file, unlike the debugger tooling it is descended
// from; a Host that wants persistence implements it above this package.
package config

import "github.com/moaemu/moa/clocks"

// Config is passed to every machine builder and on to the CPU cores it
// builds, so that they can be built against the same values without a
// global.
type Config struct {
	// RandomState causes the MC68000 core's Reset() to fill its registers
	// with clock-seeded noise (see package random) instead of zeroing them,
	// which shakes out bugs a zero-state reset would never exercise. The Z80
	// core's Reset() leaves its registers unchanged instead of zeroing them.
	RandomState bool

	// MC68000Clock and Z80Clock override the default clock speed for
	// machines that use those cores. Zero means "use the machine builder's
	// default for this platform".
	MC68000Clock clocks.Hz
	Z80Clock     clocks.Hz

	// Label distinguishes one instance of a machine from another when more
	// than one is running in the same process, e.g. during a headless
	// comparison run.
	Label string
}

// Default returns a Config with zero-state reset and no clock overrides.
func Default() Config {
	return Config{}
}
