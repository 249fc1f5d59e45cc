package macintosh

import "github.com/moaemu/moa/clocks"

// VIA register offsets, per the documented 6522 register map used by the
// Macintosh's mainboard chip.
const (
	regOutputB    = 0x00
	regOutputA    = 0x01
	regDDRB       = 0x02
	regDDRA       = 0x03
	regPeriphCtrl = 0x0c
	regIntFlags   = 0x0d
	regIntEnable  = 0x0e
	regOutputANHS = 0x0f

	// overlayBit is bit 4 of VIA port A: 0 selects the normal memory map
	// (RAM at 0, ROM mirrored higher up), 1 selects the ROM-overlay map the
	// CPU boots into.
	overlayBit = 0x10
)

const tickInterval = clocks.ClockElapsed(1_000_000_000)

// port is one of the VIA's two 8-bit GPIO ports: an output latch and its
// data-direction register.
type port struct {
	data byte
	ddr  byte
}

func newPort() port { return port{data: 0xff} }

// VIA is a simplified MOS 6522 versatile interface adapter: just enough of
// its two ports, peripheral control, and interrupt flag/enable registers to
// drive the mainboard's overlay switch and a once-a-second tick interrupt.
// Handshake lines (CA1/CA2/CB1/CB2), shift register mode, and the two
// free-running timers are not modeled -- nothing in the supported boot path
// touches them.
type VIA struct {
	portA, portB        port
	peripheralCtrl      byte
	intFlags, intEnable byte

	onPortAChange func(data byte)
}

// NewVIA creates a VIA with both ports at their reset default (all-ones,
// inputs). onPortAChange, if non-nil, is called after every write that
// changes port A's data latch.
func NewVIA(onPortAChange func(data byte)) *VIA {
	return &VIA{portA: newPort(), portB: newPort(), onPortAChange: onPortAChange}
}

func (v *VIA) Length() uint64 { return 0x10 }

func (v *VIA) Read(addr uint64, out []byte) error {
	var b byte
	switch addr {
	case regOutputB:
		b = v.portB.data
	case regOutputA, regOutputANHS:
		b = v.portA.data
	case regDDRB:
		b = v.portB.ddr
	case regDDRA:
		b = v.portA.ddr
	case regPeriphCtrl:
		b = v.peripheralCtrl
	case regIntFlags:
		b = v.intFlags
	case regIntEnable:
		b = v.intEnable | 0x80
	default:
		b = 0xff
	}
	for i := range out {
		out[i] = b
	}
	return nil
}

func (v *VIA) Write(addr uint64, in []byte) error {
	if len(in) == 0 {
		return nil
	}
	b := in[0]
	switch addr {
	case regOutputB:
		v.portB.data = b
	case regOutputA, regOutputANHS:
		v.portA.data = b
		if v.onPortAChange != nil {
			v.onPortAChange(b)
		}
	case regDDRB:
		v.portB.ddr = b
	case regDDRA:
		v.portA.ddr = b
	case regPeriphCtrl:
		v.peripheralCtrl = b
	case regIntFlags:
		v.intFlags &^= b & 0x7f
	case regIntEnable:
		if b&0x80 == 0 {
			v.intEnable &^= b
		} else {
			v.intEnable |= b
		}
	}
	return nil
}

// Tick marks the once-a-second interrupt flag that the mainboard's Step
// raises on its own schedule, matching the documented one-second VIA
// interrupt used to drive the system clock.
func (v *VIA) Tick() {
	v.intFlags |= 0x01
}

// Pending reports whether any enabled interrupt flag is set.
func (v *VIA) Pending() bool {
	return v.intFlags&v.intEnable&0x7f != 0
}
