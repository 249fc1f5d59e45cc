// Package controllers implements the Genesis/Mega Drive three-button
// controller's TH-counting protocol: the console toggles the TH output line
// on the data port to select which group of buttons the next data-port read
// exposes.
package controllers

// Button is a bitmask identifying one pad button.
type Button uint16

const (
	ButtonUp Button = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonB
	ButtonC
	ButtonA
	ButtonStart
)

// Pad is a single three-button controller. A Host sets Pressed to reflect
// the current input state; the data/control port logic below reads it.
type Pad struct {
	Pressed Button

	th     bool
	dirReg byte
}

// NewPad creates a Pad with no buttons pressed and TH high (the idle state
// the console leaves the line in between polls).
func NewPad() *Pad {
	return &Pad{th: true}
}

func (p *Pad) pressed(b Button) bool { return p.Pressed&b != 0 }

func bit(v bool) byte {
	if v {
		return 1
	}
	return 0
}

// dataByte computes the value visible on the data port for the controller's
// current TH phase. Buttons read 0 when pressed, 1 when released, matching
// the pad's open-collector outputs; undriven bits read high.
func (p *Pad) dataByte() byte {
	up := bit(!p.pressed(ButtonUp))
	down := bit(!p.pressed(ButtonDown))
	left := bit(!p.pressed(ButtonLeft))
	right := bit(!p.pressed(ButtonRight))

	var low byte
	if p.th {
		low = bit(!p.pressed(ButtonC))<<5 | bit(!p.pressed(ButtonB))<<4 |
			right<<3 | left<<2 | down<<1 | up
	} else {
		low = bit(!p.pressed(ButtonStart))<<5 | bit(!p.pressed(ButtonA))<<4 |
			down<<1 | up
	}
	thBit := bit(p.th)
	return 0x80 | thBit<<6 | low
}

// DataPort returns an Addressable view of the pad's data register.
func (p *Pad) DataPort() *dataPort { return &dataPort{p} }

// ControlPort returns an Addressable view of the pad's direction register.
func (p *Pad) ControlPort() *ctrlPort { return &ctrlPort{p} }

type dataPort struct{ p *Pad }

func (d *dataPort) Length() uint64 { return 1 }

func (d *dataPort) Read(addr uint64, out []byte) error {
	out[0] = d.p.dataByte()
	return nil
}

// Write updates TH from bit 6 of the written byte; the spec requires a
// data-port write to update the pad's last-known TH value directly, not
// only a control-port access.
func (d *dataPort) Write(addr uint64, in []byte) error {
	d.p.th = in[0]&0x40 != 0
	return nil
}

type ctrlPort struct{ p *Pad }

func (c *ctrlPort) Length() uint64 { return 1 }

func (c *ctrlPort) Read(addr uint64, out []byte) error {
	out[0] = c.p.dirReg
	return nil
}

// Write stores the pin-direction register and resets the TH phase: any
// control-port write is documented to restart the controller's TH
// bookkeeping, regardless of the direction bits themselves.
func (c *ctrlPort) Write(addr uint64, in []byte) error {
	c.p.dirReg = in[0]
	c.p.th = true
	return nil
}
