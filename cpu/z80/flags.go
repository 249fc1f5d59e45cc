package z80

// Flags is the Z80's F register. Bit layout per the standard reference
// (Zilog Z80 user manual, flag register diagram): S Z 5 H 3 P/V N C.
type Flags uint8

const (
	flagC  Flags = 1 << 0
	flagN  Flags = 1 << 1
	flagPV Flags = 1 << 2
	flagX3 Flags = 1 << 3
	flagH  Flags = 1 << 4
	flagX5 Flags = 1 << 5
	flagZ  Flags = 1 << 6
	flagS  Flags = 1 << 7

	undocMask = flagX3 | flagX5
)

func (f Flags) c() bool  { return f&flagC != 0 }
func (f Flags) n() bool  { return f&flagN != 0 }
func (f Flags) pv() bool { return f&flagPV != 0 }
func (f Flags) h() bool  { return f&flagH != 0 }
func (f Flags) z() bool  { return f&flagZ != 0 }
func (f Flags) s() bool  { return f&flagS != 0 }

func mkFlag(set bool, bit Flags) Flags {
	if set {
		return bit
	}
	return 0
}

// parityTable reports even parity (bit set) for each possible byte value,
// used for the P/V flag of the instructions that report parity, such as
// the logical ops; the block-transfer instructions set P/V from BC instead.
var parityTable = func() [256]bool {
	var t [256]bool
	for i := 0; i < 256; i++ {
		p := byte(i)
		p ^= p >> 4
		p ^= p >> 2
		p ^= p >> 1
		t[i] = p&1 == 0
	}
	return t
}()

// szFlags computes S, Z and the undocumented 3/5 bits from an 8-bit result,
// the part of the flag computation shared by nearly every ALU instruction.
func szFlags(result byte) Flags {
	f := mkFlag(result&0x80 != 0, flagS)
	f |= mkFlag(result == 0, flagZ)
	f |= Flags(result) & undocMask
	return f
}

// addFlags computes the full flag byte for an 8-bit addition (ADD/ADC),
// including half-carry and signed overflow.
func addFlags(a, b, carryIn byte, result int) Flags {
	f := szFlags(byte(result))
	f |= mkFlag(result > 0xff, flagC)
	f |= mkFlag((a&0xf)+(b&0xf)+carryIn > 0xf, flagH)
	signA, signB, signR := a&0x80, b&0x80, byte(result)&0x80
	f |= mkFlag(signA == signB && signR != signA, flagPV)
	return f
}

// subFlags computes the full flag byte for an 8-bit subtraction
// (SUB/SBC/CP), including half-borrow and signed overflow.
func subFlags(a, b, borrowIn byte, result int) Flags {
	f := szFlags(byte(result))
	f |= flagN
	f |= mkFlag(result < 0, flagC)
	f |= mkFlag(int(a&0xf)-int(b&0xf)-int(borrowIn) < 0, flagH)
	signA, signB, signR := a&0x80, b&0x80, byte(result)&0x80
	f |= mkFlag(signA != signB && signR == signB, flagPV)
	return f
}

// logicFlags computes S, Z, P/V (as parity) for AND/OR/XOR. H is set for
// AND and clear for OR/XOR per the documented Z80 behaviour; C and N are
// always cleared.
func logicFlags(result byte, halfCarry bool) Flags {
	f := szFlags(result)
	f |= mkFlag(parityTable[result], flagPV)
	f |= mkFlag(halfCarry, flagH)
	return f
}
