package z80

// aluOp applies one of the eight ALU operations (ADD, ADC, SUB, SBC, AND,
// XOR, OR, CP) to the accumulator, selected the same way register and
// register-pair fields are: by the y bits of the enclosing opcode.
func (c *CPU) aluOp(y byte, v byte) {
	a := c.A
	switch y {
	case 0: // ADD
		r := int(a) + int(v)
		c.F = byte(addFlags(a, v, 0, r))
		c.A = byte(r)
	case 1: // ADC
		cin := b2byte(Flags(c.F).c())
		r := int(a) + int(v) + int(cin)
		c.F = byte(addFlags(a, v, cin, r))
		c.A = byte(r)
	case 2: // SUB
		r := int(a) - int(v)
		c.F = byte(subFlags(a, v, 0, r))
		c.A = byte(r)
	case 3: // SBC
		bin := b2byte(Flags(c.F).c())
		r := int(a) - int(v) - int(bin)
		c.F = byte(subFlags(a, v, bin, r))
		c.A = byte(r)
	case 4: // AND
		r := a & v
		c.F = byte(logicFlags(r, true))
		c.A = r
	case 5: // XOR
		r := a ^ v
		c.F = byte(logicFlags(r, false))
		c.A = r
	case 6: // OR
		r := a | v
		c.F = byte(logicFlags(r, false))
		c.A = r
	default: // 7, CP -- result discarded, only flags are kept
		r := int(a) - int(v)
		c.F = byte(subFlags(a, v, 0, r))
	}
}

// rotOp applies one of the eight CB-prefixed rotate/shift operations and
// returns the new byte value; the caller is responsible for storing it back
// (and, for the DDCB/FDCB indexed form, copying it into a register too).
func (c *CPU) rotOp(y byte, v byte) byte {
	carryIn := b2byte(Flags(c.F).c())
	var result byte
	var carryOut bool
	switch y {
	case 0: // RLC
		carryOut = v&0x80 != 0
		result = v<<1 | b2byte(carryOut)
	case 1: // RRC
		carryOut = v&1 != 0
		result = v>>1 | (v&1)<<7
	case 2: // RL
		carryOut = v&0x80 != 0
		result = v<<1 | carryIn
	case 3: // RR
		carryOut = v&1 != 0
		result = v>>1 | carryIn<<7
	case 4: // SLA
		carryOut = v&0x80 != 0
		result = v << 1
	case 5: // SRA
		carryOut = v&1 != 0
		result = v>>1 | v&0x80
	case 6: // SLL, undocumented
		carryOut = v&0x80 != 0
		result = v<<1 | 1
	default: // 7, SRL
		carryOut = v&1 != 0
		result = v >> 1
	}
	f := szFlags(result)
	f |= mkFlag(parityTable[result], flagPV)
	f |= mkFlag(carryOut, flagC)
	c.F = byte(f)
	return result
}

// execCB handles the CB-prefixed bit/rotate/shift group. When idx is
// non-nil the operand is always (IX+d)/(IY+d) -- the displacement byte
// precedes the final opcode byte in that encoding, unlike every other
// indexed instruction -- and for the rotate/res/set forms the result is
// additionally copied into the z-selected register, matching the
// documented DDCB/FDCB undocumented behaviour.
func (c *CPU) execCB(idx *uint16) (int, error) {
	var addr uint16
	if idx != nil {
		d, err := c.fetchSignedByte()
		if err != nil {
			return 0, err
		}
		addr = uint16(int32(*idx) + int32(d))
	}

	opcode, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	x := opcode >> 6 & 3
	y := opcode >> 3 & 7
	z := opcode & 7

	var v byte
	if idx != nil {
		v, err = c.readByte(addr)
	} else {
		v, _, err = c.get8(z, nil)
	}
	if err != nil {
		return 0, err
	}

	switch x {
	case 0:
		r := c.rotOp(y, v)
		return c.storeCBResult(z, r, idx, addr)
	case 1:
		bit := v & (1 << y)
		f := Flags(c.F)&flagC | mkFlag(bit == 0, flagZ) | mkFlag(bit == 0, flagPV) | mkFlag(y == 7 && bit != 0, flagS) | flagH
		if idx != nil {
			f |= Flags(addr>>8) & undocMask
		} else {
			f |= Flags(v) & undocMask
		}
		c.F = byte(f)
		if idx != nil {
			return 20, nil
		}
		if z == 6 {
			return 12, nil
		}
		return 8, nil
	case 2:
		r := v &^ (1 << y)
		return c.storeCBResult(z, r, idx, addr)
	default: // 3, SET
		r := v | 1<<y
		return c.storeCBResult(z, r, idx, addr)
	}
}

func (c *CPU) storeCBResult(z byte, v byte, idx *uint16, addr uint16) (int, error) {
	if idx != nil {
		if err := c.writeByte(addr, v); err != nil {
			return 0, err
		}
		if z != 6 {
			if _, err := c.set8(z, v, nil); err != nil {
				return 0, err
			}
		}
		return 23, nil
	}
	if _, err := c.set8(z, v, nil); err != nil {
		return 0, err
	}
	if z == 6 {
		return 15, nil
	}
	return 8, nil
}

// imTable maps the ED-prefixed IM instruction's y field to the interrupt
// mode it selects; four of the eight encodings are documented aliases.
var imTable = [8]int{0, 0, 1, 2, 0, 0, 1, 2}

// execED handles the ED-prefixed instruction group: 16-bit ADC/SBC, 16-bit
// direct memory load for BC/DE/HL/SP, NEG, RETN/RETI, interrupt mode
// selection, I/R transfer, RRD/RLD, block transfer/search/IO, and IN/OUT
// through register C. Undefined ED opcodes act as an 8-cycle NOP, matching
// documented real hardware behaviour rather than raising a fault.
func (c *CPU) execED() (int, error) {
	opcode, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	x := opcode >> 6 & 3
	y := opcode >> 3 & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	if x == 1 {
		switch z {
		case 0: // IN r[y],(C) / IN (C)
			v := c.ioIn(c.BC())
			f := szFlags(v) | mkFlag(parityTable[v], flagPV) | Flags(c.F)&flagC
			c.F = byte(f)
			if y != 6 {
				if _, err := c.set8(y, v, nil); err != nil {
					return 0, err
				}
			}
			return 12, nil
		case 1: // OUT (C),r[y] / OUT (C),0
			var v byte
			if y != 6 {
				v, _, err = c.get8(y, nil)
				if err != nil {
					return 0, err
				}
			}
			c.ioOut(c.BC(), v)
			return 12, nil
		case 2:
			hl := c.getRP(2, nil)
			rp := c.getRP(p, nil)
			if q == 0 { // SBC HL,rp
				borrow := b2byte(Flags(c.F).c())
				r := int(hl) - int(rp) - int(borrow)
				f := mkFlag(r&0xffff == 0, flagZ) | mkFlag(uint16(r)&0x8000 != 0, flagS) |
					flagN | mkFlag(r < 0, flagC) | mkFlag(int(hl&0xfff)-int(rp&0xfff)-int(borrow) < 0, flagH) |
					mkFlag((hl^rp)&0x8000 != 0 && (hl^uint16(r))&0x8000 != 0, flagPV)
				c.F = byte(f)
				c.setRP(2, uint16(r), nil)
			} else { // ADC HL,rp
				carry := b2byte(Flags(c.F).c())
				r := int(hl) + int(rp) + int(carry)
				f := mkFlag(uint16(r) == 0, flagZ) | mkFlag(uint16(r)&0x8000 != 0, flagS) |
					mkFlag(r > 0xffff, flagC) | mkFlag(int(hl&0xfff)+int(rp&0xfff)+int(carry) > 0xfff, flagH) |
					mkFlag((hl^rp)&0x8000 == 0 && (hl^uint16(r))&0x8000 != 0, flagPV)
				c.F = byte(f)
				c.setRP(2, uint16(r), nil)
			}
			return 15, nil
		case 3:
			nn, err := c.fetchWordLE()
			if err != nil {
				return 0, err
			}
			if q == 0 {
				return 20, c.writeWordLE(nn, c.getRP(p, nil))
			}
			v, err := c.readWordLE(nn)
			if err != nil {
				return 0, err
			}
			c.setRP(p, v, nil)
			return 20, nil
		case 4: // NEG
			a := c.A
			r := int(0) - int(a)
			c.F = byte(subFlags(0, a, 0, r))
			c.A = byte(r)
			return 8, nil
		case 5: // RETN/RETI
			v, err := c.pop()
			if err != nil {
				return 0, err
			}
			c.PC = v
			c.IFF1 = c.IFF2
			return 14, nil
		case 6: // IM
			c.IM = imTable[y]
			return 8, nil
		default: // 7
			return c.execEDz7(y)
		}
	}

	if x == 2 && z <= 3 && y >= 4 {
		return c.execBlock(y, z)
	}

	return 8, nil // undefined ED opcode: documented as a NOP
}

func (c *CPU) execEDz7(y byte) (int, error) {
	switch y {
	case 0: // LD I,A
		c.I = c.A
		return 9, nil
	case 1: // LD R,A
		c.R = c.A
		return 9, nil
	case 2: // LD A,I
		c.A = c.I
		c.F = byte(szFlags(c.A) | Flags(c.F)&flagC | mkFlag(c.IFF2, flagPV))
		return 9, nil
	case 3: // LD A,R
		c.A = c.R
		c.F = byte(szFlags(c.A) | Flags(c.F)&flagC | mkFlag(c.IFF2, flagPV))
		return 9, nil
	case 4, 6: // RRD
		return c.rotateDigit(true)
	default: // 5,7: RLD
		return c.rotateDigit(false)
	}
}

// rotateDigit implements RRD/RLD, which rotate a BCD nibble between A and
// (HL) four bits at a time.
func (c *CPU) rotateDigit(right bool) (int, error) {
	m, err := c.readByte(c.HL())
	if err != nil {
		return 0, err
	}
	var newA, newM byte
	if right {
		newA = c.A&0xf0 | m&0x0f
		newM = c.A<<4 | m>>4
	} else {
		newA = c.A&0xf0 | m>>4
		newM = m<<4 | c.A&0x0f
	}
	if err := c.writeByte(c.HL(), newM); err != nil {
		return 0, err
	}
	c.A = newA
	c.F = byte(szFlags(c.A) | mkFlag(parityTable[c.A], flagPV) | Flags(c.F)&flagC)
	return 18, nil
}

// execBlock implements the sixteen LDxx/CPxx/INxx/OUTxx block instructions,
// selected by y (which variant: I/D/IR/DR) and z (which operation:
// transfer/compare/input/output).
func (c *CPU) execBlock(y, z byte) (int, error) {
	decrement := y == 5 || y == 7
	repeat := y == 6 || y == 7

	switch z {
	case 0: // LDI/LDD/LDIR/LDDR
		v, err := c.readByte(c.HL())
		if err != nil {
			return 0, err
		}
		if err := c.writeByte(c.DE(), v); err != nil {
			return 0, err
		}
		c.step16(decrement)
		bc := c.BC() - 1
		c.SetBC(bc)
		n := c.A + v
		f := Flags(c.F)&(flagS|flagZ|flagC) | mkFlag(bc != 0, flagPV) | Flags(n)&flagX3 | mkFlag(n&0x02 != 0, flagX5)
		c.F = byte(f)
		if repeat && bc != 0 {
			c.PC -= 2
			return 21, nil
		}
		return 16, nil
	case 1: // CPI/CPD/CPIR/CPDR
		v, err := c.readByte(c.HL())
		if err != nil {
			return 0, err
		}
		c.step16HLOnly(decrement)
		bc := c.BC() - 1
		c.SetBC(bc)
		r := int(c.A) - int(v)
		f := szFlags(byte(r)) | flagN | mkFlag(bc != 0, flagPV) | Flags(c.F)&flagC
		f |= mkFlag(int(c.A&0xf)-int(v&0xf) < 0, flagH)
		c.F = byte(f)
		if repeat && bc != 0 && r != 0 {
			c.PC -= 2
			return 21, nil
		}
		return 16, nil
	case 2: // INI/IND/INIR/INDR
		v := c.ioIn(c.BC())
		if err := c.writeByte(c.HL(), v); err != nil {
			return 0, err
		}
		c.step16HLOnly(decrement)
		c.B--
		c.F = byte(szFlags(c.B) | flagN)
		if repeat && c.B != 0 {
			c.PC -= 2
			return 21, nil
		}
		return 16, nil
	default: // 3, OUTI/OUTD/OTIR/OTDR
		v, err := c.readByte(c.HL())
		if err != nil {
			return 0, err
		}
		c.step16HLOnly(decrement)
		c.B--
		c.ioOut(c.BC(), v)
		c.F = byte(szFlags(c.B) | flagN)
		if repeat && c.B != 0 {
			c.PC -= 2
			return 21, nil
		}
		return 16, nil
	}
}

func (c *CPU) step16(decrement bool) {
	if decrement {
		c.SetHL(c.HL() - 1)
		c.SetDE(c.DE() - 1)
	} else {
		c.SetHL(c.HL() + 1)
		c.SetDE(c.DE() + 1)
	}
}

func (c *CPU) step16HLOnly(decrement bool) {
	if decrement {
		c.SetHL(c.HL() - 1)
	} else {
		c.SetHL(c.HL() + 1)
	}
}

// ioIn and ioOut are overridden by a machine builder wiring real peripherals
// onto the Z80's IO address space (e.g. the TRS-80's cassette/keyboard
// ports); the default implementation used when no IOPort is attached reads
// as 0xff and discards writes, matching an empty bus.
func (c *CPU) ioIn(port uint16) byte {
	if c.io != nil {
		return c.io.In(port)
	}
	return 0xff
}

func (c *CPU) ioOut(port uint16, v byte) {
	if c.io != nil {
		c.io.Out(port, v)
	}
}
