package z80

// The Z80's unprefixed and ED-prefixed opcode maps both decompose cleanly
// into x (bits 7-6), y (bits 5-3), z (bits 2-0) fields, with y further
// splitting into p (bits 2-1) and q (bit 0) wherever an instruction varies
// by register pair and direction. This is the standard decomposition of the
// Z80 instruction set and lets the whole documented opcode map be covered
// by a handful of small switches instead of a 256-entry table per prefix.

// execOne decodes and executes one instruction, returning its T-state count.
func (c *CPU) execOne() (int, error) {
	opcode, err := c.fetchByte()
	if err != nil {
		return 0, err
	}

	switch opcode {
	case 0xcb:
		return c.execCB(nil)
	case 0xed:
		return c.execED()
	case 0xdd:
		return c.execPrefixed(&c.IX)
	case 0xfd:
		return c.execPrefixed(&c.IY)
	default:
		return c.execMain(opcode, nil)
	}
}

// execPrefixed handles the DD/FD prefix, which redirects HL-using
// instructions at IX/IY. A second DD/FD byte simply replaces which index
// register is selected, matching real hardware (only the last prefix before
// the opcode has effect).
func (c *CPU) execPrefixed(idx *uint16) (int, error) {
	opcode, err := c.fetchByte()
	if err != nil {
		return 0, err
	}
	switch opcode {
	case 0xdd:
		return c.execPrefixed(&c.IX)
	case 0xfd:
		return c.execPrefixed(&c.IY)
	case 0xcb:
		return c.execCB(idx)
	default:
		return c.execMain(opcode, idx)
	}
}

func (c *CPU) indexedAddr(idx *uint16) (uint16, int, error) {
	if idx == nil {
		return c.HL(), 0, nil
	}
	d, err := c.fetchSignedByte()
	if err != nil {
		return 0, 0, err
	}
	return uint16(int32(*idx) + int32(d)), 8, nil
}

func (c *CPU) get8(z byte, idx *uint16) (byte, int, error) {
	switch z {
	case 0:
		return c.B, 0, nil
	case 1:
		return c.C, 0, nil
	case 2:
		return c.D, 0, nil
	case 3:
		return c.E, 0, nil
	case 4:
		if idx != nil {
			return byte(*idx >> 8), 0, nil
		}
		return c.H, 0, nil
	case 5:
		if idx != nil {
			return byte(*idx), 0, nil
		}
		return c.L, 0, nil
	case 6:
		addr, extra, err := c.indexedAddr(idx)
		if err != nil {
			return 0, 0, err
		}
		v, err := c.readByte(addr)
		return v, extra, err
	default: // 7
		return c.A, 0, nil
	}
}

func (c *CPU) set8(z byte, v byte, idx *uint16) (int, error) {
	switch z {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		if idx != nil {
			*idx = uint16(v)<<8 | (*idx & 0x00ff)
		} else {
			c.H = v
		}
	case 5:
		if idx != nil {
			*idx = (*idx & 0xff00) | uint16(v)
		} else {
			c.L = v
		}
	case 6:
		addr, extra, err := c.indexedAddr(idx)
		if err != nil {
			return 0, err
		}
		return extra, c.writeByte(addr, v)
	default: // 7
		c.A = v
	}
	return 0, nil
}

func (c *CPU) getRP(p byte, idx *uint16) uint16 {
	switch p {
	case 0:
		return c.BC()
	case 1:
		return c.DE()
	case 2:
		if idx != nil {
			return *idx
		}
		return c.HL()
	default: // 3
		return c.SP
	}
}

func (c *CPU) setRP(p byte, v uint16, idx *uint16) {
	switch p {
	case 0:
		c.SetBC(v)
	case 1:
		c.SetDE(v)
	case 2:
		if idx != nil {
			*idx = v
		} else {
			c.SetHL(v)
		}
	default: // 3
		c.SP = v
	}
}

func (c *CPU) getRP2(p byte, idx *uint16) uint16 {
	if p == 3 {
		return c.AF()
	}
	return c.getRP(p, idx)
}

func (c *CPU) setRP2(p byte, v uint16, idx *uint16) {
	if p == 3 {
		c.SetAF(v)
		return
	}
	c.setRP(p, v, idx)
}

func (c *CPU) testCC(y byte) bool {
	f := Flags(c.F)
	switch y {
	case 0:
		return !f.z()
	case 1:
		return f.z()
	case 2:
		return !f.c()
	case 3:
		return f.c()
	case 4:
		return !f.pv()
	case 5:
		return f.pv()
	case 6:
		return !f.s()
	default: // 7
		return f.s()
	}
}

// execMain handles every opcode not consumed as a prefix byte at the
// execOne/execPrefixed level, i.e. the whole unprefixed instruction set and,
// when idx is non-nil, its DD/FD-redirected form.
func (c *CPU) execMain(opcode byte, idx *uint16) (int, error) {
	x := opcode >> 6 & 3
	y := opcode >> 3 & 7
	z := opcode & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 0:
		return c.decodeX0(y, z, p, q, idx)
	case 1:
		return c.decodeX1(y, z, idx)
	case 2:
		return c.decodeX2(y, z, idx)
	default: // 3
		return c.decodeX3(y, z, p, q, idx)
	}
}

func (c *CPU) decodeX0(y, z, p, q byte, idx *uint16) (int, error) {
	switch z {
	case 0:
		switch {
		case y == 0:
			return 4, nil // NOP
		case y == 1:
			c.exAF()
			return 4, nil
		case y == 2: // DJNZ d
			d, err := c.fetchSignedByte()
			if err != nil {
				return 0, err
			}
			c.B--
			if c.B != 0 {
				c.PC = uint16(int32(c.PC) + int32(d))
				return 13, nil
			}
			return 8, nil
		case y == 3: // JR d
			d, err := c.fetchSignedByte()
			if err != nil {
				return 0, err
			}
			c.PC = uint16(int32(c.PC) + int32(d))
			return 12, nil
		default: // JR cc,d
			d, err := c.fetchSignedByte()
			if err != nil {
				return 0, err
			}
			if c.testCC(y - 4) {
				c.PC = uint16(int32(c.PC) + int32(d))
				return 12, nil
			}
			return 7, nil
		}
	case 1:
		if q == 0 {
			nn, err := c.fetchWordLE()
			if err != nil {
				return 0, err
			}
			c.setRP(p, nn, idx)
			return 10, nil
		}
		hl := c.getRP(2, idx)
		rp := c.getRP(p, idx)
		r := int(hl) + int(rp)
		c.F = byte(Flags(c.F)&(flagS|flagZ|flagPV) |
			mkFlag(r > 0xffff, flagC) |
			mkFlag((hl&0xfff)+(rp&0xfff) > 0xfff, flagH))
		c.setRP(2, uint16(r), idx)
		return 11, nil
	case 2:
		return c.decodeIndirectLoad(p, q, idx)
	case 3:
		v := c.getRP(p, idx)
		if q == 0 {
			c.setRP(p, v+1, idx)
		} else {
			c.setRP(p, v-1, idx)
		}
		return 6, nil
	case 4, 5:
		val, extra, err := c.get8(y, idx)
		if err != nil {
			return 0, err
		}
		var r byte
		if z == 4 {
			r = val + 1
		} else {
			r = val - 1
		}
		f := szFlags(r) | Flags(c.F)&flagC
		if z == 4 {
			f |= mkFlag(val&0xf == 0xf, flagH)
			f |= mkFlag(val == 0x7f, flagPV)
		} else {
			f |= flagN
			f |= mkFlag(val&0xf == 0, flagH)
			f |= mkFlag(val == 0x80, flagPV)
		}
		c.F = byte(f)
		if _, err := c.set8(y, r, idx); err != nil {
			return 0, err
		}
		return 4 + extra, nil
	case 6:
		n, err := c.fetchByte()
		if err != nil {
			return 0, err
		}
		extra, err := c.set8(y, n, idx)
		if err != nil {
			return 0, err
		}
		return 7 + extra, nil
	default: // 7
		return c.decodeRotA(y)
	}
}

func (c *CPU) decodeIndirectLoad(p, q byte, idx *uint16) (int, error) {
	if q == 0 {
		switch p {
		case 0:
			return 7, c.writeByte(c.BC(), c.A)
		case 1:
			return 7, c.writeByte(c.DE(), c.A)
		case 2:
			nn, err := c.fetchWordLE()
			if err != nil {
				return 0, err
			}
			return 16, c.writeWordLE(nn, c.getRP(2, idx))
		default: // 3
			nn, err := c.fetchWordLE()
			if err != nil {
				return 0, err
			}
			return 13, c.writeByte(nn, c.A)
		}
	}
	switch p {
	case 0:
		v, err := c.readByte(c.BC())
		c.A = v
		return 7, err
	case 1:
		v, err := c.readByte(c.DE())
		c.A = v
		return 7, err
	case 2:
		nn, err := c.fetchWordLE()
		if err != nil {
			return 0, err
		}
		v, err := c.readWordLE(nn)
		if err != nil {
			return 0, err
		}
		c.setRP(2, v, idx)
		return 16, nil
	default: // 3
		nn, err := c.fetchWordLE()
		if err != nil {
			return 0, err
		}
		v, err := c.readByte(nn)
		c.A = v
		return 13, err
	}
}

func (c *CPU) decodeRotA(y byte) (int, error) {
	f := Flags(c.F)
	switch y {
	case 0: // RLCA
		carry := c.A&0x80 != 0
		c.A = c.A<<1 | b2byte(carry)
		c.F = byte(f&(flagS|flagZ|flagPV)&^undocMask | Flags(c.A)&undocMask | mkFlag(carry, flagC))
	case 1: // RRCA
		carry := c.A&1 != 0
		c.A = c.A>>1 | (c.A&1)<<7
		c.F = byte(f&(flagS|flagZ|flagPV)&^undocMask | Flags(c.A)&undocMask | mkFlag(carry, flagC))
	case 2: // RLA
		carry := c.A&0x80 != 0
		c.A = c.A<<1 | b2byte(f.c())
		c.F = byte(f&(flagS|flagZ|flagPV)&^undocMask | Flags(c.A)&undocMask | mkFlag(carry, flagC))
	case 3: // RRA
		carry := c.A&1 != 0
		c.A = c.A>>1 | b2byte(f.c())<<7
		c.F = byte(f&(flagS|flagZ|flagPV)&^undocMask | Flags(c.A)&undocMask | mkFlag(carry, flagC))
	case 4: // DAA
		c.daa()
	case 5: // CPL
		c.A = ^c.A
		c.F = byte(f&(flagS|flagZ|flagPV|flagC) | flagH | flagN | Flags(c.A)&undocMask)
	case 6: // SCF
		c.F = byte(f&(flagS|flagZ|flagPV) | Flags(c.A)&undocMask | flagC)
	default: // 7, CCF
		c.F = byte(f&(flagS|flagZ|flagPV) | Flags(c.A)&undocMask | mkFlag(!f.c(), flagC) | mkFlag(f.c(), flagH))
	}
	return 4, nil
}

func b2byte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// daa implements decimal adjust following an 8-bit BCD add/subtract, per the
// documented Z80 DAA correction table keyed on N, H and C.
func (c *CPU) daa() {
	f := Flags(c.F)
	a := c.A
	correction := byte(0)
	carry := f.c()
	if f.h() || a&0xf > 9 {
		correction |= 0x06
	}
	if carry || a > 0x99 {
		correction |= 0x60
		carry = true
	}
	if f.n() {
		a -= correction
	} else {
		a += correction
	}
	nf := szFlags(a)
	nf |= mkFlag(parityTable[a], flagPV)
	nf |= mkFlag(carry, flagC)
	nf |= f & flagN
	nf |= mkFlag(f.n() && f.h() && (c.A&0xf) < 6, flagH)
	nf |= mkFlag(!f.n() && c.A&0xf > 9, flagH)
	c.A = a
	c.F = byte(nf)
}

func (c *CPU) decodeX1(y, z byte, idx *uint16) (int, error) {
	if y == 6 && z == 6 {
		c.Status = Halted
		c.PC--
		return 4, nil
	}
	v, extra, err := c.get8(z, idx)
	if err != nil {
		return 0, err
	}
	if _, err := c.set8(y, v, idx); err != nil {
		return 0, err
	}
	if z == 6 || y == 6 {
		return 7 + extra, nil
	}
	return 4, nil
}

func (c *CPU) decodeX2(y, z byte, idx *uint16) (int, error) {
	v, extra, err := c.get8(z, idx)
	if err != nil {
		return 0, err
	}
	c.aluOp(y, v)
	if z == 6 {
		return 7 + extra, nil
	}
	return 4, nil
}

func (c *CPU) decodeX3(y, z, p, q byte, idx *uint16) (int, error) {
	switch z {
	case 0: // RET cc
		if c.testCC(y) {
			v, err := c.pop()
			if err != nil {
				return 0, err
			}
			c.PC = v
			return 11, nil
		}
		return 5, nil
	case 1:
		if q == 0 {
			v, err := c.pop()
			if err != nil {
				return 0, err
			}
			c.setRP2(p, v, idx)
			return 10, nil
		}
		switch p {
		case 0: // RET
			v, err := c.pop()
			if err != nil {
				return 0, err
			}
			c.PC = v
			return 10, nil
		case 1: // EXX
			c.exx()
			return 4, nil
		case 2: // JP (HL)/(IX)/(IY)
			c.PC = c.getRP(2, idx)
			return 4, nil
		default: // 3, LD SP,HL/IX/IY
			c.SP = c.getRP(2, idx)
			return 6, nil
		}
	case 2: // JP cc,nn
		nn, err := c.fetchWordLE()
		if err != nil {
			return 0, err
		}
		if c.testCC(y) {
			c.PC = nn
		}
		return 10, nil
	case 3:
		return c.decodeX3Z3(y, idx)
	case 4: // CALL cc,nn
		nn, err := c.fetchWordLE()
		if err != nil {
			return 0, err
		}
		if c.testCC(y) {
			if err := c.push(c.PC); err != nil {
				return 0, err
			}
			c.PC = nn
			return 17, nil
		}
		return 10, nil
	case 5:
		if q == 0 {
			if err := c.push(c.getRP2(p, idx)); err != nil {
				return 0, err
			}
			return 11, nil
		}
		// p==0: CALL nn. p==1/2/3 (DD/ED/FD) are intercepted before reaching
		// execMain.
		nn, err := c.fetchWordLE()
		if err != nil {
			return 0, err
		}
		if err := c.push(c.PC); err != nil {
			return 0, err
		}
		c.PC = nn
		return 17, nil
	case 6: // ALU A,n
		n, err := c.fetchByte()
		if err != nil {
			return 0, err
		}
		c.aluOp(y, n)
		return 7, nil
	default: // 7, RST
		if err := c.push(c.PC); err != nil {
			return 0, err
		}
		c.PC = uint16(y) * 8
		return 11, nil
	}
}

func (c *CPU) decodeX3Z3(y byte, idx *uint16) (int, error) {
	switch y {
	case 0: // JP nn
		nn, err := c.fetchWordLE()
		if err != nil {
			return 0, err
		}
		c.PC = nn
		return 10, nil
	case 2: // OUT (n),A
		n, err := c.fetchByte()
		if err != nil {
			return 0, err
		}
		c.ioOut(uint16(c.A)<<8|uint16(n), c.A)
		return 11, nil
	case 3: // IN A,(n)
		n, err := c.fetchByte()
		if err != nil {
			return 0, err
		}
		c.A = c.ioIn(uint16(c.A)<<8 | uint16(n))
		return 11, nil
	case 4: // EX (SP),HL
		v, err := c.readWordLE(c.SP)
		if err != nil {
			return 0, err
		}
		if err := c.writeWordLE(c.SP, c.getRP(2, idx)); err != nil {
			return 0, err
		}
		c.setRP(2, v, idx)
		return 19, nil
	case 5: // EX DE,HL
		de, hl := c.DE(), c.HL()
		c.SetDE(hl)
		c.SetHL(de)
		return 4, nil
	case 6: // DI
		c.IFF1, c.IFF2 = false, false
		return 4, nil
	default: // 7, EI
		c.IFF1, c.IFF2 = true, true
		return 4, nil
	}
}
