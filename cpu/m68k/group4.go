package m68k

// group4 handles the large miscellaneous instruction class under the 0100
// prefix: the single-operand ALU ops (NEGX/CLR/NEG/NOT/TST), the status and
// address-computation instructions (MOVE to/from SR/CCR, PEA, LEA, CHK), the
// register/stack housekeeping instructions (SWAP, EXT, LINK, UNLK, MOVEM),
// and the no-operand control instructions (NOP, RESET, STOP, RTE, RTS,
// TRAPV, RTR, TRAP, JSR, JMP).
func (c *CPU) group4(opcode uint16) (int, error) {
	switch {
	case opcode == 0x4e71: // NOP
		return 4, nil
	case opcode == 0x4e70: // RESET
		if !c.SR.Supervisor {
			_, err := c.raiseException(VectorPrivilegeViolation)
			return 34, err
		}
		return 132, nil
	case opcode == 0x4e72: // STOP
		if !c.SR.Supervisor {
			_, err := c.raiseException(VectorPrivilegeViolation)
			return 34, err
		}
		w, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		c.SR.Load(w)
		c.Status = Stopped
		return 4, nil
	case opcode == 0x4e73: // RTE
		if !c.SR.Supervisor {
			_, err := c.raiseException(VectorPrivilegeViolation)
			return 34, err
		}
		if c.Variant == MC68010 {
			sr, err := c.pop16()
			if err != nil {
				return 0, err
			}
			pc, err := c.pop32()
			if err != nil {
				return 0, err
			}
			if _, err := c.pop16(); err != nil { // discard format/vector word
				return 0, err
			}
			c.SR.Load(sr)
			c.PC = pc
			return 20, nil
		}
		sr, err := c.pop16()
		if err != nil {
			return 0, err
		}
		pc, err := c.pop32()
		if err != nil {
			return 0, err
		}
		c.SR.Load(sr)
		c.PC = pc
		return 20, nil
	case opcode == 0x4e74: // RTD (68010), treat as illegal on 68000
		if c.Variant != MC68010 {
			return c.illegal(opcode)
		}
		pc, err := c.pop32()
		if err != nil {
			return 0, err
		}
		disp, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		c.SetA7(c.A7() + uint32(int16(disp)))
		c.PC = pc
		return 16, nil
	case opcode == 0x4e75: // RTS
		pc, err := c.pop32()
		if err != nil {
			return 0, err
		}
		c.PC = pc
		return 16, nil
	case opcode == 0x4e76: // TRAPV
		if c.SR.V {
			_, err := c.raiseException(VectorTRAPV)
			return 34, err
		}
		return 4, nil
	case opcode == 0x4e77: // RTR
		ccr, err := c.pop16()
		if err != nil {
			return 0, err
		}
		pc, err := c.pop32()
		if err != nil {
			return 0, err
		}
		c.SR.LoadCCR(uint8(ccr))
		c.PC = pc
		return 20, nil
	}

	if opcode&0xfff0 == 0x4e40 { // TRAP #n
		n := uint32(opcode & 0xf)
		_, err := c.raiseException(VectorTRAPBase + n)
		return 34, err
	}
	if opcode&0xfff8 == 0x4e50 { // LINK An,#disp
		reg := int(opcode & 7)
		disp, err := c.fetchWord()
		if err != nil {
			return 0, err
		}
		if err := c.push32(c.GetA(reg)); err != nil {
			return 0, err
		}
		c.SetA(reg, c.A7())
		c.SetA7(c.A7() + uint32(int16(disp)))
		return 16, nil
	}
	if opcode&0xfff8 == 0x4e58 { // UNLK An
		reg := int(opcode & 7)
		c.SetA7(c.GetA(reg))
		v, err := c.pop32()
		if err != nil {
			return 0, err
		}
		c.SetA(reg, v)
		return 12, nil
	}
	if opcode&0xfff0 == 0x4e60 { // MOVE An,USP / MOVE USP,An
		if !c.SR.Supervisor {
			_, err := c.raiseException(VectorPrivilegeViolation)
			return 34, err
		}
		reg := int(opcode & 7)
		if opcode&8 != 0 {
			c.USP = c.GetA(reg)
		} else {
			c.SetA(reg, c.USP)
		}
		return 4, nil
	}
	if opcode&0xff00 == 0x4800 && opcode&0xfff8 == 0x4840 { // SWAP Dn
		reg := int(opcode & 7)
		v := c.D[reg]
		c.D[reg] = v<<16 | v>>16
		c.setLogicFlags(c.D[reg], Long)
		return 4, nil
	}
	if opcode&0xfff8 == 0x4848 { // BKPT (68010) -- treated as illegal
		return c.illegal(opcode)
	}
	if opcode&0xffb8 == 0x4880 { // EXT (mode field 000; other modes are MOVEM)
		reg := int(opcode & 7)
		opmode := (opcode >> 6) & 7
		switch opmode {
		case 2: // byte to word
			c.D[reg] = c.D[reg]&0xffff0000 | uint32(uint16(Byte.SignExtend(c.D[reg]&0xff)))
			c.setLogicFlags(c.D[reg]&0xffff, Word)
		case 3: // word to long
			c.D[reg] = Word.SignExtend(c.D[reg] & 0xffff)
			c.setLogicFlags(c.D[reg], Long)
		case 7: // byte to long (68020+, treat as illegal here)
			return c.illegal(opcode)
		default:
			return c.illegal(opcode)
		}
		return 4, nil
	}

	if opcode&0xff00 == 0x4a00 && opcode&0xc0 == 0xc0 { // TAS
		modeField := int((opcode >> 3) & 7)
		regField := int(opcode & 7)
		ea, err := c.decodeEA(modeField, regField, Byte)
		if err != nil {
			return 0, err
		}
		v, err := ea.Get(c)
		if err != nil {
			return 0, err
		}
		c.setLogicFlags(v, Byte)
		if err := ea.Set(c, v|0x80); err != nil {
			return 0, err
		}
		return 14, nil
	}

	if opcode&0xc0 != 0xc0 { // size 11 here is MOVE from/to SR/CCR, below
		switch opcode >> 8 & 0xf {
		case 0x0: // NEGX
			return c.unaryOp(opcode, opNegX)
		case 0x2: // CLR
			return c.unaryOp(opcode, opClr)
		case 0x4: // NEG
			return c.unaryOp(opcode, opNeg)
		case 0x6: // NOT
			return c.unaryOp(opcode, opNot)
		case 0xA: // TST
			size, _ := sizeFieldStd((opcode >> 6) & 3)
			ea, err := c.decodeEA(int((opcode>>3)&7), int(opcode&7), size)
			if err != nil {
				return 0, err
			}
			v, err := ea.Get(c)
			if err != nil {
				return 0, err
			}
			c.setLogicFlags(v, size)
			return 4, nil
		}
	}

	if opcode&0xff00 == 0x4000 && opcode&0xc0 == 0xc0 {
		// MOVE from SR: 0100 0000 11 EEEeee
		return c.moveFromSR(opcode)
	}
	if opcode&0xff00 == 0x4400 && opcode&0xc0 == 0xc0 {
		return c.moveToCCR(opcode)
	}
	if opcode&0xff00 == 0x4600 && opcode&0xc0 == 0xc0 {
		return c.moveToSR(opcode)
	}

	if opcode&0xf1c0 == 0x41c0 { // LEA
		reg := int((opcode >> 9) & 7)
		modeField := int((opcode >> 3) & 7)
		regField := int(opcode & 7)
		ea, err := c.decodeEA(modeField, regField, Long)
		if err != nil || !ea.IsMemory() {
			return c.illegal(opcode)
		}
		c.SetA(reg, ea.Address())
		return 4, nil
	}
	if opcode&0xffc0 == 0x4840 { // PEA
		modeField := int((opcode >> 3) & 7)
		regField := int(opcode & 7)
		ea, err := c.decodeEA(modeField, regField, Long)
		if err != nil || !ea.IsMemory() {
			return c.illegal(opcode)
		}
		if err := c.push32(ea.Address()); err != nil {
			return 0, err
		}
		return 12, nil
	}

	if opcode&0xf1c0 == 0x4180 { // CHK
		reg := int((opcode >> 9) & 7)
		modeField := int((opcode >> 3) & 7)
		regField := int(opcode & 7)
		ea, err := c.decodeEA(modeField, regField, Word)
		if err != nil {
			return 0, err
		}
		v, err := ea.Get(c)
		if err != nil {
			return 0, err
		}
		bound := int16(v)
		d := int16(c.D[reg])
		if d < 0 {
			c.SR.N = true
			_, err := c.raiseException(VectorCHK)
			return 40, err
		}
		if d > bound {
			c.SR.N = false
			_, err := c.raiseException(VectorCHK)
			return 40, err
		}
		return 10, nil
	}

	if opcode&0xfb80 == 0x4880 { // MOVEM
		return c.movem(opcode)
	}

	if opcode&0xff80 == 0x4e80 { // JSR (bit6=0) / JMP (bit6=1)
		modeField := int((opcode >> 3) & 7)
		regField := int(opcode & 7)
		ea, err := c.decodeEA(modeField, regField, Long)
		if err != nil || !ea.IsMemory() {
			return c.illegal(opcode)
		}
		target := ea.Address()
		isJSR := opcode&0x0040 == 0
		if isJSR {
			if err := c.push32(c.PC); err != nil {
				return 0, err
			}
		}
		c.PC = target
		return 8, nil
	}

	return c.illegal(opcode)
}

type unaryKind int

const (
	opNegX unaryKind = iota
	opClr
	opNeg
	opNot
)

func (c *CPU) unaryOp(opcode uint16, kind unaryKind) (int, error) {
	sizeBits := (opcode >> 6) & 3
	size, ok := sizeFieldStd(sizeBits)
	if !ok {
		return c.illegal(opcode)
	}
	modeField := int((opcode >> 3) & 7)
	regField := int(opcode & 7)
	ea, err := c.decodeEA(modeField, regField, size)
	if err != nil {
		return 0, err
	}

	switch kind {
	case opClr:
		if err := ea.Set(c, 0); err != nil {
			return 0, err
		}
		c.setLogicFlags(0, size)
	case opNot:
		v, err := ea.Get(c)
		if err != nil {
			return 0, err
		}
		result := (^v) & size.Mask()
		if err := ea.Set(c, result); err != nil {
			return 0, err
		}
		c.setLogicFlags(result, size)
	case opNeg:
		v, err := ea.Get(c)
		if err != nil {
			return 0, err
		}
		result, carry, overflow := subWithFlags(0, v, false, size)
		if err := ea.Set(c, result); err != nil {
			return 0, err
		}
		c.setArithFlags(result, size, carry, overflow)
	case opNegX:
		v, err := ea.Get(c)
		if err != nil {
			return 0, err
		}
		result, carry, overflow := subWithFlags(0, v, c.SR.X, size)
		if err := ea.Set(c, result); err != nil {
			return 0, err
		}
		wasZero := c.SR.Z
		c.setArithFlags(result, size, carry, overflow)
		if result&size.Mask() != 0 {
			c.SR.Z = false
		} else {
			c.SR.Z = wasZero
		}
	}
	return 4, nil
}

func (c *CPU) moveFromSR(opcode uint16) (int, error) {
	modeField := int((opcode >> 3) & 7)
	regField := int(opcode & 7)
	ea, err := c.decodeEA(modeField, regField, Word)
	if err != nil {
		return 0, err
	}
	if err := ea.Set(c, uint32(c.SR.Value())); err != nil {
		return 0, err
	}
	return 6, nil
}

func (c *CPU) moveToCCR(opcode uint16) (int, error) {
	modeField := int((opcode >> 3) & 7)
	regField := int(opcode & 7)
	ea, err := c.decodeEA(modeField, regField, Word)
	if err != nil {
		return 0, err
	}
	v, err := ea.Get(c)
	if err != nil {
		return 0, err
	}
	c.SR.LoadCCR(uint8(v))
	return 12, nil
}

func (c *CPU) moveToSR(opcode uint16) (int, error) {
	if !c.SR.Supervisor {
		_, err := c.raiseException(VectorPrivilegeViolation)
		return 34, err
	}
	modeField := int((opcode >> 3) & 7)
	regField := int(opcode & 7)
	ea, err := c.decodeEA(modeField, regField, Word)
	if err != nil {
		return 0, err
	}
	v, err := ea.Get(c)
	if err != nil {
		return 0, err
	}
	c.SR.Load(uint16(v))
	return 12, nil
}

// movem transfers a register list to or from memory, in the order the
// hardware defines: D0-D7,A0-A7 ascending for every mode except predecrement,
// which goes A7-A0,D7-D0 descending so the first register pushed ends up
// deepest on the stack.
func (c *CPU) movem(opcode uint16) (int, error) {
	dirToMem := opcode&0x0400 == 0
	sizeBits := (opcode >> 6) & 1
	size := Word
	if sizeBits == 1 {
		size = Long
	}
	modeField := int((opcode >> 3) & 7)
	regField := int(opcode & 7)

	mask, err := c.fetchWord()
	if err != nil {
		return 0, err
	}

	n := 0

	if modeField == 4 { // predecrement: memory <- registers only
		// predecrement mode reverses the list order: bit0=A7,...,bit7=A0,
		// bit8=D7,...,bit15=D0, so the first register stored ends up deepest
		// on the stack.
		addr := c.GetA(regField)
		for bit := 0; bit < 16; bit++ {
			if mask&(1<<uint(bit)) == 0 {
				continue
			}
			var v uint32
			if bit < 8 {
				v = c.GetA(7 - bit)
			} else {
				v = c.D[15-bit]
			}
			addr -= uint32(size)
			buf := make([]byte, int(size))
			vv := v
			for i := len(buf) - 1; i >= 0; i-- {
				buf[i] = byte(vv)
				vv >>= 8
			}
			if err := c.port.Write(uint64(addr)&addrMask, buf); err != nil {
				return 0, err
			}
			n++
		}
		c.SetA(regField, addr)
		return 8 + n*4, nil
	}

	ea, err := c.decodeEA(modeField, regField, size)
	if err != nil || !ea.IsMemory() && modeField != 3 {
		return c.illegal(opcode)
	}

	addr := ea.Address()
	if modeField == 3 {
		addr = c.GetA(regField)
	}

	for bit := 0; bit < 16; bit++ {
		if mask&(1<<uint(bit)) == 0 {
			continue
		}
		var regIdx int
		var isAddr bool
		if bit < 8 {
			regIdx = bit
			isAddr = false
		} else {
			regIdx = bit - 8
			isAddr = true
		}

		if dirToMem {
			var v uint32
			if isAddr {
				v = c.GetA(regIdx)
			} else {
				v = c.D[regIdx]
			}
			buf := make([]byte, int(size))
			vv := v
			for i := len(buf) - 1; i >= 0; i-- {
				buf[i] = byte(vv)
				vv >>= 8
			}
			if err := c.port.Write(uint64(addr)&addrMask, buf); err != nil {
				return 0, err
			}
		} else {
			buf, err := c.port.Read(uint64(addr)&addrMask, int(size))
			if err != nil {
				return 0, err
			}
			var v uint32
			for _, b := range buf {
				v = v<<8 | uint32(b)
			}
			v = size.SignExtend(v)
			if isAddr {
				c.SetA(regIdx, v)
			} else {
				c.D[regIdx] = v
			}
		}
		addr += uint32(size)
		n++
	}

	if modeField == 3 {
		c.SetA(regField, addr)
	}

	return 8 + n*4, nil
}
