package m68k

import "github.com/moaemu/moa/curated"

// eaMode enumerates the closed set of effective-address forms this core
// supports: immediate, direct D/A register, indirect A-register, indirect
// with post-increment or pre-decrement, indirect with 16-bit or
// PC-relative displacement, and absolute word/long. Indexed addressing
// ((An,Xn,d8) and (PC,Xn,d8)) is outside this set and decodes to an
// illegal instruction.
type eaMode int

const (
	eaDn eaMode = iota
	eaAn
	eaAnInd
	eaAnPostInc
	eaAnPreDec
	eaAnDisp
	eaAbsW
	eaAbsL
	eaPCDisp
	eaImmediate
)

// EA is a decoded effective-address operand, ready to be read or written.
// Decoding consumes any extension words (displacements, absolute addresses,
// immediates) and, for pre-decrement mode, has already mutated the address
// register; post-increment mode defers its register mutation until Get/Set
// actually perform the access, matching the hardware ordering the spec
// requires.
type EA struct {
	mode eaMode
	reg  int
	size Size
	addr uint32 // resolved memory address, for the memory-indirect modes
	imm  uint32 // resolved value, for immediate
}

// decodeEA reads the mode/register fields of an instruction word and
// decodes the effective address they describe, consuming any extension
// words from the instruction stream.
func (c *CPU) decodeEA(modeField, regField int, size Size) (EA, error) {
	switch modeField {
	case 0:
		return EA{mode: eaDn, reg: regField, size: size}, nil
	case 1:
		return EA{mode: eaAn, reg: regField, size: size}, nil
	case 2:
		return EA{mode: eaAnInd, reg: regField, size: size, addr: c.GetA(regField)}, nil
	case 3:
		return EA{mode: eaAnPostInc, reg: regField, size: size, addr: c.GetA(regField)}, nil
	case 4:
		step := uint32(size)
		if regField == 7 && size == Byte {
			step = 2 // SP byte accesses move by 2, to keep the stack word-aligned
		}
		addr := c.GetA(regField) - step
		c.SetA(regField, addr)
		return EA{mode: eaAnPreDec, reg: regField, size: size, addr: addr}, nil
	case 5:
		disp, err := c.fetchWord()
		if err != nil {
			return EA{}, err
		}
		addr := c.GetA(regField) + uint32(int16(disp))
		return EA{mode: eaAnDisp, size: size, addr: addr}, nil
	case 6:
		return EA{}, curated.Errorf(curated.IllegalInstruction, 0, c.PC)
	case 7:
		switch regField {
		case 0:
			w, err := c.fetchWord()
			if err != nil {
				return EA{}, err
			}
			return EA{mode: eaAbsW, size: size, addr: uint32(int16(w))}, nil
		case 1:
			l, err := c.fetchLong()
			if err != nil {
				return EA{}, err
			}
			return EA{mode: eaAbsL, size: size, addr: l}, nil
		case 2:
			base := c.PC
			disp, err := c.fetchWord()
			if err != nil {
				return EA{}, err
			}
			return EA{mode: eaPCDisp, size: size, addr: base + uint32(int16(disp))}, nil
		case 4:
			switch size {
			case Byte:
				w, err := c.fetchWord()
				if err != nil {
					return EA{}, err
				}
				return EA{mode: eaImmediate, size: size, imm: uint32(w) & 0xff}, nil
			case Word:
				w, err := c.fetchWord()
				if err != nil {
					return EA{}, err
				}
				return EA{mode: eaImmediate, size: size, imm: uint32(w)}, nil
			default:
				l, err := c.fetchLong()
				if err != nil {
					return EA{}, err
				}
				return EA{mode: eaImmediate, size: size, imm: l}, nil
			}
		}
	}

	return EA{}, curated.Errorf(curated.IllegalInstruction, 0, c.PC)
}

// postAccess applies the deferred post-increment side effect, after the
// memory access it was decoded for has actually happened.
func (ea EA) postAccess(c *CPU) {
	if ea.mode == eaAnPostInc {
		step := uint32(ea.size)
		if ea.reg == 7 && ea.size == Byte {
			step = 2
		}
		c.SetA(ea.reg, c.GetA(ea.reg)+step)
	}
}

// Get reads the value an EA refers to, honoring the size it was decoded
// with, and applies any deferred post-increment.
func (ea EA) Get(c *CPU) (uint32, error) {
	defer ea.postAccess(c)

	switch ea.mode {
	case eaDn:
		return c.D[ea.reg] & ea.size.Mask(), nil
	case eaAn:
		return c.GetA(ea.reg), nil
	case eaImmediate:
		return ea.imm, nil
	case eaAnInd, eaAnPostInc, eaAnPreDec, eaAnDisp, eaAbsW, eaAbsL, eaPCDisp:
		buf, err := c.port.Read(uint64(ea.addr), int(ea.size))
		if err != nil {
			return 0, err
		}
		var v uint32
		for _, b := range buf {
			v = v<<8 | uint32(b)
		}
		return v, nil
	}

	return 0, curated.Errorf(curated.IllegalInstruction, 0, c.PC)
}

// Set writes v (truncated to the EA's size) to wherever the EA refers to,
// and applies any deferred post-increment. Immediate and PC-relative
// destinations are not writable and return an illegal-instruction error if
// attempted; the decoder never produces such an instruction from correctly
// decoded opcodes.
func (ea EA) Set(c *CPU, v uint32) error {
	defer ea.postAccess(c)

	switch ea.mode {
	case eaDn:
		c.D[ea.reg] = c.D[ea.reg]&^ea.size.Mask() | v&ea.size.Mask()
		return nil
	case eaAn:
		c.SetA(ea.reg, v)
		return nil
	case eaAnInd, eaAnPostInc, eaAnPreDec, eaAnDisp, eaAbsW, eaAbsL:
		buf := make([]byte, int(ea.size))
		for i := len(buf) - 1; i >= 0; i-- {
			buf[i] = byte(v)
			v >>= 8
		}
		return c.port.Write(uint64(ea.addr), buf)
	}

	return curated.Errorf(curated.IllegalInstruction, 0, c.PC)
}

// IsMemory reports whether this EA addresses memory rather than a register
// or an immediate, which several instructions (e.g. CLR, the shift group)
// need to know to pick their timing and to decide whether CCR-only address
// register rules apply.
func (ea EA) IsMemory() bool {
	switch ea.mode {
	case eaAnInd, eaAnPostInc, eaAnPreDec, eaAnDisp, eaAbsW, eaAbsL, eaPCDisp:
		return true
	}
	return false
}

// IsAddressRegister reports whether this EA is a direct address-register
// operand, for the handful of instructions (MOVEA/ADDA/SUBA/CMPA) whose
// destination must sign-extend a word source and must never touch CCR.
func (ea EA) IsAddressRegister() bool {
	return ea.mode == eaAn
}

// Address returns the resolved memory address for EA modes that have one.
// Used by LEA, PEA and the MOVEM/MOVEP instructions which need the address
// itself rather than the value stored there.
func (ea EA) Address() uint32 {
	return ea.addr
}
