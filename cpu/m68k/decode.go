package m68k

import "github.com/moaemu/moa/curated"

// sizeFieldStd decodes the standard two-bit size encoding (00 byte, 01 word,
// 10 long) used throughout the instruction set. ok is false for 11.
func sizeFieldStd(bits uint16) (Size, bool) {
	switch bits {
	case 0:
		return Byte, true
	case 1:
		return Word, true
	case 2:
		return Long, true
	}
	return 0, false
}

// execOne fetches, decodes and executes a single instruction starting at
// the current PC, returning the instruction's cycle cost. Decode and
// execute are combined into one pass: effective-address decoding already
// performs the register side effects (pre-decrement, extension-word fetch)
// that an independent decode stage would have to re-derive, so splitting
// them into separate tables buys nothing here and would just mean
// threading the same state through two stages.
func (c *CPU) execOne() (int, error) {
	opcode, err := c.fetchWord()
	if err != nil {
		return 0, err
	}

	switch opcode >> 12 {
	case 0x0:
		return c.group0(opcode)
	case 0x1:
		return c.groupMove(opcode, Byte)
	case 0x2:
		return c.groupMove(opcode, Long)
	case 0x3:
		return c.groupMove(opcode, Word)
	case 0x4:
		return c.group4(opcode)
	case 0x5:
		return c.group5(opcode)
	case 0x6:
		return c.groupBranch(opcode)
	case 0x7:
		return c.groupMoveq(opcode)
	case 0x8:
		return c.groupOrDiv(opcode)
	case 0x9:
		return c.groupSub(opcode)
	case 0xA:
		// reserved for user-defined opcodes (line-A); Macintosh ROMs depend
		// on this routing to the line-A vector rather than illegal
		// instruction.
		_, err := c.raiseException(VectorLineA)
		return 34, err
	case 0xB:
		return c.groupCmpEor(opcode)
	case 0xC:
		return c.groupAndMul(opcode)
	case 0xD:
		return c.groupAdd(opcode)
	case 0xE:
		return c.groupShift(opcode)
	case 0xF:
		_, err := c.raiseException(VectorLineF)
		return 34, err
	}

	return 0, curated.Errorf(curated.IllegalInstruction, opcode, c.PC)
}

func (c *CPU) illegal(opcode uint16) (int, error) {
	_, err := c.raiseException(VectorIllegalInstruction)
	if err != nil {
		return 0, err
	}
	return 34, nil
}
