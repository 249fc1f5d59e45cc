package vdp

import "github.com/moaemu/moa/logger"

// triggerDMA executes (or, for fill, arms) the DMA operation selected by
// register 0x17's top two bits once the control-port command completes.
// Memory->VDP and VRAM copy run to completion immediately, matching the
// "fires immediately on the second command word" contract; VRAM fill only
// arms, and completes on the CPU's next data-port write supplying the fill
// word, since the fill value is not known until then.
func (v *VDP) triggerDMA() {
	switch v.dmaModeSelect() {
	case dmaFill:
		v.pendingFill = true
	case dmaCopy:
		v.runCopy()
	default:
		v.runMemToVDP()
	}
}

func (v *VDP) dmaModeSelect() dmaMode {
	switch v.dmaSourceHigh() >> 6 {
	case 0, 1:
		return dmaMemToVDP
	case 2:
		return dmaFill
	default:
		return dmaCopy
	}
}

// dmaLengthWords interprets the length register per the documented
// zero-means-65536 hardware quirk.
func (v *VDP) dmaLengthWords() int {
	n := int(v.dmaLength())
	if n == 0 {
		return 0x10000
	}
	return n
}

func (v *VDP) runMemToVDP() {
	if v.extBus == nil {
		logger.Logf(logger.Allow, "vdp", "memory-to-VDP DMA requested with no system bus attached")
		return
	}
	srcWord := uint32(v.dmaSourceLow()) | uint32(v.dmaSourceMid())<<8 | uint32(v.dmaSourceHigh()&0x7f)<<16
	src := uint64(srcWord) << 1
	n := v.dmaLengthWords()

	v.Status |= statusDMABusy
	for i := 0; i < n; i++ {
		var buf [2]byte
		if err := v.extBus.Read(src, buf[:]); err != nil {
			logger.Logf(logger.Allow, "vdp", "DMA source read fault at %#08x: %s", src, err)
			break
		}
		v.writeTargetWord(uint16(buf[0])<<8 | uint16(buf[1]))
		v.advanceTarget()
		src += 2
		if src >= 1<<23 {
			src = 0
		}
	}
	v.Status &^= statusDMABusy
	v.advanceDMASource(n)
}

// runCopy performs a byte-wise VRAM-to-VRAM copy. Source is a 16-bit VRAM
// address taken from registers 0x15/0x16 only; register 0x17's low bits are
// not part of the copy source per the documented hardware behaviour.
func (v *VDP) runCopy() {
	src := uint16(v.dmaSourceLow()) | uint16(v.dmaSourceMid())<<8
	n := v.dmaLengthWords()

	v.Status |= statusDMABusy
	for i := 0; i < n; i++ {
		b := v.VRAM[int(src)%vramSize]
		v.VRAM[int(v.target.addr)%vramSize] = b
		src++
		v.advanceTarget()
	}
	v.Status &^= statusDMABusy
	v.advanceDMASource(n)
}

// runFill completes an armed VRAM fill: the high byte of fillWord is
// written byte-by-byte for the configured length, each write separated by
// the configured auto-increment.
func (v *VDP) runFill(fillWord uint16) {
	n := v.dmaLengthWords()
	hi := byte(fillWord >> 8)

	v.Status |= statusDMABusy
	v.VRAM[int(v.target.addr)%vramSize] = hi
	v.advanceTarget()
	for i := 1; i < n; i++ {
		v.VRAM[int(v.target.addr)%vramSize] = hi
		v.advanceTarget()
	}
	v.Status &^= statusDMABusy
	v.advanceDMASource(n)
}

// advanceDMASource updates the source-address registers to reflect n words
// consumed, matching real hardware leaving them pointing past the
// transferred block rather than resetting them.
func (v *VDP) advanceDMASource(n int) {
	srcWord := uint32(v.dmaSourceLow()) | uint32(v.dmaSourceMid())<<8 | uint32(v.dmaSourceHigh()&0x7f)<<16
	srcWord = (srcWord + uint32(n)) & 0x7fffff
	v.R[0x15] = byte(srcWord)
	v.R[0x16] = byte(srcWord >> 8)
	v.R[0x17] = v.R[0x17]&0xc0 | byte(srcWord>>16)&0x7f
}
