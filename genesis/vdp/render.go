package vdp

import (
	"sort"

	"github.com/moaemu/moa/host"
)

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// patternPixel returns the 4-bit palette index (0 = transparent) of pixel
// (px, py) within an 8x8 pattern cell, applying the cell's own flip flags.
// Each pattern is 32 bytes: 8 rows of 4 bytes, 2 pixels packed per byte.
func (v *VDP) patternPixel(pattern int, hflip, vflip bool, px, py int) byte {
	if vflip {
		py = 7 - py
	}
	if hflip {
		px = 7 - px
	}
	addr := uint32(pattern)*32 + uint32(py)*4 + uint32(px/2)
	b := v.VRAM[int(addr)%vramSize]
	if px%2 == 0 {
		return b >> 4
	}
	return b & 0x0f
}

// hScroll returns the per-line horizontal scroll values for planes A and B,
// per the three documented addressing modes.
func (v *VDP) hScroll(line int) (hsA, hsB int) {
	base := v.hscrollBase()
	var off uint16
	switch v.hScrollMode() {
	case 2:
		off = base + uint16(line/8)*32
	case 3:
		off = base + uint16(line/8)*32 + uint16(line)*4
	default:
		off = base
	}
	return int(int16(v.readVRAMword(off))), int(int16(v.readVRAMword(off + 2)))
}

// vScroll returns the per-column-pair vertical scroll values for planes A
// and B, read from VSRAM.
func (v *VDP) vScroll(x int) (vsA, vsB int) {
	var off uint16
	if v.vScrollMode() != 0 {
		off = uint16((x/8)>>1) * 4
	}
	readWord := func(o uint16) int {
		a := o % vsramSize
		return int(int16(uint16(v.VSRAM[a])<<8 | uint16(v.VSRAM[(a+1)%vsramSize])))
	}
	return readWord(off), readWord(off + 2)
}

// planeSample fetches the pattern-name word covering screen position (x, y)
// on a scrolling plane, returning its decoded fields and the palette index
// for that pixel.
func (v *VDP) planeSample(base uint16, wCells, hCells int, x, y int, hs, vs int) (idx byte, pal int, pri bool) {
	wPx, hPx := wCells*8, hCells*8
	px := mod(x-hs, wPx)
	py := mod(y+vs, hPx)
	cellX, cellY := px/8, py/8
	addr := base + uint16((cellY*wCells+cellX)*2)
	entry := v.readVRAMword(addr)

	pattern := int(entry & 0x7ff)
	hflip := entry&0x800 != 0
	vflip := entry&0x1000 != 0
	pal = int(entry>>13) & 0x3
	pri = entry&0x8000 != 0
	idx = v.patternPixel(pattern, hflip, vflip, px%8, py%8)
	return idx, pal, pri
}

// inWindow reports whether screen position (x, y) falls inside the window
// plane's active region. An axis only participates when its position field
// is non-zero, so a machine that never programs the window registers never
// has window pixels substituted.
func (v *VDP) inWindow(x, y int) bool {
	whp, wvp := v.windowHPos(), v.windowVPos()

	var inH bool
	if whp&0x1f != 0 {
		hPx := int(whp&0x1f) * 16
		if whp&0x80 == 0 {
			inH = x >= hPx
		} else {
			inH = x < hPx
		}
	}
	var inV bool
	if wvp&0x1f != 0 {
		vPx := int(wvp&0x1f) * 8
		if wvp&0x80 == 0 {
			inV = y >= vPx
		} else {
			inV = y < vPx
		}
	}
	return inH || inV
}

// frontToBack orders the sprite/A/B layers from topmost to bottommost given
// their priority bits: a set priority bit moves a layer in front of any
// layer whose bit is clear; ties keep the fixed sprite>A>B precedence.
// Background is always the backmost layer.
func frontToBack(spritePri, aPri, bPri bool) [4]int {
	type layer struct {
		id  int
		pri bool
	}
	layers := []layer{{0, spritePri}, {1, aPri}, {2, bPri}}
	sort.SliceStable(layers, func(i, j int) bool { return layers[i].pri && !layers[j].pri })
	return [4]int{layers[0].id, layers[1].id, layers[2].id, 3}
}

// renderLine computes one scanline's pixels into the frame at row y.
func (v *VDP) renderLine(y int, sprites [][]int) {
	width := v.ScreenWidth()
	hsA, hsB := v.hScroll(y)
	bg := decodeColor(uint16(v.CRAM[v.backdropColor()*2])<<8|uint16(v.CRAM[v.backdropColor()*2+1]), shadeNormal)
	wCells, hCells := v.scrollSize()

	line := sprites[y]
	for x := 0; x < width; x++ {
		vsA, vsB := v.vScroll(x)

		aIdx, aPal, aPri := v.planeSample(v.scrollABase(), wCells, hCells, x, y, hsA, vsA)
		if v.inWindow(x, y) {
			aIdx, aPal, aPri = v.planeSample(v.windowBase(), wCells, hCells, x, y, 0, 0)
		}
		bIdx, bPal, bPri := v.planeSample(v.scrollBBase(), wCells, hCells, x, y, hsB, vsB)

		var sIdx byte
		var sPal int
		var sPri bool
		var sOk bool
		for _, si := range line {
			sp := v.readSprite(si)
			if idx, pal, pri, ok := v.spritePixel(sp, x, y); ok && idx != 0 {
				sIdx, sPal, sPri, sOk = idx, pal, pri, true
				break
			}
		}

		order := frontToBack(sPri, aPri, bPri)
		var chosenIdx byte
		var chosenPal int
		var isSprite bool
		resolved := false
		for _, l := range order {
			switch l {
			case 0:
				if sOk && sIdx != 0 {
					chosenIdx, chosenPal, isSprite, resolved = sIdx, sPal, true, true
				}
			case 1:
				if aIdx != 0 {
					chosenIdx, chosenPal, resolved = aIdx, aPal, true
				}
			case 2:
				if bIdx != 0 {
					chosenIdx, chosenPal, resolved = bIdx, bPal, true
				}
			case 3:
				resolved = true
			}
			if resolved {
				break
			}
		}

		if !resolved || (chosenIdx == 0 && !isSprite) {
			v.frame.Set(x, y, bg)
			continue
		}
		if chosenIdx == 0 {
			v.frame.Set(x, y, bg)
			continue
		}

		sh := shadeNormal
		if v.ShadowHighlightEnabled() {
			switch {
			case isSprite && chosenPal == 3 && chosenIdx == 14:
				sh = shadeHighlight
			case isSprite && chosenPal == 3 && chosenIdx == 15:
				sh = shadeShadow
			case !aPri && !bPri:
				sh = shadeShadow
			}
		}

		entryAddr := (chosenPal*16 + int(chosenIdx)) * 2
		entry := uint16(v.CRAM[entryAddr%cramSize])<<8 | uint16(v.CRAM[(entryAddr+1)%cramSize])
		v.frame.Set(x, y, decodeColor(entry, sh))
	}
}

// RenderFrame rebuilds the sprite lists once and renders every visible
// scanline into the back buffer, then publishes it as the new front frame.
// It is invoked once per field, at VBlank entry, by Step.
func (v *VDP) RenderFrame() *host.Frame {
	height := 224
	v.frame = v.frame.Resized(v.ScreenWidth(), height)
	sprites := v.buildSpriteLists(height)
	for y := 0; y < height; y++ {
		v.renderLine(y, sprites)
	}
	done := v.frame
	v.published.Publish(done)
	v.frame = host.NewFrame(done.Width, done.Height)
	return done
}
