package vdp

// spriteEntry is one decoded entry of the sprite attribute table.
type spriteEntry struct {
	y, x           int
	sizeH, sizeV   int
	pattern        int
	hflip, vflip   bool
	pal            int
	priority       bool
	link           int
}

func (v *VDP) readVRAMword(addr uint16) uint16 {
	a := int(addr) % vramSize
	return uint16(v.VRAM[a])<<8 | uint16(v.VRAM[(a+1)%vramSize])
}

// readSprite decodes sprite attribute table entry i. Y and X positions carry
// the documented 128-pixel hardware offset.
func (v *VDP) readSprite(i int) spriteEntry {
	base := v.spriteBase() + uint16(i*8)
	rawY := v.readVRAMword(base) & 0x3ff
	sizeByte := v.VRAM[(int(base)+2)%vramSize]
	link := int(v.VRAM[(int(base)+3)%vramSize] & 0x7f)
	attr := v.readVRAMword(base + 4)
	rawX := v.readVRAMword(base+6) & 0x1ff

	return spriteEntry{
		y:        int(rawY) - 128,
		x:        int(rawX) - 128,
		sizeH:    int((sizeByte>>2)&0x3) + 1,
		sizeV:    int(sizeByte&0x3) + 1,
		link:     link,
		pattern:  int(attr & 0x7ff),
		hflip:    attr&0x800 != 0,
		vflip:    attr&0x1000 != 0,
		pal:      int(attr>>13) & 0x3,
		priority: attr&0x8000 != 0,
	}
}

// buildSpriteLists walks the sprite link list once, starting at entry 0,
// stopping at a link of 0 or a link past 79 (whichever the table reaches
// first) and capping the table walk at 80 entries total. Each sprite is
// bucketed into every scanline its height spans.
func (v *VDP) buildSpriteLists(screenHeight int) [][]int {
	lists := make([][]int, screenHeight)
	idx := 0
	for visited := 0; visited < 80; visited++ {
		if idx < 0 || idx > 79 {
			break
		}
		sp := v.readSprite(idx)
		h := sp.sizeV * 8
		for ln := sp.y; ln < sp.y+h; ln++ {
			if ln >= 0 && ln < screenHeight {
				lists[ln] = append(lists[ln], idx)
			}
		}
		if sp.link == 0 || sp.link > 79 {
			break
		}
		idx = sp.link
	}
	return lists
}

// spritePixel returns the pattern index (0 = transparent), palette line,
// and priority bit for sprite sp at absolute screen position (x, y), or ok
// = false if x falls outside the sprite's horizontal extent.
func (v *VDP) spritePixel(sp spriteEntry, x, y int) (idx byte, pal int, pri bool, ok bool) {
	lx := x - sp.x
	if lx < 0 || lx >= sp.sizeH*8 {
		return 0, 0, false, false
	}
	ih := lx / 8
	baseIvCell := (y - sp.y) / 8
	var cellIndex int
	if sp.hflip {
		cellIndex = (sp.sizeH-1-ih)*sp.sizeV + baseIvCell
	} else {
		cellIndex = ih*sp.sizeV + baseIvCell
	}
	pattern := sp.pattern + cellIndex
	pxInCell := lx % 8
	lineInCell := (y - sp.y) % 8
	idx = v.patternPixel(pattern, sp.hflip, sp.vflip, pxInCell, lineInCell)
	return idx, sp.pal, sp.priority, true
}
