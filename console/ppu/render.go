package ppu

import "nespkg.dev/coreboard/console/bus"

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyX() { p.v = (p.v & 0xFBE0) | (p.t & 0x041F) }
func (p *PPU) copyY() { p.v = (p.v & 0x841F) | (p.t & 0x7BE0) }

func (p *PPU) fetchNameTableByte() {
	p.nameTableByte = p.vramRead(0x2000 | (p.v & 0x0FFF))
}

func (p *PPU) fetchAttributeByte() {
	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	p.attributeByte = p.vramRead(addr)
}

func (p *PPU) bgPatternBase() uint16 {
	if p.bgTableHigh {
		return 0x1000
	}
	return 0
}

func (p *PPU) fetchLowTileByte() {
	fineY := (p.v >> 12) & 7
	p.lowTileByte = p.vramRead(p.bgPatternBase() + uint16(p.nameTableByte)*16 + fineY)
}

func (p *PPU) fetchHighTileByte() {
	fineY := (p.v >> 12) & 7
	p.highTileByte = p.vramRead(p.bgPatternBase() + uint16(p.nameTableByte)*16 + fineY + 8)
}

func (p *PPU) spriteHeight() int {
	if p.spriteSize16 {
		return 16
	}
	return 8
}

// evaluateSprite fills secondaryOAM for the NEXT scanline, supporting both
// 8x8 and 8x16 sprite sizes (spec.md requires 8x16 mode be supported).
func (p *PPU) evaluateSprite() {
	height := p.spriteHeight()
	count := 0
	for i := 0; i < 64; i++ {
		y := int(p.primaryOAM[i*4])
		tile := p.primaryOAM[i*4+1]
		attr := p.primaryOAM[i*4+2]
		x := int(p.primaryOAM[i*4+3])
		if y <= p.scanline+1 && p.scanline+1 < y+height {
			if count < 8 {
				p.secondaryOAM[count] = oamSprite{index: i, y: y, tile: tile, attribute: attr, x: x}
			}
			count++
		}
	}
	if count > 8 {
		count = 8
		p.spriteOverflow = true
	}
	p.secondaryNum = count
}

// spritePatternAddr resolves the pattern-table byte address for row h
// (0..height-1) of an oamSprite, handling the 8x16 bank-per-tile rule
// where bit 0 of the tile index selects the pattern table.
func (p *PPU) spritePatternAddr(s oamSprite, h int) uint16 {
	if !p.spriteSize16 {
		bank := uint16(0)
		if p.spriteTableHigh {
			bank = 0x1000
		}
		return bank + uint16(s.tile)*16 + uint16(h)
	}
	bank := uint16(0)
	if s.tile&1 != 0 {
		bank = 0x1000
	}
	tile := s.tile &^ 1
	if h >= 8 {
		tile++
		h -= 8
	}
	return bank + uint16(tile)*16 + uint16(h)
}

func (p *PPU) renderSpritePixel() (int, byte) {
	if !p.showSprite {
		return 0, 0
	}
	x := p.cycle - 1
	y := p.scanline
	height := p.spriteHeight()
	for i := 0; i < p.secondaryNum; i++ {
		s := p.secondaryOAM[i]
		if x < s.x || x >= s.x+8 {
			continue
		}
		h := y - s.y
		if s.flipV() {
			h = height - 1 - h
		}
		addr := p.spritePatternAddr(s, h)
		lo := p.vramRead(addr)
		hi := p.vramRead(addr + 8)
		shift := 7 - (x - s.x)
		if s.flipH() {
			shift = x - s.x
		}
		lv := (lo >> uint(shift)) & 1
		hv := (hi >> uint(shift)) & 1
		if v := lv + hv; v != 0 {
			return i, v
		}
	}
	return 0, 0
}

func (p *PPU) renderBackgroundPixel() byte {
	if !p.showBackground {
		return 0
	}
	x := p.cycle - 1
	lo := p.tileDataBuffer[4]
	hi := p.tileDataBuffer[5]
	shift := uint(7 - (x % 8))
	return ((lo >> shift) & 1) | (((hi >> shift) & 1) << 1)
}

func (p *PPU) bgColor(value, attr byte) rgb {
	x := p.cycle - 1
	y := p.scanline
	num := byte(y&8)>>2 | byte(x&8)>>3
	palette := (attr >> (num << 1)) & 3
	idx := p.paletteRAM[bus.MirrorPalette(0x3F00|uint16(palette)*4+uint16(value))]
	return p.shade(idx)
}

func (p *PPU) shade(paletteIndex byte) rgb {
	c := basePalette[paletteIndex&0x3F]
	return emphasize(c, p.emphasizeRed, p.emphasizeGreen, p.emphasizeBlue)
}

func (p *PPU) renderPixel() {
	x := p.cycle - 1
	y := p.scanline
	attr := p.tileDataBuffer[3]
	bg := p.renderBackgroundPixel()
	spriteIdx, sp := p.renderSpritePixel()

	if x < 8 && !p.showLeftBackground {
		bg = 0
	}
	if x < 8 && !p.showLeftSprite {
		sp = 0
	}

	bgOpaque := bg != 0
	spOpaque := sp != 0
	s := p.secondaryOAM[spriteIdx]

	var out rgb
	switch {
	case !spOpaque && !bgOpaque:
		out = p.shade(p.paletteRAM[0])
	case spOpaque && !bgOpaque:
		out = p.shade(p.paletteRAM[bus.MirrorPalette(s.paletteAddr(sp))])
	case !spOpaque && bgOpaque:
		out = p.bgColor(bg, attr)
	default:
		if s.priority() == 1 {
			out = p.bgColor(bg, attr)
		} else {
			out = p.shade(p.paletteRAM[bus.MirrorPalette(s.paletteAddr(sp))])
		}
		if s.index == 0 && spOpaque && bgOpaque && x < 255 {
			p.spriteZeroHit = true
		}
	}
	p.Picture[y][x] = out
}

// Step advances the PPU by one dot (one pixel clock); console.Console
// calls this 3 times per CPU cycle (spec.md §4.2) and polls TakeNMI
// afterwards to learn whether an NMI should now be asserted.
func (p *PPU) Step() {
	p.cycle++
	if p.cycle == 341 {
		p.cycle = 0
		p.scanline++
		if p.scanline == 262 {
			p.scanline = 0
		}
	}

	renderingEnabled := p.showBackground || p.showSprite
	if renderingEnabled {
		if 1 <= p.cycle && p.cycle <= 256 && p.scanline <= 239 {
			p.renderPixel()
		}
		if p.scanline == 261 && 280 <= p.cycle && p.cycle <= 304 {
			p.copyY()
		}
		if p.scanline < 240 || p.scanline == 261 {
			if 1 <= p.cycle && p.cycle <= 256 && p.cycle%8 == 0 {
				p.incrementCoarseX()
			}
			if p.cycle == 328 || p.cycle == 336 {
				p.incrementCoarseX()
			}
			if p.cycle == 256 {
				p.incrementY()
			}
			if p.cycle == 257 {
				p.copyX()
			}
			if (p.cycle > 0 && p.cycle <= 257) || p.cycle > 320 {
				switch p.cycle % 8 {
				case 0:
					p.tileDataBuffer[3] = p.tileDataBuffer[0]
					p.tileDataBuffer[4] = p.tileDataBuffer[1]
					p.tileDataBuffer[5] = p.tileDataBuffer[2]
					p.tileDataBuffer[0] = p.attributeByte
					p.tileDataBuffer[1] = p.lowTileByte
					p.tileDataBuffer[2] = p.highTileByte
				case 1:
					p.fetchNameTableByte()
				case 3:
					p.fetchAttributeByte()
				case 5:
					p.fetchLowTileByte()
				case 7:
					p.fetchHighTileByte()
				}
			}
		}
		if p.cycle == 257 {
			if p.scanline < 240 {
				p.evaluateSprite()
			} else {
				p.secondaryNum = 0
			}
		}
	}

	if p.nmiDelay > 0 {
		p.nmiDelay--
		if p.nmiDelay == 0 && p.nmiOutput && p.nmiOccurred {
			p.nmiPending = true
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.nmiOccurred = true
		p.nmiChange()
	}
	if p.scanline == 261 && p.cycle == 1 {
		p.spriteOverflow = false
		p.spriteZeroHit = false
		p.nmiOccurred = false
		p.nmiChange()
	}
}

// Frame packs the current picture into 0x00RRGGBB words, the "256x240
// 32-bit RGB" shape spec.md's onFrame host callback expects.
func (p *PPU) Frame() [Height][Width]uint32 {
	var out [Height][Width]uint32
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			c := p.Picture[y][x]
			out[y][x] = uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
		}
	}
	return out
}

// FrameComplete reports whether the dot just stepped was the last one of a
// frame, the signal console.Console uses to hand the picture to the host.
func (p *PPU) FrameComplete() bool {
	return p.cycle == 0 && p.scanline == 0
}

// IsPixelBright implements the Zapper's "bright pixel" probe (spec.md's
// light-gun support): the pointed-at pixel counts as a hit if its
// luminance is above a fixed threshold, approximating the handful of
// near-white NES palette entries the game draws under the gun during its
// detection flash.
func (p *PPU) IsPixelBright(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	c := p.Picture[y][x]
	lum := int(c.R) + int(c.G) + int(c.B)
	return lum > 256*2
}
