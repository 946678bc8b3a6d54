package nes

// Bit layouts of the PPU registers.
// Reference: https://www.nesdev.org/wiki/PPU_registers

// ppuControl is PPUCTRL ($2000).
// 7  bit  0
// ---- ----
// VPHB SINN
// |||| ||||
// |||| ||++- Base nametable address
// |||| |+--- VRAM address increment per CPU read/write of PPUDATA (0: add 1; 1: add 32)
// |||| +---- Sprite pattern table address for 8x8 sprites
// |||+------ Background pattern table address
// ||+------- Sprite size (0: 8x8 pixels; 1: 8x16 pixels)
// |+-------- PPU master/slave select, unused
// +--------- Generate an NMI at the start of the vertical blanking interval
type ppuControl byte

func (c ppuControl) nametable() uint16 {
	return uint16(c & 0x03)
}

func (c ppuControl) increment() uint16 {
	if c&0x04 != 0 {
		return 32
	}
	return 1
}

func (c ppuControl) spriteTable() uint16 {
	if c&0x08 != 0 {
		return 0x1000
	}
	return 0
}

func (c ppuControl) backgroundTable() uint16 {
	if c&0x10 != 0 {
		return 0x1000
	}
	return 0
}

func (c ppuControl) spriteHeight() int {
	if c&0x20 != 0 {
		return 16
	}
	return 8
}

func (c ppuControl) nmi() bool {
	return c&0x80 != 0
}

// ppuMask is PPUMASK ($2001).
// 7  bit  0
// ---- ----
// BGRs bMmG
// |||| ||||
// |||| |||+- Greyscale
// |||| ||+-- Show background in leftmost 8 pixels of screen
// |||| |+--- Show sprites in leftmost 8 pixels of screen
// |||| +---- Show background
// |||+------ Show sprites
// +++------- Emphasize red, green, blue
type ppuMask byte

func (m ppuMask) grayscale() bool          { return m&0x01 != 0 }
func (m ppuMask) showBackgroundLeft() bool { return m&0x02 != 0 }
func (m ppuMask) showSpritesLeft() bool    { return m&0x04 != 0 }
func (m ppuMask) showBackground() bool     { return m&0x08 != 0 }
func (m ppuMask) showSprites() bool        { return m&0x10 != 0 }
func (m ppuMask) emphasis() byte           { return byte(m >> 5) }

func (m ppuMask) renderingEnabled() bool {
	return m.showBackground() || m.showSprites()
}

// ppuStatus is PPUSTATUS ($2002), only the top 3 bits exist.
type ppuStatus byte

const (
	statusSpriteOverflow ppuStatus = 1 << 5
	statusSpriteZeroHit  ppuStatus = 1 << 6
	statusVBlank         ppuStatus = 1 << 7
)

func (s ppuStatus) has(flag ppuStatus) bool {
	return s&flag != 0
}

func (s *ppuStatus) set(flag ppuStatus, on bool) {
	if on {
		*s |= flag
	} else {
		*s &^= flag
	}
}

// loopy is the internal VRAM address, used for both v and t.
// https://www.nesdev.org/wiki/PPU_scrolling
// yyy NN YYYYY XXXXX
// ||| || ||||| +++++-- coarse X scroll
// ||| || +++++-------- coarse Y scroll
// ||| ++-------------- nametable select
// +++----------------- fine Y scroll
type loopy uint16

const loopyMask loopy = 0x7FFF

func (l loopy) coarseX() uint16   { return uint16(l) & 0x1F }
func (l loopy) coarseY() uint16   { return uint16(l>>5) & 0x1F }
func (l loopy) nametable() uint16 { return uint16(l>>10) & 0x03 }
func (l loopy) fineY() uint16     { return uint16(l>>12) & 0x07 }

func (l *loopy) setCoarseX(x uint16) {
	*l = *l&^0x001F | loopy(x&0x1F)
}

func (l *loopy) setCoarseY(y uint16) {
	*l = *l&^0x03E0 | loopy(y&0x1F)<<5
}

func (l *loopy) setNametable(n uint16) {
	*l = *l&^0x0C00 | loopy(n&0x03)<<10
}

func (l *loopy) setFineY(y uint16) {
	*l = *l&^0x7000 | loopy(y&0x07)<<12
}

// incrementX moves to the next tile, wrapping into the horizontally adjacent nametable.
func (l *loopy) incrementX() {
	if l.coarseX() == 31 {
		l.setCoarseX(0)
		*l ^= 0x0400
	} else {
		*l++
	}
}

// incrementY moves to the next pixel row.
// Row 29 is the last row of a nametable, row 30 and 31 point into the attribute table
// and wrap without switching nametables.
func (l *loopy) incrementY() {
	if l.fineY() < 7 {
		*l += 0x1000
		return
	}
	l.setFineY(0)
	y := l.coarseY()
	switch y {
	case 29:
		y = 0
		*l ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	l.setCoarseY(y)
}

// copyHorizontal copies coarse X and the horizontal nametable bit from t.
func (l *loopy) copyHorizontal(t loopy) {
	*l = *l&^0x041F | t&0x041F
}

// copyVertical copies fine Y, coarse Y and the vertical nametable bit from t.
func (l *loopy) copyVertical(t loopy) {
	*l = *l&^0x7BE0 | t&0x7BE0
}

// address is the VRAM address the CPU sees through PPUDATA.
func (l loopy) address() uint16 {
	return uint16(l) & 0x3FFF
}

// tileAddress is the nametable byte for the current tile.
func (l loopy) tileAddress() uint16 {
	return 0x2000 | uint16(l)&0x0FFF
}

// attributeAddress is the attribute byte covering the current tile.
func (l loopy) attributeAddress() uint16 {
	return 0x23C0 | uint16(l)&0x0C00 | (uint16(l)>>4)&0x38 | (uint16(l)>>2)&0x07
}

// attributeShift selects the quadrant of the attribute byte.
func (l loopy) attributeShift() uint16 {
	return (uint16(l)>>4)&0x04 | uint16(l)&0x02
}
