package nes

import (
	"fmt"
	"image"

	"github.com/golang/glog"
)

// NES PPU generates 256x240 pixels.
const (
	width  = 256
	height = 240
)

const (
	cyclesPerLine    = 341
	linesPerFrame    = 262
	vblankLine       = 241
	preRenderLine    = 261
	maxLineSprites   = 8
	spriteAttributes = 4
)

// sprite is an entry of the secondary OAM with its pattern already fetched for the line.
type sprite struct {
	x          byte
	attributes byte
	low        byte // pattern planes, already flipped horizontally
	high       byte
}

func (s sprite) palette() byte          { return s.attributes & 0x03 }
func (s sprite) behindBackground() bool { return s.attributes&0x20 != 0 }

// PPU stands for Picture Processing Unit, renders 256px x 240px image for a screen.
// PPU is 3x faster than CPU and rendering 1 frame requires 341x262=89342 cycles (Each cycles writes a dot).
//
// This PPU implementation includes PPU registers as well.
// References:
//   https://www.nesdev.org/wiki/PPU
//   https://www.nesdev.org/wiki/PPU_rendering
//   https://pgate1.at-ninja.jp/NES_on_FPGA/nes_ppu.htm (In Japanese)
type PPU struct {
	bus *PPUBus

	picture *image.RGBA

	// Registers visible to CPU.
	ctrl    ppuControl
	mask    ppuMask
	status  ppuStatus
	oamAddr byte
	// latch keeps the last value written to any register, write-only registers read it back.
	latch byte
	// buffer for PPUDATA $2007
	buffer byte

	// Internal registers.
	v loopy // current VRAM address
	t loopy // temporary VRAM address, the top left onscreen tile
	x byte  // fine X scroll
	w bool  // first or second write toggle

	oam [256]byte

	// cycle, scanline indicates which dot is processing.
	cycle    int
	scanline int
	frame    uint64

	// Background pipeline.
	nextTile      byte
	nextAttribute byte
	nextLow       byte
	nextHigh      byte
	patternLow    uint16
	patternHigh   uint16
	attributeLow  uint16
	attributeHigh uint16

	// Sprites for the current line.
	sprites          [maxLineSprites]sprite
	spriteCount      int
	spriteZeroInLine bool
}

// NewPPU creates a PPU.
func NewPPU(bus *PPUBus) *PPU {
	p := &PPU{
		bus:     bus,
		picture: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	p.Reset()
	return p
}

// Reset puts PPU at the end of the post-render line, the next dot starts vertical blank.
func (p *PPU) Reset() {
	p.cycle = cyclesPerLine - 1
	p.scanline = vblankLine - 1
	p.frame = 0
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.w = false
	p.buffer = 0
}

// Frame returns the picture, it is complete when vertical blank starts.
func (p *PPU) Frame() *image.RGBA {
	return p.picture
}

// nmiLine reports the level of the /NMI output, CPU detects its rising edge.
func (p *PPU) nmiLine() bool {
	return p.ctrl.nmi() && p.status.has(statusVBlank)
}

// readRegister reads $2000 + index.
func (p *PPU) readRegister(index uint16) (byte, error) {
	switch index {
	case 0, 1, 3, 5, 6:
		return p.latch, nil
	case 2:
		return p.readPPUSTATUS(), nil
	case 4:
		return p.readOAMDATA(), nil
	case 7:
		return p.readPPUDATA()
	}
	return 0, fmt.Errorf("%w: PPU register read $%04x", ErrAddressDecode, 0x2000+index)
}

// writeRegister writes $2000 + index.
func (p *PPU) writeRegister(index uint16, data byte) error {
	if index > 7 {
		return fmt.Errorf("%w: PPU register write $%04x, data=0x%02x", ErrAddressDecode, 0x2000+index, data)
	}
	p.latch = data
	switch index {
	case 0:
		p.writePPUCTRL(data)
	case 1:
		p.mask = ppuMask(data)
	case 2:
		// read-only
	case 3:
		p.oamAddr = data
	case 4:
		p.writeOAMDATA(data)
	case 5:
		p.writePPUSCROLL(data)
	case 6:
		p.writePPUADDR(data)
	case 7:
		return p.writePPUDATA(data)
	}
	return nil
}

// writePPUCTRL writes PPUCTRL ($2000).
func (p *PPU) writePPUCTRL(data byte) {
	p.ctrl = ppuControl(data)
	p.t.setNametable(p.ctrl.nametable())
}

// readPPUSTATUS reads PPUSTATUS ($2002), the read clears vblank and the write toggle.
func (p *PPU) readPPUSTATUS() byte {
	data := byte(p.status)&0xE0 | p.latch&0x1F
	p.status.set(statusVBlank, false)
	p.w = false
	return data
}

// readOAMDATA reads OAMDATA ($2004).
func (p *PPU) readOAMDATA() byte {
	return p.oam[p.oamAddr]
}

// writeOAMDATA writes OAMDATA ($2004).
func (p *PPU) writeOAMDATA(data byte) {
	p.oam[p.oamAddr] = data
	p.oamAddr++
}

// writeOAMDMA copies a page into OAM starting at OAMADDR.
func (p *PPU) writeOAMDMA(data *[256]byte) {
	for i := 0; i < 256; i++ {
		p.oam[p.oamAddr+byte(i)] = data[i]
	}
}

// writePPUSCROLL writes PPUSCROLL ($2005).
func (p *PPU) writePPUSCROLL(data byte) {
	if !p.w { // X
		p.t.setCoarseX(uint16(data >> 3))
		p.x = data & 0x07
		p.w = true
	} else { // Y
		p.t.setFineY(uint16(data & 0x07))
		p.t.setCoarseY(uint16(data >> 3))
		p.w = false
	}
}

// writePPUADDR writes PPUADDR ($2006), high byte first.
// The high write shares t with PPUSCROLL and clears bit 14.
func (p *PPU) writePPUADDR(data byte) {
	if !p.w { // high
		p.t = p.t&0x00FF | loopy(data&0x3F)<<8
		p.w = true
	} else { // low
		p.t = p.t&0xFF00 | loopy(data)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) incrementAddress() {
	p.v = (p.v + loopy(p.ctrl.increment())) & loopyMask
}

// readPPUDATA reads PPUDATA ($2007).
// Reads below the palette return the buffered value of the previous read.
func (p *PPU) readPPUDATA() (byte, error) {
	address := p.v.address()
	data, err := p.bus.read(address)
	if err != nil {
		return 0, err
	}
	if address < 0x3F00 {
		data, p.buffer = p.buffer, data
	} else {
		// The buffer is filled with the nametable byte "under" the palette.
		p.buffer, err = p.bus.read(address - 0x1000)
		if err != nil {
			return 0, err
		}
	}
	p.incrementAddress()
	return data, nil
}

// writePPUDATA writes PPUDATA ($2007).
func (p *PPU) writePPUDATA(data byte) error {
	if err := p.bus.write(p.v.address(), data); err != nil {
		return err
	}
	p.incrementAddress()
	return nil
}

// tick moves to the next dot.
func (p *PPU) tick() {
	// The pre-render line of odd frames is one dot shorter while rendering.
	if p.scanline == preRenderLine && p.cycle == cyclesPerLine-2 && p.frame%2 == 1 && p.mask.renderingEnabled() {
		p.cycle = cyclesPerLine - 1
	}
	p.cycle++
	if p.cycle == cyclesPerLine {
		p.cycle = 0
		p.scanline++
		if p.scanline == linesPerFrame {
			p.scanline = 0
			p.frame++
		}
	}
}

// Advance runs n dots and reports whether vertical blank started during them.
func (p *PPU) Advance(n int) (bool, error) {
	vblank := false
	for i := 0; i < n; i++ {
		started, err := p.Step()
		if err != nil {
			return vblank, err
		}
		vblank = vblank || started
	}
	return vblank, nil
}

// Step emulates a dot and reports whether vertical blank started.
// Reference:
//   https://www.nesdev.org/wiki/PPU_rendering
//   https://www.nesdev.org/wiki/File:Ntsc_timing.png
func (p *PPU) Step() (bool, error) {
	p.tick()

	visibleLine := p.scanline < height
	renderLine := visibleLine || p.scanline == preRenderLine

	if visibleLine && 1 <= p.cycle && p.cycle <= width {
		if err := p.renderLineDot(); err != nil {
			return false, err
		}
	}
	if renderLine && p.mask.renderingEnabled() {
		if err := p.renderingCycle(visibleLine); err != nil {
			return false, err
		}
	}

	if p.cycle == 1 {
		switch p.scanline {
		case vblankLine:
			p.status.set(statusVBlank, true)
			glog.V(3).Infof("PPU: vblank, frame=%d, nmi=%t", p.frame, p.ctrl.nmi())
			return true, nil
		case preRenderLine:
			p.status.set(statusVBlank, false)
			p.status.set(statusSpriteZeroHit, false)
			p.status.set(statusSpriteOverflow, false)
		}
	}
	return false, nil
}

// renderLineDot runs the background pipeline for the dot and writes a pixel.
func (p *PPU) renderLineDot() error {
	if p.mask.renderingEnabled() && p.cycle >= 2 {
		p.shiftBackground()
	}
	if p.mask.renderingEnabled() && p.cycle%8 == 1 {
		p.loadBackground()
		if err := p.fetchTile(); err != nil {
			return err
		}
	}
	return p.renderPixel()
}

// renderingCycle runs the address updates and the fetches outside the visible dots.
func (p *PPU) renderingCycle(visibleLine bool) error {
	switch {
	case p.cycle == 0:
	case p.cycle <= width:
		if !visibleLine {
			// The pre-render line fetches like a visible one without drawing.
			if p.cycle >= 2 {
				p.shiftBackground()
			}
			if p.cycle%8 == 1 {
				p.loadBackground()
				if err := p.fetchTile(); err != nil {
					return err
				}
			}
		}
		if p.cycle%8 == 0 {
			p.v.incrementX()
		}
		if p.cycle == width {
			p.v.incrementY()
		}
	case p.cycle == 257:
		p.shiftBackground()
		p.loadBackground()
		if err := p.fetchTile(); err != nil {
			return err
		}
		if err := p.evaluateSprites(); err != nil {
			return err
		}
	case p.cycle == 258:
		p.v.copyHorizontal(p.t)
	case 281 <= p.cycle && p.cycle <= 305:
		if !visibleLine {
			p.v.copyVertical(p.t)
		}
	case 321 <= p.cycle && p.cycle <= 337:
		if p.cycle >= 322 {
			p.shiftBackground()
		}
		if p.cycle == 321 || p.cycle == 329 {
			p.loadBackground()
			if err := p.fetchTile(); err != nil {
				return err
			}
		}
		if p.cycle == 328 || p.cycle == 336 {
			p.v.incrementX()
		}
	}
	return nil
}

// fetchTile fetches the nametable, attribute and pattern bytes of the tile at v.
func (p *PPU) fetchTile() error {
	tile, err := p.bus.read(p.v.tileAddress())
	if err != nil {
		return err
	}
	attribute, err := p.bus.read(p.v.attributeAddress())
	if err != nil {
		return err
	}
	address := p.ctrl.backgroundTable() + uint16(tile)*16 + p.v.fineY()
	low, err := p.bus.read(address)
	if err != nil {
		return err
	}
	high, err := p.bus.read(address + 8)
	if err != nil {
		return err
	}
	p.nextTile = tile
	p.nextAttribute = (attribute >> p.v.attributeShift()) & 0x03
	p.nextLow = low
	p.nextHigh = high
	return nil
}

// loadBackground puts the fetched tile into the low byte of the shifters.
func (p *PPU) loadBackground() {
	p.patternLow = p.patternLow&0xFF00 | uint16(p.nextLow)
	p.patternHigh = p.patternHigh&0xFF00 | uint16(p.nextHigh)
	p.attributeLow &= 0xFF00
	p.attributeHigh &= 0xFF00
	if p.nextAttribute&0x01 != 0 {
		p.attributeLow |= 0x00FF
	}
	if p.nextAttribute&0x02 != 0 {
		p.attributeHigh |= 0x00FF
	}
}

func (p *PPU) shiftBackground() {
	p.patternLow <<= 1
	p.patternHigh <<= 1
	p.attributeLow <<= 1
	p.attributeHigh <<= 1
}

// backgroundPixel returns the 4-bit palette index of the background, 0 is transparent.
func (p *PPU) backgroundPixel(x int) byte {
	if !p.mask.showBackground() || (x < 8 && !p.mask.showBackgroundLeft()) {
		return 0
	}
	bit := 15 - uint16(p.x)
	pixel := byte((p.patternHigh>>bit)&1)<<1 | byte((p.patternLow>>bit)&1)
	if pixel == 0 {
		return 0
	}
	attribute := byte((p.attributeHigh>>bit)&1)<<1 | byte((p.attributeLow>>bit)&1)
	return attribute<<2 | pixel
}

// spritePixel returns the secondary OAM slot and 5-bit palette index of the front most opaque sprite.
func (p *PPU) spritePixel(x int) (int, byte) {
	if !p.mask.showSprites() || (x < 8 && !p.mask.showSpritesLeft()) {
		return 0, 0
	}
	for i := 0; i < p.spriteCount; i++ {
		s := p.sprites[i]
		offset := x - int(s.x)
		if offset < 0 || 7 < offset {
			continue
		}
		shift := 7 - offset
		pixel := (s.high>>shift)&1<<1 | (s.low>>shift)&1
		if pixel == 0 {
			continue
		}
		return i, 0x10 | s.palette()<<2 | pixel
	}
	return 0, 0
}

// renderPixel composes the pixel for the current dot.
// Reference: https://www.nesdev.org/wiki/PPU_rendering#Preface
func (p *PPU) renderPixel() error {
	x := p.cycle - 1
	y := p.scanline
	var index byte
	if !p.mask.renderingEnabled() {
		// The backdrop, or the palette entry v points at when it's in palette space.
		if address := p.v.address(); address >= 0x3F00 {
			index = p.bus.readPalette(byte(address))
		} else {
			index = p.bus.readPalette(0)
		}
	} else {
		bg := p.backgroundPixel(x)
		slot, sp := p.spritePixel(x)
		var palette byte
		switch {
		case bg == 0 && sp == 0:
			palette = 0
		case bg == 0:
			palette = sp
		case sp == 0:
			palette = bg
		default:
			if slot == 0 && p.spriteZeroInLine {
				p.status.set(statusSpriteZeroHit, true)
			}
			if p.sprites[slot].behindBackground() {
				palette = bg
			} else {
				palette = sp
			}
		}
		index = p.bus.readPalette(palette)
	}
	if p.mask.grayscale() {
		index &= 0x30
	}
	p.picture.SetRGBA(x, y, systemColor(index))
	return nil
}

// evaluateSprites selects the sprites of the next line and fetches their patterns.
// Sprite data is delayed by one scanline, so the Y in OAM is the top line minus 1.
// Reference: https://www.nesdev.org/wiki/PPU_sprite_evaluation
func (p *PPU) evaluateSprites() error {
	p.spriteCount = 0
	p.spriteZeroInLine = false
	if p.scanline == preRenderLine {
		p.oamAddr = 0
		return nil
	}
	h := p.ctrl.spriteHeight()
	for i := 0; i < 64; i++ {
		entry := p.oam[i*spriteAttributes : (i+1)*spriteAttributes]
		row := p.scanline - int(entry[0])
		if row < 0 || h <= row {
			continue
		}
		if p.spriteCount == maxLineSprites {
			p.status.set(statusSpriteOverflow, true)
			break
		}
		s, err := p.fetchSprite(entry[1], entry[2], entry[3], row)
		if err != nil {
			return err
		}
		if i == 0 {
			p.spriteZeroInLine = true
		}
		p.sprites[p.spriteCount] = s
		p.spriteCount++
	}
	p.oamAddr = 0
	return nil
}

// fetchSprite reads the pattern row of a sprite.
func (p *PPU) fetchSprite(tile, attributes, x byte, row int) (sprite, error) {
	h := p.ctrl.spriteHeight()
	if attributes&0x80 != 0 { // vertical flip
		row = h - 1 - row
	}
	var address uint16
	if h == 8 {
		address = p.ctrl.spriteTable() + uint16(tile)*16 + uint16(row)
	} else {
		// 8x16 sprites take the table from bit 0 of the tile number.
		table := uint16(tile&0x01) * 0x1000
		tile &= 0xFE
		if row >= 8 {
			tile++
			row -= 8
		}
		address = table + uint16(tile)*16 + uint16(row)
	}
	low, err := p.bus.read(address)
	if err != nil {
		return sprite{}, err
	}
	high, err := p.bus.read(address + 8)
	if err != nil {
		return sprite{}, err
	}
	if attributes&0x40 != 0 { // horizontal flip
		low = reverseBits(low)
		high = reverseBits(high)
	}
	return sprite{x: x, attributes: attributes, low: low, high: high}, nil
}

func reverseBits(b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r = r<<1 | b&1
		b >>= 1
	}
	return r
}
