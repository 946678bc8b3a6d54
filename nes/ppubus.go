package nes

// PPUBus decodes the 14-bit PPU address space.
// Address        Size	  Description
// -------------------------------------
// $0000-$0FFF	  $1000	  Pattern table 0
// $1000-$1FFF	  $1000	  Pattern table 1
// $2000-$23FF	  $0400	  Nametable 0
// $2400-$27FF	  $0400	  Nametable 1
// $2800-$2BFF	  $0400	  Nametable 2
// $2C00-$2FFF	  $0400	  Nametable 3
// $3000-$3EFF	  $0F00	  Mirrors of $2000-$2EFF
// $3F00-$3F1F	  $0020	  Palette RAM indexes
// $3F20-$3FFF	  $00E0	  Mirrors of $3F00-$3F1F
// Reference: https://www.nesdev.org/wiki/PPU_memory_map
type PPUBus struct {
	vram       *RAM // two physical nametables
	mapper     Mapper
	paletteRAM [32]byte
}

// NewPPUBus creates a new Bus for PPU
func NewPPUBus(vram *RAM, mapper Mapper) *PPUBus {
	return &PPUBus{vram: vram, mapper: mapper}
}

// nametableAddress maps a logical nametable address onto the 2KB VRAM.
func (b *PPUBus) nametableAddress(address uint16) uint16 {
	address = (address - 0x2000) & 0x0FFF
	table := address / 0x0400
	offset := address & 0x03FF
	switch b.mapper.Mirroring() {
	case MirrorHorizontal:
		table /= 2
	case MirrorVertical:
		table %= 2
	case MirrorSingleLow:
		table = 0
	case MirrorSingleHigh:
		table = 1
	}
	return table*0x0400 + offset
}

// paletteAddress maps $3F00-$3FFF to the palette RAM index.
// $3F10/$3F14/$3F18/$3F1C are mirrors of $3F00/$3F04/$3F08/$3F0C.
func paletteAddress(address uint16) uint16 {
	i := address & 0x1F
	if i >= 0x10 && i&0x03 == 0 {
		i -= 0x10
	}
	return i
}

// read reads data.
func (b *PPUBus) read(address uint16) (byte, error) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		return b.mapper.ReadCHR(address)
	case address < 0x3F00:
		return b.vram.read(b.nametableAddress(address)), nil
	default:
		return b.paletteRAM[paletteAddress(address)], nil
	}
}

// write writes data.
func (b *PPUBus) write(address uint16, data byte) error {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		return b.mapper.WriteCHR(address, data)
	case address < 0x3F00:
		b.vram.write(b.nametableAddress(address), data)
	default:
		b.paletteRAM[paletteAddress(address)] = data
	}
	return nil
}

// readPalette reads a palette entry, index is 0-31.
func (b *PPUBus) readPalette(index byte) byte {
	return b.paletteRAM[paletteAddress(uint16(index))]
}
