package nes

import "fmt"

// Mapper is the cartridge-side address decoder.
// PRG addresses are CPU addresses in 0x4020-0xFFFF, CHR addresses are PPU addresses in 0x0000-0x1FFF.
type Mapper interface {
	ReadPRG(address uint16) (byte, error)
	ReadPRG16(address uint16) (uint16, error)
	WritePRG(address uint16, data byte) error
	ReadCHR(address uint16) (byte, error)
	WriteCHR(address uint16, data byte) error
	Mirroring() MirrorMode
}

// NewMapper creates the mapper the cartridge header asks for.
func NewMapper(c *Cartridge) (Mapper, error) {
	switch c.MapperNumber {
	case 0:
		return newMapper0(c), nil
	case 1:
		return newMapper1(c), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnsupportedMapper, c.MapperNumber)
}

// readPRG16 reads a little endian word through ReadPRG.
func readPRG16(m Mapper, address uint16) (uint16, error) {
	l, err := m.ReadPRG(address)
	if err != nil {
		return 0, err
	}
	h, err := m.ReadPRG(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}
