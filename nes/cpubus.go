package nes

// CPUBus decodes the CPU address space.
// CPU memory map
// 0x0000 - 0x07FF	WRAM
// 0x0800 - 0x1FFF	WRAM Mirror
// 0x2000 - 0x2007	PPU Registers
// 0x2008 - 0x3FFF	PPU Registers Mirror
// 0x4000 - 0x4017	APU and I/O Registers
// 0x4018 - 0x401F	APU test registers
// 0x4020 - 0xFFFF	Cartridge (PRG RAM at 0x6000, PRG ROM at 0x8000)
// Reference: https://www.nesdev.org/wiki/CPU_memory_map
//
// The bus doesn't own the components it talks to, Console does.
type CPUBus struct {
	wram   *RAM
	ppu    *PPU
	apu    *APU
	mapper Mapper
	input  *InputBus
	cpu    *CPU // for the DMA alignment cycle, set by NewCPU.
}

const (
	oamDMACycles = 513
	oamDMA       = 0x4014
	joypad1      = 0x4016
	joypad2      = 0x4017
)

// NewCPUBus creates a new Bus for CPU.
func NewCPUBus(wram *RAM, ppu *PPU, apu *APU, mapper Mapper, input *InputBus) *CPUBus {
	return &CPUBus{wram: wram, ppu: ppu, apu: apu, mapper: mapper, input: input}
}

// read reads a byte.
func (b *CPUBus) read(address uint16) (byte, error) {
	switch {
	case address < 0x2000:
		return b.wram.read(address), nil
	case address < 0x4000:
		return b.ppu.readRegister(address % 8)
	case address == joypad1:
		return b.input.read(0), nil
	case address == joypad2:
		return b.input.read(1), nil
	case address < 0x4020:
		return b.apu.read(address), nil
	default:
		return b.mapper.ReadPRG(address)
	}
}

// read16 reads 2 bytes, little endian.
func (b *CPUBus) read16(address uint16) (uint16, error) {
	if address >= 0x4020 && address != 0xFFFF {
		return b.mapper.ReadPRG16(address)
	}
	l, err := b.read(address)
	if err != nil {
		return 0, err
	}
	h, err := b.read(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// read16Wrap reads 2 bytes without carrying into the high byte of the address,
// 6502 fetches JMP ($xxFF) and zero page pointers this way.
func (b *CPUBus) read16Wrap(address uint16) (uint16, error) {
	l, err := b.read(address)
	if err != nil {
		return 0, err
	}
	h, err := b.read(address&0xFF00 | uint16(byte(address)+1))
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// write writes a byte and returns the number of cycles CPU is suspended for.
func (b *CPUBus) write(address uint16, data byte) (int, error) {
	switch {
	case address < 0x2000:
		b.wram.write(address, data)
	case address < 0x4000:
		return 0, b.ppu.writeRegister(address%8, data)
	case address == oamDMA:
		return b.writeOAMDMA(data)
	case address == joypad1:
		b.apu.write(address, data)
		b.input.write(data)
	case address < 0x4020:
		b.apu.write(address, data)
	default:
		return 0, b.mapper.WritePRG(address, data)
	}
	return 0, nil
}

// writeOAMDMA copies page $XX00-$XXFF into OAM.
// Reference: https://www.nesdev.org/wiki/PPU_registers#OAMDMA
func (b *CPUBus) writeOAMDMA(page byte) (int, error) {
	var data [256]byte
	base := uint16(page) << 8
	for i := range data {
		d, err := b.read(base + uint16(i))
		if err != nil {
			return 0, err
		}
		data[i] = d
	}
	b.ppu.writeOAMDMA(&data)
	cycles := oamDMACycles
	if b.cpu != nil && b.cpu.cycles%2 == 1 {
		cycles++
	}
	return cycles, nil
}

// nmiLine reads the PPU /NMI output.
func (b *CPUBus) nmiLine() bool {
	return b.ppu.nmiLine()
}

// peek reads memory without side effects, registers read as 0.
func (b *CPUBus) peek(address uint16) byte {
	switch {
	case address < 0x2000:
		return b.wram.read(address)
	case address < 0x4020:
		return 0
	}
	data, err := b.mapper.ReadPRG(address)
	if err != nil {
		return 0
	}
	return data
}
