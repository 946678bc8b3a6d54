package nes

import (
	"fmt"

	"github.com/golang/glog"
)

// Mapper1: https://www.nesdev.org/wiki/MMC1
//
// The board is configured through a 5-bit serial port at $8000-$FFFF.
// Every write shifts bit 0 of the data in; the fifth write commits the value
// to the register selected by bits 13-14 of the address.
type mapper1 struct {
	prgROM   []byte
	chr      []byte
	chrRAM   bool
	prgRAM   [0x2000]byte
	prgBanks int // in 16KB units
	chrBanks int // in 4KB units

	shift    byte // bit 4 starts as a sentinel, it reaches bit 0 when 4 bits were loaded.
	control  mmc1Control
	chrBank0 byte
	chrBank1 byte
	prgBank  byte
}

const mmc1ShiftReset byte = 0x10

// mmc1Control is the $8000-$9FFF register.
// 4bit0
// -----
// CPPMM
// |||||
// |||++- Mirroring (0: one-screen, lower bank; 1: one-screen, upper bank; 2: vertical; 3: horizontal)
// |++--- PRG ROM bank mode
// +----- CHR ROM bank mode (0: switch 8 KB at a time; 1: switch two separate 4 KB banks)
type mmc1Control byte

func (c mmc1Control) mirroring() MirrorMode {
	switch c & 0x03 {
	case 0:
		return MirrorSingleLow
	case 1:
		return MirrorSingleHigh
	case 2:
		return MirrorVertical
	}
	return MirrorHorizontal
}

// prgMode returns 0 or 1 for 32KB switching, 2 for a fixed first bank, 3 for a fixed last bank.
func (c mmc1Control) prgMode() byte {
	return byte(c>>2) & 0x03
}

func (c mmc1Control) chr4K() bool {
	return c&0x10 != 0
}

func newMapper1(c *Cartridge) *mapper1 {
	m := &mapper1{
		prgROM:   c.prgROM,
		chr:      c.chr,
		chrRAM:   c.hasCHRRAM(),
		prgBanks: len(c.prgROM) / prgROMSizeUnit,
		chrBanks: len(c.chr) / 0x1000,
		shift:    mmc1ShiftReset,
		// Power-on state fixes the last bank at $C000, mirroring starts as the header says.
		control: 0x0C | 0x03,
	}
	if c.mirroring() == MirrorVertical {
		m.control = 0x0C | 0x02
	}
	return m
}

func (m *mapper1) prgRAMEnabled() bool {
	return m.prgBank&0x10 == 0
}

// prgOffset maps $8000-$FFFF into prgROM.
func (m *mapper1) prgOffset(address uint16) int {
	bank := int(m.prgBank & 0x0F)
	var window int
	switch m.control.prgMode() {
	case 0, 1:
		// 32KB mode ignores the low bit of the bank number.
		window = bank&^1 + int(address-0x8000)/prgROMSizeUnit
	case 2:
		if address < 0xC000 {
			window = 0
		} else {
			window = bank
		}
	case 3:
		if address < 0xC000 {
			window = bank
		} else {
			window = m.prgBanks - 1
		}
	}
	return (window%m.prgBanks)*prgROMSizeUnit + int(address&0x3FFF)
}

// chrOffset maps $0000-$1FFF into chr.
func (m *mapper1) chrOffset(address uint16) int {
	address &= 0x1FFF
	var bank int
	if m.control.chr4K() {
		if address < 0x1000 {
			bank = int(m.chrBank0)
		} else {
			bank = int(m.chrBank1)
		}
	} else {
		bank = int(m.chrBank0&^1) + int(address/0x1000)
	}
	return (bank%m.chrBanks)*0x1000 + int(address&0x0FFF)
}

func (m *mapper1) ReadPRG(address uint16) (byte, error) {
	switch {
	case 0x8000 <= address:
		return m.prgROM[m.prgOffset(address)], nil
	case 0x6000 <= address:
		if !m.prgRAMEnabled() {
			return 0, nil
		}
		return m.prgRAM[address-0x6000], nil
	}
	return 0, nil
}

func (m *mapper1) ReadPRG16(address uint16) (uint16, error) {
	return readPRG16(m, address)
}

func (m *mapper1) WritePRG(address uint16, data byte) error {
	switch {
	case 0x8000 <= address:
		m.writeSerial(address, data)
	case 0x6000 <= address:
		if m.prgRAMEnabled() {
			m.prgRAM[address-0x6000] = data
		}
	}
	return nil
}

// writeSerial loads a bit into the shift register.
func (m *mapper1) writeSerial(address uint16, data byte) {
	if data&0x80 != 0 {
		m.shift = mmc1ShiftReset
		m.control |= 0x0C
		return
	}
	full := m.shift&1 == 1
	m.shift = m.shift>>1 | (data&1)<<4
	if !full {
		return
	}
	value := m.shift & 0x1F
	m.shift = mmc1ShiftReset
	switch {
	case address < 0xA000:
		m.control = mmc1Control(value)
	case address < 0xC000:
		m.chrBank0 = value
	case address < 0xE000:
		m.chrBank1 = value
	default:
		m.prgBank = value
	}
	glog.V(2).Infof("MMC1 commit: address=0x%04x, value=0x%02x, control=0x%02x, chr0=%d, chr1=%d, prg=0x%02x",
		address, value, byte(m.control), m.chrBank0, m.chrBank1, m.prgBank)
}

func (m *mapper1) ReadCHR(address uint16) (byte, error) {
	return m.chr[m.chrOffset(address)], nil
}

func (m *mapper1) WriteCHR(address uint16, data byte) error {
	if !m.chrRAM {
		return fmt.Errorf("%w: pattern table address=0x%04x, data=0x%02x", ErrReadOnly, address, data)
	}
	m.chr[m.chrOffset(address)] = data
	return nil
}

func (m *mapper1) Mirroring() MirrorMode {
	return m.control.mirroring()
}
