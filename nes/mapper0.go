package nes

import (
	"fmt"

	"github.com/golang/glog"
)

// Mapper0: https://www.nesdev.org/wiki/NROM
type mapper0 struct {
	prgROM    []byte
	chr       []byte
	chrRAM    bool
	prgRAM    [0x2000]byte
	mirroring MirrorMode
}

func newMapper0(c *Cartridge) *mapper0 {
	return &mapper0{
		prgROM:    c.prgROM,
		chr:       c.chr,
		chrRAM:    c.hasCHRRAM(),
		mirroring: c.mirroring(),
	}
}

func (m *mapper0) ReadPRG(address uint16) (byte, error) {
	switch {
	case 0x8000 <= address:
		// CPU $C000-$FFFF: Last 16 KB of ROM (NROM-256) or mirror of $8000-$BFFF (NROM-128).
		return m.prgROM[int(address-0x8000)%len(m.prgROM)], nil
	case 0x6000 <= address:
		return m.prgRAM[address-0x6000], nil
	}
	// Nothing is connected at $4020-$5FFF.
	return 0, nil
}

func (m *mapper0) ReadPRG16(address uint16) (uint16, error) {
	return readPRG16(m, address)
}

func (m *mapper0) WritePRG(address uint16, data byte) error {
	switch {
	case 0x8000 <= address:
		glog.V(2).Infof("Ignored write to NROM PRG ROM: address=0x%04x, data=0x%02x", address, data)
	case 0x6000 <= address:
		m.prgRAM[address-0x6000] = data
	}
	return nil
}

func (m *mapper0) ReadCHR(address uint16) (byte, error) {
	return m.chr[address&0x1FFF], nil
}

func (m *mapper0) WriteCHR(address uint16, data byte) error {
	if !m.chrRAM {
		return fmt.Errorf("%w: pattern table address=0x%04x, data=0x%02x", ErrReadOnly, address, data)
	}
	m.chr[address&0x1FFF] = data
	return nil
}

func (m *mapper0) Mirroring() MirrorMode {
	return m.mirroring
}
