package nes

import "testing"

// Vectors of the test programs, see newNROM.
const (
	testResetAddress = 0x8000
	testNMIAddress   = 0x9000
	testIRQAddress   = 0xA000
)

// newImage builds an iNES image, every PRG bank starts with its index and so does every 4KB of CHR.
func newImage(mapper byte, prgBanks, chrBanks int, flags6 byte) []byte {
	b := make([]byte, inesHeaderSizeBytes+prgBanks*prgROMSizeUnit+chrBanks*chrROMSizeUnit)
	copy(b, "NES\x1A")
	b[4] = byte(prgBanks)
	b[5] = byte(chrBanks)
	b[6] = flags6 | mapper<<4
	b[7] = mapper & 0xF0
	for i := 0; i < prgBanks; i++ {
		b[inesHeaderSizeBytes+i*prgROMSizeUnit] = byte(i)
	}
	chr := inesHeaderSizeBytes + prgBanks*prgROMSizeUnit
	for i := 0; i < chrBanks*2; i++ {
		b[chr+i*0x1000] = byte(i)
	}
	return b
}

// newNROM builds a 16KB NROM image with CHR RAM and program at $8000.
// NMI points at an RTI at $9000, IRQ/BRK at an RTI at $A000.
func newNROM(program []byte) []byte {
	b := newImage(0, 1, 0, 0)
	prg := b[inesHeaderSizeBytes : inesHeaderSizeBytes+prgROMSizeUnit]
	copy(prg, program)
	prg[testNMIAddress&0x3FFF] = 0x40
	prg[testIRQAddress&0x3FFF] = 0x40
	putVector(prg, nmiVector, testNMIAddress)
	putVector(prg, resetVector, testResetAddress)
	putVector(prg, irqVector, testIRQAddress)
	return b
}

func putVector(prg []byte, vector, address uint16) {
	prg[vector&0x3FFF] = byte(address)
	prg[(vector+1)&0x3FFF] = byte(address >> 8)
}

func newTestConsole(t *testing.T, program []byte) *Console {
	t.Helper()
	c, err := NewConsole(newNROM(program))
	if err != nil {
		t.Fatalf("NewConsole() failed: %v", err)
	}
	return c
}

func newTestCartridge(t *testing.T, mapper byte, prgBanks, chrBanks int, flags6 byte) *Cartridge {
	t.Helper()
	c, err := LoadCartridge(newImage(mapper, prgBanks, chrBanks, flags6))
	if err != nil {
		t.Fatalf("LoadCartridge() failed: %v", err)
	}
	return c
}
