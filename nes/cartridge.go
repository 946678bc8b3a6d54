package nes

import (
	"fmt"
	"os"

	"github.com/golang/glog"
)

const (
	chrROMSizeUnit      int  = 0x2000 // 8KB
	prgROMSizeUnit      int  = 0x4000 // 16KB
	inesHeaderSizeBytes int  = 16     // The valid INES header has 16 bytes
	msDOSEOF            byte = 0x1A
)

// MirrorMode selects how the four logical nametables map onto the two physical ones.
// Reference: https://www.nesdev.org/wiki/Mirroring#Nametable_Mirroring
type MirrorMode int

const (
	MirrorHorizontal MirrorMode = iota
	MirrorVertical
	MirrorSingleLow
	MirrorSingleHigh
)

func (m MirrorMode) String() string {
	switch m {
	case MirrorHorizontal:
		return "horizontal"
	case MirrorVertical:
		return "vertical"
	case MirrorSingleLow:
		return "single-screen (low)"
	case MirrorSingleHigh:
		return "single-screen (high)"
	}
	return fmt.Sprintf("MirrorMode(%d)", int(m))
}

// Cartridge is a parsed iNES image.
// https://www.nesdev.org/wiki/INES
type Cartridge struct {
	PRGBanks     int // 16KB units
	CHRBanks     int // 8KB units, 0 means the board has CHR RAM
	MapperNumber byte

	prgROM []byte
	chr    []byte
	flags6 byte // https://www.nesdev.org/wiki/INES#Flags_6
	flags7 byte // https://www.nesdev.org/wiki/INES#Flags_7
}

// isValid checks whether the data starts with the INES magic.
func isValid(data []byte) bool {
	return len(data) >= inesHeaderSizeBytes &&
		data[0] == byte('N') &&
		data[1] == byte('E') &&
		data[2] == byte('S') &&
		data[3] == msDOSEOF
}

// LoadCartridge parses an iNES image.
func LoadCartridge(data []byte) (*Cartridge, error) {
	if !isValid(data) {
		return nil, fmt.Errorf("%w: missing NES\\x1A header", ErrInvalidROM)
	}
	c := &Cartridge{
		PRGBanks: int(data[4]),
		CHRBanks: int(data[5]),
		flags6:   data[6],
		flags7:   data[7],
	}
	c.MapperNumber = c.flags7&0xF0 | c.flags6>>4
	if c.flags6&0x04 != 0 {
		return nil, fmt.Errorf("%w: trainer is not supported", ErrInvalidROM)
	}
	if c.flags7&0x02 != 0 {
		return nil, fmt.Errorf("%w: PlayChoice-10 images are not supported", ErrInvalidROM)
	}
	if c.PRGBanks == 0 {
		return nil, fmt.Errorf("%w: no PRG ROM", ErrInvalidROM)
	}
	prgEnd := inesHeaderSizeBytes + c.PRGBanks*prgROMSizeUnit
	chrEnd := prgEnd + c.CHRBanks*chrROMSizeUnit
	if len(data) < chrEnd {
		return nil, fmt.Errorf("%w: truncated image, size=%d, want at least %d", ErrInvalidROM, len(data), chrEnd)
	}
	c.prgROM = data[inesHeaderSizeBytes:prgEnd]
	if c.CHRBanks == 0 {
		c.chr = make([]byte, chrROMSizeUnit)
	} else {
		c.chr = data[prgEnd:chrEnd]
	}
	glog.Infof("Loaded cartridge: mapper=%d, PRG=%dx16KB, CHR=%dx8KB, mirroring=%s",
		c.MapperNumber, c.PRGBanks, c.CHRBanks, c.mirroring())
	return c, nil
}

// LoadCartridgeFile reads and parses an iNES file.
func LoadCartridgeFile(path string) (*Cartridge, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadCartridge(b)
}

// hasCHRRAM reports whether graphics memory is writable.
func (c *Cartridge) hasCHRRAM() bool {
	return c.CHRBanks == 0
}

// mirroring is the header-declared nametable arrangement.
func (c *Cartridge) mirroring() MirrorMode {
	if c.flags6&1 == 1 {
		return MirrorVertical
	}
	return MirrorHorizontal
}
