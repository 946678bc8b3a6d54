package nes

import (
	"errors"
	"testing"
)

func newTestMapper(t *testing.T, mapper byte, prgBanks, chrBanks int, flags6 byte) Mapper {
	t.Helper()
	m, err := NewMapper(newTestCartridge(t, mapper, prgBanks, chrBanks, flags6))
	if err != nil {
		t.Fatalf("NewMapper() failed: %v", err)
	}
	return m
}

func readPRG(t *testing.T, m Mapper, address uint16) byte {
	t.Helper()
	data, err := m.ReadPRG(address)
	if err != nil {
		t.Fatalf("ReadPRG(0x%04x) failed: %v", address, err)
	}
	return data
}

func readCHR(t *testing.T, m Mapper, address uint16) byte {
	t.Helper()
	data, err := m.ReadCHR(address)
	if err != nil {
		t.Fatalf("ReadCHR(0x%04x) failed: %v", address, err)
	}
	return data
}

func TestMapper0PRG(t *testing.T) {
	tests := []struct {
		name  string
		banks int
		want  map[uint16]byte
	}{
		{"NROM-128", 1, map[uint16]byte{0x8000: 0, 0xC000: 0}},
		{"NROM-256", 2, map[uint16]byte{0x8000: 0, 0xC000: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t, 0, tt.banks, 1, 0)
			for address, want := range tt.want {
				if got := readPRG(t, m, address); got != want {
					t.Errorf("0x%04x: got=%d, want=%d", address, got, want)
				}
			}
		})
	}
}

func TestMapper0CHR(t *testing.T) {
	rom := newTestMapper(t, 0, 1, 1, 0)
	if err := rom.WriteCHR(0x0000, 0xFF); !errors.Is(err, ErrReadOnly) {
		t.Errorf("CHR ROM write: got %v, want ErrReadOnly", err)
	}
	if got := readCHR(t, rom, 0x1000); got != 1 {
		t.Errorf("CHR ROM $1000: got=%d, want=1", got)
	}
	ram := newTestMapper(t, 0, 1, 0, 0)
	if err := ram.WriteCHR(0x1234, 0xAB); err != nil {
		t.Fatalf("CHR RAM write failed: %v", err)
	}
	if got := readCHR(t, ram, 0x1234); got != 0xAB {
		t.Errorf("CHR RAM: got=0x%02x, want=0xab", got)
	}
}

// writeMMC1 loads value through the serial port, low bit first.
func writeMMC1(t *testing.T, m Mapper, address uint16, value byte) {
	t.Helper()
	for i := 0; i < 5; i++ {
		if err := m.WritePRG(address, value>>i&1); err != nil {
			t.Fatal(err)
		}
	}
}

func TestMMC1SerialPort(t *testing.T) {
	m := newTestMapper(t, 1, 8, 2, 0).(*mapper1)
	for i := 0; i < 4; i++ {
		m.WritePRG(0xE000, 1)
	}
	if m.prgBank != 0 {
		t.Fatalf("committed after 4 writes: prgBank=0x%02x", m.prgBank)
	}
	m.WritePRG(0xE000, 0)
	if m.prgBank != 0x0F {
		t.Errorf("prgBank: got=0x%02x, want=0x0f", m.prgBank)
	}
	if m.shift != mmc1ShiftReset {
		t.Errorf("shift: got=0x%02x, want=0x%02x", m.shift, mmc1ShiftReset)
	}
}

func TestMMC1Reset(t *testing.T) {
	m := newTestMapper(t, 1, 8, 2, 0).(*mapper1)
	writeMMC1(t, m, 0x8000, 0x00)
	m.WritePRG(0xE000, 1)
	m.WritePRG(0xE000, 1)
	m.WritePRG(0x8000, 0x80)
	if m.shift != mmc1ShiftReset {
		t.Errorf("shift: got=0x%02x, want=0x%02x", m.shift, mmc1ShiftReset)
	}
	if m.control.prgMode() != 3 {
		t.Errorf("PRG mode after reset: got=%d, want=3", m.control.prgMode())
	}
	writeMMC1(t, m, 0xE000, 0x02)
	if m.prgBank != 0x02 {
		t.Errorf("prgBank: got=0x%02x, want=0x02", m.prgBank)
	}
}

func TestMMC1PRGBanks(t *testing.T) {
	tests := []struct {
		name    string
		banks   int
		control byte
		prgBank byte
		want    map[uint16]byte
	}{
		{"power on", 8, 0x0F, 0x00, map[uint16]byte{0x8000: 0, 0xC000: 7}},
		{"fix last", 8, 0x0F, 0x03, map[uint16]byte{0x8000: 3, 0xC000: 7}},
		{"fix first", 8, 0x0B, 0x03, map[uint16]byte{0x8000: 0, 0xC000: 3}},
		{"32KB", 8, 0x03, 0x05, map[uint16]byte{0x8000: 4, 0xC000: 5}},
		{"32KB mode 1", 8, 0x07, 0x02, map[uint16]byte{0x8000: 2, 0xC000: 3}},
		{"modulo", 4, 0x0F, 0x06, map[uint16]byte{0x8000: 2, 0xC000: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMapper(t, 1, tt.banks, 1, 0)
			writeMMC1(t, m, 0x8000, tt.control)
			writeMMC1(t, m, 0xE000, tt.prgBank)
			for address, want := range tt.want {
				if got := readPRG(t, m, address); got != want {
					t.Errorf("0x%04x: got=%d, want=%d", address, got, want)
				}
			}
		})
	}
}

func TestMMC1CHRBanks(t *testing.T) {
	tests := []struct {
		name               string
		control            byte
		bank0, bank1       byte
		want0000, want1000 byte
	}{
		{"8KB", 0x0F, 0x03, 0x07, 2, 3},
		{"4KB", 0x1F, 0x03, 0x05, 3, 5},
		{"4KB modulo", 0x1F, 0x09, 0x0A, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 4 x 8KB is 8 4KB banks.
			m := newTestMapper(t, 1, 2, 4, 0)
			writeMMC1(t, m, 0x8000, tt.control)
			writeMMC1(t, m, 0xA000, tt.bank0)
			writeMMC1(t, m, 0xC000, tt.bank1)
			if got := readCHR(t, m, 0x0000); got != tt.want0000 {
				t.Errorf("$0000: got=%d, want=%d", got, tt.want0000)
			}
			if got := readCHR(t, m, 0x1000); got != tt.want1000 {
				t.Errorf("$1000: got=%d, want=%d", got, tt.want1000)
			}
		})
	}
}

func TestMMC1CHRRAM(t *testing.T) {
	m := newTestMapper(t, 1, 2, 0, 0)
	writeMMC1(t, m, 0x8000, 0x1F)
	writeMMC1(t, m, 0xC000, 0x01)
	if err := m.WriteCHR(0x1010, 0x66); err != nil {
		t.Fatal(err)
	}
	// Both windows point at the second 4KB bank now.
	writeMMC1(t, m, 0xA000, 0x01)
	if got := readCHR(t, m, 0x0010); got != 0x66 {
		t.Errorf("got=0x%02x, want=0x66", got)
	}
	rom := newTestMapper(t, 1, 2, 1, 0)
	if err := rom.WriteCHR(0, 0); !errors.Is(err, ErrReadOnly) {
		t.Errorf("CHR ROM write: got %v, want ErrReadOnly", err)
	}
}

func TestMMC1Mirroring(t *testing.T) {
	m := newTestMapper(t, 1, 2, 1, 0x01)
	if got := m.Mirroring(); got != MirrorVertical {
		t.Errorf("power on: got=%s, want=%s", got, MirrorVertical)
	}
	want := []MirrorMode{MirrorSingleLow, MirrorSingleHigh, MirrorVertical, MirrorHorizontal}
	for i, w := range want {
		writeMMC1(t, m, 0x9FFF, 0x0C|byte(i))
		if got := m.Mirroring(); got != w {
			t.Errorf("control=%d: got=%s, want=%s", i, got, w)
		}
	}

	// The PPU follows the mapper.
	bus := NewPPUBus(NewRAM(), m)
	writeMMC1(t, m, 0x8000, 0x0D)
	bus.write(0x2000, 0x11)
	if got, _ := bus.read(0x2C00); got != 0x11 {
		t.Errorf("single-screen high: got=0x%02x, want=0x11", got)
	}
	if got := bus.vram.read(0x400); got != 0x11 {
		t.Errorf("single-screen high stores into the second table: got=0x%02x", got)
	}
}

func TestMMC1PRGRAM(t *testing.T) {
	m := newTestMapper(t, 1, 2, 1, 0)
	m.WritePRG(0x6000, 0x42)
	if got := readPRG(t, m, 0x6000); got != 0x42 {
		t.Errorf("PRG RAM: got=0x%02x, want=0x42", got)
	}
	writeMMC1(t, m, 0xE000, 0x10)
	if got := readPRG(t, m, 0x6000); got != 0 {
		t.Errorf("disabled PRG RAM: got=0x%02x, want=0", got)
	}
	m.WritePRG(0x6000, 0x99)
	writeMMC1(t, m, 0xE000, 0x00)
	if got := readPRG(t, m, 0x6000); got != 0x42 {
		t.Errorf("write to disabled PRG RAM landed: got=0x%02x", got)
	}
}

func TestReadPRG16(t *testing.T) {
	m := newTestMapper(t, 0, 2, 1, 0)
	got, err := m.ReadPRG16(0xBFFF)
	if err != nil {
		t.Fatal(err)
	}
	// The last byte of bank 0 is 0, the first byte of bank 1 is 1.
	if got != 0x0100 {
		t.Errorf("got=0x%04x, want=0x0100", got)
	}
}
