package nes

import (
	"errors"
	"testing"
)

func TestNewConsoleInvalidROM(t *testing.T) {
	if _, err := NewConsole([]byte("not a rom")); !errors.Is(err, ErrInvalidROM) {
		t.Errorf("got %v, want ErrInvalidROM", err)
	}
}

// newNMICounter builds a program that enables NMI and spins, the NMI handler increments $10.
func newNMICounter() []byte {
	// LDA #$80; STA $2000; JMP $8005
	b := newNROM([]byte{0xA9, 0x80, 0x8D, 0x00, 0x20, 0x4C, 0x05, 0x80})
	// INC $10; RTI
	copy(b[inesHeaderSizeBytes+testNMIAddress&0x3FFF:], []byte{0xE6, 0x10, 0x40})
	return b
}

func TestRunFrame(t *testing.T) {
	c, err := NewConsole(newNMICounter())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		frame, err := c.RunFrame()
		if err != nil {
			t.Fatalf("RunFrame() failed: %v", err)
		}
		if frame.Bounds().Dx() != width || frame.Bounds().Dy() != height {
			t.Fatalf("frame size: got=%v", frame.Bounds())
		}
	}
	if c.Frames() != 5 {
		t.Errorf("frames: got=%d, want=5", c.Frames())
	}
	// NMI is enabled in the middle of the first vertical blank and taken at once,
	// then once at the start of every following frame.
	if got := c.Peek(0x10); got != 4 {
		t.Errorf("NMI count: got=%d, want=4", got)
	}
}

func TestRunUntilStuck(t *testing.T) {
	// LDA #$01; STA $00; JMP $8004
	c := newTestConsole(t, []byte{0xA9, 0x01, 0x85, 0x00, 0x4C, 0x04, 0x80})
	if err := c.RunUntilStuck(100); err != nil {
		t.Fatalf("RunUntilStuck() failed: %v", err)
	}
	if c.CPUState().PC != 0x8004 {
		t.Errorf("pc: got=0x%04x, want=0x8004", c.CPUState().PC)
	}
	if c.Peek(0x00) != 0x01 {
		t.Errorf("$00: got=0x%02x, want=0x01", c.Peek(0x00))
	}

	// INX; JMP $8000 never repeats a PC twice in a row.
	c = newTestConsole(t, []byte{0xE8, 0x4C, 0x00, 0x80})
	if err := c.RunUntilStuck(100); err == nil {
		t.Errorf("RunUntilStuck() succeeded on a two instruction loop")
	}
}

func TestStepError(t *testing.T) {
	c := newTestConsole(t, []byte{0xEA, 0x02})
	if _, _, err := c.Step(); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Step(); !errors.Is(err, ErrUnimplementedOpcode) {
		t.Errorf("got %v, want ErrUnimplementedOpcode", err)
	}
	c = newTestConsole(t, []byte{0x02})
	if err := c.RunUntilStuck(10); !errors.Is(err, ErrUnimplementedOpcode) {
		t.Errorf("RunUntilStuck: got %v, want ErrUnimplementedOpcode", err)
	}
}

func TestConsoleReset(t *testing.T) {
	// LDX #$FF; TXS; PHA
	c := newTestConsole(t, []byte{0xA2, 0xFF, 0x9A, 0x48})
	for i := 0; i < 3; i++ {
		if _, _, err := c.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Reset(); err != nil {
		t.Fatal(err)
	}
	s := c.CPUState()
	if s.PC != testResetAddress || s.S != 0xFD || s.P != 0x24 {
		t.Errorf("got %s, want PC=0x8000 S=0xfd P=0x24", s)
	}
	if c.ppu.scanline != vblankLine-1 || c.ppu.cycle != cyclesPerLine-1 {
		t.Errorf("PPU: got scanline=%d cycle=%d", c.ppu.scanline, c.ppu.cycle)
	}
}

func TestSetButtons(t *testing.T) {
	// LDA #$01; STA $4016; LDA #$00; STA $4016; LDA $4016; LDA $4017
	c := newTestConsole(t, []byte{
		0xA9, 0x01, 0x8D, 0x16, 0x40,
		0xA9, 0x00, 0x8D, 0x16, 0x40,
		0xAD, 0x16, 0x40,
		0xAD, 0x17, 0x40,
	})
	c.SetButtons(0, [8]bool{ButtonA: true})
	c.SetButtons(1, [8]bool{ButtonA: true})
	run(t, c, 5)
	if c.cpu.a != 1 {
		t.Errorf("port 1: got=%d, want=1", c.cpu.a)
	}
	run(t, c, 1)
	if c.cpu.a != 1 {
		t.Errorf("port 2: got=%d, want=1", c.cpu.a)
	}
}
