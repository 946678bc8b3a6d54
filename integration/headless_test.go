package integration

import (
	"image/color"
	"testing"

	"github.com/jyane/nescore/nes"
)

// adcCheck stores 0 to $6000 when $10 + operand is $30, 1 otherwise, then spins.
func adcCheck(operand byte) []byte {
	return []byte{
		0x18,             // $8000 CLC
		0xA9, 0x10,       // $8001 LDA #$10
		0x69, operand,    // $8003 ADC #operand
		0xC9, 0x30,       // $8005 CMP #$30
		0xD0, 0x08,       // $8007 BNE $8011
		0xA9, 0x00,       // $8009 LDA #$00
		0x8D, 0x00, 0x60, // $800B STA $6000
		0x4C, 0x0E, 0x80, // $800E JMP $800E
		0xA9, 0x01,       // $8011 LDA #$01
		0x8D, 0x00, 0x60, // $8013 STA $6000
		0x4C, 0x16, 0x80, // $8016 JMP $8016
	}
}

func TestHeadlessResult(t *testing.T) {
	tests := []struct {
		name    string
		operand byte
		result  byte
		pc      uint16
	}{
		{"passed", 0x20, 0x00, 0x800E},
		{"failed", 0x21, 0x01, 0x8016},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			console, err := nes.NewConsole(newImage(adcCheck(tt.operand)))
			if err != nil {
				t.Fatal(err)
			}
			if err := console.RunUntilStuck(1000); err != nil {
				t.Fatalf("RunUntilStuck() failed: %v", err)
			}
			if got := console.Peek(0x6000); got != tt.result {
				t.Errorf("$6000: got=0x%02x, want=0x%02x", got, tt.result)
			}
			if got := console.CPUState().PC; got != tt.pc {
				t.Errorf("pc: got=0x%04x, want=0x%04x", got, tt.pc)
			}
		})
	}
}

func TestHeadlessFrames(t *testing.T) {
	// Palette 0 is set to $21 during vertical blank, then the program spins with rendering off.
	program := []byte{
		0xAD, 0x02, 0x20, // $8000 LDA $2002
		0xA9, 0x3F,       // $8003 LDA #$3F
		0x8D, 0x06, 0x20, // $8005 STA $2006
		0xA9, 0x00,       // $8008 LDA #$00
		0x8D, 0x06, 0x20, // $800A STA $2006
		0xA9, 0x21,       // $800D LDA #$21
		0x8D, 0x07, 0x20, // $800F STA $2007
		0xA9, 0x20,       // $8012 LDA #$20
		0x8D, 0x06, 0x20, // $8014 STA $2006
		0xA9, 0x00,       // $8017 LDA #$00
		0x8D, 0x06, 0x20, // $8019 STA $2006
		0x4C, 0x1C, 0x80, // $801C JMP $801C
	}
	console, err := nes.NewConsole(newImage(program))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if _, err := console.RunFrame(); err != nil {
			t.Fatal(err)
		}
	}
	if console.Frames() != 3 {
		t.Errorf("frames: got=%d, want=3", console.Frames())
	}
	want := color.RGBA{0x6D, 0xB6, 0xFF, 0xFF}
	for _, p := range [][2]int{{0, 0}, {128, 120}, {255, 239}} {
		if got := console.Frame().RGBAAt(p[0], p[1]); got != want {
			t.Errorf("(%d, %d): got=%v, want=%v", p[0], p[1], got, want)
		}
	}
}
