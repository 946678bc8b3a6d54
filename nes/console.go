package nes

import (
	"fmt"
	"image"
)

// Console owns every component of the machine, the components only keep plain references to each other.
type Console struct {
	cartridge   *Cartridge
	mapper      Mapper
	cpu         *CPU
	ppu         *PPU
	apu         *APU
	wram        *RAM
	vram        *RAM
	controllers [2]*Controller
	input       *InputBus

	frames uint64
}

// NewConsole creates a console with the iNES image inserted, CPU starts from the reset vector.
func NewConsole(rom []byte) (*Console, error) {
	cartridge, err := LoadCartridge(rom)
	if err != nil {
		return nil, err
	}
	mapper, err := NewMapper(cartridge)
	if err != nil {
		return nil, err
	}
	c := &Console{
		cartridge:   cartridge,
		mapper:      mapper,
		apu:         NewAPU(),
		wram:        NewRAM(),
		vram:        NewRAM(),
		controllers: [2]*Controller{NewController(), NewController()},
	}
	c.input = NewInputBus(c.controllers[0], c.controllers[1])
	c.ppu = NewPPU(NewPPUBus(c.vram, mapper))
	cpu, err := NewCPU(NewCPUBus(c.wram, c.ppu, c.apu, mapper, c.input))
	if err != nil {
		return nil, fmt.Errorf("failed to reset CPU: %w", err)
	}
	c.cpu = cpu
	return c, nil
}

// Reset presses the reset button.
func (c *Console) Reset() error {
	c.ppu.Reset()
	return c.cpu.Reset()
}

// step runs an instruction and the PPU dots that happen meanwhile.
func (c *Console) step() (cycles int, stuck, vblank bool, err error) {
	cycles, stuck, err = c.cpu.Step()
	if err != nil {
		return cycles, stuck, false, err
	}
	// PPU's clock is 3x faster than CPU's
	vblank, err = c.ppu.Advance(cycles * 3)
	if err != nil {
		return cycles, stuck, vblank, err
	}
	if vblank {
		c.frames++
	}
	return cycles, stuck, vblank, nil
}

// Step runs one instruction, it reports the CPU cycles spent and whether the program looks halted.
func (c *Console) Step() (int, bool, error) {
	cycles, stuck, _, err := c.step()
	return cycles, stuck, err
}

// RunFrame runs until vertical blank starts and returns the picture.
func (c *Console) RunFrame() (*image.RGBA, error) {
	for {
		_, _, vblank, err := c.step()
		if err != nil {
			return nil, err
		}
		if vblank {
			return c.ppu.Frame(), nil
		}
	}
}

// RunUntilStuck runs until the program spins on a single instruction.
func (c *Console) RunUntilStuck(maxInstructions int) error {
	for i := 0; i < maxInstructions; i++ {
		_, stuck, _, err := c.step()
		if err != nil {
			return err
		}
		if stuck {
			return nil
		}
	}
	return fmt.Errorf("program did not halt after %d instructions, %s", maxInstructions, c.cpu.State())
}

// Frame returns the last picture.
func (c *Console) Frame() *image.RGBA {
	return c.ppu.Frame()
}

// Frames returns the number of frames rendered since power on.
func (c *Console) Frames() uint64 {
	return c.frames
}

// SetButtons sets the buttons of the controller at port 0 or 1.
func (c *Console) SetButtons(port int, buttons [8]bool) {
	c.controllers[port&1].Set(buttons)
}

// Peek reads RAM or cartridge memory without side effects.
func (c *Console) Peek(address uint16) byte {
	return c.cpu.bus.peek(address)
}

// CPUState returns the CPU registers.
func (c *Console) CPUState() State {
	return c.cpu.State()
}
