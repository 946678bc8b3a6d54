package nes

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/bradleyjkemp/memviz"
)

// DebugConsole a NES console for debugging, you can execute some commands through stdio.
// commands:
//   s [N|Ns|Nd|Nf]:
//     execute step(s), N instructions, N seconds of cycles, N instructions with traces or N frames.
//   p [c|p|ca|ct|wr|vr]:
//     print.
//   br 0xADDR:
//     set a break point.
//   g FILE:
//     write the component graph as graphviz dot.
//   r:
//     reset.
//   q:
//     quit.
type DebugConsole struct {
	*Console
	cycles      uint64
	breakpoints []uint16
	out         io.Writer
}

var stepArg = regexp.MustCompile("^([0-9]+)([sdf]?)$")

// NewDebugConsole wraps a console, messages are written to out.
func NewDebugConsole(console *Console, out io.Writer) *DebugConsole {
	return &DebugConsole{Console: console, out: out}
}

func (c *DebugConsole) step() (int, bool, error) {
	cycles, _, vblank, err := c.Console.step()
	c.cycles += uint64(cycles)
	return cycles, vblank, err
}

func (c *DebugConsole) printStack() {
	for i := 0; i < 256; i++ {
		address := uint16(0x100 | i)
		fmt.Fprintf(c.out, "0x%04x: 0x%02x, ", address, c.wram.read(address))
		if i%8 == 7 {
			fmt.Fprintln(c.out)
		}
	}
}

func (c *DebugConsole) basePrint() {
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "Executed cycles: %d\n", c.cycles)
	fmt.Fprintf(c.out, "Rendered frame: %d\n", c.frames)
	fmt.Fprintln(c.out, "Last: "+c.cpu.lastExecution)
	fmt.Fprintf(c.out, "CPU: %s\n", c.cpu.State())
	fmt.Fprintf(c.out, "PPU: cycle=%d, scanline=%d, v=0x%04x, t=0x%04x, ctrl=0x%02x, mask=0x%02x, status=0x%02x\n",
		c.ppu.cycle, c.ppu.scanline, uint16(c.ppu.v), uint16(c.ppu.t), byte(c.ppu.ctrl), byte(c.ppu.mask), byte(c.ppu.status))
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		fmt.Fprintf(c.out, "%+v\n", c.cpu.State())
	case "p", "ppu":
		fmt.Fprintf(c.out, "%+v\n", *c.ppu)
	case "ca", "cartridge":
		fmt.Fprintf(c.out, "mapper=%d, PRG=%d, CHR=%d, mirroring=%s\n",
			c.cartridge.MapperNumber, c.cartridge.PRGBanks, c.cartridge.CHRBanks, c.mapper.Mirroring())
	case "ct", "controller":
		fmt.Fprintf(c.out, "%+v %+v\n", *c.controllers[0], *c.controllers[1])
	case "st", "stack":
		c.printStack()
	case "wr", "wram":
		fmt.Fprintf(c.out, "%+v\n", c.wram.data)
	case "vr", "vram":
		fmt.Fprintf(c.out, "%+v\n", c.vram.data)
	default:
		fmt.Fprintf(c.out, "Unknown target %q\n", args[1])
	}
}

func (c *DebugConsole) checkBreak() bool {
	for _, b := range c.breakpoints {
		if b == c.cpu.pc {
			fmt.Fprintf(c.out, "Break at: 0x%04x\n", b)
			return true
		}
	}
	return false
}

// stepCommand runs instructions and returns the cycles spent.
func (c *DebugConsole) stepCommand(args []string) (int, error) {
	if len(args) < 2 {
		cycles, _, err := c.step()
		return cycles, err
	}
	m := stepArg.FindStringSubmatch(args[1])
	if m == nil {
		return 0, fmt.Errorf("invalid step count %q", args[1])
	}
	num, _ := strconv.Atoi(m[1])
	cycles := 0
	switch m[2] {
	case "s":
		// s means seconds but this doesn't execute 1 sec, this executes CPUFrequency * num
		for cycles < CPUFrequency*num {
			v, _, err := c.step()
			cycles += v
			if err != nil {
				return cycles, err
			}
			if c.checkBreak() {
				break
			}
		}
	case "f":
		for frames := 0; frames < num; {
			v, vblank, err := c.step()
			cycles += v
			if err != nil {
				return cycles, err
			}
			if vblank {
				frames++
			}
			if c.checkBreak() {
				break
			}
		}
	default:
		for i := 0; i < num; i++ {
			v, _, err := c.step()
			cycles += v
			if m[2] == "d" {
				c.basePrint()
			}
			if err != nil {
				return cycles, err
			}
			if c.checkBreak() {
				break
			}
		}
	}
	return cycles, nil
}

func (c *DebugConsole) breakPointCommand(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("br needs an address")
	}
	address, err := strconv.ParseUint(strings.TrimPrefix(args[1], "0x"), 16, 16)
	if err != nil {
		return fmt.Errorf("invalid address %q: %w", args[1], err)
	}
	c.breakpoints = append(c.breakpoints, uint16(address))
	return nil
}

// graphCommand dumps the object graph of the console.
func (c *DebugConsole) graphCommand(args []string) error {
	if len(args) < 2 {
		memviz.Map(c.out, c.Console)
		return nil
	}
	f, err := os.Create(args[1])
	if err != nil {
		return err
	}
	defer f.Close()
	memviz.Map(f, c.Console)
	fmt.Fprintf(c.out, "Wrote %s\n", args[1])
	return nil
}

// Command executes a command line, it returns false after quit.
func (c *DebugConsole) Command(line string) (bool, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return true, nil
	}
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "s", "step":
		cycles, err := c.stepCommand(args)
		c.basePrint() // Print data before it die.
		if err != nil {
			return true, err
		}
		fmt.Fprintf(c.out, "Executed %d CPU cycles, %d PPU cycles.\n", cycles, 3*cycles)
	case "br", "breakpoint":
		return true, c.breakPointCommand(args)
	case "g", "graph":
		return true, c.graphCommand(args)
	case "r", "reset":
		c.cycles = 0
		return true, c.Reset()
	case "q", "quit":
		fmt.Fprintln(c.out, "Quitting.")
		return false, nil
	default:
		return true, fmt.Errorf("unknown command %q", line)
	}
	return true, nil
}

// Run reads commands until quit or EOF.
func (c *DebugConsole) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(c.out, "Debugger mode, 'q' to quit \n>> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		cont, err := c.Command(scanner.Text())
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
		if !cont {
			return nil
		}
	}
}
