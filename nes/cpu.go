package nes

import (
	"fmt"

	"github.com/golang/glog"
)

// CPU emulates NES CPU - is custom 6502 made by RICOH.
// References:
//   https://en.wikipedia.org/wiki/MOS_Technology_6502
//   http://www.6502.org/tutorials/6502opcodes.html
//   https://www.nesdev.org/6502_cpu.txt
//   http://hp.vector.co.jp/authors/VA042397/nes/6502.html (In Japanese)

const CPUFrequency = 1789773

const (
	interruptCycles = 7
	nmiVector       = 0xFFFA
	resetVector     = 0xFFFC
	irqVector       = 0xFFFE
)

type addressingMode int

const (
	implied addressingMode = iota
	accumulator
	immediate
	zeropage
	zeropageX
	zeropageY
	relative
	absolute
	absoluteX
	absoluteY
	indirect
	indirectX
	indirectY
)

type operandKind int

const (
	noOperand operandKind = iota
	addressOperand
	valueOperand
)

func (k operandKind) String() string {
	switch k {
	case noOperand:
		return "none"
	case addressOperand:
		return "address"
	case valueOperand:
		return "value"
	}
	return fmt.Sprintf("operandKind(%d)", int(k))
}

// operand is what an addressing mode resolves to.
// Implied and accumulator instructions have none, immediate ones carry the value
// and everything else points at memory.
type operand struct {
	kind    operandKind
	address uint16
	value   byte
}

func (o operand) String() string {
	switch o.kind {
	case addressOperand:
		return fmt.Sprintf("$%04X", o.address)
	case valueOperand:
		return fmt.Sprintf("#$%02X", o.value)
	}
	return "-"
}

type status struct {
	c bool // carry
	z bool // zero
	i bool // IRQ
	d bool // decimal - no effect on NES
	b bool // break
	r bool // reserved - always 1
	v bool // overflow
	n bool // negative
}

// encode encodes the status to a byte.
func (s *status) encode() byte {
	var res byte
	for i, f := range []bool{s.c, s.z, s.i, s.d, s.b, s.r, s.v, s.n} {
		if f {
			res |= 1 << i
		}
	}
	return res
}

// decodeFrom decodes a byte to the status.
func (s *status) decodeFrom(data byte) {
	s.c = (data>>0)&1 == 1
	s.z = (data>>1)&1 == 1
	s.i = (data>>2)&1 == 1
	s.d = (data>>3)&1 == 1
	s.b = (data>>4)&1 == 1
	s.r = (data>>5)&1 == 1
	s.v = (data>>6)&1 == 1
	s.n = (data>>7)&1 == 1
}

type CPU struct {
	p             *status // Processor status flag bits
	a             byte    // Accumulator register
	x             byte    // Index register
	y             byte    // Index register
	pc            uint16  // Program counter
	s             byte    // Stack pointer
	lastExecution string  // For debug
	cycles        uint64  // Executed cycles since power on
	bus           *CPUBus
	instructions  []instruction

	nmiPrevious bool // NMI is edge triggered, this is the last sampled level.
	irqLine     bool // IRQ is level triggered.

	// Repeated PC detection, test ROMs end with an infinite loop.
	lastPC  int
	repeats int

	// Cycles added while executing the current instruction (branches, DMA).
	extraCycles int
}

type instruction struct {
	mnemonic  string
	mode      addressingMode
	execute   func(operand) error
	cycles    int
	pageCycle bool // takes another cycle when indexing crosses a page
}

// State is a snapshot of the registers.
type State struct {
	A, X, Y, S, P byte
	PC            uint16
	Cycles        uint64
}

func (s State) String() string {
	return fmt.Sprintf("PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, P=0x%02x, CYC=%d",
		s.PC, s.A, s.X, s.Y, s.S, s.P, s.Cycles)
}

func (c *CPU) createInstructions() []instruction {
	return []instruction{
		{"BRK", implied, c.brk, 7, false},     // 0x00
		{"ORA", indirectX, c.ora, 6, false},   // 0x01
		{},                                    // 0x02
		{},                                    // 0x03
		{"*NOP", zeropage, c.nop, 3, false},   // 0x04
		{"ORA", zeropage, c.ora, 3, false},    // 0x05
		{"ASL", zeropage, c.asl, 5, false},    // 0x06
		{},                                    // 0x07
		{"PHP", implied, c.php, 3, false},     // 0x08
		{"ORA", immediate, c.ora, 2, false},   // 0x09
		{"ASL", accumulator, c.asl, 2, false}, // 0x0A
		{},                                    // 0x0B
		{"*NOP", absolute, c.nop, 4, false},   // 0x0C
		{"ORA", absolute, c.ora, 4, false},    // 0x0D
		{"ASL", absolute, c.asl, 6, false},    // 0x0E
		{},                                    // 0x0F
		{"BPL", relative, c.bpl, 2, false},    // 0x10
		{"ORA", indirectY, c.ora, 5, true},    // 0x11
		{},                                    // 0x12
		{},                                    // 0x13
		{"*NOP", zeropageX, c.nop, 4, false},  // 0x14
		{"ORA", zeropageX, c.ora, 4, false},   // 0x15
		{"ASL", zeropageX, c.asl, 6, false},   // 0x16
		{},                                    // 0x17
		{"CLC", implied, c.clc, 2, false},     // 0x18
		{"ORA", absoluteY, c.ora, 4, true},    // 0x19
		{"*NOP", implied, c.nop, 2, false},    // 0x1A
		{},                                    // 0x1B
		{"*NOP", absoluteX, c.nop, 4, true},   // 0x1C
		{"ORA", absoluteX, c.ora, 4, true},    // 0x1D
		{"ASL", absoluteX, c.asl, 7, false},   // 0x1E
		{},                                    // 0x1F
		{"JSR", absolute, c.jsr, 6, false},    // 0x20
		{"AND", indirectX, c.and, 6, false},   // 0x21
		{},                                    // 0x22
		{},                                    // 0x23
		{"BIT", zeropage, c.bit, 3, false},    // 0x24
		{"AND", zeropage, c.and, 3, false},    // 0x25
		{"ROL", zeropage, c.rol, 5, false},    // 0x26
		{},                                    // 0x27
		{"PLP", implied, c.plp, 4, false},     // 0x28
		{"AND", immediate, c.and, 2, false},   // 0x29
		{"ROL", accumulator, c.rol, 2, false}, // 0x2A
		{},                                    // 0x2B
		{"BIT", absolute, c.bit, 4, false},    // 0x2C
		{"AND", absolute, c.and, 4, false},    // 0x2D
		{"ROL", absolute, c.rol, 6, false},    // 0x2E
		{},                                    // 0x2F
		{"BMI", relative, c.bmi, 2, false},    // 0x30
		{"AND", indirectY, c.and, 5, true},    // 0x31
		{},                                    // 0x32
		{},                                    // 0x33
		{"*NOP", zeropageX, c.nop, 4, false},  // 0x34
		{"AND", zeropageX, c.and, 4, false},   // 0x35
		{"ROL", zeropageX, c.rol, 6, false},   // 0x36
		{},                                    // 0x37
		{"SEC", implied, c.sec, 2, false},     // 0x38
		{"AND", absoluteY, c.and, 4, true},    // 0x39
		{"*NOP", implied, c.nop, 2, false},    // 0x3A
		{},                                    // 0x3B
		{"*NOP", absoluteX, c.nop, 4, true},   // 0x3C
		{"AND", absoluteX, c.and, 4, true},    // 0x3D
		{"ROL", absoluteX, c.rol, 7, false},   // 0x3E
		{},                                    // 0x3F
		{"RTI", implied, c.rti, 6, false},     // 0x40
		{"EOR", indirectX, c.eor, 6, false},   // 0x41
		{},                                    // 0x42
		{},                                    // 0x43
		{"*NOP", zeropage, c.nop, 3, false},   // 0x44
		{"EOR", zeropage, c.eor, 3, false},    // 0x45
		{"LSR", zeropage, c.lsr, 5, false},    // 0x46
		{},                                    // 0x47
		{"PHA", implied, c.pha, 3, false},     // 0x48
		{"EOR", immediate, c.eor, 2, false},   // 0x49
		{"LSR", accumulator, c.lsr, 2, false}, // 0x4A
		{},                                    // 0x4B
		{"JMP", absolute, c.jmp, 3, false},    // 0x4C
		{"EOR", absolute, c.eor, 4, false},    // 0x4D
		{"LSR", absolute, c.lsr, 6, false},    // 0x4E
		{},                                    // 0x4F
		{"BVC", relative, c.bvc, 2, false},    // 0x50
		{"EOR", indirectY, c.eor, 5, true},    // 0x51
		{},                                    // 0x52
		{},                                    // 0x53
		{"*NOP", zeropageX, c.nop, 4, false},  // 0x54
		{"EOR", zeropageX, c.eor, 4, false},   // 0x55
		{"LSR", zeropageX, c.lsr, 6, false},   // 0x56
		{},                                    // 0x57
		{"CLI", implied, c.cli, 2, false},     // 0x58
		{"EOR", absoluteY, c.eor, 4, true},    // 0x59
		{"*NOP", implied, c.nop, 2, false},    // 0x5A
		{},                                    // 0x5B
		{"*NOP", absoluteX, c.nop, 4, true},   // 0x5C
		{"EOR", absoluteX, c.eor, 4, true},    // 0x5D
		{"LSR", absoluteX, c.lsr, 7, false},   // 0x5E
		{},                                    // 0x5F
		{"RTS", implied, c.rts, 6, false},     // 0x60
		{"ADC", indirectX, c.adc, 6, false},   // 0x61
		{},                                    // 0x62
		{},                                    // 0x63
		{"*NOP", zeropage, c.nop, 3, false},   // 0x64
		{"ADC", zeropage, c.adc, 3, false},    // 0x65
		{"ROR", zeropage, c.ror, 5, false},    // 0x66
		{},                                    // 0x67
		{"PLA", implied, c.pla, 4, false},     // 0x68
		{"ADC", immediate, c.adc, 2, false},   // 0x69
		{"ROR", accumulator, c.ror, 2, false}, // 0x6A
		{},                                    // 0x6B
		{"JMP", indirect, c.jmp, 5, false},    // 0x6C
		{"ADC", absolute, c.adc, 4, false},    // 0x6D
		{"ROR", absolute, c.ror, 6, false},    // 0x6E
		{},                                    // 0x6F
		{"BVS", relative, c.bvs, 2, false},    // 0x70
		{"ADC", indirectY, c.adc, 5, true},    // 0x71
		{},                                    // 0x72
		{},                                    // 0x73
		{"*NOP", zeropageX, c.nop, 4, false},  // 0x74
		{"ADC", zeropageX, c.adc, 4, false},   // 0x75
		{"ROR", zeropageX, c.ror, 6, false},   // 0x76
		{},                                    // 0x77
		{"SEI", implied, c.sei, 2, false},     // 0x78
		{"ADC", absoluteY, c.adc, 4, true},    // 0x79
		{"*NOP", implied, c.nop, 2, false},    // 0x7A
		{},                                    // 0x7B
		{"*NOP", absoluteX, c.nop, 4, true},   // 0x7C
		{"ADC", absoluteX, c.adc, 4, true},    // 0x7D
		{"ROR", absoluteX, c.ror, 7, false},   // 0x7E
		{},                                    // 0x7F
		{"*NOP", immediate, c.nop, 2, false},  // 0x80
		{"STA", indirectX, c.sta, 6, false},   // 0x81
		{"*NOP", immediate, c.nop, 2, false},  // 0x82
		{},                                    // 0x83
		{"STY", zeropage, c.sty, 3, false},    // 0x84
		{"STA", zeropage, c.sta, 3, false},    // 0x85
		{"STX", zeropage, c.stx, 3, false},    // 0x86
		{},                                    // 0x87
		{"DEY", implied, c.dey, 2, false},     // 0x88
		{"*NOP", immediate, c.nop, 2, false},  // 0x89
		{"TXA", implied, c.txa, 2, false},     // 0x8A
		{},                                    // 0x8B
		{"STY", absolute, c.sty, 4, false},    // 0x8C
		{"STA", absolute, c.sta, 4, false},    // 0x8D
		{"STX", absolute, c.stx, 4, false},    // 0x8E
		{},                                    // 0x8F
		{"BCC", relative, c.bcc, 2, false},    // 0x90
		{"STA", indirectY, c.sta, 6, false},   // 0x91
		{},                                    // 0x92
		{},                                    // 0x93
		{"STY", zeropageX, c.sty, 4, false},   // 0x94
		{"STA", zeropageX, c.sta, 4, false},   // 0x95
		{"STX", zeropageY, c.stx, 4, false},   // 0x96
		{},                                    // 0x97
		{"TYA", implied, c.tya, 2, false},     // 0x98
		{"STA", absoluteY, c.sta, 5, false},   // 0x99
		{"TXS", implied, c.txs, 2, false},     // 0x9A
		{},                                    // 0x9B
		{},                                    // 0x9C
		{"STA", absoluteX, c.sta, 5, false},   // 0x9D
		{},                                    // 0x9E
		{},                                    // 0x9F
		{"LDY", immediate, c.ldy, 2, false},   // 0xA0
		{"LDA", indirectX, c.lda, 6, false},   // 0xA1
		{"LDX", immediate, c.ldx, 2, false},   // 0xA2
		{},                                    // 0xA3
		{"LDY", zeropage, c.ldy, 3, false},    // 0xA4
		{"LDA", zeropage, c.lda, 3, false},    // 0xA5
		{"LDX", zeropage, c.ldx, 3, false},    // 0xA6
		{},                                    // 0xA7
		{"TAY", implied, c.tay, 2, false},     // 0xA8
		{"LDA", immediate, c.lda, 2, false},   // 0xA9
		{"TAX", implied, c.tax, 2, false},     // 0xAA
		{},                                    // 0xAB
		{"LDY", absolute, c.ldy, 4, false},    // 0xAC
		{"LDA", absolute, c.lda, 4, false},    // 0xAD
		{"LDX", absolute, c.ldx, 4, false},    // 0xAE
		{},                                    // 0xAF
		{"BCS", relative, c.bcs, 2, false},    // 0xB0
		{"LDA", indirectY, c.lda, 5, true},    // 0xB1
		{},                                    // 0xB2
		{},                                    // 0xB3
		{"LDY", zeropageX, c.ldy, 4, false},   // 0xB4
		{"LDA", zeropageX, c.lda, 4, false},   // 0xB5
		{"LDX", zeropageY, c.ldx, 4, false},   // 0xB6
		{},                                    // 0xB7
		{"CLV", implied, c.clv, 2, false},     // 0xB8
		{"LDA", absoluteY, c.lda, 4, true},    // 0xB9
		{"TSX", implied, c.tsx, 2, false},     // 0xBA
		{},                                    // 0xBB
		{"LDY", absoluteX, c.ldy, 4, true},    // 0xBC
		{"LDA", absoluteX, c.lda, 4, true},    // 0xBD
		{"LDX", absoluteY, c.ldx, 4, true},    // 0xBE
		{},                                    // 0xBF
		{"CPY", immediate, c.cpy, 2, false},   // 0xC0
		{"CMP", indirectX, c.cmp, 6, false},   // 0xC1
		{"*NOP", immediate, c.nop, 2, false},  // 0xC2
		{},                                    // 0xC3
		{"CPY", zeropage, c.cpy, 3, false},    // 0xC4
		{"CMP", zeropage, c.cmp, 3, false},    // 0xC5
		{"DEC", zeropage, c.dec, 5, false},    // 0xC6
		{},                                    // 0xC7
		{"INY", implied, c.iny, 2, false},     // 0xC8
		{"CMP", immediate, c.cmp, 2, false},   // 0xC9
		{"DEX", implied, c.dex, 2, false},     // 0xCA
		{},                                    // 0xCB
		{"CPY", absolute, c.cpy, 4, false},    // 0xCC
		{"CMP", absolute, c.cmp, 4, false},    // 0xCD
		{"DEC", absolute, c.dec, 6, false},    // 0xCE
		{},                                    // 0xCF
		{"BNE", relative, c.bne, 2, false},    // 0xD0
		{"CMP", indirectY, c.cmp, 5, true},    // 0xD1
		{},                                    // 0xD2
		{},                                    // 0xD3
		{"*NOP", zeropageX, c.nop, 4, false},  // 0xD4
		{"CMP", zeropageX, c.cmp, 4, false},   // 0xD5
		{"DEC", zeropageX, c.dec, 6, false},   // 0xD6
		{},                                    // 0xD7
		{"CLD", implied, c.cld, 2, false},     // 0xD8
		{"CMP", absoluteY, c.cmp, 4, true},    // 0xD9
		{"*NOP", implied, c.nop, 2, false},    // 0xDA
		{},                                    // 0xDB
		{"*NOP", absoluteX, c.nop, 4, true},   // 0xDC
		{"CMP", absoluteX, c.cmp, 4, true},    // 0xDD
		{"DEC", absoluteX, c.dec, 7, false},   // 0xDE
		{},                                    // 0xDF
		{"CPX", immediate, c.cpx, 2, false},   // 0xE0
		{"SBC", indirectX, c.sbc, 6, false},   // 0xE1
		{"*NOP", immediate, c.nop, 2, false},  // 0xE2
		{},                                    // 0xE3
		{"CPX", zeropage, c.cpx, 3, false},    // 0xE4
		{"SBC", zeropage, c.sbc, 3, false},    // 0xE5
		{"INC", zeropage, c.inc, 5, false},    // 0xE6
		{},                                    // 0xE7
		{"INX", implied, c.inx, 2, false},     // 0xE8
		{"SBC", immediate, c.sbc, 2, false},   // 0xE9
		{"NOP", implied, c.nop, 2, false},     // 0xEA
		{},                                    // 0xEB
		{"CPX", absolute, c.cpx, 4, false},    // 0xEC
		{"SBC", absolute, c.sbc, 4, false},    // 0xED
		{"INC", absolute, c.inc, 6, false},    // 0xEE
		{},                                    // 0xEF
		{"BEQ", relative, c.beq, 2, false},    // 0xF0
		{"SBC", indirectY, c.sbc, 5, true},    // 0xF1
		{},                                    // 0xF2
		{},                                    // 0xF3
		{"*NOP", zeropageX, c.nop, 4, false},  // 0xF4
		{"SBC", zeropageX, c.sbc, 4, false},   // 0xF5
		{"INC", zeropageX, c.inc, 6, false},   // 0xF6
		{},                                    // 0xF7
		{"SED", implied, c.sed, 2, false},     // 0xF8
		{"SBC", absoluteY, c.sbc, 4, true},    // 0xF9
		{"*NOP", implied, c.nop, 2, false},    // 0xFA
		{},                                    // 0xFB
		{"*NOP", absoluteX, c.nop, 4, true},   // 0xFC
		{"SBC", absoluteX, c.sbc, 4, true},    // 0xFD
		{"INC", absoluteX, c.inc, 7, false},   // 0xFE
		{},                                    // 0xFF
	}
}

// NewCPU creates a new NES CPU.
func NewCPU(bus *CPUBus) (*CPU, error) {
	c := &CPU{
		p: &status{
			r: true,
		},
		bus: bus,
	}
	bus.cpu = c
	c.instructions = c.createInstructions()
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset does Reset.
func (c *CPU) Reset() error {
	data, err := c.bus.read16(resetVector)
	if err != nil {
		return err
	}
	c.pc = data
	c.s = 0xFD
	c.p.decodeFrom(0x24)
	c.nmiPrevious = false
	c.lastPC = -1
	c.repeats = 0
	return nil
}

// State returns the registers.
func (c *CPU) State() State {
	return State{A: c.a, X: c.x, Y: c.y, S: c.s, P: c.p.encode(), PC: c.pc, Cycles: c.cycles}
}

// SetIRQ sets the level of the /IRQ line, true means asserted.
func (c *CPU) SetIRQ(asserted bool) {
	c.irqLine = asserted
}

// fetch reads the byte at PC and advances PC.
func (c *CPU) fetch() (byte, error) {
	data, err := c.bus.read(c.pc)
	c.pc++
	return data, err
}

// fetch16 reads 2 bytes at PC and advances PC.
func (c *CPU) fetch16() (uint16, error) {
	data, err := c.bus.read16(c.pc)
	c.pc += 2
	return data, err
}

// write is for wrapping c.bus.write, the bus may stall CPU.
func (c *CPU) write(address uint16, data byte) error {
	extra, err := c.bus.write(address, data)
	c.extraCycles += extra
	return err
}

func pagesDiffer(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}

// resolve reads the operand of the instruction and reports whether indexing crossed a page.
// Reference: https://www.nesdev.org/wiki/CPU_addressing_modes
func (c *CPU) resolve(mode addressingMode) (operand, bool, error) {
	switch mode {
	case implied, accumulator:
		return operand{}, false, nil
	case immediate:
		data, err := c.fetch()
		return operand{kind: valueOperand, value: data}, false, err
	case zeropage:
		data, err := c.fetch()
		return operand{kind: addressOperand, address: uint16(data)}, false, err
	case zeropageX:
		// Zero page indexing never leaves the zero page.
		data, err := c.fetch()
		return operand{kind: addressOperand, address: uint16(data + c.x)}, false, err
	case zeropageY:
		data, err := c.fetch()
		return operand{kind: addressOperand, address: uint16(data + c.y)}, false, err
	case relative:
		data, err := c.fetch()
		// Signed offset from the next instruction.
		target := c.pc + uint16(int8(data))
		return operand{kind: addressOperand, address: target}, false, err
	case absolute:
		data, err := c.fetch16()
		return operand{kind: addressOperand, address: data}, false, err
	case absoluteX:
		base, err := c.fetch16()
		address := base + uint16(c.x)
		return operand{kind: addressOperand, address: address}, pagesDiffer(base, address), err
	case absoluteY:
		base, err := c.fetch16()
		address := base + uint16(c.y)
		return operand{kind: addressOperand, address: address}, pagesDiffer(base, address), err
	case indirect:
		pointer, err := c.fetch16()
		if err != nil {
			return operand{}, false, err
		}
		// JMP ($xxFF) takes the high byte from $xx00.
		address, err := c.bus.read16Wrap(pointer)
		return operand{kind: addressOperand, address: address}, false, err
	case indirectX:
		pointer, err := c.fetch()
		if err != nil {
			return operand{}, false, err
		}
		address, err := c.bus.read16Wrap(uint16(pointer + c.x))
		return operand{kind: addressOperand, address: address}, false, err
	case indirectY:
		pointer, err := c.fetch()
		if err != nil {
			return operand{}, false, err
		}
		base, err := c.bus.read16Wrap(uint16(pointer))
		address := base + uint16(c.y)
		return operand{kind: addressOperand, address: address}, pagesDiffer(base, address), err
	}
	return operand{}, false, fmt.Errorf("%w: unknown addressing mode %d", ErrOperandMismatch, mode)
}

type interruptKind int

const (
	interruptBRK interruptKind = iota
	interruptIRQ
	interruptNMI
)

// interrupt enters an interrupt handler, BRK, IRQ and NMI share the sequence.
// BRK returns to the byte after its padding byte and is the only one pushing the B flag.
// Reference: https://www.nesdev.org/wiki/CPU_interrupts
func (c *CPU) interrupt(kind interruptKind) error {
	ret := c.pc
	p := c.p.encode() &^ 0x10
	if kind == interruptBRK {
		ret++
		p |= 0x30
	}
	if err := c.push16(ret); err != nil {
		return err
	}
	if err := c.push(p); err != nil {
		return err
	}
	c.p.i = true
	vector := uint16(irqVector)
	if kind == interruptNMI {
		vector = nmiVector
	}
	address, err := c.bus.read16(vector)
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

func (c *CPU) enterInterrupt(kind interruptKind, name string) (int, error) {
	if err := c.interrupt(kind); err != nil {
		return 0, err
	}
	glog.V(3).Infof("%s: vector=0x%04x", name, c.pc)
	c.lastExecution = fmt.Sprintf("%s, PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x", name, c.pc, c.a, c.x, c.y, c.s)
	c.cycles += interruptCycles
	return interruptCycles, nil
}

// Step performs the instruction cycle - fetch, decode, execute.
// It returns the cycles spent and whether PC stayed at the same instruction for 3 steps in a row.
func (c *CPU) Step() (int, bool, error) {
	// NMI fires on the rising edge of the PPU output.
	line := c.bus.nmiLine()
	edge := line && !c.nmiPrevious
	c.nmiPrevious = line
	if edge {
		cycles, err := c.enterInterrupt(interruptNMI, "NMI")
		return cycles, false, err
	}
	if c.irqLine && !c.p.i {
		cycles, err := c.enterInterrupt(interruptIRQ, "IRQ")
		return cycles, false, err
	}

	pc := c.pc
	if int(pc) == c.lastPC {
		c.repeats++
	} else {
		c.lastPC = int(pc)
		c.repeats = 0
	}
	opcode, err := c.fetch()
	if err != nil {
		return 0, false, err
	}
	instruction := c.instructions[opcode]
	if instruction.execute == nil {
		return 0, false, fmt.Errorf("%w: opcode=0x%02x, PC=0x%04x", ErrUnimplementedOpcode, opcode, pc)
	}
	op, crossed, err := c.resolve(instruction.mode)
	if err != nil {
		return 0, false, err
	}
	// Save debug string.
	c.lastExecution = fmt.Sprintf("PC=0x%04x, A=0x%02x, X=0x%02x, Y=0x%02x, S=0x%02x, opcode=0x%02x, mnemonic=%s, operand: %s",
		pc, c.a, c.x, c.y, c.s, opcode, instruction.mnemonic, op)
	c.extraCycles = 0
	if err := instruction.execute(op); err != nil {
		return 0, false, fmt.Errorf("%s at PC=0x%04x: %w", instruction.mnemonic, pc, err)
	}
	cycles := instruction.cycles + c.extraCycles
	if crossed && instruction.pageCycle {
		cycles++
	}
	c.cycles += uint64(cycles)
	return cycles, c.repeats >= 2, nil
}
