package nes

import "fmt"

func mismatch(op operand, want string) error {
	return fmt.Errorf("%w: got %s operand, want %s", ErrOperandMismatch, op.kind, want)
}

// load reads the value an instruction works on.
func (c *CPU) load(op operand) (byte, error) {
	switch op.kind {
	case valueOperand:
		return op.value, nil
	case addressOperand:
		return c.bus.read(op.address)
	}
	return 0, mismatch(op, "value or address")
}

// target returns the address of a store, jump or branch.
func (c *CPU) target(op operand) (uint16, error) {
	if op.kind != addressOperand {
		return 0, mismatch(op, "address")
	}
	return op.address, nil
}

func none(op operand) error {
	if op.kind != noOperand {
		return mismatch(op, "none")
	}
	return nil
}

// modify applies f to the accumulator or to memory, shifts and increments write back this way.
func (c *CPU) modify(op operand, f func(byte) byte) error {
	switch op.kind {
	case noOperand:
		c.a = f(c.a)
		c.setZN(c.a)
		return nil
	case addressOperand:
		x, err := c.bus.read(op.address)
		if err != nil {
			return err
		}
		x = f(x)
		if err := c.write(op.address, x); err != nil {
			return err
		}
		c.setZN(x)
		return nil
	}
	return mismatch(op, "none or address")
}

// setZN sets zero and negative from x.
func (c *CPU) setZN(x byte) {
	c.p.z = x == 0
	c.p.n = x&0x80 != 0
}

// push pushes data to stack.
// "With the 6502, the stack is always on page one ($100-$1FF) and works top down."
func (c *CPU) push(x byte) error {
	if err := c.write(0x100|uint16(c.s), x); err != nil {
		return err
	}
	c.s--
	return nil
}

func (c *CPU) push16(x uint16) error {
	if err := c.push(byte(x >> 8)); err != nil {
		return err
	}
	return c.push(byte(x))
}

// pop pops data from stack.
func (c *CPU) pop() (byte, error) {
	c.s++
	return c.bus.read(0x100 | uint16(c.s))
}

func (c *CPU) pop16() (uint16, error) {
	l, err := c.pop()
	if err != nil {
		return 0, err
	}
	h, err := c.pop()
	if err != nil {
		return 0, err
	}
	return uint16(h)<<8 | uint16(l), nil
}

// popStatus restores P, B doesn't exist in the register and bit 5 always reads 1.
func (c *CPU) popStatus() error {
	data, err := c.pop()
	if err != nil {
		return err
	}
	c.p.decodeFrom(data)
	c.p.b = false
	c.p.r = true
	return nil
}

// branch jumps when cond holds, taking 1 more cycle and another one across a page.
func (c *CPU) branch(op operand, cond bool) error {
	address, err := c.target(op)
	if err != nil {
		return err
	}
	if !cond {
		return nil
	}
	c.extraCycles++
	if pagesDiffer(c.pc, address) {
		c.extraCycles++
	}
	c.pc = address
	return nil
}

// compare sets flags from x - data.
func (c *CPU) compare(x byte, op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.p.c = x >= data
	c.setZN(x - data)
	return nil
}

// addWithCarry is the adder shared by ADC and SBC.
func (c *CPU) addWithCarry(data byte) {
	var carry uint16
	if c.p.c {
		carry = 1
	}
	sum := uint16(c.a) + uint16(data) + carry
	res := byte(sum)
	c.p.c = sum > 0xFF
	// Overflow when both inputs have the same sign and the result has the other.
	c.p.v = (c.a^res)&(data^res)&0x80 != 0
	c.a = res
	c.setZN(c.a)
}

// ADC - Add with Carry.
func (c *CPU) adc(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.addWithCarry(data)
	return nil
}

// AND - And.
func (c *CPU) and(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.a &= data
	c.setZN(c.a)
	return nil
}

// ASL - Arithmetic Shift Left.
func (c *CPU) asl(op operand) error {
	return c.modify(op, func(x byte) byte {
		c.p.c = x&0x80 != 0
		return x << 1
	})
}

// BCC - Branch on Carry Clear.
func (c *CPU) bcc(op operand) error { return c.branch(op, !c.p.c) }

// BCS - Branch on Carry Set.
func (c *CPU) bcs(op operand) error { return c.branch(op, c.p.c) }

// BEQ - Branch on Equal.
func (c *CPU) beq(op operand) error { return c.branch(op, c.p.z) }

// BMI - Branch on Minus.
func (c *CPU) bmi(op operand) error { return c.branch(op, c.p.n) }

// BNE - Branch on Not Equal.
func (c *CPU) bne(op operand) error { return c.branch(op, !c.p.z) }

// BPL - Branch on Plus.
func (c *CPU) bpl(op operand) error { return c.branch(op, !c.p.n) }

// BVC - Branch on Overflow Clear.
func (c *CPU) bvc(op operand) error { return c.branch(op, !c.p.v) }

// BVS - Branch on Overflow Set.
func (c *CPU) bvs(op operand) error { return c.branch(op, c.p.v) }

// BIT - test BITS.
func (c *CPU) bit(op operand) error {
	if op.kind != addressOperand {
		return mismatch(op, "address")
	}
	x, err := c.load(op)
	if err != nil {
		return err
	}
	c.p.z = c.a&x == 0
	c.p.n = x&0x80 != 0
	c.p.v = x&0x40 != 0
	return nil
}

// BRK - Break Interrupt.
func (c *CPU) brk(op operand) error {
	if err := none(op); err != nil {
		return err
	}
	return c.interrupt(interruptBRK)
}

// CLC - Clear Carry.
func (c *CPU) clc(op operand) error {
	c.p.c = false
	return none(op)
}

// CLD - Clear Decimal.
func (c *CPU) cld(op operand) error {
	c.p.d = false
	return none(op)
}

// CLI - Clear Interrupt.
func (c *CPU) cli(op operand) error {
	c.p.i = false
	return none(op)
}

// CLV - Clear Overflow.
func (c *CPU) clv(op operand) error {
	c.p.v = false
	return none(op)
}

// CMP - Compare Accumulator.
func (c *CPU) cmp(op operand) error { return c.compare(c.a, op) }

// CPX - Compare X register.
func (c *CPU) cpx(op operand) error { return c.compare(c.x, op) }

// CPY - Compare Y register.
func (c *CPU) cpy(op operand) error { return c.compare(c.y, op) }

// DEC - Decrement Memory.
func (c *CPU) dec(op operand) error {
	if op.kind != addressOperand {
		return mismatch(op, "address")
	}
	return c.modify(op, func(x byte) byte { return x - 1 })
}

// DEX - Decrement X Register.
func (c *CPU) dex(op operand) error {
	c.x--
	c.setZN(c.x)
	return none(op)
}

// DEY - Decrement Y Register.
func (c *CPU) dey(op operand) error {
	c.y--
	c.setZN(c.y)
	return none(op)
}

// EOR - Bitwise Exclusive OR.
func (c *CPU) eor(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.a ^= data
	c.setZN(c.a)
	return nil
}

// INC - Increment Memory.
func (c *CPU) inc(op operand) error {
	if op.kind != addressOperand {
		return mismatch(op, "address")
	}
	return c.modify(op, func(x byte) byte { return x + 1 })
}

// INX - Increment X Register.
func (c *CPU) inx(op operand) error {
	c.x++
	c.setZN(c.x)
	return none(op)
}

// INY - Increment Y Register.
func (c *CPU) iny(op operand) error {
	c.y++
	c.setZN(c.y)
	return none(op)
}

// JMP - Jump.
func (c *CPU) jmp(op operand) error {
	address, err := c.target(op)
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

// JSR - Jump to Subroutine, pushes the address of its last byte.
func (c *CPU) jsr(op operand) error {
	address, err := c.target(op)
	if err != nil {
		return err
	}
	if err := c.push16(c.pc - 1); err != nil {
		return err
	}
	c.pc = address
	return nil
}

// LDA - Load Accumulator.
func (c *CPU) lda(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.a = data
	c.setZN(c.a)
	return nil
}

// LDX - Load X Register.
func (c *CPU) ldx(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.x = data
	c.setZN(c.x)
	return nil
}

// LDY - Load Y Register.
func (c *CPU) ldy(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.y = data
	c.setZN(c.y)
	return nil
}

// LSR - Logical Shift Right.
func (c *CPU) lsr(op operand) error {
	return c.modify(op, func(x byte) byte {
		c.p.c = x&1 == 1
		return x >> 1
	})
}

// NOP - No Operation, the unofficial ones take an operand and ignore it.
func (c *CPU) nop(op operand) error {
	return nil
}

// ORA - Bitwise OR with Accumulator.
func (c *CPU) ora(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.a |= data
	c.setZN(c.a)
	return nil
}

// PHA - Push Accumulator.
func (c *CPU) pha(op operand) error {
	if err := none(op); err != nil {
		return err
	}
	return c.push(c.a)
}

// PHP - Push Processor Status, with B and bit 5 set.
func (c *CPU) php(op operand) error {
	if err := none(op); err != nil {
		return err
	}
	return c.push(c.p.encode() | 0x30)
}

// PLA - Pull Accumulator.
func (c *CPU) pla(op operand) error {
	if err := none(op); err != nil {
		return err
	}
	data, err := c.pop()
	if err != nil {
		return err
	}
	c.a = data
	c.setZN(c.a)
	return nil
}

// PLP - Pull Processor Status.
func (c *CPU) plp(op operand) error {
	if err := none(op); err != nil {
		return err
	}
	return c.popStatus()
}

// ROL - Rotate Left.
func (c *CPU) rol(op operand) error {
	carry := c.p.c
	return c.modify(op, func(x byte) byte {
		c.p.c = x&0x80 != 0
		x <<= 1
		if carry {
			x |= 0x01
		}
		return x
	})
}

// ROR - Rotate Right.
func (c *CPU) ror(op operand) error {
	carry := c.p.c
	return c.modify(op, func(x byte) byte {
		c.p.c = x&1 == 1
		x >>= 1
		if carry {
			x |= 0x80
		}
		return x
	})
}

// RTI - Return from Interrupt, the address is used as pushed.
func (c *CPU) rti(op operand) error {
	if err := none(op); err != nil {
		return err
	}
	if err := c.popStatus(); err != nil {
		return err
	}
	address, err := c.pop16()
	if err != nil {
		return err
	}
	c.pc = address
	return nil
}

// RTS - Return from Subroutine.
func (c *CPU) rts(op operand) error {
	if err := none(op); err != nil {
		return err
	}
	address, err := c.pop16()
	if err != nil {
		return err
	}
	c.pc = address + 1
	return nil
}

// SBC - Subtract with carry, A + ^M + C.
func (c *CPU) sbc(op operand) error {
	data, err := c.load(op)
	if err != nil {
		return err
	}
	c.addWithCarry(^data)
	return nil
}

// SEC - Set Carry.
func (c *CPU) sec(op operand) error {
	c.p.c = true
	return none(op)
}

// SED - Set Decimal, the flag is kept but arithmetic stays binary.
func (c *CPU) sed(op operand) error {
	c.p.d = true
	return none(op)
}

// SEI - Set Interrupt.
func (c *CPU) sei(op operand) error {
	c.p.i = true
	return none(op)
}

func (c *CPU) store(op operand, data byte) error {
	address, err := c.target(op)
	if err != nil {
		return err
	}
	return c.write(address, data)
}

// STA - Store A Register.
func (c *CPU) sta(op operand) error { return c.store(op, c.a) }

// STX - Store X Register.
func (c *CPU) stx(op operand) error { return c.store(op, c.x) }

// STY - Store Y Register.
func (c *CPU) sty(op operand) error { return c.store(op, c.y) }

// TAX - Transfer A to X.
func (c *CPU) tax(op operand) error {
	c.x = c.a
	c.setZN(c.x)
	return none(op)
}

// TAY - Transfer A to Y.
func (c *CPU) tay(op operand) error {
	c.y = c.a
	c.setZN(c.y)
	return none(op)
}

// TSX - Transfer S to X.
func (c *CPU) tsx(op operand) error {
	c.x = c.s
	c.setZN(c.x)
	return none(op)
}

// TXA - Transfer X to A.
func (c *CPU) txa(op operand) error {
	c.a = c.x
	c.setZN(c.a)
	return none(op)
}

// TXS - Transfer X to S, flags are untouched.
func (c *CPU) txs(op operand) error {
	c.s = c.x
	return none(op)
}

// TYA - Transfer Y to A.
func (c *CPU) tya(op operand) error {
	c.a = c.y
	c.setZN(c.a)
	return none(op)
}
