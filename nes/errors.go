package nes

import "errors"

var (
	// ErrInvalidROM is returned when a cartridge image can't be parsed as iNES.
	ErrInvalidROM = errors.New("invalid iNES image")
	// ErrUnsupportedMapper is returned for a mapper number other than 0 or 1.
	ErrUnsupportedMapper = errors.New("unsupported mapper")
	// ErrAddressDecode means an address fell outside every decoded range.
	ErrAddressDecode = errors.New("address decode failure")
	// ErrOperandMismatch means an instruction received an operand kind it does not take.
	ErrOperandMismatch = errors.New("operand mismatch")
	// ErrUnimplementedOpcode is returned for opcodes with no table entry.
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
	// ErrReadOnly is returned for writes to CHR ROM.
	ErrReadOnly = errors.New("write to read-only memory")
)
