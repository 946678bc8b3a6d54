package nes

import "github.com/golang/glog"

// APU holds the audio and I/O register file at $4000-$4017 and the test registers at $4018-$401F.
// No sound is generated, writes are stored and read back as is.
// Reference: https://www.nesdev.org/wiki/APU_registers
type APU struct {
	registers [0x18]byte
	test      [0x08]byte
}

func NewAPU() *APU {
	return &APU{}
}

func (a *APU) read(address uint16) byte {
	if address >= 0x4018 {
		return a.test[address-0x4018]
	}
	return a.registers[address-0x4000]
}

func (a *APU) write(address uint16, data byte) {
	glog.V(3).Infof("APU register write: address=0x%04x, data=0x%02x", address, data)
	if address >= 0x4018 {
		a.test[address-0x4018] = data
		return
	}
	a.registers[address-0x4000] = data
}
