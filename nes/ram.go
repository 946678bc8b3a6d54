package nes

const ramSize = 0x0800

// RAM is 2KB of internal memory, the CPU uses one as work RAM and the PPU another as nametable storage.
type RAM struct {
	data [ramSize]byte
}

// NewRAM creates a RAM for both PPU and CPU.
func NewRAM() *RAM {
	return &RAM{}
}

// read reads data, the address wraps every 2KB.
func (r *RAM) read(address uint16) byte {
	return r.data[address%ramSize]
}

// write writes data, the address wraps every 2KB.
func (r *RAM) write(address uint16, x byte) {
	r.data[address%ramSize] = x
}
