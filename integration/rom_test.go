package integration

// newImage builds a 32KB NROM image with CHR RAM, program is placed at $8000 and the reset vector points there.
func newImage(program []byte) []byte {
	const header = 16
	b := make([]byte, header+0x8000)
	copy(b, "NES\x1A")
	b[4] = 2 // 2x16KB PRG
	b[5] = 0 // CHR RAM
	prg := b[header:]
	copy(prg, program)
	prg[0x7FFC] = 0x00
	prg[0x7FFD] = 0x80
	return b
}
