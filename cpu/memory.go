package cpu

const (
	MEMORY_SIZE = 1 << 16 // Bytes in each address space.
)

// Memory is a flat 64KB address space.
type Memory [MEMORY_SIZE]uint8

// Load copies an image into memory from address 0, and zeroes the rest.
func (mem *Memory) Load(image []uint8) (err error) {
	if len(image) > MEMORY_SIZE {
		err = ErrProgramTooLarge
		return
	}

	n := copy(mem[:], image)
	clear(mem[n:])

	return
}

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint16) uint8 {
	return mem[addr]
}

// Write sets the byte at addr.
func (mem *Memory) Write(addr uint16, value uint8) {
	mem[addr] = value
}
