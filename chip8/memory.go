package chip8

// Memory layout constants.
const (
	MemoryCapacity = 4096               // Total memory size in bytes.
	AddressMask    = MemoryCapacity - 1 // Mask applied to every address.
	FontOffset     = 0x000              // Load address of the builtin font table.
	ProgramOffset  = 0x200              // Load address for ROM images.
)

// Memory defines the machine's memory bank.
// Every access wraps its address into [0, MemoryCapacity).
type Memory []byte

// U8 returns the byte at the given address.
func (m Memory) U8(addr uint16) byte {
	return m[addr&AddressMask]
}

// SetU8 sets the byte at the given address.
func (m Memory) SetU8(addr uint16, value byte) {
	m[addr&AddressMask] = value
}

// Word returns the big-endian 16-bit value at the given address.
func (m Memory) Word(addr uint16) uint16 {
	return uint16(m.U8(addr))<<8 | uint16(m.U8(addr+1))
}

// Write writes len(p) bytes from p into memory, starting at the given address.
func (m Memory) Write(addr uint16, p []byte) {
	for i, b := range p {
		m.SetU8(addr+uint16(i), b)
	}
}
