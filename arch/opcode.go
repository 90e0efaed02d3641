// Package arch defines the CHIP-8 instruction set along with
// some related helper functions.
package arch

// Opcode identifies one of the 35 CHIP-8 operations.
type Opcode int

// Known opcodes.
const (
	Unknown Opcode = iota

	Sys  // 0nnn - jump to native routine; accepted as a no-op.
	Cls  // 00E0 - clear the display.
	Ret  // 00EE - return from subroutine.
	Jp   // 1nnn - jump to address.
	Call // 2nnn - call subroutine.

	SeByte  // 3xkk - skip next instruction if Vx == kk.
	SneByte // 4xkk - skip next instruction if Vx != kk.
	SeReg   // 5xy0 - skip next instruction if Vx == Vy.
	SneReg  // 9xy0 - skip next instruction if Vx != Vy.

	LdByte  // 6xkk - Vx = kk.
	AddByte // 7xkk - Vx += kk.
	LdReg   // 8xy0 - Vx = Vy.
	Or      // 8xy1 - Vx |= Vy.
	And     // 8xy2 - Vx &= Vy.
	Xor     // 8xy3 - Vx ^= Vy.
	AddReg  // 8xy4 - Vx += Vy, VF = carry.
	Sub     // 8xy5 - Vx -= Vy, VF = no-borrow.
	Shr     // 8xy6 - VF = Vx & 1, Vx >>= 1.
	Subn    // 8xy7 - Vx = Vy - Vx, VF = no-borrow.
	Shl     // 8xyE - VF = Vx >> 7, Vx <<= 1.

	LdI  // Annn - I = nnn.
	JpV0 // Bnnn - jump to nnn + V0.
	Rnd  // Cxkk - Vx = random byte & kk.
	Drw  // Dxyn - draw n-byte sprite at (Vx, Vy), VF = collision.

	Skp  // Ex9E - skip next instruction if key Vx is down.
	Sknp // ExA1 - skip next instruction if key Vx is up.

	LdRegDt // Fx07 - Vx = delay timer.
	LdKey   // Fx0A - wait for a key press, Vx = key.
	LdDtReg // Fx15 - delay timer = Vx.
	LdStReg // Fx18 - sound timer = Vx.
	AddI    // Fx1E - I += Vx.
	LdFont  // Fx29 - I = font glyph address for digit Vx.
	LdBcd   // Fx33 - memory[I..I+2] = BCD of Vx.
	Save    // Fx55 - memory[I..I+x] = V0..Vx.
	Restore // Fx65 - V0..Vx = memory[I..I+x].
)

// Name returns the assembler mnemonic for the given opcode.
// Returns false if the opcode is not recognized.
func Name(op Opcode) (string, bool) {
	switch op {
	case Sys:
		return "SYS", true
	case Cls:
		return "CLS", true
	case Ret:
		return "RET", true
	case Jp, JpV0:
		return "JP", true
	case Call:
		return "CALL", true
	case SeByte, SeReg:
		return "SE", true
	case SneByte, SneReg:
		return "SNE", true
	case LdByte, LdReg, LdI, LdRegDt, LdKey, LdDtReg, LdStReg, LdFont, LdBcd, Save, Restore:
		return "LD", true
	case AddByte, AddReg, AddI:
		return "ADD", true
	case Or:
		return "OR", true
	case And:
		return "AND", true
	case Xor:
		return "XOR", true
	case Sub:
		return "SUB", true
	case Shr:
		return "SHR", true
	case Subn:
		return "SUBN", true
	case Shl:
		return "SHL", true
	case Rnd:
		return "RND", true
	case Drw:
		return "DRW", true
	case Skp:
		return "SKP", true
	case Sknp:
		return "SKNP", true
	}
	return "", false
}
