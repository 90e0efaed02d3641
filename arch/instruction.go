package arch

import "fmt"

// Instruction defines decoded instruction data.
// It is a transient view of a single 16-bit opcode word; all operand
// fields are extracted eagerly with the fixed nibble masks of the ISA.
type Instruction struct {
	Word uint16 // Raw opcode word.
	Op   Opcode // Operation tag.
	X    byte   // Register index, second nibble.
	Y    byte   // Register index, third nibble.
	N    byte   // Nibble count, low nibble.
	KK   byte   // Immediate byte, low byte.
	NNN  uint16 // Address, low 12 bits.
}

// Decode decodes the given opcode word into an instruction.
// Decoding is total: a word that matches none of the known encodings
// yields an instruction with the Unknown tag. It has no side effects.
func Decode(word uint16) Instruction {
	i := Instruction{
		Word: word,
		Op:   Unknown,
		X:    byte(word >> 8 & 0xf),
		Y:    byte(word >> 4 & 0xf),
		N:    byte(word & 0xf),
		KK:   byte(word),
		NNN:  word & 0x0fff,
	}

	switch word >> 12 {
	case 0x0:
		switch word {
		case 0x00e0:
			i.Op = Cls
		case 0x00ee:
			i.Op = Ret
		default:
			i.Op = Sys
		}
	case 0x1:
		i.Op = Jp
	case 0x2:
		i.Op = Call
	case 0x3:
		i.Op = SeByte
	case 0x4:
		i.Op = SneByte
	case 0x5:
		if i.N == 0 {
			i.Op = SeReg
		}
	case 0x6:
		i.Op = LdByte
	case 0x7:
		i.Op = AddByte
	case 0x8:
		switch i.N {
		case 0x0:
			i.Op = LdReg
		case 0x1:
			i.Op = Or
		case 0x2:
			i.Op = And
		case 0x3:
			i.Op = Xor
		case 0x4:
			i.Op = AddReg
		case 0x5:
			i.Op = Sub
		case 0x6:
			i.Op = Shr
		case 0x7:
			i.Op = Subn
		case 0xe:
			i.Op = Shl
		}
	case 0x9:
		if i.N == 0 {
			i.Op = SneReg
		}
	case 0xa:
		i.Op = LdI
	case 0xb:
		i.Op = JpV0
	case 0xc:
		i.Op = Rnd
	case 0xd:
		i.Op = Drw
	case 0xe:
		switch i.KK {
		case 0x9e:
			i.Op = Skp
		case 0xa1:
			i.Op = Sknp
		}
	case 0xf:
		switch i.KK {
		case 0x07:
			i.Op = LdRegDt
		case 0x0a:
			i.Op = LdKey
		case 0x15:
			i.Op = LdDtReg
		case 0x18:
			i.Op = LdStReg
		case 0x1e:
			i.Op = AddI
		case 0x29:
			i.Op = LdFont
		case 0x33:
			i.Op = LdBcd
		case 0x55:
			i.Op = Save
		case 0x65:
			i.Op = Restore
		}
	}

	return i
}

// String returns the assembler representation of the instruction.
func (i Instruction) String() string {
	switch i.Op {
	case Sys:
		return fmt.Sprintf("sys 0x%03x", i.NNN)
	case Cls:
		return "cls"
	case Ret:
		return "ret"
	case Jp:
		return fmt.Sprintf("jp 0x%03x", i.NNN)
	case JpV0:
		return fmt.Sprintf("jp v0, 0x%03x", i.NNN)
	case Call:
		return fmt.Sprintf("call 0x%03x", i.NNN)
	case SeByte:
		return fmt.Sprintf("se v%x, 0x%02x", i.X, i.KK)
	case SneByte:
		return fmt.Sprintf("sne v%x, 0x%02x", i.X, i.KK)
	case SeReg:
		return fmt.Sprintf("se v%x, v%x", i.X, i.Y)
	case SneReg:
		return fmt.Sprintf("sne v%x, v%x", i.X, i.Y)
	case LdByte:
		return fmt.Sprintf("ld v%x, 0x%02x", i.X, i.KK)
	case AddByte:
		return fmt.Sprintf("add v%x, 0x%02x", i.X, i.KK)
	case LdReg:
		return fmt.Sprintf("ld v%x, v%x", i.X, i.Y)
	case Or:
		return fmt.Sprintf("or v%x, v%x", i.X, i.Y)
	case And:
		return fmt.Sprintf("and v%x, v%x", i.X, i.Y)
	case Xor:
		return fmt.Sprintf("xor v%x, v%x", i.X, i.Y)
	case AddReg:
		return fmt.Sprintf("add v%x, v%x", i.X, i.Y)
	case Sub:
		return fmt.Sprintf("sub v%x, v%x", i.X, i.Y)
	case Shr:
		return fmt.Sprintf("shr v%x", i.X)
	case Subn:
		return fmt.Sprintf("subn v%x, v%x", i.X, i.Y)
	case Shl:
		return fmt.Sprintf("shl v%x", i.X)
	case LdI:
		return fmt.Sprintf("ld i, 0x%03x", i.NNN)
	case Rnd:
		return fmt.Sprintf("rnd v%x, 0x%02x", i.X, i.KK)
	case Drw:
		return fmt.Sprintf("drw v%x, v%x, %d", i.X, i.Y, i.N)
	case Skp:
		return fmt.Sprintf("skp v%x", i.X)
	case Sknp:
		return fmt.Sprintf("sknp v%x", i.X)
	case LdRegDt:
		return fmt.Sprintf("ld v%x, dt", i.X)
	case LdKey:
		return fmt.Sprintf("ld v%x, k", i.X)
	case LdDtReg:
		return fmt.Sprintf("ld dt, v%x", i.X)
	case LdStReg:
		return fmt.Sprintf("ld st, v%x", i.X)
	case AddI:
		return fmt.Sprintf("add i, v%x", i.X)
	case LdFont:
		return fmt.Sprintf("ld f, v%x", i.X)
	case LdBcd:
		return fmt.Sprintf("ld b, v%x", i.X)
	case Save:
		return fmt.Sprintf("ld [i], v%x", i.X)
	case Restore:
		return fmt.Sprintf("ld v%x, [i]", i.X)
	}
	return fmt.Sprintf(".dw 0x%04x", i.Word)
}
