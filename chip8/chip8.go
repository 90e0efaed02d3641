// Package chip8 implements the CHIP-8 virtual machine.
package chip8

import (
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/justinawrey/chip8/arch"
)

// StackDepth is the maximum number of nested subroutine calls.
const StackDepth = 16

// TraceFunc represents a callback handler for debug trace output.
type TraceFunc func(pc uint16, i arch.Instruction)

// Machine implements the interpreter runtime. It owns the memory bank,
// the register file and the framebuffer; the keypad is an external
// collaborator queried during execution.
type Machine struct {
	memory Memory      // System memory.
	fb     Framebuffer // Display bitmap.
	keypad Keypad      // Hex pad collaborator.
	trace  TraceFunc   // Handler for debug trace output.
	rng    *rand.Rand  // Random number generator, seeded at creation.
	rom    []byte      // Loaded ROM image, kept for resets.

	v     [16]byte           // General purpose registers V0-VF.
	i     uint16             // Index register.
	pc    uint16             // Program counter.
	dt    byte               // Delay timer.
	st    byte               // Sound timer.
	stack [StackDepth]uint16 // Subroutine return addresses.
	sp    int                // Number of stack entries in use.

	waiting bool // Is the machine blocked on a wait-for-key?
}

// New creates a new machine using the given keypad.
// Optionally with the given debug trace handler.
func New(keypad Keypad, trace TraceFunc) *Machine {
	if trace == nil {
		trace = func(uint16, arch.Instruction) { /* nop */ }
	}

	m := &Machine{
		memory: make(Memory, MemoryCapacity),
		keypad: keypad,
		trace:  trace,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	m.Reset()
	return m
}

// Load copies the given ROM image into program space and resets the
// machine. The image is kept so a later Reset restores it.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MemoryCapacity-ProgramOffset {
		return errors.Errorf("rom image is %d bytes; at most %d fit in program space",
			len(rom), MemoryCapacity-ProgramOffset)
	}

	m.rom = append(m.rom[:0], rom...)
	m.Reset()
	return nil
}

// Reset restores the machine to its power-on state: font table at
// FontOffset, the loaded ROM at ProgramOffset, everything else zeroed.
func (m *Machine) Reset() {
	for i := range m.memory {
		m.memory[i] = 0
	}
	m.memory.Write(FontOffset, fontData[:])
	m.memory.Write(ProgramOffset, m.rom)

	m.v = [16]byte{}
	m.i = 0
	m.pc = ProgramOffset
	m.dt = 0
	m.st = 0
	m.sp = 0
	m.waiting = false
	m.fb.Clear()
}

// Memory returns the machine's internal memory bank.
func (m *Machine) Memory() Memory {
	return m.memory
}

// Framebuffer returns the machine's display bitmap.
func (m *Machine) Framebuffer() *Framebuffer {
	return &m.fb
}

// Waiting reports whether the machine is blocked on a wait-for-key
// instruction. Execution resumes once the keypad delivers a press.
func (m *Machine) Waiting() bool {
	return m.waiting
}

// Sound reports whether the sound timer is running.
func (m *Machine) Sound() bool {
	return m.st > 0
}

// TickTimers decrements the delay and sound timers by one, stopping at
// zero. The driver calls this exactly once per tick, after execution.
func (m *Machine) TickTimers() {
	if m.dt > 0 {
		m.dt--
	}
	if m.st > 0 {
		m.st--
	}
}

// Step fetches, decodes and executes a single instruction.
// Stack faults and unknown opcodes are fatal to the run; the machine
// state is left untouched by the faulting instruction.
func (m *Machine) Step() error {
	pc := m.pc
	word := m.memory.Word(pc)
	instr := arch.Decode(word)

	m.trace(pc, instr)

	next := pc + 2
	v := m.v[:]

	switch instr.Op {
	case arch.Sys:
		// Native machine routines are not emulated.

	case arch.Cls:
		m.fb.Clear()

	case arch.Ret:
		if m.sp == 0 {
			return errors.Wrapf(ErrStackUnderflow, "%03x: ret", pc)
		}
		m.sp--
		next = m.stack[m.sp]

	case arch.Jp:
		next = instr.NNN
	case arch.JpV0:
		next = instr.NNN + uint16(v[0x0])

	case arch.Call:
		if m.sp == StackDepth {
			return errors.Wrapf(ErrStackOverflow, "%03x: call 0x%03x", pc, instr.NNN)
		}
		m.stack[m.sp] = pc
		m.sp++
		next = instr.NNN

	case arch.SeByte:
		if v[instr.X] == instr.KK {
			next += 2
		}
	case arch.SneByte:
		if v[instr.X] != instr.KK {
			next += 2
		}
	case arch.SeReg:
		if v[instr.X] == v[instr.Y] {
			next += 2
		}
	case arch.SneReg:
		if v[instr.X] != v[instr.Y] {
			next += 2
		}

	case arch.LdByte:
		v[instr.X] = instr.KK
	case arch.AddByte:
		v[instr.X] += instr.KK
	case arch.LdReg:
		v[instr.X] = v[instr.Y]
	case arch.Or:
		v[instr.X] |= v[instr.Y]
	case arch.And:
		v[instr.X] &= v[instr.Y]
	case arch.Xor:
		v[instr.X] ^= v[instr.Y]

	case arch.AddReg:
		sum := uint16(v[instr.X]) + uint16(v[instr.Y])
		flag := byte(0)
		if sum > 0xff {
			flag = 1
		}
		v[instr.X] = byte(sum)
		v[0xf] = flag

	case arch.Sub:
		flag := byte(0)
		if v[instr.X] > v[instr.Y] {
			flag = 1
		}
		v[instr.X] -= v[instr.Y]
		v[0xf] = flag

	case arch.Subn:
		flag := byte(0)
		if v[instr.Y] > v[instr.X] {
			flag = 1
		}
		v[instr.X] = v[instr.Y] - v[instr.X]
		v[0xf] = flag

	case arch.Shr:
		flag := v[instr.X] & 1
		v[instr.X] >>= 1
		v[0xf] = flag
	case arch.Shl:
		flag := v[instr.X] >> 7
		v[instr.X] <<= 1
		v[0xf] = flag

	case arch.LdI:
		m.i = instr.NNN

	case arch.Rnd:
		v[instr.X] = byte(m.rng.Intn(256)) & instr.KK

	case arch.Drw:
		var collision bool
		for row := byte(0); row < instr.N; row++ {
			b := m.memory.U8(m.i + uint16(row))
			if m.fb.DrawByte(int(v[instr.X]), int(v[instr.Y])+int(row), b) {
				collision = true
			}
		}
		v[0xf] = 0
		if collision {
			v[0xf] = 1
		}

	case arch.Skp:
		if m.keypad.Down(v[instr.X] & 0xf) {
			next += 2
		}
	case arch.Sknp:
		if !m.keypad.Down(v[instr.X] & 0xf) {
			next += 2
		}

	case arch.LdRegDt:
		v[instr.X] = m.dt

	case arch.LdKey:
		if key, ok := m.keypad.TakeKey(); ok {
			v[instr.X] = key
			m.waiting = false
		} else {
			// Stay on this instruction until a key press arrives.
			m.waiting = true
			next = pc
		}

	case arch.LdDtReg:
		m.dt = v[instr.X]
	case arch.LdStReg:
		m.st = v[instr.X]

	case arch.AddI:
		m.i += uint16(v[instr.X])

	case arch.LdFont:
		m.i = FontOffset + GlyphSize*uint16(v[instr.X]&0xf)

	case arch.LdBcd:
		m.memory.SetU8(m.i, v[instr.X]/100)
		m.memory.SetU8(m.i+1, v[instr.X]/10%10)
		m.memory.SetU8(m.i+2, v[instr.X]%10)

	case arch.Save:
		for r := byte(0); r <= instr.X; r++ {
			m.memory.SetU8(m.i+uint16(r), v[r])
		}
	case arch.Restore:
		for r := byte(0); r <= instr.X; r++ {
			v[r] = m.memory.U8(m.i + uint16(r))
		}

	default:
		return &OpcodeError{PC: pc, Word: word}
	}

	m.pc = next & AddressMask
	return nil
}
