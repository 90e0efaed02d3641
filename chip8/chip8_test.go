package chip8

import (
	"testing"

	"github.com/pkg/errors"
)

// testKeypad is a scriptable keypad stub.
type testKeypad struct {
	down  [16]bool
	queue []byte
}

func (k *testKeypad) Down(key byte) bool {
	return k.down[key&0xf]
}

func (k *testKeypad) TakeKey() (byte, bool) {
	if len(k.queue) == 0 {
		return 0, false
	}
	key := k.queue[0]
	k.queue = k.queue[1:]
	return key, true
}

// newTestMachine creates a machine with the given opcode words loaded
// as a program at ProgramOffset.
func newTestMachine(t *testing.T, kp *testKeypad, words ...uint16) *Machine {
	t.Helper()

	if kp == nil {
		kp = &testKeypad{}
	}

	rom := make([]byte, 0, len(words)*2)
	for _, w := range words {
		rom = append(rom, byte(w>>8), byte(w))
	}

	m := New(kp, nil)
	if err := m.Load(rom); err != nil {
		t.Fatalf("Load failure: %v", err)
	}
	return m
}

// step runs n instructions and fails the test on any fault.
func step(t *testing.T, m *Machine, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		if err := m.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestLoadAddImmediate(t *testing.T) {
	//   ld  va, 0x05
	//   add va, 0x10

	m := newTestMachine(t, nil, 0x6a05, 0x7a10)
	m.v[0xf] = 0x77

	step(t, m, 2)

	if m.v[0xa] != 0x15 {
		t.Fatalf("va: want 0x15, have 0x%02x", m.v[0xa])
	}
	if m.pc != ProgramOffset+4 {
		t.Fatalf("pc: want 0x%03x, have 0x%03x", ProgramOffset+4, m.pc)
	}
	if m.v[0xf] != 0x77 {
		t.Fatalf("vf must be untouched; have 0x%02x", m.v[0xf])
	}
}

func TestAddImmediateWraps(t *testing.T) {
	//   ld  v0, 0xff
	//   add v0, 0x02

	m := newTestMachine(t, nil, 0x60ff, 0x7002)
	step(t, m, 2)

	if m.v[0] != 0x01 {
		t.Fatalf("v0: want 0x01, have 0x%02x", m.v[0])
	}
	// add-immediate defines no flag.
	if m.v[0xf] != 0 {
		t.Fatalf("vf: want 0, have 0x%02x", m.v[0xf])
	}
}

func TestAddRegistersCarry(t *testing.T) {
	//   add v0, v1 -- for every operand pair

	m := newTestMachine(t, nil, 0x8014)

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			m.pc = ProgramOffset
			m.v[0], m.v[1] = byte(a), byte(b)
			step(t, m, 1)

			if m.v[0] != byte(a+b) {
				t.Fatalf("%d+%d: want 0x%02x, have 0x%02x", a, b, byte(a+b), m.v[0])
			}

			wantFlag := byte(0)
			if a+b > 255 {
				wantFlag = 1
			}
			if m.v[0xf] != wantFlag {
				t.Fatalf("%d+%d: want flag %d, have %d", a, b, wantFlag, m.v[0xf])
			}
		}
	}
}

func TestSubRegistersBorrow(t *testing.T) {
	//   sub v0, v1 -- for every operand pair

	m := newTestMachine(t, nil, 0x8015)

	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			m.pc = ProgramOffset
			m.v[0], m.v[1] = byte(a), byte(b)
			step(t, m, 1)

			if m.v[0] != byte(a-b) {
				t.Fatalf("%d-%d: want 0x%02x, have 0x%02x", a, b, byte(a-b), m.v[0])
			}

			wantFlag := byte(0)
			if a > b {
				wantFlag = 1
			}
			if m.v[0xf] != wantFlag {
				t.Fatalf("%d-%d: want flag %d, have %d", a, b, wantFlag, m.v[0xf])
			}
		}
	}
}

func TestSubnRegistersBorrow(t *testing.T) {
	//   subn v0, v1

	m := newTestMachine(t, nil, 0x8017)

	for _, tc := range [][2]byte{{1, 2}, {2, 1}, {0, 0}, {0xff, 1}, {7, 0xff}} {
		a, b := tc[0], tc[1]

		m.pc = ProgramOffset
		m.v[0], m.v[1] = a, b
		step(t, m, 1)

		if m.v[0] != b-a {
			t.Fatalf("%d subn %d: want 0x%02x, have 0x%02x", a, b, b-a, m.v[0])
		}

		wantFlag := byte(0)
		if b > a {
			wantFlag = 1
		}
		if m.v[0xf] != wantFlag {
			t.Fatalf("%d subn %d: want flag %d, have %d", a, b, wantFlag, m.v[0xf])
		}
	}
}

func TestShiftRight(t *testing.T) {
	//   shr v1 -- the y nibble names v2 and must be ignored

	m := newTestMachine(t, nil, 0x8126)

	for v := 0; v < 256; v++ {
		m.pc = ProgramOffset
		m.v[1] = byte(v)
		m.v[2] = 0xaa
		step(t, m, 1)

		if m.v[1] != byte(v)>>1 {
			t.Fatalf("shr 0x%02x: want 0x%02x, have 0x%02x", v, byte(v)>>1, m.v[1])
		}
		if m.v[0xf] != byte(v)&1 {
			t.Fatalf("shr 0x%02x: want flag %d, have %d", v, byte(v)&1, m.v[0xf])
		}
		if m.v[2] != 0xaa {
			t.Fatalf("shr must not touch v2; have 0x%02x", m.v[2])
		}
	}
}

func TestShiftLeft(t *testing.T) {
	//   shl v1

	m := newTestMachine(t, nil, 0x812e)

	for v := 0; v < 256; v++ {
		m.pc = ProgramOffset
		m.v[1] = byte(v)
		step(t, m, 1)

		if m.v[1] != byte(v)<<1 {
			t.Fatalf("shl 0x%02x: want 0x%02x, have 0x%02x", v, byte(v)<<1, m.v[1])
		}
		if m.v[0xf] != byte(v)>>7 {
			t.Fatalf("shl 0x%02x: want flag %d, have %d", v, byte(v)>>7, m.v[0xf])
		}
	}
}

func TestBitwise(t *testing.T) {
	//   or  v0, v1
	//   and v2, v3
	//   xor v4, v5

	m := newTestMachine(t, nil, 0x8011, 0x8232, 0x8453)
	m.v[0], m.v[1] = 0xf0, 0x0f
	m.v[2], m.v[3] = 0xcc, 0xaa
	m.v[4], m.v[5] = 0xff, 0x5a

	step(t, m, 3)

	if m.v[0] != 0xff {
		t.Fatalf("or: want 0xff, have 0x%02x", m.v[0])
	}
	if m.v[2] != 0x88 {
		t.Fatalf("and: want 0x88, have 0x%02x", m.v[2])
	}
	if m.v[4] != 0xa5 {
		t.Fatalf("xor: want 0xa5, have 0x%02x", m.v[4])
	}
}

func TestLoadCopyRegisters(t *testing.T) {
	//   ld v1, v0

	m := newTestMachine(t, nil, 0x8100)
	m.v[0] = 0x42
	step(t, m, 1)

	if m.v[1] != 0x42 {
		t.Fatalf("ld v1, v0: want 0x42, have 0x%02x", m.v[1])
	}
}

func TestJump(t *testing.T) {
	m := newTestMachine(t, nil, 0x1234)
	step(t, m, 1)

	if m.pc != 0x234 {
		t.Fatalf("pc: want 0x234, have 0x%03x", m.pc)
	}
}

func TestJumpWithOffset(t *testing.T) {
	m := newTestMachine(t, nil, 0xb234)
	m.v[0] = 0x10
	step(t, m, 1)

	if m.pc != 0x244 {
		t.Fatalf("pc: want 0x244, have 0x%03x", m.pc)
	}
}

func TestSkipImmediate(t *testing.T) {
	//   se v0, 0x42

	m := newTestMachine(t, nil, 0x3042)

	m.v[0] = 0x42
	step(t, m, 1)
	if m.pc != ProgramOffset+4 {
		t.Fatalf("taken skip: want pc 0x%03x, have 0x%03x", ProgramOffset+4, m.pc)
	}

	m.pc = ProgramOffset
	m.v[0] = 0x41
	step(t, m, 1)
	if m.pc != ProgramOffset+2 {
		t.Fatalf("untaken skip: want pc 0x%03x, have 0x%03x", ProgramOffset+2, m.pc)
	}
}

func TestSkipEqualRegisters(t *testing.T) {
	//   se va, vb

	m := newTestMachine(t, nil, 0x5ab0)

	m.v[0xa], m.v[0xb] = 7, 7
	step(t, m, 1)
	if m.pc != ProgramOffset+4 {
		t.Fatalf("taken skip: want pc 0x%03x, have 0x%03x", ProgramOffset+4, m.pc)
	}

	m.pc = ProgramOffset
	m.v[0xb] = 8
	step(t, m, 1)
	if m.pc != ProgramOffset+2 {
		t.Fatalf("untaken skip: want pc 0x%03x, have 0x%03x", ProgramOffset+2, m.pc)
	}
}

func TestCallReturnRoundTrip(t *testing.T) {
	//   call 0x204
	//   <unreached>
	//   ret

	m := newTestMachine(t, nil, 0x2204, 0x0000, 0x00ee)
	step(t, m, 1)

	if m.pc != 0x204 {
		t.Fatalf("call: want pc 0x204, have 0x%03x", m.pc)
	}
	if m.sp != 1 {
		t.Fatalf("call: want stack depth 1, have %d", m.sp)
	}

	step(t, m, 1)

	// Return restores the pc of the call instruction itself.
	if m.pc != ProgramOffset {
		t.Fatalf("ret: want pc 0x%03x, have 0x%03x", ProgramOffset, m.pc)
	}
	if m.sp != 0 {
		t.Fatalf("ret: want stack depth 0, have %d", m.sp)
	}
}

func TestStackOverflow(t *testing.T) {
	//   call 0x200 -- forever

	m := newTestMachine(t, nil, 0x2200)
	step(t, m, StackDepth)

	err := m.Step()
	if errors.Cause(err) != ErrStackOverflow {
		t.Fatalf("want ErrStackOverflow, have %v", err)
	}
	if m.sp != StackDepth {
		t.Fatalf("stack depth: want %d, have %d", StackDepth, m.sp)
	}
	if m.pc != ProgramOffset {
		t.Fatalf("pc must be untouched by the fault; have 0x%03x", m.pc)
	}
}

func TestStackUnderflow(t *testing.T) {
	m := newTestMachine(t, nil, 0x00ee)

	err := m.Step()
	if errors.Cause(err) != ErrStackUnderflow {
		t.Fatalf("want ErrStackUnderflow, have %v", err)
	}
}

func TestUnknownOpcode(t *testing.T) {
	m := newTestMachine(t, nil, 0xf0ff)

	err := m.Step()

	var opErr *OpcodeError
	if !errors.As(err, &opErr) {
		t.Fatalf("want OpcodeError, have %v", err)
	}
	if opErr.Word != 0xf0ff {
		t.Fatalf("opcode: want 0xf0ff, have 0x%04x", opErr.Word)
	}
	if opErr.PC != ProgramOffset {
		t.Fatalf("pc: want 0x%03x, have 0x%03x", ProgramOffset, opErr.PC)
	}
	if m.pc != ProgramOffset {
		t.Fatalf("pc must be untouched by the fault; have 0x%03x", m.pc)
	}
}

func TestSysIsNop(t *testing.T) {
	m := newTestMachine(t, nil, 0x0123)
	step(t, m, 1)

	if m.pc != ProgramOffset+2 {
		t.Fatalf("sys must advance pc; have 0x%03x", m.pc)
	}
}

func TestLoadIndex(t *testing.T) {
	m := newTestMachine(t, nil, 0xa321, 0xf51e)
	m.v[5] = 0x10

	step(t, m, 2)

	if m.i != 0x331 {
		t.Fatalf("i: want 0x331, have 0x%03x", m.i)
	}
}

func TestRandomMasked(t *testing.T) {
	//   rnd v0, 0x3c

	m := newTestMachine(t, nil, 0xc03c)

	for i := 0; i < 100; i++ {
		m.pc = ProgramOffset
		step(t, m, 1)

		if m.v[0]&^0x3c != 0 {
			t.Fatalf("random byte 0x%02x has bits outside mask 0x3c", m.v[0])
		}
	}
}

func TestDrawCollisionAndInvolution(t *testing.T) {
	//   drw v0, v1, 5 -- glyph 0 from the font table

	m := newTestMachine(t, nil, 0xd015)
	m.v[0], m.v[1] = 10, 5
	m.i = FontOffset

	step(t, m, 1)

	if m.v[0xf] != 0 {
		t.Fatalf("first draw: want no collision, have flag %d", m.v[0xf])
	}
	if !m.fb.Lit(10, 5) {
		t.Fatal("first draw: top-left glyph pixel must be lit")
	}

	// Drawing the same sprite again toggles every pixel off.
	m.pc = ProgramOffset
	step(t, m, 1)

	if m.v[0xf] != 1 {
		t.Fatalf("second draw: want collision, have flag %d", m.v[0xf])
	}
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			if m.fb.Lit(x, y) {
				t.Fatalf("pixel (%d,%d) must be unlit after the second draw", x, y)
			}
		}
	}
}

func TestDrawWrapsBothAxes(t *testing.T) {
	//   drw v0, v1, 2 at the bottom-right corner

	m := newTestMachine(t, nil, 0xd012)
	m.v[0], m.v[1] = 63, 31
	m.i = 0x300
	m.memory.SetU8(0x300, 0xff)
	m.memory.SetU8(0x301, 0x80)

	step(t, m, 1)

	// Row 0: one pixel at column 63, seven wrapped onto columns 0-6.
	if !m.fb.Lit(63, 31) {
		t.Fatal("pixel (63,31) must be lit")
	}
	for x := 0; x < 7; x++ {
		if !m.fb.Lit(x, 31) {
			t.Fatalf("pixel (%d,31) must be lit by wraparound", x)
		}
	}
	// Row 1 wraps onto row 0.
	if !m.fb.Lit(63, 0) {
		t.Fatal("pixel (63,0) must be lit by vertical wraparound")
	}
}

func TestClearScreen(t *testing.T) {
	m := newTestMachine(t, nil, 0x00e0)
	m.fb.DrawByte(0, 0, 0xff)

	step(t, m, 1)

	for x := 0; x < 8; x++ {
		if m.fb.Lit(x, 0) {
			t.Fatalf("pixel (%d,0) must be unlit after cls", x)
		}
	}
}

func TestFontAddress(t *testing.T) {
	//   ld f, v0

	m := newTestMachine(t, nil, 0xf029)

	for digit := byte(0); digit < 16; digit++ {
		m.pc = ProgramOffset
		m.v[0] = digit
		step(t, m, 1)

		want := uint16(FontOffset + GlyphSize*uint16(digit))
		if m.i != want {
			t.Fatalf("digit %x: want i 0x%03x, have 0x%03x", digit, want, m.i)
		}
	}

	// Only the low nibble of the register names the digit.
	m.pc = ProgramOffset
	m.v[0] = 0x1a
	step(t, m, 1)
	if m.i != FontOffset+GlyphSize*0xa {
		t.Fatalf("digit 0x1a: want i 0x%03x, have 0x%03x", FontOffset+GlyphSize*0xa, m.i)
	}
}

func TestStoreBcd(t *testing.T) {
	//   ld b, v3

	m := newTestMachine(t, nil, 0xf333)
	m.v[3] = 254
	m.i = 0x300

	step(t, m, 1)

	if h, te, u := m.memory.U8(0x300), m.memory.U8(0x301), m.memory.U8(0x302); h != 2 || te != 5 || u != 4 {
		t.Fatalf("bcd of 254: want 2 5 4, have %d %d %d", h, te, u)
	}
}

func TestSaveRestoreRegisters(t *testing.T) {
	//   ld [i], v5
	//   ld v5, [i]

	m := newTestMachine(t, nil, 0xf555, 0xf565)
	for r := byte(0); r <= 5; r++ {
		m.v[r] = 0x10 + r
	}
	m.v[6] = 0x99
	m.i = 0x300

	step(t, m, 1)

	// Registers 0..5 inclusive are stored; v6 is not.
	for r := uint16(0); r <= 5; r++ {
		if m.memory.U8(0x300+r) != 0x10+byte(r) {
			t.Fatalf("mem[0x%03x]: want 0x%02x, have 0x%02x", 0x300+r, 0x10+byte(r), m.memory.U8(0x300+r))
		}
	}
	if m.memory.U8(0x306) != 0 {
		t.Fatalf("mem[0x306] must be untouched; have 0x%02x", m.memory.U8(0x306))
	}

	for r := byte(0); r <= 5; r++ {
		m.v[r] = 0
	}

	step(t, m, 1)

	for r := byte(0); r <= 5; r++ {
		if m.v[r] != 0x10+r {
			t.Fatalf("v%x: want 0x%02x, have 0x%02x", r, 0x10+r, m.v[r])
		}
	}
	if m.i != 0x300 {
		t.Fatalf("i must be unchanged; have 0x%03x", m.i)
	}
}

func TestTimers(t *testing.T) {
	//   ld dt, v0
	//   ld st, v1
	//   ld v2, dt

	m := newTestMachine(t, nil, 0xf015, 0xf118, 0xf207)
	m.v[0], m.v[1] = 3, 1
	step(t, m, 2)

	if !m.Sound() {
		t.Fatal("sound timer must be running")
	}

	m.TickTimers()
	step(t, m, 1)

	if m.v[2] != 2 {
		t.Fatalf("v2: want 2, have %d", m.v[2])
	}
	if m.Sound() {
		t.Fatal("sound timer must have expired")
	}

	// Timers floor at zero.
	for i := 0; i < 5; i++ {
		m.TickTimers()
	}
	if m.dt != 0 || m.st != 0 {
		t.Fatalf("timers must floor at zero; have dt=%d st=%d", m.dt, m.st)
	}
}

func TestSkipIfKey(t *testing.T) {
	//   skp v0
	//   sknp v0

	kp := &testKeypad{}
	m := newTestMachine(t, kp, 0xe09e, 0xe0a1)
	m.v[0] = 0x5

	kp.down[0x5] = true
	step(t, m, 1)
	if m.pc != ProgramOffset+4 {
		t.Fatalf("skp with key down: want pc 0x%03x, have 0x%03x", ProgramOffset+4, m.pc)
	}

	kp.down[0x5] = false
	m.pc = ProgramOffset
	step(t, m, 1)
	if m.pc != ProgramOffset+2 {
		t.Fatalf("skp with key up: want pc 0x%03x, have 0x%03x", ProgramOffset+2, m.pc)
	}

	m.pc = ProgramOffset + 2
	step(t, m, 1)
	if m.pc != ProgramOffset+6 {
		t.Fatalf("sknp with key up: want pc 0x%03x, have 0x%03x", ProgramOffset+6, m.pc)
	}
}

func TestWaitForKey(t *testing.T) {
	//   ld v1, k

	kp := &testKeypad{}
	m := newTestMachine(t, kp, 0xf10a)

	// No key pending: the machine stays on the instruction and reports
	// that it is waiting.
	step(t, m, 1)
	if !m.Waiting() {
		t.Fatal("machine must report waiting")
	}
	if m.pc != ProgramOffset {
		t.Fatalf("pc must stay on the wait instruction; have 0x%03x", m.pc)
	}

	// Timers keep ticking while waiting.
	m.dt = 2
	m.TickTimers()
	if m.dt != 1 {
		t.Fatalf("dt: want 1, have %d", m.dt)
	}

	kp.queue = append(kp.queue, 0x7)
	step(t, m, 1)

	if m.Waiting() {
		t.Fatal("machine must resume after the key press")
	}
	if m.v[1] != 0x7 {
		t.Fatalf("v1: want 0x07, have 0x%02x", m.v[1])
	}
	if m.pc != ProgramOffset+2 {
		t.Fatalf("pc: want 0x%03x, have 0x%03x", ProgramOffset+2, m.pc)
	}
}

func TestLoadRejectsOversizedRom(t *testing.T) {
	m := New(&testKeypad{}, nil)

	if err := m.Load(make([]byte, MemoryCapacity-ProgramOffset+1)); err == nil {
		t.Fatal("want error for oversized rom")
	}
	if err := m.Load(make([]byte, MemoryCapacity-ProgramOffset)); err != nil {
		t.Fatalf("max sized rom must load: %v", err)
	}
}

func TestResetRestoresProgram(t *testing.T) {
	m := newTestMachine(t, nil, 0x6a05)
	step(t, m, 1)
	m.memory.SetU8(ProgramOffset, 0x00)

	m.Reset()

	if m.v[0xa] != 0 {
		t.Fatalf("registers must be cleared; va=0x%02x", m.v[0xa])
	}
	if m.pc != ProgramOffset {
		t.Fatalf("pc: want 0x%03x, have 0x%03x", ProgramOffset, m.pc)
	}
	if m.memory.Word(ProgramOffset) != 0x6a05 {
		t.Fatalf("rom must be restored; have 0x%04x", m.memory.Word(ProgramOffset))
	}
	if m.memory.U8(FontOffset) != 0xf0 {
		t.Fatalf("font must be restored; have 0x%02x", m.memory.U8(FontOffset))
	}
}
