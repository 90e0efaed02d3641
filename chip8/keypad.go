package chip8

// Keypad provides the state of the 16-key hex pad to the interpreter.
type Keypad interface {
	// Down reports whether the given key 0x0-0xF is currently held.
	Down(key byte) bool

	// TakeKey pops the oldest pending key press event, if any.
	// Returns false when no press arrived since the last call.
	TakeKey() (byte, bool)
}
