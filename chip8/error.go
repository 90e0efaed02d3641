package chip8

import (
	"fmt"

	"github.com/pkg/errors"
)

// Fatal machine faults. Both terminate the current run; the machine
// state is left exactly as it was before the faulting instruction.
var (
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")
)

// OpcodeError is returned when the fetched opcode word decodes to no
// known instruction.
type OpcodeError struct {
	PC   uint16 // Address the word was fetched from.
	Word uint16 // The offending opcode word.
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("%03x: unknown opcode %04x", e.PC, e.Word)
}
