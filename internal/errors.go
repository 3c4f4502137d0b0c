package internal

import (
	"errors"
	"fmt"
)

var (
	ErrRomTooLarge    = errors.New("program size exceeds the maximum size")
	ErrOutOfBounds    = errors.New("memory access out of bounds")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrStackUnderflow = errors.New("return with an empty stack")
	ErrStackOverflow  = errors.New("call stack is full")
)

// OpcodeError is a fatal fault raised while executing the instruction at PC.
type OpcodeError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("0x%04X: opcode 0x%04X: %v", e.PC, e.Opcode, e.Err)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}
