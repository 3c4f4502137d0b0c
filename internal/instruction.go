package internal

import "fmt"

// Op identifies one of the CHIP-8 instructions
type Op uint8

const (
	OpCLS     Op = iota // 00E0
	OpRET               // 00EE
	OpJP                // 1nnn
	OpCALL              // 2nnn
	OpSEI               // 3xkk
	OpSNEI              // 4xkk
	OpSE                // 5xy0
	OpLDI               // 6xkk
	OpADDI              // 7xkk
	OpLD                // 8xy0
	OpOR                // 8xy1
	OpAND               // 8xy2
	OpXOR               // 8xy3
	OpADD               // 8xy4
	OpSUB               // 8xy5
	OpSHR               // 8xy6
	OpSUBN              // 8xy7
	OpSHL               // 8xyE
	OpSNE               // 9xy0
	OpLDIndex           // Annn
	OpJPV0              // Bnnn
	OpRND               // Cxkk
	OpDRW               // Dxyn
	OpSKP               // Ex9E
	OpSKNP              // ExA1
	OpLDVxDT            // Fx07
	OpLDVxK             // Fx0A
	OpLDDTVx            // Fx15
	OpLDSTVx            // Fx18
	OpADDIVx            // Fx1E
	OpLDF               // Fx29
	OpLDB               // Fx33
	OpLDMemVx           // Fx55
	OpLDVxMem           // Fx65
)

// Instruction is a decoded opcode together with its operand fields
type Instruction struct {
	Op  Op
	X   uint8  // the lower 4 bits of the high byte of the instruction
	Y   uint8  // the upper 4 bits of the low byte of the instruction
	N   uint8  // the lowest 4 bits of the instruction
	KK  uint8  // the lowest 8 bits of the instruction
	NNN uint16 // the lowest 12 bits of the instruction
}

// Decode splits a 16-bit opcode into an Instruction. Opcodes outside the
// original instruction set yield ErrUnknownOpcode.
func Decode(opcode uint16) (Instruction, error) {
	ins := Instruction{
		X:   uint8((opcode >> 8) & 0x000F),
		Y:   uint8((opcode >> 4) & 0x000F),
		N:   uint8(opcode & 0x000F),
		KK:  uint8(opcode & 0x00FF),
		NNN: opcode & 0x0FFF,
	}

	switch opcode & 0xF000 { // Compare against the first 4 bits of the instruction only
	case 0x0000:
		switch opcode {
		case 0x00E0:
			ins.Op = OpCLS
		case 0x00EE:
			ins.Op = OpRET
		default:
			return ins, ErrUnknownOpcode
		}
	case 0x1000:
		ins.Op = OpJP
	case 0x2000:
		ins.Op = OpCALL
	case 0x3000:
		ins.Op = OpSEI
	case 0x4000:
		ins.Op = OpSNEI
	case 0x5000:
		if ins.N != 0x0 {
			return ins, ErrUnknownOpcode
		}
		ins.Op = OpSE
	case 0x6000:
		ins.Op = OpLDI
	case 0x7000:
		ins.Op = OpADDI
	case 0x8000:
		op, ok := aluOps[ins.N]
		if !ok {
			return ins, ErrUnknownOpcode
		}
		ins.Op = op
	case 0x9000:
		if ins.N != 0x0 {
			return ins, ErrUnknownOpcode
		}
		ins.Op = OpSNE
	case 0xA000:
		ins.Op = OpLDIndex
	case 0xB000:
		ins.Op = OpJPV0
	case 0xC000:
		ins.Op = OpRND
	case 0xD000:
		ins.Op = OpDRW
	case 0xE000:
		switch ins.KK {
		case 0x9E:
			ins.Op = OpSKP
		case 0xA1:
			ins.Op = OpSKNP
		default:
			return ins, ErrUnknownOpcode
		}
	case 0xF000:
		op, ok := miscOps[ins.KK]
		if !ok {
			return ins, ErrUnknownOpcode
		}
		ins.Op = op
	}
	return ins, nil
}

// 8xy_ family, keyed by the low nibble
var aluOps = map[uint8]Op{
	0x0: OpLD,
	0x1: OpOR,
	0x2: OpAND,
	0x3: OpXOR,
	0x4: OpADD,
	0x5: OpSUB,
	0x6: OpSHR,
	0x7: OpSUBN,
	0xE: OpSHL,
}

// Fx__ family, keyed by the low byte
var miscOps = map[uint8]Op{
	0x07: OpLDVxDT,
	0x0A: OpLDVxK,
	0x15: OpLDDTVx,
	0x18: OpLDSTVx,
	0x1E: OpADDIVx,
	0x29: OpLDF,
	0x33: OpLDB,
	0x55: OpLDMemVx,
	0x65: OpLDVxMem,
}

// String renders the instruction in the mnemonic syntax of the reference
func (ins Instruction) String() string {
	switch ins.Op {
	case OpCLS:
		return "CLS"
	case OpRET:
		return "RET"
	case OpJP:
		return fmt.Sprintf("JP 0x%03X", ins.NNN)
	case OpCALL:
		return fmt.Sprintf("CALL 0x%03X", ins.NNN)
	case OpSEI:
		return fmt.Sprintf("SE V%X, 0x%02X", ins.X, ins.KK)
	case OpSNEI:
		return fmt.Sprintf("SNE V%X, 0x%02X", ins.X, ins.KK)
	case OpSE:
		return fmt.Sprintf("SE V%X, V%X", ins.X, ins.Y)
	case OpLDI:
		return fmt.Sprintf("LD V%X, 0x%02X", ins.X, ins.KK)
	case OpADDI:
		return fmt.Sprintf("ADD V%X, 0x%02X", ins.X, ins.KK)
	case OpLD:
		return fmt.Sprintf("LD V%X, V%X", ins.X, ins.Y)
	case OpOR:
		return fmt.Sprintf("OR V%X, V%X", ins.X, ins.Y)
	case OpAND:
		return fmt.Sprintf("AND V%X, V%X", ins.X, ins.Y)
	case OpXOR:
		return fmt.Sprintf("XOR V%X, V%X", ins.X, ins.Y)
	case OpADD:
		return fmt.Sprintf("ADD V%X, V%X", ins.X, ins.Y)
	case OpSUB:
		return fmt.Sprintf("SUB V%X, V%X", ins.X, ins.Y)
	case OpSHR:
		return fmt.Sprintf("SHR V%X", ins.X)
	case OpSUBN:
		return fmt.Sprintf("SUBN V%X, V%X", ins.X, ins.Y)
	case OpSHL:
		return fmt.Sprintf("SHL V%X", ins.X)
	case OpSNE:
		return fmt.Sprintf("SNE V%X, V%X", ins.X, ins.Y)
	case OpLDIndex:
		return fmt.Sprintf("LD I, 0x%03X", ins.NNN)
	case OpJPV0:
		return fmt.Sprintf("JP V0, 0x%03X", ins.NNN)
	case OpRND:
		return fmt.Sprintf("RND V%X, 0x%02X", ins.X, ins.KK)
	case OpDRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", ins.X, ins.Y, ins.N)
	case OpSKP:
		return fmt.Sprintf("SKP V%X", ins.X)
	case OpSKNP:
		return fmt.Sprintf("SKNP V%X", ins.X)
	case OpLDVxDT:
		return fmt.Sprintf("LD V%X, DT", ins.X)
	case OpLDVxK:
		return fmt.Sprintf("LD V%X, K", ins.X)
	case OpLDDTVx:
		return fmt.Sprintf("LD DT, V%X", ins.X)
	case OpLDSTVx:
		return fmt.Sprintf("LD ST, V%X", ins.X)
	case OpADDIVx:
		return fmt.Sprintf("ADD I, V%X", ins.X)
	case OpLDF:
		return fmt.Sprintf("LD F, V%X", ins.X)
	case OpLDB:
		return fmt.Sprintf("LD B, V%X", ins.X)
	case OpLDMemVx:
		return fmt.Sprintf("LD [I], V%X", ins.X)
	case OpLDVxMem:
		return fmt.Sprintf("LD V%X, [I]", ins.X)
	}
	return fmt.Sprintf("op(%d)", ins.Op)
}
