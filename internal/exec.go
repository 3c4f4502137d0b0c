package internal

import (
	"context"
	"fmt"
	"log/slog"
)

// Step executes a single instruction. While an LD Vx, K is unresolved it
// only checks the keypad and leaves the PC on the waiting instruction.
// A returned error is fatal: the VM stays halted until the next Load.
func (vm *C8VM) Step() error {
	if vm.halted != nil {
		return vm.halted
	}
	if vm.awaiting {
		vm.resolveKeyWait()
		return nil
	}

	pc := vm.pc
	if int(pc)+1 >= totalMemory {
		vm.halted = fmt.Errorf("fetch at 0x%04X: %w", pc, ErrOutOfBounds)
		return vm.halted
	}
	vm.opcode = uint16(vm.memory[pc])<<8 | uint16(vm.memory[pc+1]) // 16-bit instruction opcode
	vm.pc += 2

	ins, err := Decode(vm.opcode)
	if err != nil {
		return vm.fault(pc, err)
	}

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("exec",
			"pc", fmt.Sprintf("0x%04X", pc),
			"opcode", fmt.Sprintf("0x%04X", vm.opcode),
			"instr", ins.String())
	}

	if err := vm.execute(ins); err != nil {
		return vm.fault(pc, err)
	}
	return nil
}

// fault halts the VM with the PC rewound onto the offending instruction
func (vm *C8VM) fault(pc uint16, err error) error {
	vm.pc = pc
	vm.halted = &OpcodeError{PC: pc, Opcode: vm.opcode, Err: err}
	return vm.halted
}

func (vm *C8VM) skipIf(cond bool) {
	if cond {
		vm.pc += 2
	}
}

func (vm *C8VM) setFlag(cond bool) {
	if cond {
		vm.regV[0xF] = 1
	} else {
		vm.regV[0xF] = 0
	}
}

// span returns n bytes of memory starting at addr
func (vm *C8VM) span(addr uint16, n int) ([]uint8, error) {
	end := int(addr) + n
	if end > totalMemory {
		return nil, fmt.Errorf("%w: 0x%04X+%d", ErrOutOfBounds, addr, n)
	}
	return vm.memory[addr:end], nil
}

func (vm *C8VM) execute(ins Instruction) error {
	x, y := ins.X, ins.Y

	switch ins.Op {
	case OpCLS:
		vm.pixels.clear()
	case OpRET:
		depth := len(vm.stack)
		if depth == 0 {
			return ErrStackUnderflow
		}
		vm.pc = vm.stack[depth-1]
		vm.stack = vm.stack[:depth-1]
	case OpJP:
		vm.pc = ins.NNN
	case OpCALL:
		if len(vm.stack) == stackDepth {
			return ErrStackOverflow
		}
		vm.stack = append(vm.stack, vm.pc)
		vm.pc = ins.NNN
	case OpSEI:
		vm.skipIf(vm.regV[x] == ins.KK)
	case OpSNEI:
		vm.skipIf(vm.regV[x] != ins.KK)
	case OpSE:
		vm.skipIf(vm.regV[x] == vm.regV[y])
	case OpLDI:
		vm.regV[x] = ins.KK
	case OpADDI:
		vm.regV[x] += ins.KK
	case OpLD:
		vm.regV[x] = vm.regV[y]
	case OpOR:
		vm.regV[x] |= vm.regV[y]
	case OpAND:
		vm.regV[x] &= vm.regV[y]
	case OpXOR:
		vm.regV[x] ^= vm.regV[y]
	case OpADD:
		sum := uint16(vm.regV[x]) + uint16(vm.regV[y])
		vm.regV[x] = uint8(sum)
		vm.setFlag(sum > 0xFF)
	case OpSUB:
		vx, vy := vm.regV[x], vm.regV[y]
		vm.regV[x] = vx - vy
		vm.setFlag(vx > vy)
	case OpSHR:
		v := vm.regV[x]
		vm.regV[x] = v >> 1
		vm.setFlag(v&0x01 == 0x01)
	case OpSUBN:
		vx, vy := vm.regV[x], vm.regV[y]
		vm.regV[x] = vy - vx
		vm.setFlag(vy > vx)
	case OpSHL:
		v := vm.regV[x]
		vm.regV[x] = v << 1
		vm.setFlag(v&0x80 == 0x80)
	case OpSNE:
		vm.skipIf(vm.regV[x] != vm.regV[y])
	case OpLDIndex:
		vm.regI = ins.NNN
	case OpJPV0:
		vm.pc = ins.NNN + uint16(vm.regV[0])
	case OpRND:
		vm.regV[x] = uint8(vm.rng.IntN(256)) & ins.KK
	case OpDRW:
		sprite, err := vm.span(vm.regI, int(ins.N))
		if err != nil {
			return err
		}
		collision := vm.pixels.blit(int(vm.regV[x]), int(vm.regV[y]), sprite)
		vm.setFlag(collision)
	case OpSKP:
		vm.skipIf(vm.keys[vm.regV[x]&0xF])
	case OpSKNP:
		vm.skipIf(!vm.keys[vm.regV[x]&0xF])
	case OpLDVxDT:
		vm.regV[x] = vm.delayTimer
	case OpLDVxK:
		// Park on this instruction until a key goes down
		vm.awaiting = true
		vm.awaitReg = x
		vm.pressed = Keys{}
		vm.pc -= 2
	case OpLDDTVx:
		vm.delayTimer = vm.regV[x]
	case OpLDSTVx:
		vm.soundTimer = vm.regV[x]
	case OpADDIVx:
		vm.regI += uint16(vm.regV[x])
	case OpLDF:
		vm.regI = fontAddr + uint16(vm.regV[x]&0xF)*glyphBytes
	case OpLDB:
		mem, err := vm.span(vm.regI, 3)
		if err != nil {
			return err
		}
		v := vm.regV[x]
		mem[0] = v / 100
		mem[1] = (v / 10) % 10
		mem[2] = v % 10
	case OpLDMemVx:
		mem, err := vm.span(vm.regI, int(x)+1)
		if err != nil {
			return err
		}
		copy(mem, vm.regV[:x+1])
	case OpLDVxMem:
		mem, err := vm.span(vm.regI, int(x)+1)
		if err != nil {
			return err
		}
		copy(vm.regV[:x+1], mem)
	default:
		return ErrUnknownOpcode
	}
	return nil
}

// resolveKeyWait completes a pending LD Vx, K if a key was pressed since the
// wait began. The lowest numbered key wins.
func (vm *C8VM) resolveKeyWait() {
	for k, down := range vm.pressed {
		if !down {
			continue
		}
		vm.regV[vm.awaitReg] = uint8(k)
		vm.awaiting = false
		vm.pressed = Keys{}
		vm.pc += 2
		return
	}
}
