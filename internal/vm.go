package internal

// Follows the CHIP-8 technical reference found at http://devernay.free.fr/hacks/chip8/C8TECH10.HTM

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
)

// CHIP-8 VM constants
const (
	totalMemory    = 0x1000
	pcStartAddr    = 0x200
	maxProgramSize = totalMemory - pcStartAddr
	stackDepth     = 16

	TimerFrequency = 60
	ScreenWidth    = 64
	ScreenHeight   = 32
	KeyCount       = 16
)

// Keys holds the pressed state of the 16 keypad keys, indexed 0x0-0xF
type Keys [KeyCount]bool

// C8VM is an emulated CHIP-8 VM
type C8VM struct {
	opcode     uint16             // 16-bit opcode of the current instruction
	regV       [16]uint8          // 16 general purpose 8-bit registers
	regI       uint16             // 16-bit register that is generally used to store memory addresses
	delayTimer uint8              // Delay timer
	soundTimer uint8              // Sound timer
	pc         uint16             // Program counter
	stack      []uint16           // Return addresses, at most stackDepth entries
	memory     [totalMemory]uint8 // 4 KB global memory

	keys Keys
	// Keys that went from released to pressed since the last wait began
	pressed Keys

	// Register waiting for a keypress, valid while awaiting is set
	awaitReg uint8
	awaiting bool

	loaded bool
	halted error

	pixels Framebuffer
	rng    *rand.Rand
}

// Option configures a C8VM at construction
type Option func(*C8VM)

// WithRand sets the random source used by the RND opcode
func WithRand(r *rand.Rand) Option {
	return func(vm *C8VM) {
		vm.rng = r
	}
}

// NewC8VM creates a new instance of an emulated CHIP-8 VM
func NewC8VM(opts ...Option) *C8VM {
	vm := &C8VM{}
	for _, opt := range opts {
		opt(vm)
	}
	if vm.rng == nil {
		vm.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	vm.reset()
	return vm
}

func (vm *C8VM) reset() {
	vm.memory = [totalMemory]uint8{}
	copy(vm.memory[:], fontset[:])
	vm.regV = [16]uint8{}
	vm.regI = 0
	vm.pc = pcStartAddr
	vm.stack = make([]uint16, 0, stackDepth)
	vm.delayTimer = 0
	vm.soundTimer = 0
	vm.keys = Keys{}
	vm.pressed = Keys{}
	vm.awaiting = false
	vm.awaitReg = 0
	vm.opcode = 0
	vm.pixels = Framebuffer{}
	vm.loaded = false
	vm.halted = nil
}

// Load places a program image at 0x200, rebuilding every other piece of VM
// state. An oversized image is rejected and the current state is kept.
func (vm *C8VM) Load(rom []byte) error {
	if len(rom) > maxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrRomTooLarge, len(rom), maxProgramSize)
	}
	vm.reset()
	copy(vm.memory[pcStartAddr:], rom)
	vm.loaded = true
	slog.Info("Loaded program", "size", len(rom), "at", fmt.Sprintf("0x%03X", pcStartAddr))
	return nil
}

// LoadProgram loads a given CHIP-8 program file into the VM's memory
func (vm *C8VM) LoadProgram(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error loading program: %w", err)
	}
	return vm.Load(data)
}

// Loaded reports whether a program has been loaded
func (vm *C8VM) Loaded() bool {
	return vm.loaded
}

// SetKeys replaces the keypad snapshot
func (vm *C8VM) SetKeys(keys Keys) {
	for k := range keys {
		if keys[k] && !vm.keys[k] {
			vm.pressed[k] = true
		}
	}
	vm.keys = keys
}

// TickTimers counts both timers down by one, stopping at zero.
// It is meant to be called at TimerFrequency.
func (vm *C8VM) TickTimers() {
	if vm.delayTimer > 0 {
		vm.delayTimer--
	}
	if vm.soundTimer > 0 {
		vm.soundTimer--
	}
}

// Framebuffer returns a copy of the display
func (vm *C8VM) Framebuffer() Framebuffer {
	return vm.pixels
}

// PC returns the program counter
func (vm *C8VM) PC() uint16 {
	return vm.pc
}

// I returns the index register
func (vm *C8VM) I() uint16 {
	return vm.regI
}

// V returns the value of register Vi
func (vm *C8VM) V(i uint8) uint8 {
	return vm.regV[i&0xF]
}

// DelayTimer returns the value of DT
func (vm *C8VM) DelayTimer() uint8 {
	return vm.delayTimer
}

// SoundTimer returns the value of ST
func (vm *C8VM) SoundTimer() uint8 {
	return vm.soundTimer
}

// StackDepth returns the number of pending return addresses
func (vm *C8VM) StackDepth() int {
	return len(vm.stack)
}

// AwaitingKey returns the register an unresolved LD Vx, K will write to
func (vm *C8VM) AwaitingKey() (uint8, bool) {
	return vm.awaitReg, vm.awaiting
}
