package internal

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// program assembles opcodes into a big-endian ROM image
func program(opcodes ...uint16) []byte {
	rom := make([]byte, 0, 2*len(opcodes))
	for _, op := range opcodes {
		rom = append(rom, byte(op>>8), byte(op))
	}
	return rom
}

// newLoaded returns a VM with a deterministic random source and the opcodes
// loaded at 0x200
func newLoaded(t *testing.T, opcodes ...uint16) *C8VM {
	t.Helper()
	vm := NewC8VM(WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, vm.Load(program(opcodes...)))
	return vm
}

func steps(t *testing.T, vm *C8VM, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.NoError(t, vm.Step(), "step %d", i)
	}
}

func TestNewC8VM(t *testing.T) {
	vm := NewC8VM()

	assert.Equal(t, uint16(0x200), vm.PC())
	assert.Equal(t, uint16(0), vm.I())
	assert.Equal(t, 0, vm.StackDepth())
	assert.Equal(t, uint8(0), vm.DelayTimer())
	assert.Equal(t, uint8(0), vm.SoundTimer())
	assert.False(t, vm.Loaded())
	assert.Equal(t, 0, vm.pixels.Lit())
	for i := uint8(0); i < 16; i++ {
		assert.Equal(t, uint8(0), vm.V(i))
	}
	if diff := cmp.Diff(fontset[:], vm.memory[:len(fontset)]); diff != "" {
		t.Errorf("fontset: (-want, +got)\n%s", diff)
	}
	assert.Len(t, fontset, 0x50)
	for addr := 0x50; addr < totalMemory; addr++ {
		require.Zero(t, vm.memory[addr], "memory at 0x%03X", addr)
	}
}

func TestC8VM_Load(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr error
	}{
		{name: "empty", size: 0},
		{name: "maximum size", size: 3584},
		{name: "one byte too many", size: 3585, wantErr: ErrRomTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewC8VM()
			rom := make([]byte, tt.size)
			for i := range rom {
				rom[i] = byte(i)
			}
			err := vm.Load(rom)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, vm.Loaded())
				return
			}
			require.NoError(t, err)
			assert.True(t, vm.Loaded())
			assert.Equal(t, rom, vm.memory[pcStartAddr:pcStartAddr+tt.size])
		})
	}
}

func TestC8VM_LoadRejectedKeepsState(t *testing.T) {
	vm := newLoaded(t, 0x6A42, 0xA123)
	steps(t, vm, 2)

	err := vm.Load(make([]byte, maxProgramSize+1))
	require.ErrorIs(t, err, ErrRomTooLarge)

	assert.Equal(t, uint8(0x42), vm.V(0xA))
	assert.Equal(t, uint16(0x123), vm.I())
	assert.Equal(t, uint16(0x204), vm.PC())
	assert.True(t, vm.Loaded())
}

func TestC8VM_LoadRebuildsState(t *testing.T) {
	vm := newLoaded(t, 0x6A42, 0x6005, 0xF015, 0xD005, 0x2200)
	vm.SetKeys(Keys{0x3: true})
	steps(t, vm, 5)
	require.NotZero(t, vm.pixels.Lit())
	require.Equal(t, 1, vm.StackDepth())
	require.Equal(t, uint8(5), vm.DelayTimer())

	require.NoError(t, vm.Load(program(0x00E0)))

	assert.Equal(t, uint8(0), vm.V(0xA))
	assert.Equal(t, uint8(0), vm.DelayTimer())
	assert.Equal(t, 0, vm.StackDepth())
	assert.Equal(t, uint16(0x200), vm.PC())
	assert.Equal(t, Keys{}, vm.keys)
	assert.Equal(t, 0, vm.pixels.Lit())
	// Bytes of the previous, longer program are gone
	assert.Equal(t, uint8(0), vm.memory[0x202])
}

func TestC8VM_LoadProgram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.ch8")
	require.NoError(t, os.WriteFile(path, program(0x6005, 0xA230, 0xF007), 0o644))

	vm := NewC8VM()
	require.NoError(t, vm.LoadProgram(path))
	steps(t, vm, 3)

	assert.Equal(t, uint8(0), vm.V(0))
	assert.Equal(t, uint16(0x230), vm.I())

	err := vm.LoadProgram(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestC8VM_TickTimers(t *testing.T) {
	vm := newLoaded(t, 0x6002, 0xF015, 0x6001, 0xF018)
	steps(t, vm, 4)
	require.Equal(t, uint8(2), vm.DelayTimer())
	require.Equal(t, uint8(1), vm.SoundTimer())

	vm.TickTimers()
	assert.Equal(t, uint8(1), vm.DelayTimer())
	assert.Equal(t, uint8(0), vm.SoundTimer())

	vm.TickTimers()
	vm.TickTimers()
	assert.Equal(t, uint8(0), vm.DelayTimer())
	assert.Equal(t, uint8(0), vm.SoundTimer())
}

func TestC8VM_TimersIndependentOfStep(t *testing.T) {
	// LD DT, V0 then spin on JP 0x202
	vm := newLoaded(t, 0x6009, 0xF015, 0x1204)
	steps(t, vm, 10)
	assert.Equal(t, uint8(9), vm.DelayTimer())
}

func TestC8VM_FramebufferIsACopy(t *testing.T) {
	vm := newLoaded(t, 0xF029, 0xD005)
	steps(t, vm, 2)

	fb := vm.Framebuffer()
	lit := fb.Lit()
	require.NotZero(t, lit)

	fb[0] = !fb[0]
	fb[1] = !fb[1]
	assert.Equal(t, lit, vm.pixels.Lit())
	assert.NotEqual(t, fb, vm.Framebuffer())
}
