package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend replays scripted input, one entry per frame
type fakeBackend struct {
	script  []driver.Input
	frames  []internal.Framebuffer
	inited  bool
	cleaned bool
	err     error
}

func (f *fakeBackend) Init(title string) error {
	f.inited = true
	return nil
}

func (f *fakeBackend) Update(frame internal.Framebuffer) (driver.Input, error) {
	f.frames = append(f.frames, frame)
	if f.err != nil {
		return driver.Input{}, f.err
	}
	n := len(f.frames) - 1
	if n < len(f.script) {
		return f.script[n], nil
	}
	return driver.Input{Quit: true}, nil
}

func (f *fakeBackend) Cleanup() error {
	f.cleaned = true
	return nil
}

func writeROM(t *testing.T, rom []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	require.NoError(t, os.WriteFile(path, rom, 0o644))
	return path
}

func TestDriver_StepsPerFrame(t *testing.T) {
	testCases := []struct {
		speed int
		want  int
	}{
		{speed: 0, want: driver.DefaultSpeed / 60},
		{speed: 600, want: 10},
		{speed: 30, want: 1},
	}
	for _, tC := range testCases {
		d := driver.New(internal.NewC8VM(), &fakeBackend{}, driver.Config{Speed: tC.speed, Limiter: driver.NewNoOpLimiter()})
		assert.Equal(t, tC.want, d.StepsPerFrame(), "speed %d", tC.speed)
	}
}

func TestDriver_Run(t *testing.T) {
	// LD V0, 0x3C; LD DT, V0; LD F, V1; DRW V1, V1, 5; JP 0x208
	vm := internal.NewC8VM()
	require.NoError(t, vm.Load([]byte{0x60, 0x3C, 0xF0, 0x15, 0xF1, 0x29, 0xD1, 0x15, 0x12, 0x08}))

	backend := &fakeBackend{script: make([]driver.Input, 9)}
	d := driver.New(vm, backend, driver.Config{Speed: 600, Limiter: driver.NewNoOpLimiter()})

	require.NoError(t, d.Run(context.Background()))
	assert.True(t, backend.inited)
	assert.True(t, backend.cleaned)
	assert.Equal(t, 10, d.Frames())
	assert.Len(t, backend.frames, 10)

	// One timer tick per frame
	assert.Equal(t, uint8(0x3C-10), vm.DelayTimer())
	assert.Equal(t, 14, backend.frames[0].Lit())
}

func TestDriver_RunForwardsKeys(t *testing.T) {
	// LD V0, K; JP 0x202
	vm := internal.NewC8VM()
	require.NoError(t, vm.Load([]byte{0xF0, 0x0A, 0x12, 0x02}))

	backend := &fakeBackend{script: []driver.Input{
		{},
		{Keys: internal.Keys{0xE: true}},
		{Keys: internal.Keys{0xE: true}},
	}}
	d := driver.New(vm, backend, driver.Config{Limiter: driver.NewNoOpLimiter()})
	require.NoError(t, d.Run(context.Background()))

	_, waiting := vm.AwaitingKey()
	assert.False(t, waiting)
	assert.Equal(t, uint8(0xE), vm.V(0))
}

func TestDriver_RunSurfacesFaults(t *testing.T) {
	vm := internal.NewC8VM()
	require.NoError(t, vm.Load([]byte{0x00, 0xEE}))

	backend := &fakeBackend{}
	d := driver.New(vm, backend, driver.Config{Limiter: driver.NewNoOpLimiter()})

	err := d.Run(context.Background())
	assert.ErrorIs(t, err, internal.ErrStackUnderflow)
	assert.True(t, backend.cleaned)
	assert.Empty(t, backend.frames)
}

func TestDriver_RunBackendError(t *testing.T) {
	boom := errors.New("window closed unexpectedly")
	backend := &fakeBackend{err: boom}
	d := driver.New(internal.NewC8VM(), backend, driver.Config{Limiter: driver.NewNoOpLimiter()})

	assert.ErrorIs(t, d.Run(context.Background()), boom)
}

func TestDriver_RunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	backend := &fakeBackend{}
	d := driver.New(internal.NewC8VM(), backend, driver.Config{Limiter: driver.NewNoOpLimiter()})

	assert.NoError(t, d.Run(ctx))
	assert.Zero(t, d.Frames())
	assert.True(t, backend.cleaned)
}

func TestDriver_IdleWithoutProgram(t *testing.T) {
	vm := internal.NewC8VM()
	backend := &fakeBackend{script: make([]driver.Input, 4)}
	d := driver.New(vm, backend, driver.Config{Limiter: driver.NewNoOpLimiter()})

	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, uint16(0x200), vm.PC())
	assert.Equal(t, 5, d.Frames())
}

func TestDriver_LoadsDroppedProgram(t *testing.T) {
	rom := writeROM(t, []byte{0x6A, 0x07, 0x12, 0x02})
	tooBig := writeROM(t, make([]byte, 4000))

	vm := internal.NewC8VM()
	backend := &fakeBackend{script: []driver.Input{
		{ROM: rom},
		{},
		{ROM: tooBig},
		{},
	}}
	d := driver.New(vm, backend, driver.Config{Limiter: driver.NewNoOpLimiter()})
	require.NoError(t, d.Run(context.Background()))

	assert.True(t, vm.Loaded())
	assert.Equal(t, uint8(7), vm.V(0xA))
}

func TestDriver_Load(t *testing.T) {
	d := driver.New(internal.NewC8VM(), &fakeBackend{}, driver.Config{Limiter: driver.NewNoOpLimiter()})

	err := d.Load(writeROM(t, make([]byte, 3585)))
	assert.ErrorIs(t, err, internal.ErrRomTooLarge)

	assert.NoError(t, d.Load(writeROM(t, make([]byte, 3584))))
}
