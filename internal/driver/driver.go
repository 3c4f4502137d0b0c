// Package driver runs a CHIP-8 VM against a display and input backend at a
// fixed frame rate.
package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mnafees/chopper/v2/internal"
)

// DefaultSpeed is the number of instructions executed per second
const DefaultSpeed = 700

// Backend is a Display Sink and Input Source pair
type Backend interface {
	// Init prepares the backend, e.g. opens a window
	Init(title string) error

	// Update renders the frame and polls the platform for input.
	Update(frame internal.Framebuffer) (Input, error)

	// Cleanup releases backend resources
	Cleanup() error
}

// Input is what a backend reports after each frame
type Input struct {
	Keys internal.Keys
	Quit bool
	// ROM, when not empty, is the path of a program to load in place of the current one
	ROM string
}

// Config holds the driver settings
type Config struct {
	Title   string
	Speed   int // instructions per second
	Limiter Limiter
}

// Driver owns one VM and feeds it frames, keys and timer ticks
type Driver struct {
	vm      *internal.C8VM
	backend Backend
	config  Config

	frames int
}

// New creates a driver. Zero config fields take their defaults.
func New(vm *internal.C8VM, backend Backend, config Config) *Driver {
	if config.Speed <= 0 {
		config.Speed = DefaultSpeed
	}
	if config.Limiter == nil {
		config.Limiter = NewTickerLimiter()
	}
	if config.Title == "" {
		config.Title = "Chopper | CHIP-8 Emulator"
	}
	return &Driver{
		vm:      vm,
		backend: backend,
		config:  config,
	}
}

// StepsPerFrame returns how many instructions run between two timer ticks
func (d *Driver) StepsPerFrame() int {
	n := d.config.Speed / internal.TimerFrequency
	if n < 1 {
		n = 1
	}
	return n
}

// Frames returns the number of frames run so far
func (d *Driver) Frames() int {
	return d.frames
}

// Run is the main application loop. It returns when the backend asks to
// quit, the context is cancelled, or the VM faults.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.backend.Init(d.config.Title); err != nil {
		return err
	}
	defer func() {
		if err := d.backend.Cleanup(); err != nil {
			slog.Error("Backend cleanup failed", "error", err)
		}
	}()
	defer d.config.Limiter.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		quit, err := d.Frame()
		if err != nil {
			return err
		}
		if quit {
			slog.Info("Quit requested", "frames", d.frames)
			return nil
		}
		d.config.Limiter.WaitForNextFrame()
	}
}

// Frame runs one frame worth of instructions, ticks the timers and trades
// the framebuffer for fresh input with the backend.
func (d *Driver) Frame() (bool, error) {
	if d.vm.Loaded() {
		for i := 0; i < d.StepsPerFrame(); i++ {
			if err := d.vm.Step(); err != nil {
				return false, err
			}
		}
		d.vm.TickTimers()
	}
	d.frames++

	input, err := d.backend.Update(d.vm.Framebuffer())
	if err != nil {
		return false, err
	}
	d.vm.SetKeys(input.Keys)

	if input.ROM != "" {
		if err := d.vm.LoadProgram(input.ROM); err != nil {
			// A bad ROM keeps the running program
			slog.Error("Could not load program", "path", input.ROM, "error", err)
		}
	}
	return input.Quit, nil
}

// Load is a convenience wrapper that reads and loads a program file
func (d *Driver) Load(path string) error {
	if err := d.vm.LoadProgram(path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
