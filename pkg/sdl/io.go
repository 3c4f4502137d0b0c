package sdl

import (
	"fmt"
	"log/slog"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/driver"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	DefaultPixelSize = 20

	screenColor = 0x1A237E
	spriteColor = 0x9FA8DA
)

// IO is the SDL window frontend for the VM
type IO struct {
	window  *sdl.Window
	surface *sdl.Surface

	pixelSize int32
	keys      internal.Keys

	last  internal.Framebuffer
	drawn bool
}

// NewIO returns a new I/O instance for the SDL frontend
func NewIO(pixelSize int) *IO {
	if pixelSize <= 0 {
		pixelSize = DefaultPixelSize
	}
	return &IO{
		pixelSize: int32(pixelSize),
	}
}

var _ driver.Backend = (*IO)(nil)

// Init initialises and sets up the main SDL window
func (io *IO) Init(title string) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("error initialising SDL: %w", err)
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		internal.ScreenWidth*io.pixelSize, internal.ScreenHeight*io.pixelSize, sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("error creating window: %w", err)
	}
	io.window = window
	io.surface, err = window.GetSurface()
	if err != nil {
		return fmt.Errorf("error getting window surface: %w", err)
	}
	slog.Info("SDL backend initialized", "pixel_size", io.pixelSize)
	return io.clearScreen()
}

// Cleanup should be called before quitting the application
func (io *IO) Cleanup() error {
	if io.window != nil {
		if err := io.window.Destroy(); err != nil {
			return err
		}
		io.window = nil
	}
	sdl.Quit()
	return nil
}

// Update draws the frame if it changed and drains pending window events
func (io *IO) Update(frame internal.Framebuffer) (driver.Input, error) {
	if !io.drawn || frame != io.last {
		if err := io.draw(&frame); err != nil {
			return driver.Input{}, err
		}
		io.last = frame
		io.drawn = true
	}

	var input driver.Input
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch t := event.(type) {
		case *sdl.KeyboardEvent:
			code := t.Keysym.Scancode
			if code == sdl.SCANCODE_ESCAPE {
				input.Quit = true
				continue
			}
			switch t.GetType() {
			case sdl.KEYDOWN:
				io.setKey(code, true)
			case sdl.KEYUP:
				io.setKey(code, false)
			}
		case *sdl.DropEvent:
			if t.GetType() == sdl.DROPFILE && t.File != "" {
				slog.Info("Program dropped on window", "path", t.File)
				input.ROM = t.File
			}
		case *sdl.QuitEvent:
			input.Quit = true
		}
	}
	input.Keys = io.keys
	return input, nil
}

// Clear the current application screen
func (io *IO) clearScreen() error {
	if err := io.surface.FillRect(nil, screenColor); err != nil {
		return err
	}
	return io.window.UpdateSurface()
}

// Draws the current pixel configuration on screen
func (io *IO) draw(frame *internal.Framebuffer) error {
	if err := io.surface.FillRect(nil, screenColor); err != nil {
		return err
	}
	for h := int32(0); h < internal.ScreenHeight; h++ {
		for w := int32(0); w < internal.ScreenWidth; w++ {
			if frame.At(int(w), int(h)) {
				rect := &sdl.Rect{X: w * io.pixelSize, Y: h * io.pixelSize, W: io.pixelSize, H: io.pixelSize}
				if err := io.surface.FillRect(rect, spriteColor); err != nil {
					return err
				}
			}
		}
	}
	return io.window.UpdateSurface()
}

// Maps keys from a QWERTY keyboard to the keypad used by CHIP-8
// Below we have a mapping QWERTY keyboard to the CHIP-8 keypad
// +--------+--------+--------+--------+
// | 1 -> 1 | 2 -> 2 | 3 -> 3 | 4 -> C |
// +--------+--------+--------+--------+
// | Q -> 4 | W -> 5 | E -> 6 | R -> D |
// +--------+--------+--------+--------+
// | A -> 7 | S -> 8 | D -> 9 | F -> E |
// +--------+--------+--------+--------+
// | Z -> A | X -> 0 | C -> B | V -> F |
// +--------+--------+--------+--------+
func keymap(code sdl.Scancode) int8 {
	switch code {
	case sdl.SCANCODE_1:
		return 0x1
	case sdl.SCANCODE_2:
		return 0x2
	case sdl.SCANCODE_3:
		return 0x3
	case sdl.SCANCODE_4:
		return 0xC
	case sdl.SCANCODE_Q:
		return 0x4
	case sdl.SCANCODE_W:
		return 0x5
	case sdl.SCANCODE_E:
		return 0x6
	case sdl.SCANCODE_R:
		return 0xD
	case sdl.SCANCODE_A:
		return 0x7
	case sdl.SCANCODE_S:
		return 0x8
	case sdl.SCANCODE_D:
		return 0x9
	case sdl.SCANCODE_F:
		return 0xE
	case sdl.SCANCODE_Z:
		return 0xA
	case sdl.SCANCODE_X:
		return 0x0
	case sdl.SCANCODE_C:
		return 0xB
	case sdl.SCANCODE_V:
		return 0xF
	default:
		return -1
	}
}

func (io *IO) setKey(code sdl.Scancode, down bool) {
	if k := keymap(code); k != -1 {
		io.keys[k] = down
	}
}
