package terminal

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/driver"
)

// Terminals only report key presses, so a key counts as held until no
// repeat has arrived for this long.
const keyTimeout = 150 * time.Millisecond

// Backend renders the display with half block characters, two pixel rows
// per terminal row.
type Backend struct {
	screen tcell.Screen
	now    func() time.Time

	keyStates map[uint8]time.Time // Last time each keypad key was seen
	quit      bool

	last  internal.Framebuffer
	drawn bool

	logger *slog.Logger // restored on Cleanup
}

// New creates a new terminal backend
func New() *Backend {
	return &Backend{
		now: time.Now,
	}
}

var _ driver.Backend = (*Backend)(nil)

// Init initializes the terminal screen
func (t *Backend) Init(title string) error {
	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %v", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	t.keyStates = make(map[uint8]time.Time)

	// Log lines would tear the display
	t.logger = slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.screen.SetTitle(title)
	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()
	return nil
}

// Cleanup restores the terminal
func (t *Backend) Cleanup() error {
	if t.screen != nil {
		t.screen.Fini()
	}
	if t.logger != nil {
		slog.SetDefault(t.logger)
		t.logger = nil
	}
	return nil
}

// Update renders the frame and turns pending key events into keypad state
func (t *Backend) Update(frame internal.Framebuffer) (driver.Input, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
			t.drawn = false
		}
	}

	var input driver.Input
	for k, lastSeen := range t.keyStates {
		if now.Sub(lastSeen) < keyTimeout {
			input.Keys[k] = true
		} else {
			delete(t.keyStates, k)
		}
	}
	input.Quit = t.quit

	if !t.drawn || frame != t.last {
		t.render(&frame)
		t.screen.Show()
		t.last = frame
		t.drawn = true
	}
	return input, nil
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.quit = true
	case tcell.KeyRune:
		if k, ok := keymap(ev.Rune()); ok {
			t.keyStates[k] = now
		}
	}
}

func (t *Backend) render(frame *internal.Framebuffer) {
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	for row := 0; row < internal.ScreenHeight/2; row++ {
		for x := 0; x < internal.ScreenWidth; x++ {
			t.screen.SetContent(x, row, cell(frame.At(x, 2*row), frame.At(x, 2*row+1)), nil, style)
		}
	}
}

func cell(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	default:
		return ' '
	}
}
