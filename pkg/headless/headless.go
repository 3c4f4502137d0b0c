package headless

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/driver"
)

// Backend runs a fixed number of frames without a display, for automated
// testing and batch processing
type Backend struct {
	frameCount int
	maxFrames  int
	keys       internal.Keys

	// SnapshotPath, when set, receives a text rendering of the last frame
	SnapshotPath string
}

func New(maxFrames int) *Backend {
	return &Backend{
		maxFrames: maxFrames,
	}
}

var _ driver.Backend = (*Backend)(nil)

// Hold reports the given keypad keys as pressed on every frame
func (h *Backend) Hold(keys internal.Keys) {
	h.keys = keys
}

func (h *Backend) Init(title string) error {
	if h.maxFrames <= 0 {
		return fmt.Errorf("headless mode requires a positive frame count, got %d", h.maxFrames)
	}
	slog.Info("Running headless mode", "title", title, "frames", h.maxFrames, "snapshot", h.SnapshotPath)
	return nil
}

// Update counts the frame and asks to quit once the frame budget is spent
func (h *Backend) Update(frame internal.Framebuffer) (driver.Input, error) {
	h.frameCount++

	// Log progress periodically
	if h.frameCount%60 == 0 {
		slog.Debug("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	input := driver.Input{Keys: h.keys}
	if h.frameCount < h.maxFrames {
		return input, nil
	}

	if h.SnapshotPath != "" {
		if err := SaveSnapshot(&frame, h.SnapshotPath); err != nil {
			return input, err
		}
		slog.Info("Saved frame snapshot", "frame", h.frameCount, "path", h.SnapshotPath)
	}
	slog.Info("Headless execution completed", "frames", h.frameCount)
	input.Quit = true
	return input, nil
}

func (h *Backend) Cleanup() error {
	return nil
}

// Frames returns the number of frames seen so far
func (h *Backend) Frames() int {
	return h.frameCount
}

// SaveSnapshot writes the frame as text, one line per pixel row
func SaveSnapshot(frame *internal.Framebuffer, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# CHIP-8 Frame Snapshot\n")
	fmt.Fprintf(w, "# Resolution: %dx%d pixels\n", internal.ScreenWidth, internal.ScreenHeight)
	fmt.Fprintf(w, "# Legend: █=on .=off\n")
	for y := 0; y < internal.ScreenHeight; y++ {
		for x := 0; x < internal.ScreenWidth; x++ {
			if frame.At(x, y) {
				w.WriteRune('█')
			} else {
				w.WriteByte('.')
			}
		}
		w.WriteByte('\n')
	}
	return w.Flush()
}
