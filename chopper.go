package main

// Follows the CHIP-8 technical reference found at http://devernay.free.fr/hacks/chip8/C8TECH10.HTM

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mnafees/chopper/v2/internal"
	"github.com/mnafees/chopper/v2/internal/driver"
	"github.com/mnafees/chopper/v2/pkg/headless"
	"github.com/mnafees/chopper/v2/pkg/sdl"
	"github.com/mnafees/chopper/v2/pkg/terminal"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "chopper"
	app.Description = "A CHIP-8 emulator"
	app.Usage = "chopper [options] [CHIP-8 program]"
	app.Version = "2.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the CHIP-8 program",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Frontend to use: sdl, terminal or headless",
			Value: "sdl",
		},
		cli.IntFlag{
			Name:  "speed",
			Usage: "Instructions executed per second",
			Value: driver.DefaultSpeed,
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Size of a CHIP-8 pixel in the SDL window",
			Value: sdl.DefaultPixelSize,
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "File to write the last headless frame to",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Log every executed instruction",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "disasm",
			Usage:     "Print a listing of a CHIP-8 program",
			ArgsUsage: "<CHIP-8 program>",
			Action:    disassemble,
		},
	}
	app.Action = runEmulator

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	if c.Bool("debug") {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))
	}

	romPath := c.String("rom")
	if romPath == "" && c.NArg() > 0 {
		romPath = c.Args().First()
	}

	var (
		backend driver.Backend
		limiter driver.Limiter
	)
	switch c.String("backend") {
	case "sdl":
		backend = sdl.NewIO(c.Int("scale"))
	case "terminal":
		backend = terminal.New()
	case "headless":
		if romPath == "" {
			return errors.New("headless mode needs a program")
		}
		h := headless.New(c.Int("frames"))
		h.SnapshotPath = c.String("snapshot")
		backend = h
		limiter = driver.NewNoOpLimiter()
	default:
		return fmt.Errorf("unknown backend %q", c.String("backend"))
	}

	vm := internal.NewC8VM()
	d := driver.New(vm, backend, driver.Config{
		Speed:   c.Int("speed"),
		Limiter: limiter,
	})
	// Without a program the window stays idle until one is dropped on it
	if romPath != "" {
		if err := d.Load(romPath); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return d.Run(ctx)
}

func disassemble(c *cli.Context) error {
	if c.NArg() != 1 {
		cli.ShowCommandHelp(c, "disasm")
		return errors.New("disasm takes exactly one program")
	}
	data, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}
	for _, line := range internal.Disassemble(data) {
		fmt.Println(line)
	}
	return nil
}
