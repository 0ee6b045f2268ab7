package main

import (
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/tinyrange/pixie/internal/config"
	"github.com/tinyrange/pixie/internal/input"
	"github.com/tinyrange/pixie/internal/pixie"
	"github.com/tinyrange/pixie/internal/surface"
)

var errScreenshotTaken = errors.New("screenshot taken")

var palette = [...]uint32{
	surface.RGB(0xff, 0xff, 0xff),
	surface.RGB(0xff, 0x66, 0x66),
	surface.RGB(0x66, 0xff, 0x66),
	surface.RGB(0x66, 0x66, 0xff),
	surface.RGB(0xff, 0xff, 0x66),
	surface.RGB(0xff, 0x66, 0xff),
	surface.RGB(0x66, 0xff, 0xff),
	surface.RGB(0xff, 0x99, 0x33),
	surface.RGB(0x99, 0x99, 0x99),
	surface.RGB(0x33, 0x33, 0x33),
}

var background = surface.RGB(0x1a, 0x1f, 0x29)

type paint struct {
	color      uint32
	brush      int
	cursorX    float32
	cursorY    float32
	screenshot string
}

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	screenshot := fs.String("screenshot", "", "write the first frame to this PNG file and exit")
	title := fs.String("title", "", "window title")
	width := fs.Int("width", 0, "client area width")
	height := fs.Int("height", 0, "client area height")

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			cfg.Title = *title
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	level, err := cfg.Level()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	win := pixie.New(
		pixie.WithLogger(logger),
		pixie.WithCloseOnEscape(cfg.CloseOnEscape),
	)
	if err := win.Open(cfg.Title, cfg.Width, cfg.Height); err != nil {
		log.Fatalf("open: %v", err)
	}

	win.Surface().Clear(background)

	p := &paint{
		color:      palette[0],
		brush:      2,
		cursorX:    float32(cfg.Width) / 2,
		cursorY:    float32(cfg.Height) / 2,
		screenshot: *screenshot,
	}

	var frameTime time.Duration
	if cfg.FrameRate > 0 {
		frameTime = time.Second / time.Duration(cfg.FrameRate)
	}

	err = win.Loop(func(w *pixie.Window) error {
		if err := p.frame(w); err != nil {
			return err
		}
		if frameTime > 0 {
			time.Sleep(frameTime)
		}
		return nil
	})
	if errors.Is(err, errScreenshotTaken) {
		slog.Info("screenshot written", "path", p.screenshot)
		return
	}
	if err != nil {
		log.Fatalf("run loop: %v", err)
	}
}

func (p *paint) frame(w *pixie.Window) error {
	s := w.Surface()

	if typed := w.InputCharacters(); typed != "" {
		slog.Debug("typed", "chars", typed)
	}

	for k := input.Key0; k <= input.Key9; k++ {
		if w.HasKeyGoneDown(k) {
			p.color = palette[k-input.Key0]
		}
	}
	if w.HasKeyGoneDown(input.KeyPeriod) {
		p.brush = p.brush%8 + 1
		slog.Debug("brush", "size", p.brush)
	}
	if w.HasKeyGoneDown(input.KeyBackspace) || w.HasKeyGoneDown(input.KeyDelete) {
		s.Clear(background)
	}
	if w.HasKeyGoneDown(input.KeyHome) {
		p.cursorX, p.cursorY = 0, 0
	}
	if w.HasKeyGoneDown(input.KeyEnd) {
		p.cursorX, p.cursorY = float32(s.Width()-1), float32(s.Height()-1)
	}

	// Arrow keys move a pen at a fixed speed; shift makes it faster.
	speed := float32(120)
	if w.IsKeyDown(input.KeyLeftShift) || w.IsKeyDown(input.KeyRightShift) {
		speed *= 3
	}
	step := speed * w.DeltaTime()
	moved := false
	if w.IsKeyDown(input.KeyLeft) {
		p.cursorX -= step
		moved = true
	}
	if w.IsKeyDown(input.KeyRight) {
		p.cursorX += step
		moved = true
	}
	if w.IsKeyDown(input.KeyUp) {
		p.cursorY -= step
		moved = true
	}
	if w.IsKeyDown(input.KeyDown) {
		p.cursorY += step
		moved = true
	}
	p.cursorX = clamp(p.cursorX, 0, float32(s.Width()-1))
	p.cursorY = clamp(p.cursorY, 0, float32(s.Height()-1))
	if moved {
		p.dab(s, int(p.cursorX), int(p.cursorY), p.color)
	}

	mx, my := w.MousePosition()
	if w.HasMouseButtonGoneDown(input.ButtonLeft) {
		slog.Debug("stroke start", "x", mx, "y", my)
	}
	if w.IsMouseButtonDown(input.ButtonLeft) {
		p.dab(s, mx, my, p.color)
	}
	if w.IsMouseButtonDown(input.ButtonRight) {
		p.dab(s, mx, my, background)
	}
	if w.HasMouseButtonGoneDown(input.ButtonMiddle) {
		p.color = s.Pixels()[clampInt(my, 0, s.Height()-1)*s.Width()+clampInt(mx, 0, s.Width()-1)]
	}

	if p.screenshot != "" {
		return p.writeScreenshot(w)
	}
	return nil
}

func (p *paint) dab(s *surface.Surface, cx, cy int, c uint32) {
	for y := cy - p.brush; y <= cy+p.brush; y++ {
		for x := cx - p.brush; x <= cx+p.brush; x++ {
			s.Set(x, y, c)
		}
	}
}

func (p *paint) writeScreenshot(w *pixie.Window) error {
	file, err := os.Create(p.screenshot)
	if err != nil {
		return fmt.Errorf("create screenshot file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, w.Snapshot()); err != nil {
		return fmt.Errorf("encode screenshot: %w", err)
	}
	return errScreenshotTaken
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
