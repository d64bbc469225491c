// Package termhost shows an inkwell frame in a terminal using half-block
// glyphs, two frame rows per terminal row.
package termhost

import (
	"errors"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/phanxgames/inkwell"
)

// ErrQuit is returned by Run when the user quits with Escape or Ctrl-C.
var ErrQuit = errors.New("termhost: quit")

// Config configures Run.
type Config struct {
	// FrameRate is the number of frames per second. Zero means 30.
	FrameRate int
	// OnKey receives every key event that does not quit.
	OnKey func(ev *tcell.EventKey)
}

// Host is an inkwell host presenting its frame on a tcell screen. Only the
// terminal rows covering dirty frame rows are redrawn.
type Host struct {
	*inkwell.MemoryHost

	screen tcell.Screen
	style  tcell.Style
}

// New wraps an initialized screen.
func New(screen tcell.Screen, cfg inkwell.MemoryHostConfig) *Host {
	h := &Host{
		MemoryHost: inkwell.NewMemoryHost(cfg),
		screen:     screen,
		style:      tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack),
	}
	f := h.Frame()
	h.MarkUpdatedRows(0, f.Height-1)
	return h
}

// Screen returns the underlying tcell screen.
func (h *Host) Screen() tcell.Screen { return h.screen }

// halfBlock returns the glyph for a cell whose top and bottom pixels are lit
// as given.
func halfBlock(top, bottom bool) rune {
	switch {
	case top && bottom:
		return '█'
	case top:
		return '▀'
	case bottom:
		return '▄'
	}
	return ' '
}

// Present draws the dirty frame rows and shows the screen.
func (h *Host) Present() {
	start, end, ok := h.DirtyRows()
	if !ok {
		return
	}
	h.ResetDirtyRows()

	f := h.Frame()
	cols, rows := h.screen.Size()
	start = max(start, 0) / 2
	end = min(end, f.Height-1) / 2
	for cy := start; cy <= end && cy < rows; cy++ {
		y := cy * 2
		for x := 0; x < f.Width && x < cols; x++ {
			top := f.PixelAt(x, y)
			bottom := f.PixelAt(x, y+1)
			h.screen.SetContent(x, cy, halfBlock(top, bottom), nil, h.style)
		}
	}
	h.screen.Show()
}

// Run presents the frame at the configured rate and calls frame with the
// elapsed time in seconds between ticks. It returns ErrQuit when the user
// presses Escape or Ctrl-C, or the first error frame returns.
func Run(h *Host, cfg Config, frame func(dt float64) error) error {
	rate := cfg.FrameRate
	if rate <= 0 {
		rate = 30
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	last := time.Now()
	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return ErrQuit
				}
				if cfg.OnKey != nil {
					cfg.OnKey(ev)
				}
			case *tcell.EventResize:
				h.screen.Sync()
				f := h.Frame()
				h.MarkUpdatedRows(0, f.Height-1)
			}

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := frame(dt); err != nil {
				return err
			}
			h.Present()
		}
	}
}
