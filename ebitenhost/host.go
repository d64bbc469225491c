// Package ebitenhost shows an inkwell frame in an [Ebitengine] window.
//
// [Ebitengine]: https://ebitengine.org
package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/inkwell"
)

// Default colors of a lit and an unlit pixel, a cool paper-white and a warm
// ink-black.
var (
	DefaultForeground = color.RGBA{0xB1, 0xAF, 0xA8, 0xFF}
	DefaultBackground = color.RGBA{0x31, 0x2F, 0x28, 0xFF}
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title string
	// Scale is the window size in screen pixels per frame pixel. Zero means 2.
	Scale int
	// ShowFPS prints FPS and TPS over the frame.
	ShowFPS bool
	// Foreground and Background color white and black frame pixels. Zero
	// values take the defaults.
	Foreground color.RGBA
	Background color.RGBA
}

// Host is an inkwell host whose frame is presented in an ebiten window. Only
// rows marked dirty since the last present are converted and uploaded.
type Host struct {
	*inkwell.MemoryHost

	img  *ebiten.Image
	rgba []byte
	fg   color.RGBA
	bg   color.RGBA
}

// New creates a host with an in-memory frame, allocator and file system.
func New(cfg inkwell.MemoryHostConfig) *Host {
	m := inkwell.NewMemoryHost(cfg)
	f := m.Frame()
	return &Host{
		MemoryHost: m,
		rgba:       make([]byte, 4*f.Width*f.Height),
		fg:         DefaultForeground,
		bg:         DefaultBackground,
	}
}

// present converts the dirty rows and uploads them to the window image.
func (h *Host) present() {
	f := h.Frame()
	if h.img == nil {
		h.img = ebiten.NewImage(f.Width, f.Height)
		h.MarkUpdatedRows(0, f.Height-1)
	}
	start, end, ok := h.DirtyRows()
	if !ok {
		return
	}
	start = max(start, 0)
	end = min(end, f.Height-1)
	h.ResetDirtyRows()
	if start > end {
		return
	}
	ExpandRows(h.rgba, f, start, end, h.fg, h.bg)
	h.img.WritePixels(h.rgba)
}

// ExpandRows writes frame rows [start, end] into dst as 8-bit RGBA, one
// pixel per frame bit. dst must hold 4*Width*Height bytes.
func ExpandRows(dst []byte, f inkwell.Frame, start, end int, fg, bg color.RGBA) {
	for y := start; y <= end; y++ {
		row := f.Pix[y*f.Stride:]
		out := dst[4*y*f.Width:]
		for x := 0; x < f.Width; x++ {
			c := bg
			if row[x/8]&(0x80>>(x%8)) != 0 {
				c = fg
			}
			o := out[4*x:]
			o[0], o[1], o[2], o[3] = c.R, c.G, c.B, c.A
		}
	}
}

// game adapts a frame callback to ebiten.Game.
type game struct {
	host    *Host
	showFPS bool
	frame   func(dt float64) error
}

func (g *game) Update() error {
	return g.frame(1.0 / float64(ebiten.TPS()))
}

func (g *game) Draw(screen *ebiten.Image) {
	g.host.present()
	screen.DrawImage(g.host.img, nil)
	if g.showFPS {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
}

func (g *game) Layout(_, _ int) (int, int) {
	f := g.host.Frame()
	return f.Width, f.Height
}

// Run opens a window and calls frame once per tick with the tick length in
// seconds. frame typically moves sprites and runs the scene's Move, Update
// and Draw. Returning an error (ebiten.Termination for a clean exit) stops
// the loop.
func Run(h *Host, cfg RunConfig, frame func(dt float64) error) error {
	if cfg.Scale <= 0 {
		cfg.Scale = 2
	}
	if cfg.Foreground != (color.RGBA{}) {
		h.fg = cfg.Foreground
	}
	if cfg.Background != (color.RGBA{}) {
		h.bg = cfg.Background
	}
	f := h.Frame()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(f.Width*cfg.Scale, f.Height*cfg.Scale)
	return ebiten.RunGame(&game{host: h, showFPS: cfg.ShowFPS, frame: frame})
}
