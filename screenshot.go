package inkwell

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// framePalette maps frame bits to PNG palette indices. With two entries the
// PNG encoder writes a 1-bit image, so screenshots stay the frame's depth.
var framePalette = color.Palette{color.Black, color.White}

// Screenshot queues a capture of the frame as it stands after the next
// Draw. Files land in ScreenshotDir as <time>_<seq>_<label>.png, where seq
// counts captures made by this scene.
func (sc *Scene) Screenshot(label string) {
	sc.screenshotQueue = append(sc.screenshotQueue, label)
}

// flushScreenshots encodes the frame once and writes it under every queued
// label. Failures are reported on stderr and never reach Draw's caller.
func (sc *Scene) flushScreenshots() {
	if len(sc.screenshotQueue) == 0 {
		return
	}
	labels := sc.screenshotQueue
	sc.screenshotQueue = sc.screenshotQueue[:0]

	var buf bytes.Buffer
	if err := EncodeFramePNG(&buf, sc.g.Host().Frame()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[inkwell] screenshot: %v\n", err)
		return
	}
	if err := os.MkdirAll(sc.ScreenshotDir, 0o755); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "[inkwell] screenshot: %v\n", err)
		return
	}

	when := time.Now().Format("20060102_150405")
	for _, label := range labels {
		sc.screenshotSeq++
		name := fmt.Sprintf("%s_%03d_%s.png", when, sc.screenshotSeq, sanitizeLabel(label))
		if err := os.WriteFile(filepath.Join(sc.ScreenshotDir, name), buf.Bytes(), 0o644); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "[inkwell] screenshot: %v\n", err)
		}
	}
}

// EncodeFramePNG writes f to w as a 1-bit paletted PNG, black for clear
// pixels and white for set ones.
func EncodeFramePNG(w io.Writer, f Frame) error {
	img := image.NewPaletted(image.Rect(0, 0, f.Width, f.Height), framePalette)
	for y := 0; y < f.Height; y++ {
		row := f.Pix[y*f.Stride:]
		out := img.Pix[y*img.Stride:]
		for x := range out[:f.Width] {
			out[x] = (row[x/8] >> (7 - x%8)) & 1
		}
	}
	return png.Encode(w, img)
}

// WriteFramePNG writes f to path with EncodeFramePNG.
func WriteFramePNG(path string, f Frame) error {
	out, err := os.Create(path)
	if err != nil {
		return wrapIO("create "+path, err)
	}
	if err := EncodeFramePNG(out, f); err != nil {
		out.Close()
		return wrapIO("encode "+path, err)
	}
	if err := out.Close(); err != nil {
		return wrapIO("close "+path, err)
	}
	return nil
}

// sanitizeLabel keeps ASCII letters, digits, '-' and '.', turning every
// other rune into '_'. Blank labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		if fileSafe(r) {
			return r
		}
		return '_'
	}, label)
}

func fileSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return r == '-' || r == '.'
}
