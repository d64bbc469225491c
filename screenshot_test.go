package inkwell

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"after-hit", "after-hit"},
		{"frame 12", "frame_12"},
		{"a/b\\c", "a_b_c"},
		{"  ", "unlabeled"},
		{"", "unlabeled"},
		{"v1.2", "v1.2"},
	}
	for _, tt := range tests {
		if got := sanitizeLabel(tt.in); got != tt.want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestScreenshotWrittenAfterDraw(t *testing.T) {
	host, sc := newTestScene(16, 4)
	sc.ScreenshotDir = filepath.Join(t.TempDir(), "shots")
	sc.Graphics().FillRect(Rect{X: 3, Y: 1, Width: 1, Height: 1}, ColorWhite)

	sc.Screenshot("first hit")
	if len(sc.screenshotQueue) != 1 {
		t.Fatalf("queue = %v", sc.screenshotQueue)
	}
	sc.Update()
	sc.Draw()
	if len(sc.screenshotQueue) != 0 {
		t.Error("queue not drained by Draw")
	}

	entries, err := os.ReadDir(sc.ScreenshotDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "_first_hit.png") {
		t.Fatalf("files = %v", entries)
	}

	f, err := os.Open(filepath.Join(sc.ScreenshotDir, entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != host.Frame().Width {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
	if r, _, _, _ := img.At(3, 1).RGBA(); r != 0xFFFF {
		t.Error("white pixel lost")
	}
	if r, _, _, _ := img.At(2, 1).RGBA(); r != 0 {
		t.Error("black pixel lost")
	}
}

func TestScreenshotsWithSameLabelDoNotCollide(t *testing.T) {
	_, sc := newTestScene(8, 2)
	sc.ScreenshotDir = t.TempDir()
	sc.Screenshot("hit")
	sc.Screenshot("hit")
	sc.Update()
	sc.Draw()

	entries, err := os.ReadDir(sc.ScreenshotDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("files = %v, want two", entries)
	}
	if !strings.HasSuffix(entries[0].Name(), "_001_hit.png") || !strings.HasSuffix(entries[1].Name(), "_002_hit.png") {
		t.Errorf("files = %s, %s", entries[0].Name(), entries[1].Name())
	}
}

func TestEncodeFramePNGIsOneBit(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{Width: 10, Height: 3})
	NewGraphics(host).FillRect(Rect{X: 9, Y: 2, Width: 1, Height: 1}, ColorWhite)

	var buf bytes.Buffer
	if err := EncodeFramePNG(&buf, host.Frame()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := img.(*image.Paletted)
	if !ok {
		t.Fatalf("decoded %T, want a paletted image", img)
	}
	if p.ColorIndexAt(9, 2) != 1 || p.ColorIndexAt(8, 2) != 0 || p.ColorIndexAt(9, 1) != 0 {
		t.Error("wrong pixels")
	}
	if r, _, _, _ := p.At(9, 2).RGBA(); r != 0xFFFF {
		t.Errorf("set pixel red = %#x, want white", r)
	}
}

func TestWriteFramePNGReportsErrors(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{Width: 8, Height: 8})
	err := WriteFramePNG(filepath.Join(t.TempDir(), "missing", "x.png"), host.Frame())
	if !errors.Is(err, ErrIO) {
		t.Errorf("err = %v, want ErrIO", err)
	}
}
