package inkwell

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
)

// hostPattern builds a host bitmap from rows of '#' (white), '.' (black)
// and ' ' (transparent). The mask is omitted when no pixel is transparent.
func hostPattern(rows ...string) *HostBitmap {
	h := len(rows)
	w := len(rows[0])
	rb := alignedRowBytes(w)
	hb := &HostBitmap{Width: w, Height: h, RowBytes: rb, Data: make([]byte, rb*h)}
	mask := make([]byte, rb*h)
	masked := false
	for y, row := range rows {
		for x, c := range row {
			i := y*rb + x/8
			bit := byte(0x80) >> (x % 8)
			switch c {
			case '#':
				hb.Data[i] |= bit
				mask[i] |= bit
			case '.':
				mask[i] |= bit
			default:
				masked = true
			}
		}
	}
	if masked {
		hb.Mask = mask
	}
	return hb
}

func patternBitmap(t testing.TB, alloc Allocator, rows ...string) *Bitmap {
	t.Helper()
	b, err := NewBitmapFromHost(alloc, hostPattern(rows...))
	if err != nil {
		t.Fatalf("NewBitmapFromHost: %v", err)
	}
	return b
}

// colorString renders row y of b as '#', '.', ' ' over the full width.
func colorString(b *Bitmap, y int) string {
	out := make([]byte, b.Width())
	for x := range out {
		switch b.ColorAt(x, y) {
		case ColorWhite:
			out[x] = '#'
		case ColorBlack:
			out[x] = '.'
		default:
			out[x] = ' '
		}
	}
	return string(out)
}

func TestNewBitmapFromHostCropsToMask(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, host,
		"      ",
		"  #.  ",
		"  .#  ",
		"      ",
	)
	defer b.Free()

	if b.Width() != 6 || b.Height() != 4 {
		t.Errorf("size = %dx%d, want 6x4", b.Width(), b.Height())
	}
	if got := b.Bounds(); got != (Rect{X: 2, Y: 1, Width: 2, Height: 2}) {
		t.Errorf("Bounds = %+v", got)
	}
	if b.RowBytes() != 4 {
		t.Errorf("RowBytes = %d, want 4", b.RowBytes())
	}
	if !b.HasMask() {
		t.Error("HasMask = false")
	}
	for y, want := range []string{"      ", "  #.  ", "  .#  ", "      "} {
		if got := colorString(b, y); got != want {
			t.Errorf("row %d = %q, want %q", y, got, want)
		}
	}
}

func TestNewBitmapFromHostOpaqueIsNotCropped(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, host, "....", ".##.", "....")
	defer b.Free()
	if got := b.Bounds(); got != (Rect{Width: 4, Height: 3}) {
		t.Errorf("Bounds = %+v", got)
	}
	if b.HasMask() {
		t.Error("opaque bitmap has a mask")
	}
	if b.ColorAt(0, 0) != ColorBlack || b.ColorAt(1, 1) != ColorWhite {
		t.Error("wrong colors")
	}
	if b.ColorAt(4, 0) != ColorClear || b.ColorAt(-1, 0) != ColorClear {
		t.Error("outside pixels should be clear")
	}
}

func TestNewBitmapFromHostFullyTransparent(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, host, "   ", "   ")
	defer b.Free()
	if !b.Bounds().IsEmpty() {
		t.Errorf("Bounds = %+v, want empty", b.Bounds())
	}
	// Drawing an empty bitmap writes nothing.
	g := NewGraphics(host)
	g.DrawBitmap(b, 0, 0)
	if _, _, ok := host.DirtyRows(); ok {
		t.Error("empty bitmap marked rows")
	}
}

func TestNewBitmapFromHostRepacksWideRows(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	row := make([]byte, 40)
	for i := range row {
		row[i] = " #"[i%2]
	}
	row[0] = '.'
	b := patternBitmap(t, host, string(row))
	defer b.Free()

	if b.Bounds().Width != 40 {
		t.Fatalf("crop width = %d", b.Bounds().Width)
	}
	if b.RowBytes() != 8 {
		t.Errorf("RowBytes = %d, want 8", b.RowBytes())
	}
	if got := colorString(b, 0); got != string(row) {
		t.Errorf("row = %q, want %q", got, string(row))
	}
}

func TestNewBitmapFromHostRejectsShortPlanes(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	_, err := NewBitmapFromHost(host, &HostBitmap{Width: 64, Height: 2, RowBytes: 4, Data: make([]byte, 8)})
	var fe *FormatError
	if !errors.As(err, &fe) || !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want a FormatError", err)
	}
	if host.Outstanding() != 0 {
		t.Errorf("Outstanding = %d after failure", host.Outstanding())
	}
}

func TestNewBitmapFromHostAllocationFailureFreesData(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	host.FailAllocationsAfter(1)
	_, err := NewBitmapFromHost(host, hostPattern(" # ", "#.#"))
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
	if host.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", host.Outstanding())
	}
	if host.Frees() != 1 {
		t.Errorf("Frees = %d, want 1 (the data plane)", host.Frees())
	}
}

func TestBitmapFreeReleasesPlanes(t *testing.T) {
	host := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, host, " # ", "#.#")
	// 3x2 crop: one 4-byte row per plane row, data and mask.
	if host.Outstanding() != 16 {
		t.Errorf("Outstanding = %d, want 16", host.Outstanding())
	}
	b.Free()
	b.Free() // second free is a no-op
	if host.Outstanding() != 0 || host.Frees() != 2 {
		t.Errorf("Outstanding = %d, Frees = %d; want 0, 2", host.Outstanding(), host.Frees())
	}
	if b.Ownership() != OwnershipOwned {
		t.Errorf("Ownership = %v", b.Ownership())
	}
}

func TestLoadBitmapThroughHost(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	img.Set(1, 1, color.White)
	img.Set(2, 1, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	host := NewMemoryHost(MemoryHostConfig{FS: fstest.MapFS{
		"sprite.png": &fstest.MapFile{Data: buf.Bytes()},
	}})

	b, err := LoadBitmap(host, "sprite.png")
	if err != nil {
		t.Fatalf("LoadBitmap: %v", err)
	}
	defer b.Free()
	if got := b.Bounds(); got != (Rect{X: 1, Y: 1, Width: 2, Height: 1}) {
		t.Errorf("Bounds = %+v", got)
	}
	if got := colorString(b, 1); got != " #.  " {
		t.Errorf("row 1 = %q", got)
	}

	if _, err := LoadBitmap(host, "missing.png"); !errors.Is(err, ErrIO) {
		t.Errorf("missing file err = %v, want ErrIO", err)
	}
}
