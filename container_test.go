package inkwell

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
	"testing/fstest"
)

var containerSprite = []string{
	" #.# ",
	"#...#",
	" ### ",
}

func encodeTestBitmap(t *testing.T, opts EncodeOptions) []byte {
	t.Helper()
	alloc := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, alloc, containerSprite...)
	defer b.Free()
	out, err := EncodeBitmap(b, opts)
	if err != nil {
		t.Fatalf("EncodeBitmap: %v", err)
	}
	return out
}

func hostWithFile(name string, data []byte) *MemoryHost {
	return NewMemoryHost(MemoryHostConfig{FS: fstest.MapFS{
		name: &fstest.MapFile{Data: data},
	}})
}

func assertSpritePixels(t *testing.T, b *Bitmap) {
	t.Helper()
	if b.Width() != 5 || b.Height() != 3 {
		t.Fatalf("size = %dx%d, want 5x3", b.Width(), b.Height())
	}
	for y, want := range containerSprite {
		if got := colorString(b, y); got != want {
			t.Errorf("row %d = %q, want %q", y, got, want)
		}
	}
}

func TestLoadBitmapContainerUncompressedAliasesBuffer(t *testing.T) {
	data := encodeTestBitmap(t, EncodeOptions{})
	if len(data) != 62 {
		t.Fatalf("encoded size = %d, want 62", len(data))
	}
	host := hostWithFile("s.inkb", data)

	b, err := LoadBitmapContainer(host, "s.inkb")
	if err != nil {
		t.Fatalf("LoadBitmapContainer: %v", err)
	}
	assertSpritePixels(t, b)

	if sizes := host.AllocSizes(); len(sizes) != 1 || sizes[0] != 62 {
		t.Errorf("AllocSizes = %v, want [62]", sizes)
	}
	if host.Outstanding() != 62 {
		t.Errorf("Outstanding = %d, want 62 (file buffer kept)", host.Outstanding())
	}
	b.Free()
	if host.Outstanding() != 0 {
		t.Errorf("Outstanding after Free = %d", host.Outstanding())
	}
}

func TestLoadBitmapContainerCompressed(t *testing.T) {
	data := encodeTestBitmap(t, EncodeOptions{Compress: true})
	host := hostWithFile("s.inkb", data)

	b, err := LoadBitmapContainer(host, "s.inkb")
	if err != nil {
		t.Fatalf("LoadBitmapContainer: %v", err)
	}
	assertSpritePixels(t, b)

	sizes := host.AllocSizes()
	if len(sizes) != 3 || sizes[0] != len(data) || sizes[1] != 12 || sizes[2] != 12 {
		t.Errorf("AllocSizes = %v, want [%d 12 12]", sizes, len(data))
	}
	if host.Outstanding() != 24 {
		t.Errorf("Outstanding = %d, want 24 (file buffer released)", host.Outstanding())
	}
	b.Free()
	if host.Outstanding() != 0 {
		t.Errorf("Outstanding after Free = %d", host.Outstanding())
	}
}

func TestContainerVersions(t *testing.T) {
	for _, opts := range []EncodeOptions{
		{Version: 1},
		{Version: 2, Padding: 5},
		{Version: 3, Padding: 3, Compress: true},
	} {
		data := encodeTestBitmap(t, opts)
		host := NewMemoryHost(MemoryHostConfig{})
		b, err := NewBitmapFromContainer(host, data)
		if err != nil {
			t.Errorf("version %d: %v", opts.Version, err)
			continue
		}
		assertSpritePixels(t, b)
		b.Free()
	}
}

func TestEncodeBitmapRejectsCompressedOldVersion(t *testing.T) {
	alloc := NewMemoryHost(MemoryHostConfig{})
	b := patternBitmap(t, alloc, containerSprite...)
	defer b.Free()
	if _, err := EncodeBitmap(b, EncodeOptions{Version: 2, Compress: true}); !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}

func TestNewBitmapFromContainerTruncatedHeader(t *testing.T) {
	data := encodeTestBitmap(t, EncodeOptions{})
	_, err := NewBitmapFromContainer(NewMemoryHost(MemoryHostConfig{}), data[:20])
	var fe *FormatError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v, want a FormatError", err)
	}
	if fe.Offset != 20 {
		t.Errorf("Offset = %d, want 20", fe.Offset)
	}
	if !errors.Is(err, ErrFormat) {
		t.Error("FormatError does not match ErrFormat")
	}
}

func TestNewBitmapFromContainerRejectsInconsistentHeaders(t *testing.T) {
	tests := []struct {
		name   string
		offset int
		value  uint32
	}{
		{"version 0", 0, 0},
		{"rowbytes not word aligned", 28, 3},
		{"rowbytes too small", 28, 0},
		{"crop outside bitmap", 12, 3},
		{"huge width", 4, 1 << 30},
	}
	for _, tt := range tests {
		data := encodeTestBitmap(t, EncodeOptions{})
		binary.BigEndian.PutUint32(data[tt.offset:], tt.value)
		_, err := NewBitmapFromContainer(NewMemoryHost(MemoryHostConfig{}), data)
		if !errors.Is(err, ErrFormat) {
			t.Errorf("%s: err = %v, want ErrFormat", tt.name, err)
		}
	}
}

func TestLoadBitmapContainerTruncatedRunsFreeEverything(t *testing.T) {
	data := encodeTestBitmap(t, EncodeOptions{Compress: true})
	host := hostWithFile("s.inkb", data[:len(data)-2])

	_, err := LoadBitmapContainer(host, "s.inkb")
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("err = %v, want ErrFormat", err)
	}
	if host.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", host.Outstanding())
	}
}

func TestLoadBitmapContainerAllocationFailure(t *testing.T) {
	data := encodeTestBitmap(t, EncodeOptions{Compress: true})
	host := hostWithFile("s.inkb", data)
	host.FailAllocationsAfter(1)

	_, err := LoadBitmapContainer(host, "s.inkb")
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("err = %v, want ErrAllocation", err)
	}
	if host.Outstanding() != 0 {
		t.Errorf("Outstanding = %d, want 0", host.Outstanding())
	}
}

func TestLoadBitmapContainerMissingFile(t *testing.T) {
	host := hostWithFile("s.inkb", nil)
	if _, err := LoadBitmapContainer(host, "nope.inkb"); !errors.Is(err, ErrIO) {
		t.Errorf("err = %v, want ErrIO", err)
	}
}

func TestCompressRuns(t *testing.T) {
	src := make([]byte, 600)
	src[599] = 7
	got := compress(src)
	want := []byte{255, 0, 255, 0, 89, 0, 1, 7}
	if !bytes.Equal(got, want) {
		t.Fatalf("compress = %v, want %v", got, want)
	}

	dst := make([]byte, 600)
	r := &containerReader{buf: got}
	decompress(dst, r)
	if r.err != nil {
		t.Fatalf("decompress: %v", r.err)
	}
	if !bytes.Equal(dst, src) {
		t.Error("decompress did not restore the input")
	}
}

func TestDecompressTruncatesOvershootingRun(t *testing.T) {
	dst := make([]byte, 3)
	r := &containerReader{buf: []byte{5, 0xAA}}
	decompress(dst, r)
	if r.err != nil {
		t.Fatalf("decompress: %v", r.err)
	}
	if !bytes.Equal(dst, []byte{0xAA, 0xAA, 0xAA}) {
		t.Errorf("dst = %v", dst)
	}
}
