package inkwell

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	_ "image/png"
	"io"
	"io/fs"
	"math"
	"path"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// MemoryHostConfig configures a MemoryHost. Zero fields take the device
// defaults.
type MemoryHostConfig struct {
	Width, Height int
	// FS serves container and image files. Nil means no files.
	FS fs.FS
	// AllocLimit caps the bytes outstanding at once. Zero is unlimited.
	AllocLimit int
}

// MemoryHost is a Host over an in-memory frame and an fs.FS. It counts
// allocations, recycles freed buffers, and can be told to fail allocations.
type MemoryHost struct {
	frame Frame
	fsys  fs.FS

	pool        bufferPool
	limit       int
	outstanding int
	failAfter   int
	allocSizes  []int
	frees       int

	dirty      bool
	dirtyStart int
	dirtyEnd   int
	markCalls  int
}

// NewMemoryHost creates a host with a cleared (black) frame.
func NewMemoryHost(cfg MemoryHostConfig) *MemoryHost {
	w, h := cfg.Width, cfg.Height
	if w <= 0 {
		w = ScreenWidth
	}
	if h <= 0 {
		h = ScreenHeight
	}
	stride := alignedRowBytes(w)
	return &MemoryHost{
		frame:     Frame{Pix: make([]byte, stride*h), Stride: stride, Width: w, Height: h},
		fsys:      cfg.FS,
		limit:     cfg.AllocLimit,
		failAfter: -1,
	}
}

// Frame implements FrameSource.
func (h *MemoryHost) Frame() Frame { return h.frame }

// MarkUpdatedRows implements FrameSource. Marked ranges accumulate until
// ResetDirtyRows.
func (h *MemoryHost) MarkUpdatedRows(start, end int) {
	h.markCalls++
	if !h.dirty {
		h.dirty = true
		h.dirtyStart, h.dirtyEnd = start, end
		return
	}
	h.dirtyStart = min(h.dirtyStart, start)
	h.dirtyEnd = max(h.dirtyEnd, end)
}

// DirtyRows returns the union of rows marked since the last reset.
func (h *MemoryHost) DirtyRows() (start, end int, ok bool) {
	return h.dirtyStart, h.dirtyEnd, h.dirty
}

// MarkCalls returns how many times MarkUpdatedRows was called since the
// last reset.
func (h *MemoryHost) MarkCalls() int { return h.markCalls }

// ResetDirtyRows forgets marked rows.
func (h *MemoryHost) ResetDirtyRows() {
	h.dirty = false
	h.markCalls = 0
}

// Alloc implements Allocator.
func (h *MemoryHost) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("inkwell: negative allocation %d: %w", size, ErrAllocation)
	}
	if h.failAfter == 0 {
		return nil, fmt.Errorf("inkwell: injected failure for %d bytes: %w", size, ErrAllocation)
	}
	if h.limit > 0 && h.outstanding+size > h.limit {
		return nil, fmt.Errorf("inkwell: %d bytes exceeds limit (%d outstanding of %d): %w", size, h.outstanding, h.limit, ErrAllocation)
	}
	if h.failAfter > 0 {
		h.failAfter--
	}
	h.outstanding += size
	h.allocSizes = append(h.allocSizes, size)
	return h.pool.acquire(size), nil
}

// Free implements Allocator.
func (h *MemoryHost) Free(buf []byte) {
	if buf == nil {
		return
	}
	h.frees++
	h.outstanding = max(h.outstanding-len(buf), 0)
	h.pool.release(buf)
}

// FailAllocationsAfter makes every allocation after the next n fail. A
// negative n turns injection off.
func (h *MemoryHost) FailAllocationsAfter(n int) { h.failAfter = n }

// AllocSizes returns the size of every successful allocation, in order.
func (h *MemoryHost) AllocSizes() []int { return h.allocSizes }

// Frees returns how many buffers were freed.
func (h *MemoryHost) Frees() int { return h.frees }

// Outstanding returns the bytes allocated and not yet freed.
func (h *MemoryHost) Outstanding() int { return h.outstanding }

// Open implements FileSystem.
func (h *MemoryHost) Open(name string) (File, error) {
	if h.fsys == nil {
		return nil, fmt.Errorf("inkwell: open %s: %w", name, ErrNotFound)
	}
	f, err := h.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	if rs, ok := f.(File); ok {
		return rs, nil
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, err
	}
	return nopSeekCloser{bytes.NewReader(data)}, nil
}

type nopSeekCloser struct{ *bytes.Reader }

func (nopSeekCloser) Close() error { return nil }

// DecodeBitmap implements Decoder for PNG, GIF and BMP files.
func (h *MemoryHost) DecodeBitmap(name string) (*HostBitmap, error) {
	img, err := h.decodeImage(name)
	if err != nil {
		return nil, err
	}
	return HostBitmapFromImage(img), nil
}

// DecodeBitmapTable implements Decoder. A GIF yields one entry per frame;
// any other name is expanded to the sequence name-table-1.ext,
// name-table-2.ext and so on.
func (h *MemoryHost) DecodeBitmapTable(name string) ([]*HostBitmap, error) {
	ext := path.Ext(name)
	if strings.EqualFold(ext, ".gif") {
		return h.decodeGIFTable(name)
	}

	base := strings.TrimSuffix(name, ext)
	var out []*HostBitmap
	for i := 1; ; i++ {
		img, err := h.decodeImage(fmt.Sprintf("%s-table-%d%s", base, i, ext))
		if err != nil {
			if len(out) == 0 {
				return nil, err
			}
			break
		}
		out = append(out, HostBitmapFromImage(img))
	}
	return out, nil
}

func (h *MemoryHost) decodeImage(name string) (image.Image, error) {
	f, err := h.Open(name)
	if err != nil {
		return nil, wrapIO("open "+name, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("inkwell: decode %s: %w", name, err)
	}
	return img, nil
}

func (h *MemoryHost) decodeGIFTable(name string) ([]*HostBitmap, error) {
	f, err := h.Open(name)
	if err != nil {
		return nil, wrapIO("open "+name, err)
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		return nil, fmt.Errorf("inkwell: decode %s: %w", name, err)
	}

	// Frames are deltas; composite them onto a running canvas.
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	canvas := image.NewNRGBA(bounds)
	out := make([]*HostBitmap, 0, len(g.Image))
	for i, frame := range g.Image {
		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		snapshot := image.NewNRGBA(bounds)
		copy(snapshot.Pix, canvas.Pix)
		out = append(out, HostBitmapFromImage(snapshot))
		if i < len(g.Disposal) && g.Disposal[i] == gif.DisposalBackground {
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		}
	}
	return out, nil
}

// bufferPool recycles byte buffers in power-of-two capacity buckets.
type bufferPool struct {
	buckets map[int][][]byte
}

func (p *bufferPool) acquire(size int) []byte {
	c := nextPowerOfTwo(size)
	if stack := p.buckets[c]; len(stack) > 0 {
		buf := stack[len(stack)-1]
		p.buckets[c] = stack[:len(stack)-1]
		buf = buf[:size]
		clear(buf)
		return buf
	}
	return make([]byte, size, c)
}

func (p *bufferPool) release(buf []byte) {
	c := cap(buf)
	if c == 0 || c != nextPowerOfTwo(c) {
		return
	}
	if p.buckets == nil {
		p.buckets = make(map[int][][]byte)
	}
	p.buckets[c] = append(p.buckets[c], buf[:0])
}

// nextPowerOfTwo returns the smallest power of two >= n (minimum 1).
func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << int(math.Ceil(math.Log2(float64(n))))
}
