package inkwell

import "fmt"

// Ownership records who releases a bitmap's pixel storage.
type Ownership uint8

const (
	// OwnershipOwned bitmaps release their planes on Free.
	OwnershipOwned Ownership = iota
	// OwnershipArena bitmaps live in their table's shared decompression arena.
	OwnershipArena
	// OwnershipTable bitmaps are released together with their table.
	OwnershipTable
)

func (o Ownership) String() string {
	switch o {
	case OwnershipOwned:
		return "owned"
	case OwnershipArena:
		return "arena"
	case OwnershipTable:
		return "table"
	}
	return fmt.Sprintf("Ownership(%d)", uint8(o))
}

// Bitmap is a cropped 1-bpp image with an optional 1-bpp alpha mask. Only
// the crop rectangle (the bounding box of opaque pixels) is stored, in rows
// of RowBytes bytes, which is always a multiple of 4.
type Bitmap struct {
	width, height  int
	bx, by, bw, bh int
	rowbytes       int
	data, mask     []byte

	ownership Ownership
	alloc     Allocator
	// allocs are the buffers released together with this bitmap's storage.
	allocs [][]byte

	table    *BitmapTable
	tableRef bool
	freed    bool
}

// Width returns the full, uncropped width.
func (b *Bitmap) Width() int { return b.width }

// Height returns the full, uncropped height.
func (b *Bitmap) Height() int { return b.height }

// Bounds returns the crop rectangle relative to the full bitmap.
func (b *Bitmap) Bounds() Rect { return Rect{X: b.bx, Y: b.by, Width: b.bw, Height: b.bh} }

// RowBytes returns the stride of the stored planes.
func (b *Bitmap) RowBytes() int { return b.rowbytes }

// Data returns the stored data plane.
func (b *Bitmap) Data() []byte { return b.data }

// Mask returns the stored mask plane, or nil for opaque bitmaps.
func (b *Bitmap) Mask() []byte { return b.mask }

// HasMask reports whether the bitmap carries a mask plane.
func (b *Bitmap) HasMask() bool { return b.mask != nil }

// Ownership reports who releases the bitmap's storage.
func (b *Bitmap) Ownership() Ownership { return b.ownership }

// Table returns the table the bitmap belongs to, if any.
func (b *Bitmap) Table() *BitmapTable { return b.table }

// ColorAt samples the pixel at (x, y) in full-bitmap coordinates.
func (b *Bitmap) ColorAt(x, y int) Color {
	if x < b.bx || x >= b.bx+b.bw || y < b.by || y >= b.by+b.bh {
		return ColorClear
	}
	sx := x - b.bx
	sy := y - b.by
	i := sy*b.rowbytes + sx/8
	bit := byte(0x80) >> (sx % 8)

	if b.mask != nil && b.mask[i]&bit == 0 {
		return ColorClear
	}
	if b.data[i]&bit != 0 {
		return ColorWhite
	}
	return ColorBlack
}

// Free releases the bitmap. Owned bitmaps give their planes back to the
// allocator. Table members only drop the keep-alive they hold on their
// table; the storage goes away with the table.
func (b *Bitmap) Free() {
	switch b.ownership {
	case OwnershipOwned:
		b.release()
	case OwnershipArena, OwnershipTable:
		if b.table != nil {
			b.table.unref(b)
		}
	}
}

func (b *Bitmap) release() {
	if b.freed {
		return
	}
	b.freed = true
	if b.alloc != nil {
		for _, buf := range b.allocs {
			b.alloc.Free(buf)
		}
	}
	b.allocs = nil
	b.data = nil
	b.mask = nil
	b.bw, b.bh = 0, 0
}

// LoadBitmap decodes name through the host and converts it.
func LoadBitmap(host interface {
	Allocator
	Decoder
}, name string) (*Bitmap, error) {
	hb, err := host.DecodeBitmap(name)
	if err != nil {
		err = fmt.Errorf("inkwell: load bitmap %s: %w", name, err)
		logLoadFailure(name, err)
		return nil, err
	}
	return NewBitmapFromHost(host, hb)
}

// NewBitmapFromHost converts a decoded host image, cropping it to the
// bounding box of its mask and repacking rows to word-aligned strides.
// Images without a mask are never cropped.
func NewBitmapFromHost(alloc Allocator, hb *HostBitmap) (*Bitmap, error) {
	return newBitmapFromHost(alloc, hb, OwnershipOwned)
}

func newBitmapFromHost(alloc Allocator, hb *HostBitmap, ownership Ownership) (*Bitmap, error) {
	if hb == nil || hb.Data == nil {
		return nil, fmt.Errorf("inkwell: host bitmap has no data: %w", ErrFormat)
	}
	need := hb.RowBytes * hb.Height
	if hb.Width < 0 || hb.Height < 0 || hb.RowBytes*8 < hb.Width || len(hb.Data) < need ||
		(hb.Mask != nil && len(hb.Mask) < need) {
		return nil, &FormatError{Reason: fmt.Sprintf("host bitmap %dx%d rowbytes %d does not fit its planes", hb.Width, hb.Height, hb.RowBytes)}
	}

	bounds := opaqueBounds(hb.Mask, hb.RowBytes, hb.Width, hb.Height)
	rowbytes := alignedRowBytes(bounds.Width)
	size := rowbytes * bounds.Height

	data, mask, err := allocPlanes(alloc, size, hb.Mask != nil)
	if err != nil {
		return nil, err
	}

	b := &Bitmap{
		width:     hb.Width,
		height:    hb.Height,
		bx:        bounds.X,
		by:        bounds.Y,
		bw:        bounds.Width,
		bh:        bounds.Height,
		rowbytes:  rowbytes,
		data:      data,
		ownership: ownership,
		alloc:     alloc,
		allocs:    [][]byte{data},
	}
	alignRows(data, hb.Data, rowbytes, hb.RowBytes, bounds)
	if mask != nil {
		b.mask = mask
		b.allocs = append(b.allocs, mask)
		alignRows(mask, hb.Mask, rowbytes, hb.RowBytes, bounds)
	}
	return b, nil
}

// alignedRowBytes returns the word-aligned stride for width pixels.
func alignedRowBytes(width int) int {
	return ((width + 31) / 32) * 4
}

// opaqueBounds returns the bounding box of set bits in mask. A nil mask is
// fully opaque. A mask with no set bits yields an empty rect.
func opaqueBounds(mask []byte, rowbytes, width, height int) Rect {
	if mask == nil {
		return Rect{Width: width, Height: height}
	}
	minX, minY := width, height
	maxX, maxY := -1, -1
	for y := 0; y < height; y++ {
		row := mask[y*rowbytes:]
		for x := 0; x < width; x++ {
			if row[x/8]&(0x80>>(x%8)) == 0 {
				continue
			}
			minX = min(minX, x)
			maxX = max(maxX, x)
			minY = min(minY, y)
			maxY = y
		}
	}
	if maxX < 0 {
		return Rect{}
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX + 1, Height: maxY - minY + 1}
}

// alignRows copies the bits of src inside r into dst, one dst row of
// dstStride bytes per source row, starting every row at bit 0. Bits past
// r.Width are zero.
func alignRows(dst, src []byte, dstStride, srcStride int, r Rect) {
	fullBytes := r.Width / 8
	tail := r.Width % 8
	for y := 0; y < r.Height; y++ {
		srow := src[(r.Y+y)*srcStride : (r.Y+y+1)*srcStride]
		drow := dst[y*dstStride : (y+1)*dstStride]
		clear(drow)
		for j := 0; j < fullBytes; j++ {
			drow[j] = bitsAt(srow, r.X+j*8)
		}
		if tail > 0 {
			drow[fullBytes] = bitsAt(srow, r.X+fullBytes*8) & (0xFF << (8 - tail))
		}
	}
}

// bitsAt returns the 8 bits of row starting at bit offset off. Bits past the
// end of row read as zero.
func bitsAt(row []byte, off int) byte {
	i := off / 8
	s := uint(off % 8)
	var hi, lo byte
	if i < len(row) {
		hi = row[i]
	}
	if s == 0 {
		return hi
	}
	if i+1 < len(row) {
		lo = row[i+1]
	}
	return hi<<s | lo>>(8-s)
}
