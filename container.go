package inkwell

import (
	"encoding/binary"
	"fmt"
)

// Container format versions.
//
//	v1: header, has_mask, planes
//	v2: adds a padding block after the header
//	v3: adds a compressed flag (run-length planes)
//	v4: tables carry the total decompressed arena size
const (
	ContainerVersion      = 3
	TableContainerVersion = 4
)

// maxDimension rejects header values that cannot describe a real bitmap and
// would overflow size arithmetic.
const maxDimension = 1 << 20

// containerReader is a big-endian cursor that turns every out-of-bounds read
// into a FormatError instead of a panic. After the first error all reads
// return zero.
type containerReader struct {
	buf []byte
	off int
	err error
}

func (r *containerReader) fail(reason string) {
	if r.err == nil {
		r.err = &FormatError{Offset: r.off, Reason: reason}
	}
}

func (r *containerReader) need(n int, field string) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || len(r.buf)-r.off < n {
		r.fail(fmt.Sprintf("%s needs %d bytes, %d left", field, n, len(r.buf)-r.off))
		return false
	}
	return true
}

func (r *containerReader) u32(field string) int {
	if !r.need(4, field) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.off:])
	r.off += 4
	if v > 1<<31-1 {
		r.fail(fmt.Sprintf("%s out of range: %d", field, v))
		return 0
	}
	return int(v)
}

func (r *containerReader) u8(field string) byte {
	if !r.need(1, field) {
		return 0
	}
	v := r.buf[r.off]
	r.off++
	return v
}

func (r *containerReader) skip(n int, field string) {
	if r.need(n, field) {
		r.off += n
	}
}

func (r *containerReader) bytes(n int, field string) []byte {
	if !r.need(n, field) {
		return nil
	}
	b := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return b
}

// containerHeader is the fixed part of a single-bitmap container.
type containerHeader struct {
	version        int
	width, height  int
	bx, by, bw, bh int
	rowbytes       int
	hasMask        bool
	compressed     bool
}

func (h containerHeader) planeSize() int { return h.rowbytes * h.bh }

func (h containerHeader) planes() int {
	if h.hasMask {
		return 2
	}
	return 1
}

// readHeader parses and validates a bitmap header, leaving r at the first
// plane byte.
func readHeader(r *containerReader) containerHeader {
	var h containerHeader
	h.version = r.u32("version")
	h.width = r.u32("width")
	h.height = r.u32("height")
	h.bx = r.u32("bx")
	h.by = r.u32("by")
	h.bw = r.u32("bw")
	h.bh = r.u32("bh")
	h.rowbytes = r.u32("rowbytes")
	h.hasMask = r.u8("has_mask") != 0
	if h.version >= 3 {
		h.compressed = r.u8("compressed") != 0
	}
	if h.version >= 2 {
		r.skip(r.u32("padding_len"), "padding")
	}
	if r.err != nil {
		return h
	}

	switch {
	case h.version < 1:
		r.fail(fmt.Sprintf("unsupported version %d", h.version))
	case h.width > maxDimension || h.height > maxDimension || h.rowbytes > maxDimension:
		r.fail(fmt.Sprintf("dimensions %dx%d rowbytes %d out of range", h.width, h.height, h.rowbytes))
	case h.bx+h.bw > h.width || h.by+h.bh > h.height:
		r.fail(fmt.Sprintf("crop %d,%d %dx%d outside %dx%d", h.bx, h.by, h.bw, h.bh, h.width, h.height))
	case h.rowbytes%4 != 0 || h.rowbytes*8 < h.bw:
		r.fail(fmt.Sprintf("rowbytes %d cannot hold %d pixels word aligned", h.rowbytes, h.bw))
	}
	return h
}

// decompress expands (count, value) run pairs from r until dst is full.
// Runs that overshoot dst are truncated.
func decompress(dst []byte, r *containerReader) {
	i := 0
	for i < len(dst) {
		count := int(r.u8("run count"))
		value := r.u8("run value")
		if r.err != nil {
			return
		}
		n := min(count, len(dst)-i)
		for end := i + n; i < end; i++ {
			dst[i] = value
		}
	}
}

// compress encodes src as (count, value) runs of at most 255 bytes.
func compress(src []byte) []byte {
	out := make([]byte, 0, len(src)/2+2)
	for i := 0; i < len(src); {
		v := src[i]
		n := 1
		for i+n < len(src) && src[i+n] == v && n < 255 {
			n++
		}
		out = append(out, byte(n), v)
		i += n
	}
	return out
}

// arena hands out consecutive slices of one shared allocation.
type arena struct {
	buf []byte
	off int
}

func (a *arena) take(n int) ([]byte, bool) {
	if len(a.buf)-a.off < n {
		return nil, false
	}
	b := a.buf[a.off : a.off+n : a.off+n]
	a.off += n
	return b, true
}

// parseBitmap decodes one bitmap container from buf. Compressed planes are
// expanded into ar when it is non-nil, otherwise into buffers from alloc that
// are recorded in the bitmap's allocs. Uncompressed planes alias buf.
func parseBitmap(buf []byte, alloc Allocator, ar *arena) (*Bitmap, containerHeader, error) {
	r := &containerReader{buf: buf}
	h := readHeader(r)
	if r.err != nil {
		return nil, h, r.err
	}

	b := &Bitmap{
		width:    h.width,
		height:   h.height,
		bx:       h.bx,
		by:       h.by,
		bw:       h.bw,
		bh:       h.bh,
		rowbytes: h.rowbytes,
		alloc:    alloc,
	}
	size := h.planeSize()

	if !h.compressed {
		b.data = r.bytes(size, "data plane")
		if h.hasMask {
			b.mask = r.bytes(size, "mask plane")
		}
		if r.err != nil {
			return nil, h, r.err
		}
		return b, h, nil
	}

	if ar != nil {
		var ok bool
		if b.data, ok = ar.take(size); ok && h.hasMask {
			b.mask, ok = ar.take(size)
		}
		if !ok {
			return nil, h, &FormatError{Offset: r.off, Reason: "declared arena size is too small"}
		}
	} else {
		data, mask, err := allocPlanes(alloc, size, h.hasMask)
		if err != nil {
			return nil, h, err
		}
		b.data, b.mask = data, mask
		b.allocs = append(b.allocs, data)
		if mask != nil {
			b.allocs = append(b.allocs, mask)
		}
	}

	decompress(b.data, r)
	if h.hasMask {
		decompress(b.mask, r)
	}
	if r.err != nil {
		b.release()
		return nil, h, r.err
	}
	return b, h, nil
}

// LoadBitmapContainer reads and parses a bitmap container file.
func LoadBitmapContainer(host interface {
	Allocator
	FileSystem
}, name string) (*Bitmap, error) {
	buf, err := readFile(host, host, name)
	if err != nil {
		logLoadFailure(name, err)
		return nil, err
	}
	b, err := NewBitmapFromContainer(host, buf)
	if err != nil {
		logLoadFailure(name, err)
		return nil, err
	}
	return b, nil
}

// NewBitmapFromContainer parses a bitmap container and takes ownership of
// buf. Uncompressed planes alias buf, which is released when the bitmap is
// freed; compressed planes are expanded into new buffers and buf is released
// right away.
func NewBitmapFromContainer(alloc Allocator, buf []byte) (*Bitmap, error) {
	b, h, err := parseBitmap(buf, alloc, nil)
	if err != nil {
		alloc.Free(buf)
		return nil, fmt.Errorf("inkwell: parse bitmap container: %w", err)
	}
	b.ownership = OwnershipOwned
	if h.compressed {
		alloc.Free(buf)
	} else {
		b.allocs = [][]byte{buf}
	}
	return b, nil
}

// EncodeOptions configures container encoding.
type EncodeOptions struct {
	// Version of the container layout. Zero selects the latest.
	Version int
	// Compress run-length encodes the planes (version 3 and later).
	Compress bool
	// Padding is the number of zero bytes written after the header
	// (version 2 and later).
	Padding int
}

func (o EncodeOptions) version(latest int) int {
	if o.Version <= 0 {
		return latest
	}
	return o.Version
}

// EncodeBitmap serializes b into the bitmap container format.
func EncodeBitmap(b *Bitmap, opts EncodeOptions) ([]byte, error) {
	version := opts.version(ContainerVersion)
	if opts.Compress && version < 3 {
		return nil, fmt.Errorf("inkwell: container version %d cannot be compressed: %w", version, ErrFormat)
	}
	return appendBitmap(nil, b, version, opts), nil
}

func appendBitmap(out []byte, b *Bitmap, version int, opts EncodeOptions) []byte {
	for _, v := range [...]int{version, b.width, b.height, b.bx, b.by, b.bw, b.bh, b.rowbytes} {
		out = binary.BigEndian.AppendUint32(out, uint32(v))
	}
	out = append(out, boolByte(b.mask != nil))
	if version >= 3 {
		out = append(out, boolByte(opts.Compress))
	}
	if version >= 2 {
		out = binary.BigEndian.AppendUint32(out, uint32(opts.Padding))
		out = append(out, make([]byte, opts.Padding)...)
	}

	size := b.rowbytes * b.bh
	planes := [][]byte{b.data[:size]}
	if b.mask != nil {
		planes = append(planes, b.mask[:size])
	}
	for _, p := range planes {
		if opts.Compress {
			out = append(out, compress(p)...)
		} else {
			out = append(out, p...)
		}
	}
	return out
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}
