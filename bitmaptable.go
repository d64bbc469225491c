package inkwell

import (
	"encoding/binary"
	"fmt"
)

// TableOptions configures bitmap-table loading.
type TableOptions struct {
	// SeparateAllocations expands compressed entries into one allocation
	// per plane instead of a single shared arena.
	SeparateAllocations bool
}

// BitmapTable is an ordered set of bitmaps sharing one backing strategy:
// either the container buffer itself (uncompressed entries alias it) or one
// arena holding every decompressed plane.
//
// A bitmap handed out by Bitmap keeps the table's storage alive until that
// bitmap is freed, so freeing the table while members are still held defers
// the release until the last of them is freed.
type BitmapTable struct {
	bitmaps []*Bitmap
	alloc   Allocator
	buffer  []byte
	arena   []byte

	refs     int
	freed    bool
	released bool
}

// Len returns the number of bitmaps.
func (t *BitmapTable) Len() int { return len(t.bitmaps) }

// Bitmap returns the bitmap at index i, or nil when i is out of range.
func (t *BitmapTable) Bitmap(i int) *Bitmap {
	if i < 0 || i >= len(t.bitmaps) || t.released {
		return nil
	}
	b := t.bitmaps[i]
	if !b.tableRef {
		b.tableRef = true
		t.refs++
	}
	return b
}

// Free releases the table. Storage still referenced by handed-out bitmaps is
// released once they are freed.
func (t *BitmapTable) Free() {
	if t.freed {
		return
	}
	t.freed = true
	if t.refs == 0 {
		t.release()
	}
}

func (t *BitmapTable) unref(b *Bitmap) {
	if !b.tableRef {
		return
	}
	b.tableRef = false
	t.refs--
	if t.freed && t.refs == 0 {
		t.release()
	}
}

func (t *BitmapTable) release() {
	if t.released {
		return
	}
	t.released = true
	for _, b := range t.bitmaps {
		if b != nil {
			b.release()
		}
	}
	if t.arena != nil {
		t.alloc.Free(t.arena)
		t.arena = nil
	}
	if t.buffer != nil {
		t.alloc.Free(t.buffer)
		t.buffer = nil
	}
}

// LoadBitmapTable decodes a bitmap table through the host. Every member is
// converted with its own planes, released together with the table.
func LoadBitmapTable(host interface {
	Allocator
	Decoder
}, name string) (*BitmapTable, error) {
	hbs, err := host.DecodeBitmapTable(name)
	if err != nil {
		err = fmt.Errorf("inkwell: load bitmap table %s: %w", name, err)
		logLoadFailure(name, err)
		return nil, err
	}

	t := &BitmapTable{alloc: host, bitmaps: make([]*Bitmap, 0, len(hbs))}
	for i, hb := range hbs {
		b, err := newBitmapFromHost(host, hb, OwnershipTable)
		if err != nil {
			t.release()
			return nil, fmt.Errorf("inkwell: load bitmap table %s entry %d: %w", name, i, err)
		}
		b.table = t
		t.bitmaps = append(t.bitmaps, b)
	}
	return t, nil
}

// LoadBitmapTableContainer reads and parses a bitmap-table container file.
func LoadBitmapTableContainer(host interface {
	Allocator
	FileSystem
}, name string, opts TableOptions) (*BitmapTable, error) {
	buf, err := readFile(host, host, name)
	if err != nil {
		logLoadFailure(name, err)
		return nil, err
	}
	t, err := NewBitmapTableFromContainer(host, buf, opts)
	if err != nil {
		logLoadFailure(name, err)
		return nil, err
	}
	return t, nil
}

// NewBitmapTableFromContainer parses a bitmap-table container and takes
// ownership of buf. Compressed entries are expanded into one arena sized by
// the declared total (version 4) or by a dry run over the entry headers.
func NewBitmapTableFromContainer(alloc Allocator, buf []byte, opts TableOptions) (*BitmapTable, error) {
	t, err := parseTable(alloc, buf, opts)
	if err != nil {
		alloc.Free(buf)
		return nil, fmt.Errorf("inkwell: parse bitmap table container: %w", err)
	}
	return t, nil
}

func parseTable(alloc Allocator, buf []byte, opts TableOptions) (*BitmapTable, error) {
	r := &containerReader{buf: buf}
	version := r.u32("version")
	length := r.u32("length")
	compressed := false
	arenaSize := -1
	if version >= 3 {
		compressed = r.u8("compressed") != 0
		if version >= 4 && compressed {
			arenaSize = r.u32("arena size")
		}
	}
	if version >= 2 {
		r.skip(r.u32("padding_len"), "padding")
	}
	if r.err == nil && length > (len(buf)-r.off)/4 {
		r.fail(fmt.Sprintf("length %d exceeds the buffer", length))
	}
	if r.err != nil {
		return nil, r.err
	}

	entries := make([][]byte, length)
	for i := range entries {
		entries[i] = r.bytes(r.u32("entry size"), "entry")
	}
	if r.err != nil {
		return nil, r.err
	}

	t := &BitmapTable{alloc: alloc, bitmaps: make([]*Bitmap, 0, length)}

	var ar *arena
	if compressed && !opts.SeparateAllocations {
		if arenaSize < 0 {
			size, err := measureArena(entries)
			if err != nil {
				return nil, err
			}
			arenaSize = size
		}
		if arenaSize > 0 {
			mem, err := alloc.Alloc(arenaSize)
			if err != nil {
				logAllocationFailure("bitmap table arena", arenaSize)
				return nil, err
			}
			t.arena = mem
			ar = &arena{buf: mem}
		}
	}

	aliased := false
	for i, entry := range entries {
		b, h, err := parseBitmap(entry, alloc, ar)
		if err != nil {
			t.release()
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		b.ownership = OwnershipTable
		if h.compressed && ar != nil {
			b.ownership = OwnershipArena
		}
		if !h.compressed {
			aliased = true
		}
		b.table = t
		t.bitmaps = append(t.bitmaps, b)
	}

	if aliased {
		t.buffer = buf
	} else {
		alloc.Free(buf)
	}
	return t, nil
}

// measureArena sums the decompressed plane sizes of every compressed entry.
func measureArena(entries [][]byte) (int, error) {
	total := 0
	for i, entry := range entries {
		r := &containerReader{buf: entry}
		h := readHeader(r)
		if r.err != nil {
			return 0, fmt.Errorf("entry %d: %w", i, r.err)
		}
		if h.compressed {
			total += h.planeSize() * h.planes()
		}
	}
	return total, nil
}

// EncodeBitmapTable serializes bitmaps into the bitmap-table container
// format. Version 4 compressed tables record the arena size.
func EncodeBitmapTable(bitmaps []*Bitmap, opts EncodeOptions) ([]byte, error) {
	version := opts.version(TableContainerVersion)
	if opts.Compress && version < 3 {
		return nil, fmt.Errorf("inkwell: table container version %d cannot be compressed: %w", version, ErrFormat)
	}

	out := binary.BigEndian.AppendUint32(nil, uint32(version))
	out = binary.BigEndian.AppendUint32(out, uint32(len(bitmaps)))
	if version >= 3 {
		out = append(out, boolByte(opts.Compress))
		if version >= 4 && opts.Compress {
			total := 0
			for _, b := range bitmaps {
				planes := 1
				if b.mask != nil {
					planes = 2
				}
				total += b.rowbytes * b.bh * planes
			}
			out = binary.BigEndian.AppendUint32(out, uint32(total))
		}
	}
	if version >= 2 {
		out = binary.BigEndian.AppendUint32(out, uint32(opts.Padding))
		out = append(out, make([]byte, opts.Padding)...)
	}

	entryVersion := min(version, ContainerVersion)
	entryOpts := EncodeOptions{Compress: opts.Compress}
	for _, b := range bitmaps {
		entry := appendBitmap(nil, b, entryVersion, entryOpts)
		out = binary.BigEndian.AppendUint32(out, uint32(len(entry)))
		out = append(out, entry...)
	}
	return out, nil
}
