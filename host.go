package inkwell

import "io"

// Frame is a 1-bpp raster. Bits are MSB first; a set bit is a white pixel.
// Stride is a multiple of 4 so every row is a whole number of 32-bit words.
type Frame struct {
	Pix    []byte
	Stride int
	Width  int
	Height int
}

// FrameSource hands out the raster the blitter writes to.
type FrameSource interface {
	Frame() Frame
	// MarkUpdatedRows reports that rows start through end (inclusive) changed.
	MarkUpdatedRows(start, end int)
}

// Allocator supplies raw byte buffers. A failed allocation returns an error
// wrapping ErrAllocation.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte)
}

// File is an open container file.
type File = io.ReadSeekCloser

// FileSystem opens container files by name.
type FileSystem interface {
	Open(name string) (File, error)
}

// HostBitmap is a decoded platform image. Rows are RowBytes apart and bits
// are MSB first. Mask is nil for fully opaque images.
type HostBitmap struct {
	Width, Height int
	RowBytes      int
	Mask          []byte
	Data          []byte
}

// Decoder decodes platform image files into 1-bpp planes.
type Decoder interface {
	DecodeBitmap(name string) (*HostBitmap, error)
	DecodeBitmapTable(name string) ([]*HostBitmap, error)
}

// Host is everything the library consumes from the platform.
type Host interface {
	FrameSource
	Allocator
	FileSystem
	Decoder
}

// readFile reads all of name into a buffer obtained from alloc.
func readFile(fsys FileSystem, alloc Allocator, name string) ([]byte, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, wrapIO("open "+name, err)
	}
	defer f.Close()

	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, wrapIO("seek "+name, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, wrapIO("seek "+name, err)
	}

	buf, err := alloc.Alloc(int(size))
	if err != nil {
		logAllocationFailure(name, int(size))
		return nil, err
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		alloc.Free(buf)
		return nil, wrapIO("read "+name, err)
	}
	return buf, nil
}
