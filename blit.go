package inkwell

import "encoding/binary"

// srcWord returns the i-th 32-bit big-endian word of row, or 0 when i is
// outside the row.
func srcWord(row []byte, i int) uint32 {
	if i < 0 || (i+1)*4 > len(row) {
		return 0
	}
	return binary.BigEndian.Uint32(row[i*4:])
}

// spanMask selects the bits of the word starting at column wx that fall in
// columns [x1, x2).
func spanMask(wx, x1, x2 int) uint32 {
	lo := max(x1-wx, 0)
	hi := min(x2-wx, 32)
	return (0xFFFFFFFF >> uint(lo)) &^ (0xFFFFFFFF >> uint(hi))
}

// blit composites the crop region of b with its top-left at device pixel
// (x, y) into frame, touching only pixels inside clip. clip must lie inside
// the frame. Dirty rows are reported once for the whole blit.
func blit(fs FrameSource, frame Frame, b *Bitmap, x, y int, clip Rect) {
	x1 := max(x, clip.X)
	y1 := max(y, clip.Y)
	x2 := min(x+b.bw, clip.X+clip.Width)
	y2 := min(y+b.bh, clip.Y+clip.Height)
	if x1 >= x2 || y1 >= y2 {
		return
	}

	ws := x1 &^ 31
	words := (x2 - ws + 31) / 32
	first := spanMask(ws, x1, x2)
	last := spanMask(ws+(words-1)*32, x1, x2)
	if words == 1 {
		first &= last
	}

	for row := y1; row < y2; row++ {
		sy := row - y
		data := b.data[sy*b.rowbytes : (sy+1)*b.rowbytes]
		var mask []byte
		if b.mask != nil {
			mask = b.mask[sy*b.rowbytes : (sy+1)*b.rowbytes]
		}
		dst := frame.Pix[row*frame.Stride+ws/8:]

		if x >= ws {
			// The bitmap starts inside the first word: shift right and
			// carry the low bits of each source word into the next one.
			shift := uint(x - ws)
			var carryData, carryMask uint32
			for k := 0; k < words; k++ {
				d := srcWord(data, k)
				src := d>>shift | carryData
				carryData = d << (32 - shift)

				m := uint32(0xFFFFFFFF)
				if mask != nil {
					mw := srcWord(mask, k)
					m = mw>>shift | carryMask
					carryMask = mw << (32 - shift)
				}
				composite(dst[k*4:], src, m, boundary(k, words, first, last))
			}
		} else {
			// The bitmap starts left of the first word: shift left and pull
			// the high bits of the next source word in.
			s := ws - x
			i0 := s / 32
			shift := uint(s % 32)
			nextData := srcWord(data, i0)
			var nextMask uint32
			if mask != nil {
				nextMask = srcWord(mask, i0)
			}
			for k := 0; k < words; k++ {
				d := srcWord(data, i0+k+1)
				src := nextData<<shift | d>>(32-shift)
				nextData = d

				m := uint32(0xFFFFFFFF)
				if mask != nil {
					mw := srcWord(mask, i0+k+1)
					m = nextMask<<shift | mw>>(32-shift)
					nextMask = mw
				}
				composite(dst[k*4:], src, m, boundary(k, words, first, last))
			}
		}
	}

	fs.MarkUpdatedRows(y1, y2-1)
}

func boundary(k, words int, first, last uint32) uint32 {
	switch k {
	case 0:
		return first
	case words - 1:
		return last
	}
	return 0xFFFFFFFF
}

// composite writes src into the word at dst wherever both mask and clip are
// set.
func composite(dst []byte, src, mask, clip uint32) {
	m := mask & clip
	fb := binary.BigEndian.Uint32(dst)
	binary.BigEndian.PutUint32(dst, fb&^m|src&m)
}
