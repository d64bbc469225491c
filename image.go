package inkwell

import (
	"image"
	"image/color"
	"math"
)

// Thresholds used when reducing an image to 1 bit.
const (
	lumaThreshold  = 127
	alphaThreshold = 127
)

// HostBitmapFromImage reduces img to 1-bpp planes. A pixel is white when its
// luminance is at least 127 and opaque when its alpha is at least 127. The
// mask is omitted when no pixel is translucent.
func HostBitmapFromImage(img image.Image) *HostBitmap {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	rowbytes := alignedRowBytes(w)
	hb := &HostBitmap{
		Width:    w,
		Height:   h,
		RowBytes: rowbytes,
		Data:     make([]byte, rowbytes*h),
	}
	mask := make([]byte, rowbytes*h)
	translucent := false

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			i := y*rowbytes + x/8
			bit := byte(0x80) >> (x % 8)
			luma := math.Round(0.2125*float64(c.R) + 0.7154*float64(c.G) + 0.0721*float64(c.B))
			if luma >= lumaThreshold {
				hb.Data[i] |= bit
			}
			if c.A >= alphaThreshold {
				mask[i] |= bit
			} else {
				translucent = true
			}
		}
	}
	if translucent {
		hb.Mask = mask
	}
	return hb
}

// BitmapFromImage converts img into a cropped bitmap owned by alloc.
func BitmapFromImage(alloc Allocator, img image.Image) (*Bitmap, error) {
	return NewBitmapFromHost(alloc, HostBitmapFromImage(img))
}

// FrameImage copies a 1-bpp frame into a grayscale image.
func FrameImage(f Frame) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		row := f.Pix[y*f.Stride:]
		out := img.Pix[y*img.Stride:]
		for x := 0; x < f.Width; x++ {
			if row[x/8]&(0x80>>(x%8)) != 0 {
				out[x] = 0xFF
			}
		}
	}
	return img
}

// PixelAt reports whether the frame pixel at (x, y) is white.
func (f Frame) PixelAt(x, y int) bool {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return false
	}
	return f.Pix[y*f.Stride+x/8]&(0x80>>(x%8)) != 0
}
