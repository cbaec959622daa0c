// Package vision prepares camera frames for shape extraction and extracts
// external contours from binary edge maps.
//
// Everything here works on the standard image types: inputs are any
// image.Image, intermediate and output maps are *image.Gray with the input's
// bounds.
package vision

import "image"

// Luma weights 0.299, 0.587, 0.114 in 14-bit fixed point (they sum to 1<<14).
const (
	lumaR     = 4899
	lumaG     = 9617
	lumaB     = 1868
	lumaShift = 14
)

func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*lumaR + uint32(g)*lumaG + uint32(b)*lumaB + 1<<(lumaShift-1)) >> lumaShift)
}

// Grayscale reduces img to one luminance channel.
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(b)
	w := b.Dx()

	switch src := img.(type) {
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			copy(out.Pix[out.PixOffset(b.Min.X, y):][:w], src.Pix[src.PixOffset(b.Min.X, y):][:w])
		}
	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			si := src.PixOffset(b.Min.X, y)
			row := out.Pix[out.PixOffset(b.Min.X, y):][:w]
			for x := range row {
				row[x] = luma(src.Pix[si], src.Pix[si+1], src.Pix[si+2])
				si += 4
			}
		}
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			si := src.PixOffset(b.Min.X, y)
			row := out.Pix[out.PixOffset(b.Min.X, y):][:w]
			for x := range row {
				row[x] = luma(src.Pix[si], src.Pix[si+1], src.Pix[si+2])
				si += 4
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := out.Pix[out.PixOffset(b.Min.X, y):][:w]
			for x := range row {
				r, g, bl, _ := img.At(b.Min.X+x, y).RGBA()
				row[x] = luma(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
			}
		}
	}
	return out
}

// dense copies g into a contiguous w*h buffer (Stride may exceed width).
func dense(g *image.Gray) (pix []uint8, w, h int) {
	b := g.Bounds()
	w, h = b.Dx(), b.Dy()
	if g.Stride == w {
		return g.Pix[:w*h], w, h
	}
	pix = make([]uint8, w*h)
	for y := 0; y < h; y++ {
		copy(pix[y*w:(y+1)*w], g.Pix[g.PixOffset(b.Min.X, b.Min.Y+y):])
	}
	return pix, w, h
}

// reflect101 maps an out-of-range index into [0,n) mirroring around the edge
// pixel without repeating it: -1 -> 1, n -> n-2.
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}
