package vision

import (
	"image"
	"math"
)

// Binomial tables used when sigma is derived from the kernel size.
var smallGaussian = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianKernel returns a normalized 1-D kernel of odd size ksize.
// With sigma <= 0 the deviation is derived from the size
// (0.3*((ksize-1)*0.5-1) + 0.8) and sizes 1, 3, 5 and 7 use fixed binomial
// tables.
func GaussianKernel(ksize int, sigma float64) []float64 {
	if ksize < 1 {
		ksize = 1
	}
	if ksize%2 == 0 {
		ksize++
	}
	if sigma <= 0 {
		if t, ok := smallGaussian[ksize]; ok {
			return append([]float64(nil), t...)
		}
		sigma = 0.3*(float64(ksize-1)*0.5-1) + 0.8
	}
	k := make([]float64, ksize)
	half := ksize / 2
	var sum float64
	for i := range k {
		x := float64(i - half)
		k[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k
}

// GaussianBlur smooths g with a separable ksize x ksize Gaussian. Borders
// are reflected (reflect-101).
func GaussianBlur(g *image.Gray, ksize int, sigma float64) *image.Gray {
	k := GaussianKernel(ksize, sigma)
	half := len(k) / 2
	src, w, h := dense(g)
	out := image.NewGray(g.Bounds())
	if w == 0 || h == 0 {
		return out
	}

	tmp := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := src[y*w : (y+1)*w]
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * float64(row[reflect101(x+i-half, w)])
			}
			tmp[y*w+x] = acc
		}
	}
	for y := 0; y < h; y++ {
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < w; x++ {
			var acc float64
			for i, kv := range k {
				acc += kv * tmp[reflect101(y+i-half, h)*w+x]
			}
			dst[x] = clamp8(acc)
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return uint8(v)
}
