package vision

import "image"

// tan(22.5 deg); tan(67.5 deg) = tg22 + 2.
const tg22 = 0.4142135623730950488

const (
	edgeNone uint8 = iota
	edgeWeak
	edgeStrong
)

// Canny detects edges with a 3x3 Sobel operator, L1 gradient magnitude,
// non-maximum suppression and hysteresis between low and high. Edge pixels
// are 255, everything else 0.
func Canny(g *image.Gray, low, high float64) *image.Gray {
	if low > high {
		low, high = high, low
	}
	lo, hi := int32(low), int32(high)

	src, w, h := dense(g)
	out := image.NewGray(g.Bounds())
	if w == 0 || h == 0 {
		return out
	}

	dx := make([]int32, w*h)
	dy := make([]int32, w*h)
	mag := make([]int32, w*h)
	at := func(x, y int) int32 {
		return int32(src[reflect101(y, h)*w+reflect101(x, w)])
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := (at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x-1, y) + at(x-1, y+1))
			gy := (at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)) -
				(at(x-1, y-1) + 2*at(x, y-1) + at(x+1, y-1))
			i := y*w + x
			dx[i], dy[i] = gx, gy
			mag[i] = abs32(gx) + abs32(gy)
		}
	}
	// Magnitudes outside the image count as zero for suppression.
	m := func(x, y int) int32 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	class := make([]uint8, w*h)
	var stack []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := mag[i]
			if v <= lo {
				continue
			}
			ax, ay := float64(abs32(dx[i])), float64(abs32(dy[i]))
			t22 := ax * tg22
			var keep bool
			switch {
			case ay < t22:
				keep = v > m(x-1, y) && v >= m(x+1, y)
			case ay > t22+2*ax:
				keep = v > m(x, y-1) && v >= m(x, y+1)
			default:
				s := 1
				if (dx[i] ^ dy[i]) < 0 {
					s = -1
				}
				keep = v > m(x-s, y-1) && v > m(x+s, y+1)
			}
			if !keep {
				continue
			}
			if v > hi {
				class[i] = edgeStrong
				stack = append(stack, i)
			} else {
				class[i] = edgeWeak
			}
		}
	}

	// Hysteresis: grow strong edges through 8-connected weak pixels.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%w, i/w
		out.Pix[y*out.Stride+x] = 255
		for ny := y - 1; ny <= y+1; ny++ {
			for nx := x - 1; nx <= x+1; nx++ {
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if class[j] == edgeWeak {
					class[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
