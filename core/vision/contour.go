package vision

import "image"

// Contour is a closed boundary as an ordered point list. Straight runs are
// collapsed to their end points.
type Contour []image.Point

// Bounds is the smallest rectangle containing every point.
func (c Contour) Bounds() image.Rectangle {
	if len(c) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: c[0], Max: c[0].Add(image.Pt(1, 1))}
	for _, p := range c[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// Neighbourhood in counter-clockwise order as seen on screen (y grows down):
// E, NE, N, NW, W, SW, S, SE.
var ring = [8]image.Point{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

type border struct {
	hole   bool
	parent int
}

// FindExternalContours returns the outer borders of every shape in bin that
// is not enclosed by another shape. Any non-zero pixel is foreground. Holes
// and shapes nested inside holes are not reported. The result is ordered by
// the raster position of each border's first pixel.
//
// This is Suzuki-Abe border following restricted to borders whose parent is
// the image frame.
func FindExternalContours(bin *image.Gray) []Contour {
	b := bin.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	// One pixel of zero padding so the frame is background.
	W, H := w+2, h+2
	f := make([]int32, W*H)
	src, _, _ := dense(bin)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if src[y*w+x] != 0 {
				f[(y+1)*W+x+1] = 1
			}
		}
	}

	var off [8]int
	for k, d := range ring {
		off[k] = d.Y*W + d.X
	}

	// Index 1 is the frame, a hole border with no parent.
	borders := []border{{}, {hole: true}}
	nbd := int32(1)
	var out []Contour

	for i := 1; i < H-1; i++ {
		lnbd := int32(1)
		for j := 1; j < W-1; j++ {
			p := i*W + j
			v := f[p]
			if v == 0 {
				continue
			}
			var from int
			hole := false
			switch {
			case v == 1 && f[p-1] == 0:
				from = p - 1
			case v >= 1 && f[p+1] == 0:
				hole = true
				from = p + 1
				if v > 1 {
					lnbd = v
				}
			default:
				if v != 1 {
					lnbd = abs32(v)
				}
				continue
			}

			nbd++
			prev := borders[lnbd]
			parent := int(lnbd)
			if prev.hole == hole {
				parent = prev.parent
			}
			borders = append(borders, border{hole: hole, parent: parent})

			pts := follow(f, off, p, from, nbd)
			if !hole && parent == 1 {
				out = append(out, compress(pts, W, b.Min))
			}
			if f[p] != 1 {
				lnbd = abs32(f[p])
			}
		}
	}
	return out
}

// follow traces one border starting at p, entering from the zero pixel at
// from, labelling visited pixels with nbd (or -nbd where the east neighbour
// is background). It returns the visited pixel indices in order.
func follow(f []int32, off [8]int, p, from int, nbd int32) []int {
	dirTo := func(center, nb int) int {
		for k := range off {
			if center+off[k] == nb {
				return k
			}
		}
		return 0
	}

	// Clockwise search from `from` for the first foreground neighbour.
	d := dirTo(p, from)
	first := -1
	for k := 0; k < 8; k++ {
		q := p + off[(d-k+8)%8]
		if f[q] != 0 {
			first = q
			break
		}
	}
	if first < 0 {
		f[p] = -nbd
		return []int{p}
	}

	var pts []int
	prev, cur := first, p
	for {
		d := dirTo(cur, prev)
		eastZero := false
		next := prev
		for k := 1; k <= 8; k++ {
			dd := (d + k) % 8
			q := cur + off[dd]
			if f[q] != 0 {
				next = q
				break
			}
			if dd == 0 {
				eastZero = true
			}
		}
		if eastZero {
			f[cur] = -nbd
		} else if f[cur] == 1 {
			f[cur] = nbd
		}
		pts = append(pts, cur)
		if next == p && cur == first {
			return pts
		}
		prev, cur = cur, next
	}
}

// compress converts padded indices to image points and drops every point
// lying in the middle of a straight run.
func compress(idx []int, W int, origin image.Point) Contour {
	pts := make([]image.Point, len(idx))
	for k, i := range idx {
		pts[k] = image.Pt(i%W-1+origin.X, i/W-1+origin.Y)
	}
	n := len(pts)
	if n < 3 {
		return pts
	}
	out := make(Contour, 0, n)
	for k, cur := range pts {
		prev, next := pts[(k-1+n)%n], pts[(k+1)%n]
		if cur.Sub(prev) == next.Sub(cur) {
			continue
		}
		out = append(out, cur)
	}
	if len(out) == 0 {
		out = append(out, pts[0])
	}
	return out
}
