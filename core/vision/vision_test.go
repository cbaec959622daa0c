package vision

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func binary(w, h int, on ...image.Rectangle) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for _, r := range on {
		draw.Draw(g, r, &image.Uniform{C: color.Gray{Y: 255}}, image.Point{}, draw.Src)
	}
	return g
}

func allZero(g *image.Gray) bool {
	for _, v := range g.Pix {
		if v != 0 {
			return false
		}
	}
	return true
}

func TestGrayscale_Luma(t *testing.T) {
	cases := []struct {
		c    color.RGBA
		want uint8
	}{
		{color.RGBA{255, 255, 255, 255}, 255},
		{color.RGBA{0, 0, 0, 255}, 0},
		{color.RGBA{255, 0, 0, 255}, 76},
		{color.RGBA{0, 255, 0, 255}, 150},
		{color.RGBA{0, 0, 255, 255}, 29},
	}
	for _, tc := range cases {
		g := Grayscale(filled(3, 2, tc.c))
		assert.Equal(t, tc.want, g.GrayAt(1, 1).Y, "%v", tc.c)
	}
}

func TestGrayscale_GenericPathMatchesFastPath(t *testing.T) {
	rgba := filled(4, 4, color.RGBA{12, 200, 77, 255})
	nrgba := image.NewNRGBA(rgba.Bounds())
	draw.Draw(nrgba, nrgba.Bounds(), rgba, image.Point{}, draw.Src)
	pal := image.NewPaletted(rgba.Bounds(), color.Palette{color.RGBA{12, 200, 77, 255}})

	want := Grayscale(rgba)
	assert.Equal(t, want.Pix, Grayscale(nrgba).Pix)
	assert.Equal(t, want.Pix, Grayscale(pal).Pix)
}

func TestGrayscale_KeepsBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 20, 50, 44))
	assert.Equal(t, src.Bounds(), Grayscale(src).Bounds())
}

func TestGaussianKernel(t *testing.T) {
	assert.Equal(t, []float64{0.0625, 0.25, 0.375, 0.25, 0.0625}, GaussianKernel(5, 0))

	k := GaussianKernel(9, 0)
	require.Len(t, k, 9)
	var sum float64
	for _, v := range k {
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Greater(t, k[4], k[3])
	assert.InDelta(t, k[0], k[8], 1e-12)

	assert.Len(t, GaussianKernel(4, 0), 5, "even sizes round up")
}

func TestGaussianBlur_UniformStaysUniform(t *testing.T) {
	g := Grayscale(filled(9, 7, color.RGBA{90, 90, 90, 255}))
	out := GaussianBlur(g, 5, 0)
	for _, v := range out.Pix {
		require.Equal(t, uint8(90), v)
	}
}

func TestGaussianBlur_SmoothsStep(t *testing.T) {
	g := binary(10, 1, image.Rect(5, 0, 10, 1))
	out := GaussianBlur(g, 5, 0)
	assert.Equal(t, uint8(0), out.Pix[0])
	assert.Equal(t, uint8(255), out.Pix[9])
	assert.Greater(t, out.Pix[5], out.Pix[4])
	assert.Greater(t, out.Pix[4], uint8(0))
	assert.Less(t, out.Pix[5], uint8(255))
}

func TestCanny_BlankIsBlank(t *testing.T) {
	for _, c := range []color.RGBA{{0, 0, 0, 255}, {255, 255, 255, 255}, {40, 120, 200, 255}} {
		assert.True(t, allZero(Preprocess(filled(32, 24, c))))
	}
}

func TestCanny_SquareProducesEdgesOnlyNearBoundary(t *testing.T) {
	img := filled(40, 40, color.Black)
	draw.Draw(img, image.Rect(10, 10, 30, 30), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	edges := Preprocess(img)
	require.False(t, allZero(edges))

	for y := 0; y < 40; y++ {
		for x := 0; x < 40; x++ {
			if edges.GrayAt(x, y).Y == 0 {
				continue
			}
			assert.Equal(t, uint8(255), edges.GrayAt(x, y).Y)
			near := image.Rect(7, 7, 33, 33)
			inner := image.Rect(13, 13, 27, 27)
			p := image.Pt(x, y)
			assert.True(t, p.In(near) && !p.In(inner), "edge pixel %v away from the square boundary", p)
		}
	}
}

func TestCanny_SwapsThresholds(t *testing.T) {
	img := filled(20, 20, color.Black)
	draw.Draw(img, image.Rect(5, 5, 15, 15), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	g := GaussianBlur(Grayscale(img), 5, 0)
	assert.Equal(t, Canny(g, 50, 150).Pix, Canny(g, 150, 50).Pix)
}

func TestFindExternalContours_Blank(t *testing.T) {
	assert.Empty(t, FindExternalContours(binary(16, 16)))
	assert.Empty(t, EdgeExtractor{}.Extract(filled(16, 16, color.White)))
}

func TestFindExternalContours_RectangleCorners(t *testing.T) {
	cs := FindExternalContours(binary(8, 6, image.Rect(1, 1, 5, 4)))
	require.Len(t, cs, 1)
	assert.ElementsMatch(t, []image.Point{{1, 1}, {1, 3}, {4, 3}, {4, 1}}, []image.Point(cs[0]))
	assert.Equal(t, image.Rect(1, 1, 5, 4), cs[0].Bounds())
}

func TestFindExternalContours_SinglePixelAndLine(t *testing.T) {
	cs := FindExternalContours(binary(5, 5, image.Rect(2, 2, 3, 3)))
	require.Len(t, cs, 1)
	assert.Equal(t, Contour{{2, 2}}, cs[0])

	cs = FindExternalContours(binary(7, 3, image.Rect(1, 1, 4, 2)))
	require.Len(t, cs, 1)
	assert.ElementsMatch(t, []image.Point{{1, 1}, {3, 1}}, []image.Point(cs[0]))
}

func TestFindExternalContours_SeparateShapes(t *testing.T) {
	bin := binary(30, 12,
		image.Rect(1, 1, 6, 6),
		image.Rect(10, 2, 14, 9),
		image.Rect(20, 5, 28, 11),
	)
	cs := FindExternalContours(bin)
	require.Len(t, cs, 3)
	assert.Equal(t, image.Rect(1, 1, 6, 6), cs[0].Bounds())
	assert.Equal(t, image.Rect(10, 2, 14, 9), cs[1].Bounds())
	assert.Equal(t, image.Rect(20, 5, 28, 11), cs[2].Bounds())
}

func TestFindExternalContours_IgnoresHolesAndNestedShapes(t *testing.T) {
	bin := binary(12, 12,
		image.Rect(1, 1, 11, 2),   // top
		image.Rect(1, 10, 11, 11), // bottom
		image.Rect(1, 1, 2, 11),   // left
		image.Rect(10, 1, 11, 11), // right
		image.Rect(4, 4, 7, 7),    // island inside the ring
	)
	cs := FindExternalContours(bin)
	require.Len(t, cs, 1)
	assert.Equal(t, image.Rect(1, 1, 11, 11), cs[0].Bounds())
}

func TestFindExternalContours_TouchingFrameAndOffsetBounds(t *testing.T) {
	g := image.NewGray(image.Rect(100, 50, 110, 56))
	draw.Draw(g, image.Rect(100, 50, 103, 53), &image.Uniform{C: color.Gray{Y: 1}}, image.Point{}, draw.Src)
	cs := FindExternalContours(g)
	require.Len(t, cs, 1)
	assert.Equal(t, image.Rect(100, 50, 103, 53), cs[0].Bounds())
}

func TestFindExternalContours_Reproducible(t *testing.T) {
	img := filled(60, 40, color.Black)
	draw.Draw(img, image.Rect(5, 5, 20, 20), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(35, 10, 55, 30), &image.Uniform{C: color.RGBA{200, 30, 30, 255}}, image.Point{}, draw.Src)
	a := EdgeExtractor{}.Extract(img)
	b := EdgeExtractor{}.Extract(img)
	require.NotEmpty(t, a)
	assert.Equal(t, a, b)
}

func TestExtractorFunc(t *testing.T) {
	var e Extractor = ExtractorFunc(func(image.Image) []Contour { return make([]Contour, 2) })
	assert.Len(t, e.Extract(nil), 2)
}
