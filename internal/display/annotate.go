package display

import (
	"image"
	"image/draw"

	"cellscope/internal/report"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Annotate copies img and draws lines over the copy with a 7x13 bitmap
// face. Text running past the right edge is clipped.
func Annotate(img image.Image, lines []report.Line) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, img, b.Min, draw.Src)
	for _, l := range lines {
		d := font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(l.Color),
			Face: basicfont.Face7x13,
			Dot:  fixed.P(b.Min.X+l.Origin.X, b.Min.Y+l.Origin.Y),
		}
		d.DrawString(l.Text)
	}
	return dst
}

// TextOverlay implements report.Overlay with Annotate.
type TextOverlay struct{}

func (TextOverlay) Draw(frame image.Image, lines []report.Line) image.Image {
	return Annotate(frame, lines)
}
