package vision

import "image"

// Fixed preprocessing parameters.
const (
	BlurKernel = 5
	CannyLow   = 50
	CannyHigh  = 150
)

// Preprocess turns a color frame into a binary edge map of the same bounds:
// grayscale, 5x5 Gaussian with derived sigma, Canny 50/150.
func Preprocess(img image.Image) *image.Gray {
	return Canny(GaussianBlur(Grayscale(img), BlurKernel, 0), CannyLow, CannyHigh)
}

// Extractor finds the shapes of a raw frame.
type Extractor interface {
	Extract(img image.Image) []Contour
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(image.Image) []Contour

func (f ExtractorFunc) Extract(img image.Image) []Contour { return f(img) }

// EdgeExtractor is the standard Extractor: Preprocess then
// FindExternalContours.
type EdgeExtractor struct{}

func (EdgeExtractor) Extract(img image.Image) []Contour {
	return FindExternalContours(Preprocess(img))
}
