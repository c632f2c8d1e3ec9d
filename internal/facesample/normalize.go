package facesample

import (
	"image"

	"golang.org/x/image/draw"
)

// Size is the edge length of a normalized face in pixels. Capture, training
// and inference all use the same size.
const Size = 220

// Normalize crops r out of gray and scales it to a Size×Size grayscale image.
// r is clipped to the image bounds; an empty intersection yields a black face.
func Normalize(gray *image.Gray, r image.Rectangle) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, Size, Size))
	src := r.Intersect(gray.Bounds())
	if src.Empty() {
		return dst
	}
	draw.BiLinear.Scale(dst, dst.Bounds(), gray, src, draw.Src, nil)
	return dst
}

// Resize scales a whole grayscale image to Size×Size. Images that already
// have the normalized size are returned unchanged.
func Resize(gray *image.Gray) *image.Gray {
	b := gray.Bounds()
	if b.Dx() == Size && b.Dy() == Size && b.Min == (image.Point{}) {
		return gray
	}
	return Normalize(gray, b)
}

// MeanBrightness returns the mean pixel value (0-255) of gray inside r.
func MeanBrightness(gray *image.Gray, r image.Rectangle) float64 {
	r = r.Intersect(gray.Bounds())
	if r.Empty() {
		return 0
	}

	var sum uint64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(r.Min.X, y):gray.PixOffset(r.Max.X, y)]
		for _, p := range row {
			sum += uint64(p)
		}
	}
	return float64(sum) / float64(r.Dx()*r.Dy())
}

// ToGray converts any image to grayscale, keeping its size.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}
