package facematch

import "image"

// labelOffset is the gap in pixels between a box and the text baseline.
const labelOffset = 10

// LabelOrigin returns the text baseline origin for a label placed above r.
// Boxes touching the top edge get the label inside the box instead so the
// text stays visible.
func LabelOrigin(r image.Rectangle) image.Point {
	y := r.Min.Y - labelOffset
	if y < labelOffset {
		y = r.Min.Y + 2*labelOffset
	}
	return image.Point{X: r.Min.X, Y: y}
}
