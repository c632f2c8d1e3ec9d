// Package facematch turns recognizer predictions into on-screen annotations.
package facematch

import (
	"image"
	"image/color"

	"github.com/kozaktomas/facereg/internal/registry"
	"github.com/kozaktomas/facereg/internal/vision"
)

// UnknownLabel is shown for faces that could not be matched to an identity.
const UnknownLabel = "Unknown"

// Match is the annotation decided for one detected face.
type Match struct {
	ID       int
	Name     string // overlay text, ASCII only
	Known    bool
	Distance float64
	Color    color.RGBA
}

// Decide accepts a prediction when its label is in the registry and its
// distance is below threshold. Everything else is Unknown.
func Decide(reg *registry.Registry, p vision.Prediction, threshold float64) Match {
	if p.Label >= 0 && p.Distance < threshold {
		if rec, ok := reg.Find(p.Label); ok {
			return Match{
				ID:       rec.ID,
				Name:     DisplayName(rec.Name),
				Known:    true,
				Distance: p.Distance,
				Color:    vision.Green,
			}
		}
	}
	return Match{
		ID:       p.Label,
		Name:     UnknownLabel,
		Distance: p.Distance,
		Color:    vision.Red,
	}
}

// Annotate draws the bounding box and label of m onto f.
func Annotate(f vision.Frame, r image.Rectangle, m Match) {
	f.DrawRect(r, m.Color)
	f.DrawText(m.Name, LabelOrigin(r), m.Color)
}
