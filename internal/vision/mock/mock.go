// Package mock provides mock implementations of the vision interfaces for testing.
package mock

import (
	"image"
	"image/color"

	"github.com/kozaktomas/facereg/internal/vision"
)

// DrawCall records one annotation made on a MockFrame.
type DrawCall struct {
	Kind  string // "rect" or "text"
	Rect  image.Rectangle
	Text  string
	At    image.Point
	Color color.RGBA
}

// MockFrame is an in-memory frame backed by a grayscale image.
type MockFrame struct {
	Image  *image.Gray
	Calls  []DrawCall
	Closed bool

	GrayError error
}

// NewMockFrame creates a width×height frame filled with the given brightness.
func NewMockFrame(width, height int, fill uint8) *MockFrame {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = fill
	}
	return &MockFrame{Image: img}
}

// Fill paints r with the given brightness.
func (f *MockFrame) Fill(r image.Rectangle, v uint8) *MockFrame {
	r = r.Intersect(f.Image.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.Image.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return f
}

// Gray returns a copy of the frame image
func (f *MockFrame) Gray() (*image.Gray, error) {
	if f.GrayError != nil {
		return nil, f.GrayError
	}
	cp := image.NewGray(f.Image.Bounds())
	copy(cp.Pix, f.Image.Pix)
	return cp, nil
}

// DrawRect records a rectangle
func (f *MockFrame) DrawRect(r image.Rectangle, c color.RGBA) {
	f.Calls = append(f.Calls, DrawCall{Kind: "rect", Rect: r, Color: c})
}

// DrawText records a label
func (f *MockFrame) DrawText(text string, at image.Point, c color.RGBA) {
	f.Calls = append(f.Calls, DrawCall{Kind: "text", Text: text, At: at, Color: c})
}

// Rects returns the rectangles drawn on the frame
func (f *MockFrame) Rects() []DrawCall {
	var out []DrawCall
	for _, c := range f.Calls {
		if c.Kind == "rect" {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the labels drawn on the frame
func (f *MockFrame) Texts() []DrawCall {
	var out []DrawCall
	for _, c := range f.Calls {
		if c.Kind == "text" {
			out = append(out, c)
		}
	}
	return out
}

// Close marks the frame closed
func (f *MockFrame) Close() error {
	f.Closed = true
	return nil
}

// MockCamera replays a fixed list of frames. A nil entry yields
// vision.ErrNoFrame; running past the end yields vision.ErrNoFrame too.
type MockCamera struct {
	Frames []*MockFrame
	Reads  int
	Closed bool

	// Error injection
	ReadError error
}

// NewMockCamera creates a camera replaying frames in order
func NewMockCamera(frames ...*MockFrame) *MockCamera {
	return &MockCamera{Frames: frames}
}

// Read returns the next frame
func (c *MockCamera) Read() (vision.Frame, error) {
	if c.ReadError != nil {
		return nil, c.ReadError
	}
	i := c.Reads
	c.Reads++
	if i >= len(c.Frames) || c.Frames[i] == nil {
		return nil, vision.ErrNoFrame
	}
	return c.Frames[i], nil
}

// Close marks the camera closed
func (c *MockCamera) Close() error {
	c.Closed = true
	return nil
}

// MockDetector returns the same rectangles for every image.
type MockDetector struct {
	Faces  []image.Rectangle
	Seen   []image.Rectangle // bounds of every image passed in
	Closed bool
}

// DetectFaces returns the configured faces
func (d *MockDetector) DetectFaces(gray *image.Gray) []image.Rectangle {
	d.Seen = append(d.Seen, gray.Bounds())
	return d.Faces
}

// Close marks the detector closed
func (d *MockDetector) Close() error {
	d.Closed = true
	return nil
}

// MockRecognizer returns a fixed prediction and records its inputs.
type MockRecognizer struct {
	Prediction vision.Prediction
	Inputs     []*image.Gray
	Closed     bool

	// Error injection
	PredictError error
}

// Predict returns the configured prediction
func (r *MockRecognizer) Predict(face *image.Gray) (vision.Prediction, error) {
	r.Inputs = append(r.Inputs, face)
	if r.PredictError != nil {
		return vision.Prediction{}, r.PredictError
	}
	return r.Prediction, nil
}

// Close marks the recognizer closed
func (r *MockRecognizer) Close() error {
	r.Closed = true
	return nil
}

// MockTrainer records training input.
type MockTrainer struct {
	Faces  []*image.Gray
	Labels []int
	Saved  string
	Closed bool

	// Error injection
	TrainError error
	SaveError  error
}

// Train records the samples
func (t *MockTrainer) Train(faces []*image.Gray, labels []int) error {
	if t.TrainError != nil {
		return t.TrainError
	}
	t.Faces = faces
	t.Labels = labels
	return nil
}

// Save records the model path
func (t *MockTrainer) Save(path string) error {
	if t.SaveError != nil {
		return t.SaveError
	}
	t.Saved = path
	return nil
}

// Close marks the trainer closed
func (t *MockTrainer) Close() error {
	t.Closed = true
	return nil
}

// MockDisplay replays scripted key presses, one per WaitKey call. Once the
// script is exhausted it returns vision.KeyNone.
type MockDisplay struct {
	Keys   []int
	Shown  []vision.Frame
	Waits  int
	Closed bool

	// Error injection
	ShowError error
}

// Show records the frame
func (d *MockDisplay) Show(f vision.Frame) error {
	if d.ShowError != nil {
		return d.ShowError
	}
	d.Shown = append(d.Shown, f)
	return nil
}

// WaitKey returns the next scripted key
func (d *MockDisplay) WaitKey(delayMs int) int {
	i := d.Waits
	d.Waits++
	if i >= len(d.Keys) {
		return vision.KeyNone
	}
	return d.Keys[i]
}

// Close marks the display closed
func (d *MockDisplay) Close() error {
	d.Closed = true
	return nil
}
