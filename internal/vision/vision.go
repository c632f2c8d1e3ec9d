// Package vision defines the camera, detection, recognition and display
// capabilities the capture and recognition loops are written against.
// The OpenCV-backed implementation lives in the opencv subpackage.
package vision

import (
	"errors"
	"image"
	"image/color"
)

// ErrNoFrame is returned by Camera.Read when the device yields no frame.
var ErrNoFrame = errors.New("camera returned no frame")

// Key codes returned by Display.WaitKey.
const (
	KeyNone = -1
	KeySave = 's'
	KeyQuit = 'q'
)

// Common overlay colors.
var (
	Green = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	Red   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// Frame is one captured video frame that can be annotated and shown.
type Frame interface {
	// Gray returns a single-channel copy of the frame.
	Gray() (*image.Gray, error)
	DrawRect(r image.Rectangle, c color.RGBA)
	DrawText(text string, origin image.Point, c color.RGBA)
	Close() error
}

// Camera produces frames. Read returns ErrNoFrame when the device delivers
// nothing or an empty image.
type Camera interface {
	Read() (Frame, error)
	Close() error
}

// Detector localizes faces in a grayscale image.
type Detector interface {
	DetectFaces(gray *image.Gray) []image.Rectangle
	Close() error
}

// Prediction is the recognizer output for one normalized face. Distance
// follows the model's convention: smaller is a better match.
type Prediction struct {
	Label    int
	Distance float64
}

// Recognizer maps a normalized face to a predicted identity label.
type Recognizer interface {
	Predict(face *image.Gray) (Prediction, error)
	Close() error
}

// Trainer builds a recognition model from labeled normalized faces.
type Trainer interface {
	Train(faces []*image.Gray, labels []int) error
	Save(path string) error
	Close() error
}

// Display shows annotated frames and polls the keyboard.
type Display interface {
	Show(f Frame) error
	// WaitKey waits up to delayMs milliseconds and returns the pressed key
	// or KeyNone.
	WaitKey(delayMs int) int
	Close() error
}
