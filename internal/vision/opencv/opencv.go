// Package opencv implements the vision capabilities on top of gocv.
package opencv

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"

	"github.com/kozaktomas/facereg/internal/vision"
	"gocv.io/x/gocv"
	"gocv.io/x/gocv/contrib"
)

// frame wraps a BGR gocv.Mat.
type frame struct {
	mat gocv.Mat
}

func (f *frame) Gray() (*image.Gray, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	if err := gocv.CvtColor(f.mat, &gray, gocv.ColorBGRToGray); err != nil {
		return nil, fmt.Errorf("failed to convert frame to grayscale: %w", err)
	}

	img, err := gray.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert frame to image: %w", err)
	}
	g, ok := img.(*image.Gray)
	if !ok {
		return nil, fmt.Errorf("unexpected grayscale image type %T", img)
	}
	return g, nil
}

func (f *frame) DrawRect(r image.Rectangle, c color.RGBA) {
	if err := gocv.Rectangle(&f.mat, r, c, 2); err != nil {
		log.Printf("WARNING: failed to draw rectangle: %v", err)
	}
}

func (f *frame) DrawText(text string, origin image.Point, c color.RGBA) {
	if err := gocv.PutText(&f.mat, text, origin, gocv.FontHersheyComplex, 0.8, c, 2); err != nil {
		log.Printf("WARNING: failed to draw label %q: %v", text, err)
	}
}

func (f *frame) Close() error {
	return f.mat.Close()
}

// Camera reads frames from a video capture device.
type Camera struct {
	vc *gocv.VideoCapture
}

// OpenCamera opens the capture device with the given index.
func OpenCamera(device int) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera %d: %w", device, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("failed to open camera %d", device)
	}
	return &Camera{vc: vc}, nil
}

// Read grabs the next frame. The caller owns the returned frame.
func (c *Camera) Read() (vision.Frame, error) {
	mat := gocv.NewMat()
	if ok := c.vc.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, vision.ErrNoFrame
	}
	return &frame{mat: mat}, nil
}

func (c *Camera) Close() error {
	return c.vc.Close()
}

// CascadeParams are the multi-scale detection tunables.
type CascadeParams struct {
	ScaleFactor  float64
	MinNeighbors int
}

// Cascade is a Haar cascade face detector.
type Cascade struct {
	classifier gocv.CascadeClassifier
	params     CascadeParams
}

// LoadCascade loads a cascade classifier from an XML model file.
func LoadCascade(path string, params CascadeParams) (*Cascade, error) {
	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(path) {
		classifier.Close()
		return nil, fmt.Errorf("failed to load classifier cascade from %s", path)
	}
	return &Cascade{classifier: classifier, params: params}, nil
}

func (c *Cascade) DetectFaces(gray *image.Gray) []image.Rectangle {
	mat, err := gocv.ImageGrayToMatGray(gray)
	if err != nil {
		log.Printf("WARNING: failed to convert frame for detection: %v", err)
		return nil
	}
	defer mat.Close()

	return c.classifier.DetectMultiScaleWithParams(mat, c.params.ScaleFactor, c.params.MinNeighbors, 0, image.Point{}, image.Point{})
}

func (c *Cascade) Close() error {
	return c.classifier.Close()
}

// LBPH wraps an OpenCV LBPH face recognizer.
type LBPH struct {
	model *contrib.LBPHFaceRecognizer
}

// NewLBPH returns an untrained recognizer, used for training.
func NewLBPH() *LBPH {
	return &LBPH{model: contrib.NewLBPHFaceRecognizer()}
}

// LoadLBPH reads a trained model and sets its distance threshold. Predictions
// farther than threshold come back with label -1.
func LoadLBPH(path string, threshold float64) (*LBPH, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load trained model: %w", err)
	}
	if info.IsDir() || info.Size() == 0 {
		return nil, fmt.Errorf("failed to load trained model: %s is not a model file", path)
	}

	l := NewLBPH()
	l.model.SetThreshold(float32(threshold))
	if err := l.model.LoadFile(path); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to load trained model %s: %w", path, err)
	}
	return l, nil
}

func (l *LBPH) Predict(face *image.Gray) (vision.Prediction, error) {
	mat, err := gocv.ImageGrayToMatGray(face)
	if err != nil {
		return vision.Prediction{}, fmt.Errorf("failed to convert face: %w", err)
	}
	defer mat.Close()

	resp := l.model.PredictExtendedResponse(mat)
	return vision.Prediction{Label: int(resp.Label), Distance: float64(resp.Confidence)}, nil
}

func (l *LBPH) Train(faces []*image.Gray, labels []int) error {
	if len(faces) != len(labels) {
		return fmt.Errorf("got %d faces but %d labels", len(faces), len(labels))
	}
	if len(faces) == 0 {
		return errors.New("no faces to train on")
	}

	mats := make([]gocv.Mat, 0, len(faces))
	defer func() {
		for _, m := range mats {
			m.Close()
		}
	}()
	for _, f := range faces {
		m, err := gocv.ImageGrayToMatGray(f)
		if err != nil {
			return fmt.Errorf("failed to convert face: %w", err)
		}
		mats = append(mats, m)
	}

	if err := l.model.Train(mats, labels); err != nil {
		return fmt.Errorf("failed to train LBPH model: %w", err)
	}
	return nil
}

func (l *LBPH) Save(path string) error {
	if err := l.model.SaveFile(path); err != nil {
		return fmt.Errorf("failed to write model %s: %w", path, err)
	}
	return nil
}

func (l *LBPH) Close() error {
	return l.model.Close()
}

// Window is a HighGUI display window.
type Window struct {
	w *gocv.Window
}

// NewWindow opens a named display window.
func NewWindow(title string) *Window {
	return &Window{w: gocv.NewWindow(title)}
}

func (w *Window) Show(f vision.Frame) error {
	fr, ok := f.(*frame)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", f)
	}
	return w.w.IMShow(fr.mat)
}

func (w *Window) WaitKey(delayMs int) int {
	k := w.w.WaitKey(delayMs)
	if k < 0 {
		return vision.KeyNone
	}
	return k & 0xFF
}

func (w *Window) Close() error {
	return w.w.Close()
}
