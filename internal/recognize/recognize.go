// Package recognize runs the live recognition loop: detect faces in each
// camera frame, classify them against the registry and draw the result.
package recognize

import (
	"context"
	"errors"
	"fmt"

	"github.com/kozaktomas/facereg/internal/constants"
	"github.com/kozaktomas/facereg/internal/facematch"
	"github.com/kozaktomas/facereg/internal/facesample"
	"github.com/kozaktomas/facereg/internal/registry"
	"github.com/kozaktomas/facereg/internal/vision"
)

// LoadRegistry reads the registry leniently. A registry without any usable
// record is an error.
func LoadRegistry(path string) (*registry.Registry, error) {
	reg, _, err := registry.LoadLenient(path)
	if err != nil {
		return nil, err
	}
	if reg.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", path, registry.ErrEmpty)
	}
	return reg, nil
}

// Loop annotates camera frames with recognized identities.
type Loop struct {
	Camera     vision.Camera
	Detector   vision.Detector
	Recognizer vision.Recognizer
	Display    vision.Display
	Registry   *registry.Registry

	// Threshold is the largest distance (exclusive) accepted as a match.
	Threshold float64
}

// Run processes frames until the operator presses quit or ctx is cancelled.
// Empty frames are skipped.
func (l *Loop) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		if l.Display.WaitKey(constants.KeyPollDelayMs) == vision.KeyQuit {
			return nil
		}

		f, err := l.Camera.Read()
		if errors.Is(err, vision.ErrNoFrame) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read frame: %w", err)
		}

		err = l.processFrame(f)
		f.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// processFrame classifies every detected face and shows the annotated frame.
func (l *Loop) processFrame(f vision.Frame) error {
	gray, err := f.Gray()
	if err != nil {
		return fmt.Errorf("failed to convert frame: %w", err)
	}

	for _, r := range l.Detector.DetectFaces(gray) {
		pred, err := l.Recognizer.Predict(facesample.Normalize(gray, r))
		if err != nil {
			return fmt.Errorf("failed to classify face: %w", err)
		}
		facematch.Annotate(f, r, facematch.Decide(l.Registry, pred, l.Threshold))
	}

	if err := l.Display.Show(f); err != nil {
		return fmt.Errorf("failed to show frame: %w", err)
	}
	return nil
}

// Close releases the camera, the detector, the recognizer and the display.
func (l *Loop) Close() error {
	return errors.Join(l.Camera.Close(), l.Detector.Close(), l.Recognizer.Close(), l.Display.Close())
}
