package enroll

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/kozaktomas/facereg/internal/constants"
	"github.com/kozaktomas/facereg/internal/facesample"
	"github.com/kozaktomas/facereg/internal/vision"
)

// Session captures face samples for one identity.
type Session struct {
	Camera   vision.Camera
	Detector vision.Detector
	Display  vision.Display
	Store    *facesample.Store
	Out      io.Writer

	ID int
	// MinBrightness is the mean face brightness a region must exceed to be saved.
	MinBrightness float64
	// Sequence is the number used for the next saved sample.
	Sequence int

	taken int
}

// Run captures frames until the operator quits, the camera stops delivering
// frames or ctx is cancelled. It returns the number of samples saved. A
// missing frame ends the session without an error.
func (s *Session) Run(ctx context.Context) (int, error) {
	for ctx.Err() == nil {
		f, err := s.Camera.Read()
		if errors.Is(err, vision.ErrNoFrame) {
			return s.taken, nil
		}
		if err != nil {
			return s.taken, fmt.Errorf("failed to read frame: %w", err)
		}

		quit, err := s.processFrame(f)
		f.Close()
		if err != nil {
			return s.taken, err
		}
		if quit {
			break
		}
	}
	return s.taken, nil
}

// processFrame detects faces, draws them and saves them when the save key
// was pressed during this iteration.
func (s *Session) processFrame(f vision.Frame) (quit bool, err error) {
	gray, err := f.Gray()
	if err != nil {
		return false, fmt.Errorf("failed to convert frame: %w", err)
	}

	faces := s.Detector.DetectFaces(gray)
	key := s.Display.WaitKey(constants.KeyPollDelayMs)

	for _, face := range faces {
		f.DrawRect(face, vision.Red)
		if key != vision.KeySave {
			continue
		}
		if err := s.saveFace(gray, face); err != nil {
			return false, err
		}
	}

	if err := s.Display.Show(f); err != nil {
		return false, fmt.Errorf("failed to show frame: %w", err)
	}
	return key == vision.KeyQuit, nil
}

// saveFace stores the normalized face unless it is too dark.
func (s *Session) saveFace(gray *image.Gray, face image.Rectangle) error {
	if facesample.MeanBrightness(gray, face) <= s.MinBrightness {
		return nil
	}

	if _, err := s.Store.Save(s.ID, s.Sequence, facesample.Normalize(gray, face)); err != nil {
		return err
	}
	s.Sequence++
	s.taken++
	if s.Out != nil {
		fmt.Fprintf(s.Out, "%d -> Photos taken!\n", s.taken)
	}
	return nil
}

// Close releases the camera, the detector and the display.
func (s *Session) Close() error {
	return errors.Join(s.Camera.Close(), s.Detector.Close(), s.Display.Close())
}
