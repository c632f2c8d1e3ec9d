// Package trainer builds a recognition model from the stored face samples.
package trainer

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"

	"github.com/kozaktomas/facereg/internal/facesample"
	"github.com/kozaktomas/facereg/internal/registry"
	"github.com/kozaktomas/facereg/internal/vision"
)

// ErrNoSamples is returned by Run when the faces root holds no samples.
var ErrNoSamples = errors.New("no face samples found")

// Options configures a training run.
type Options struct {
	ModelPath string
	// Registry, when set, is used to warn about sample directories with no
	// registered identity. Such samples are still trained on.
	Registry *registry.Registry
	// Dedupe, when positive, drops a sample whose difference hash is within
	// Dedupe bits of a sample already kept for the same identity.
	Dedupe int
	// OnSample is called after each sample is loaded.
	OnSample func(facesample.Sample)
}

// Result summarizes a training run.
type Result struct {
	Samples    int
	Skipped    int
	Identities int
	ModelPath  string
}

// Run loads every sample from store, trains t with label = identity ID and
// saves the model to opts.ModelPath.
func Run(store *facesample.Store, t vision.Trainer, opts Options) (*Result, error) {
	samples, err := store.List()
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoSamples, store.Root())
	}

	faces := make([]*image.Gray, 0, len(samples))
	labels := make([]int, 0, len(samples))
	ids := make(map[int]bool)
	hashes := make(map[int][]uint64)
	skipped := 0
	for _, s := range samples {
		face, err := facesample.Load(s.Path)
		if err != nil {
			return nil, err
		}

		if opts.Dedupe > 0 {
			h := facesample.DHash(face)
			if isDuplicate(hashes[s.ID], h, opts.Dedupe) {
				skipped++
			} else {
				hashes[s.ID] = append(hashes[s.ID], h)
				faces = append(faces, face)
				labels = append(labels, s.ID)
			}
		} else {
			faces = append(faces, face)
			labels = append(labels, s.ID)
		}

		if !ids[s.ID] && opts.Registry != nil {
			if _, ok := opts.Registry.Find(s.ID); !ok {
				log.Printf("WARNING: samples for ID %d have no registry entry; they will show as Unknown", s.ID)
			}
		}
		ids[s.ID] = true

		if opts.OnSample != nil {
			opts.OnSample(s)
		}
	}

	if err := t.Train(faces, labels); err != nil {
		return nil, fmt.Errorf("failed to train model: %w", err)
	}

	if dir := filepath.Dir(opts.ModelPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	if err := t.Save(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("failed to save model: %w", err)
	}

	return &Result{Samples: len(faces), Skipped: skipped, Identities: len(ids), ModelPath: opts.ModelPath}, nil
}

func isDuplicate(kept []uint64, h uint64, maxDistance int) bool {
	for _, k := range kept {
		if facesample.HammingDistance(k, h) <= maxDistance {
			return true
		}
	}
	return false
}
