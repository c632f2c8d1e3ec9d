//go:build opencv

package opencv

import (
	"image"
	"os"
	"path/filepath"
	"testing"
)

func trainedLBPH(t *testing.T) *LBPH {
	t.Helper()
	l := NewLBPH()
	t.Cleanup(func() { l.Close() })

	faces := make([]*image.Gray, 0, 4)
	labels := make([]int, 0, 4)
	for i, label := range []int{1, 1, 2, 2} {
		face := image.NewGray(image.Rect(0, 0, 64, 64))
		for p := range face.Pix {
			face.Pix[p] = uint8((p*(label+1) + i) % 256)
		}
		faces = append(faces, face)
		labels = append(labels, label)
	}
	if err := l.Train(faces, labels); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	return l
}

func TestLoadLBPHErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.yml")
	if err := os.WriteFile(garbage, []byte("this is not an OpenCV model\x00\x01"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.yml")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "missing.yml")},
		{"empty", empty},
		{"directory", dir},
		{"unparsable", garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := LoadLBPH(tt.path, 500)
			if err == nil {
				l.Close()
				t.Fatalf("LoadLBPH(%s) should fail", tt.name)
			}
			if l != nil {
				t.Errorf("LoadLBPH(%s) returned a model alongside the error", tt.name)
			}
		})
	}
}

func TestLBPHSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trainer.yml")
	if err := trainedLBPH(t).Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	l, err := LoadLBPH(path, 500)
	if err != nil {
		t.Fatalf("LoadLBPH failed: %v", err)
	}
	defer l.Close()

	if _, err := l.Predict(image.NewGray(image.Rect(0, 0, 64, 64))); err != nil {
		t.Errorf("Predict failed: %v", err)
	}
}

func TestLBPHSaveError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "trainer.yml")
	if err := trainedLBPH(t).Save(path); err == nil {
		t.Error("Save into a missing directory should fail")
	}
}

func TestLBPHTrainValidation(t *testing.T) {
	l := NewLBPH()
	defer l.Close()

	if err := l.Train(nil, nil); err == nil {
		t.Error("Train without faces should fail")
	}
	if err := l.Train([]*image.Gray{image.NewGray(image.Rect(0, 0, 8, 8))}, nil); err == nil {
		t.Error("Train with mismatched labels should fail")
	}
}
