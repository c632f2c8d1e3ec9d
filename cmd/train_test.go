package cmd

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTrainingRegistry(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		reg, err := loadTrainingRegistry(filepath.Join(dir, "missing.csv"))
		if err != nil {
			t.Fatalf("loadTrainingRegistry() error = %v, want nil", err)
		}
		if reg != nil {
			t.Errorf("loadTrainingRegistry() = %v, want nil registry", reg)
		}
	})

	t.Run("malformed lines are skipped", func(t *testing.T) {
		path := filepath.Join(dir, "id-names.csv")
		if err := os.WriteFile(path, []byte("id,name\n1,Ada\nbad line\n2,Grace\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		reg, err := loadTrainingRegistry(path)
		if err != nil {
			t.Fatalf("loadTrainingRegistry() error = %v, want nil", err)
		}
		if reg.Len() != 2 {
			t.Errorf("Len() = %d, want 2", reg.Len())
		}
		if _, ok := reg.Find(2); !ok {
			t.Error("record after the malformed line should be kept")
		}
	})
}
