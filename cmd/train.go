package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/kozaktomas/facereg/internal/config"
	"github.com/kozaktomas/facereg/internal/constants"
	"github.com/kozaktomas/facereg/internal/facesample"
	"github.com/kozaktomas/facereg/internal/registry"
	"github.com/kozaktomas/facereg/internal/trainer"
	"github.com/kozaktomas/facereg/internal/vision/opencv"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the LBPH model from the enrolled face photos",
	Long: `Reads every <faces>/<id>/face_<n>.jpg, trains an LBPH face recognizer with
the directory name as label and writes the model file used by recognize.

Examples:
  # Train with the configured paths
  facereg train

  # Write the model somewhere else
  facereg train --model /tmp/trainer.yml

  # Drop near-identical shots taken by holding the save key
  facereg train --dedupe`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().String("faces", "", "Faces root directory (default from FACEREG_FACES_DIR)")
	trainCmd.Flags().String("model", "", "Output model path (default from FACEREG_MODEL)")
	trainCmd.Flags().Bool("dedupe", false, "Skip near-duplicate photos of the same person")
	trainCmd.Flags().Int("dedupe-distance", constants.DefaultDedupeDistance, "Max hash distance (0-64) treated as a duplicate")
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	facesDir := stringOr(cmd, "faces", cfg.Paths.Faces)
	modelPath := stringOr(cmd, "model", cfg.Paths.Model)
	dedupe := 0
	if mustGetBool(cmd, "dedupe") {
		dedupe = mustGetInt(cmd, "dedupe-distance")
	}

	store := facesample.NewStore(facesDir)
	samples, err := store.List()
	if err != nil {
		return err
	}
	fmt.Printf("Found %d photos in %s\n", len(samples), facesDir)

	reg, err := loadTrainingRegistry(cfg.Paths.Registry)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(samples),
		progressbar.OptionSetDescription("Loading faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	model := opencv.NewLBPH()
	defer model.Close()

	res, err := trainer.Run(store, model, trainer.Options{
		ModelPath: modelPath,
		Registry:  reg,
		Dedupe:    dedupe,
		OnSample:  func(facesample.Sample) { _ = bar.Add(1) },
	})
	_ = bar.Finish()
	fmt.Println()
	if err != nil {
		return err
	}

	if res.Skipped > 0 {
		fmt.Printf("Skipped %d near-duplicate photos\n", res.Skipped)
	}
	fmt.Printf("Trained on %d photos of %d identities\n", res.Samples, res.Identities)
	fmt.Printf("Model saved to %s\n", res.ModelPath)
	return nil
}

// loadTrainingRegistry reads the registry leniently. It only drives warnings
// during training, so a missing file yields nil and malformed lines are
// skipped.
func loadTrainingRegistry(path string) (*registry.Registry, error) {
	reg, _, err := registry.LoadLenient(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return reg, nil
}
