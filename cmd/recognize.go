package cmd

import (
	"fmt"

	"github.com/kozaktomas/facereg/internal/config"
	"github.com/kozaktomas/facereg/internal/recognize"
	"github.com/kozaktomas/facereg/internal/vision/opencv"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <id-names.csv> <haar-cascade-path> <trained-model-path>",
	Short: "Recognize enrolled faces in the live webcam feed",
	Long: `Loads the ID/name registry, the Haar cascade and a trained LBPH model,
then opens the webcam and labels every detected face with the recognized
name (green) or "Unknown" (red). Press 'q' to quit.

Malformed registry lines are reported and skipped. A prediction is only
accepted when its distance is below the threshold; smaller is better.

Examples:
  facereg recognize train/Recog/Classifiers/id-names.csv Classifiers/haarface.xml train/Recog/Classifiers/trainer.yml

  # Stricter matching
  facereg recognize ids.csv haarface.xml trainer.yml --threshold 80`,
	Args: cobra.MinimumNArgs(3),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Int("device", 0, "Camera device index (default from FACEREG_CAMERA_DEVICE)")
	recognizeCmd.Flags().Float64("threshold", 0, "Maximum accepted distance (default from FACEREG_THRESHOLD)")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	csvPath, cascadePath, modelPath := args[0], args[1], args[2]

	cfg := config.Load()
	device := intOr(cmd, "device", cfg.Camera.Device)
	threshold := float64Or(cmd, "threshold", cfg.Recognize.Threshold)

	reg, err := recognize.LoadRegistry(csvPath)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d identities from %s\n", reg.Len(), csvPath)

	detector, err := opencv.LoadCascade(cascadePath, opencv.CascadeParams{
		ScaleFactor:  cfg.Recognize.ScaleFactor,
		MinNeighbors: cfg.Recognize.MinNeighbors,
	})
	if err != nil {
		return err
	}

	model, err := opencv.LoadLBPH(modelPath, threshold)
	if err != nil {
		detector.Close()
		return err
	}

	camera, err := opencv.OpenCamera(device)
	if err != nil {
		detector.Close()
		model.Close()
		return err
	}

	loop := &recognize.Loop{
		Camera:     camera,
		Detector:   detector,
		Recognizer: model,
		Display:    opencv.NewWindow(cfg.Recognize.Window),
		Registry:   reg,
		Threshold:  threshold,
	}
	defer loop.Close()

	fmt.Println("Press 'q' to quit.")
	return loop.Run(cmd.Context())
}
