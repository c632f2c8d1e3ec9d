package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/kozaktomas/facereg/internal/config"
	"github.com/kozaktomas/facereg/internal/enroll"
	"github.com/kozaktomas/facereg/internal/facesample"
	"github.com/kozaktomas/facereg/internal/vision/opencv"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll",
	Short: "Register an identity and capture face photos from the webcam",
	Long: `Asks for an ID (and a name for first-time users), then opens the webcam
and shows detected faces. Press 's' to save the faces in the current frame,
'q' to quit.

New identities are appended to the registry, which is written both to
FACEREG_REGISTRY and to FACEREG_MODEL_REGISTRY (the copy read next to the
trained model). Photos are stored as <faces>/<id>/face_<n>.jpg, grayscale
220x220. Numbering restarts at 0 on every run and overwrites older photos
unless --resume is given.

Examples:
  # Enroll using the default camera
  facereg enroll

  # Use the second camera and keep existing photos
  facereg enroll --device 1 --resume`,
	Args: cobra.NoArgs,
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("device", 0, "Camera device index (default from FACEREG_CAMERA_DEVICE)")
	enrollCmd.Flags().String("cascade", "", "Haar cascade XML (default from FACEREG_CASCADE)")
	enrollCmd.Flags().Bool("resume", false, "Continue photo numbering after the highest existing photo")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	device := intOr(cmd, "device", cfg.Camera.Device)
	cascadePath := stringOr(cmd, "cascade", cfg.Paths.Cascade)
	resume := mustGetBool(cmd, "resume")

	reg, err := enroll.OpenRegistry(cfg.Paths.Registry)
	if err != nil {
		return err
	}

	store := facesample.NewStore(cfg.Paths.Faces)
	if err := store.EnsureRoot(); err != nil {
		return err
	}

	id, err := enroll.Identify(bufio.NewReader(os.Stdin), os.Stdout, reg, store, cfg.Paths.Registry, cfg.Paths.ModelRegistry)
	if err != nil {
		return err
	}

	seq := 0
	if resume {
		if seq, err = store.NextSequence(id.ID); err != nil {
			return err
		}
	}

	fmt.Println("\nLet's capture! Press 's' to take a picture, and 'q' to quit.")

	camera, err := opencv.OpenCamera(device)
	if err != nil {
		return err
	}
	detector, err := opencv.LoadCascade(cascadePath, opencv.CascadeParams{
		ScaleFactor:  cfg.Enroll.ScaleFactor,
		MinNeighbors: cfg.Enroll.MinNeighbors,
	})
	if err != nil {
		camera.Close()
		return err
	}

	session := &enroll.Session{
		Camera:        camera,
		Detector:      detector,
		Display:       opencv.NewWindow(cfg.Enroll.Window),
		Store:         store,
		Out:           os.Stdout,
		ID:            id.ID,
		MinBrightness: cfg.Enroll.MinBrightness,
		Sequence:      seq,
	}
	defer session.Close()

	taken, err := session.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	fmt.Printf("Saved %d photos for %s (ID %d) in %s\n", taken, id.Name, id.ID, store.Dir(id.ID))
	return nil
}
