package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facereg",
	Short: "Enroll faces from a webcam and recognize them in real time",
	Long: `facereg captures labeled face photos from a webcam into a per-identity
directory with a CSV registry of IDs and names, trains an LBPH model from
them, and annotates live camera frames with recognized names.

Configuration comes from FACEREG_* environment variables, optionally
loaded from a .env file in the working directory.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
