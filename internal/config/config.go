package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Camera    CameraConfig    `yaml:"camera"`
	Paths     PathsConfig     `yaml:"paths"`
	Enroll    EnrollConfig    `yaml:"enroll"`
	Recognize RecognizeConfig `yaml:"recognize"`
}

type CameraConfig struct {
	Device int `yaml:"device"`
}

type PathsConfig struct {
	Registry      string `yaml:"registry"`       // working copy of the registry
	ModelRegistry string `yaml:"model_registry"` // copy kept next to the trained model
	Faces         string `yaml:"faces"`          // root of the per-identity sample directories
	Cascade       string `yaml:"cascade"`        // Haar cascade XML
	Model         string `yaml:"model"`          // LBPH model written by train
}

type EnrollConfig struct {
	ScaleFactor   float64 `yaml:"scale_factor"`
	MinNeighbors  int     `yaml:"min_neighbors"`
	MinBrightness float64 `yaml:"min_brightness"` // mean face brightness required to save a sample
	Window        string  `yaml:"window"`
}

type RecognizeConfig struct {
	ScaleFactor  float64 `yaml:"scale_factor"`
	MinNeighbors int     `yaml:"min_neighbors"`
	Threshold    float64 `yaml:"threshold"` // distances at or above are shown as Unknown
	Window       string  `yaml:"window"`
}

// envString returns the env var value, or defaultVal when it is unset or empty.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a non-negative integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// Defaults returns the embedded defaults without environment overrides.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

func Load() *Config {
	cfg := Defaults()

	cfg.Camera.Device = envInt("FACEREG_CAMERA_DEVICE", cfg.Camera.Device)

	cfg.Paths.Registry = envString("FACEREG_REGISTRY", cfg.Paths.Registry)
	cfg.Paths.ModelRegistry = envString("FACEREG_MODEL_REGISTRY", cfg.Paths.ModelRegistry)
	cfg.Paths.Faces = envString("FACEREG_FACES_DIR", cfg.Paths.Faces)
	cfg.Paths.Cascade = envString("FACEREG_CASCADE", cfg.Paths.Cascade)
	cfg.Paths.Model = envString("FACEREG_MODEL", cfg.Paths.Model)

	cfg.Enroll.ScaleFactor = envFloat("FACEREG_ENROLL_SCALE_FACTOR", cfg.Enroll.ScaleFactor)
	cfg.Enroll.MinNeighbors = envInt("FACEREG_ENROLL_MIN_NEIGHBORS", cfg.Enroll.MinNeighbors)
	cfg.Enroll.MinBrightness = envFloat("FACEREG_MIN_BRIGHTNESS", cfg.Enroll.MinBrightness)

	cfg.Recognize.ScaleFactor = envFloat("FACEREG_RECOGNIZE_SCALE_FACTOR", cfg.Recognize.ScaleFactor)
	cfg.Recognize.MinNeighbors = envInt("FACEREG_RECOGNIZE_MIN_NEIGHBORS", cfg.Recognize.MinNeighbors)
	cfg.Recognize.Threshold = envFloat("FACEREG_THRESHOLD", cfg.Recognize.Threshold)

	return cfg
}
