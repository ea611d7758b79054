package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed quality.yaml
var qualityYAML []byte

type Config struct {
	Vision  VisionConfig
	Gallery GalleryConfig
	Log     LogConfig
	Rules   RulesConfig
}

type VisionConfig struct {
	URL   string // vision service base URL (defaults to http://localhost:8000)
	Model string // model name, informational only
	Dim   int    // embedding dimension (defaults to 512)
}

type GalleryConfig struct {
	Path      string  // path to the gallery JSON file
	BackupDir string  // directory for backup files (defaults to the gallery's directory)
	Threshold float64 // recognition threshold (defaults to 0.55)
}

type LogConfig struct {
	Level string // logrus level name (defaults to info)
}

// RulesConfig holds the static quality and diagnostics rules shipped with the
// binary. The values come from the embedded quality.yaml.
type RulesConfig struct {
	Quality     QualityRules     `yaml:"quality"`
	Crop        CropRules        `yaml:"crop"`
	Diagnostics DiagnosticsRules `yaml:"diagnostics"`
}

type QualityRules struct {
	MinWidth       int     `yaml:"minWidth"`
	MinHeight      int     `yaml:"minHeight"`
	EdgeMargin     int     `yaml:"edgeMargin"`
	MinAspectRatio float64 `yaml:"minAspectRatio"`
	MaxAspectRatio float64 `yaml:"maxAspectRatio"`
}

type CropRules struct {
	Padding   int `yaml:"padding"`
	EmbedSize int `yaml:"embedSize"`
}

type DiagnosticsRules struct {
	StdDevFloor             float64 `yaml:"stdDevFloor"`
	MagnitudeTolerance      float64 `yaml:"magnitudeTolerance"`
	SuggestedThresholdFloor float64 `yaml:"suggestedThresholdFloor"`
	SuggestedThresholdGap   float64 `yaml:"suggestedThresholdGap"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
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

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var rules RulesConfig
	if err := yaml.Unmarshal(qualityYAML, &rules); err != nil {
		// The file is embedded, so this can only fail on a broken build.
		panic("failed to unmarshal embedded quality.yaml: " + err.Error())
	}

	return &Config{
		Vision: VisionConfig{
			URL:   envString("VISION_URL", "http://localhost:8000"),
			Model: envString("VISION_MODEL", "insightface"),
			Dim:   envInt("EMBEDDING_DIM", 512),
		},
		Gallery: GalleryConfig{
			Path:      envString("GALLERY_PATH", "gallery.json"),
			BackupDir: os.Getenv("GALLERY_BACKUP_DIR"),
			Threshold: envFloat("RECOGNITION_THRESHOLD", 0.55),
		},
		Log: LogConfig{
			Level: envString("LOG_LEVEL", "info"),
		},
		Rules: rules,
	}
}
