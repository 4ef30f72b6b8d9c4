// Package config provides configuration loading for the server and CLI.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the full configuration. Values come from defaults, then an
// optional YAML file, then environment variables, in that order.
type Config struct {
	// Server
	Port          string `yaml:"port"`
	DBPath        string `yaml:"db_path"`
	StoragePath   string `yaml:"storage_path"`
	Migrations    string `yaml:"migrations_path"`
	MaxUploadSize int64  `yaml:"max_upload_size"`

	// Pipeline
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Pose estimation
	Pose PoseConfig `yaml:"pose"`

	// External services
	GeminiAPIKey string `yaml:"gemini_api_key"`
	SpeechAPIKey string `yaml:"speech_api_key"`

	// Report
	Language string `yaml:"language"`
}

// PoseConfig holds the pose sidecar endpoint and the confidence thresholds
// forwarded to it.
type PoseConfig struct {
	ServerURL              string  `yaml:"server_url"`
	MinDetectionConfidence float64 `yaml:"min_detection_confidence"`
	MinTrackingConfidence  float64 `yaml:"min_tracking_confidence"`
}

// PipelineConfig holds the frame pipeline tunables.
type PipelineConfig struct {
	SampleRate   int `yaml:"sample_rate"`
	TargetWidth  int `yaml:"target_width"`
	TargetHeight int `yaml:"target_height"`
	BatchSize    int `yaml:"batch_size"`
	MaxWorkers   int `yaml:"max_workers"`
	CacheSize    int `yaml:"cache_size"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Port:          "8080",
		DBPath:        "./badminton.db",
		StoragePath:   "./uploads",
		Migrations:    "./migrations",
		MaxUploadSize: 500 << 20,

		Pipeline: PipelineConfig{
			SampleRate:   3,
			TargetWidth:  854,
			TargetHeight: 480,
			BatchSize:    16,
			CacheSize:    100,
		},

		Pose: PoseConfig{
			ServerURL:              "http://localhost:9090",
			MinDetectionConfidence: 0.5,
			MinTrackingConfidence:  0.5,
		},

		Language: "en",
	}
}

// LoadFromFile loads configuration from a YAML file on top of defaults.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// ApplyEnv overrides configuration from environment variables. Secrets are
// only ever read from the environment, never from the YAML file in repos.
func (c *Config) ApplyEnv() {
	setString(&c.Port, "PORT")
	setString(&c.DBPath, "DB_PATH")
	setString(&c.StoragePath, "STORAGE_PATH")
	setString(&c.Migrations, "MIGRATIONS_PATH")
	setInt64(&c.MaxUploadSize, "MAX_UPLOAD_SIZE")
	setString(&c.Pose.ServerURL, "POSE_SERVER_URL")
	setFloat(&c.Pose.MinDetectionConfidence, "POSE_MIN_DETECTION_CONFIDENCE")
	setFloat(&c.Pose.MinTrackingConfidence, "POSE_MIN_TRACKING_CONFIDENCE")
	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.SpeechAPIKey, "SPEECH_API_KEY")
	setString(&c.Language, "REPORT_LANGUAGE")

	setInt(&c.Pipeline.SampleRate, "PIPELINE_SAMPLE_RATE")
	setInt(&c.Pipeline.TargetWidth, "PIPELINE_TARGET_WIDTH")
	setInt(&c.Pipeline.TargetHeight, "PIPELINE_TARGET_HEIGHT")
	setInt(&c.Pipeline.BatchSize, "PIPELINE_BATCH_SIZE")
	setInt(&c.Pipeline.MaxWorkers, "PIPELINE_MAX_WORKERS")
	setInt(&c.Pipeline.CacheSize, "PIPELINE_CACHE_SIZE")
}

// Load reads the optional YAML file at path (skipped when missing) and
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			loaded, err := LoadFromFile(path)
			if err != nil {
				return cfg, err
			}
			cfg = loaded
		}
	}

	cfg.ApplyEnv()
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
