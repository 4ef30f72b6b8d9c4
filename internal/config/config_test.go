package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Pipeline.SampleRate != 3 {
		t.Errorf("Expected sample rate 3, got %d", cfg.Pipeline.SampleRate)
	}
	if cfg.Pipeline.TargetWidth != 854 || cfg.Pipeline.TargetHeight != 480 {
		t.Errorf("Expected 854x480 target, got %dx%d", cfg.Pipeline.TargetWidth, cfg.Pipeline.TargetHeight)
	}
	if cfg.Pipeline.BatchSize != 16 {
		t.Errorf("Expected batch size 16, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Language != "en" {
		t.Errorf("Expected default language en, got %s", cfg.Language)
	}
	if cfg.Pose.MinDetectionConfidence != 0.5 || cfg.Pose.MinTrackingConfidence != 0.5 {
		t.Errorf("Expected 0.5 confidence defaults, got %v/%v",
			cfg.Pose.MinDetectionConfidence, cfg.Pose.MinTrackingConfidence)
	}
	if cfg.MaxUploadSize != 500<<20 {
		t.Errorf("Expected 500MB upload limit, got %d", cfg.MaxUploadSize)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "9000"
pipeline:
  sample_rate: 5
  batch_size: 8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected port 9000, got %s", cfg.Port)
	}
	if cfg.Pipeline.SampleRate != 5 {
		t.Errorf("Expected sample rate 5, got %d", cfg.Pipeline.SampleRate)
	}
	// Unset keys keep defaults.
	if cfg.Pipeline.TargetWidth != 854 {
		t.Errorf("Expected default target width 854, got %d", cfg.Pipeline.TargetWidth)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile("/no/such/config.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("PIPELINE_SAMPLE_RATE", "10")
	t.Setenv("PIPELINE_BATCH_SIZE", "not-a-number")
	t.Setenv("POSE_MIN_DETECTION_CONFIDENCE", "0.7")

	cfg := Defaults()
	cfg.ApplyEnv()

	if cfg.Port != "7070" {
		t.Errorf("Expected port 7070, got %s", cfg.Port)
	}
	if cfg.GeminiAPIKey != "test-key" {
		t.Errorf("Expected API key override, got %q", cfg.GeminiAPIKey)
	}
	if cfg.Pipeline.SampleRate != 10 {
		t.Errorf("Expected sample rate 10, got %d", cfg.Pipeline.SampleRate)
	}
	if cfg.Pipeline.BatchSize != 16 {
		t.Errorf("Invalid env int should keep default, got %d", cfg.Pipeline.BatchSize)
	}
	if cfg.Pose.MinDetectionConfidence != 0.7 {
		t.Errorf("Expected detection confidence 0.7, got %v", cfg.Pose.MinDetectionConfidence)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.Pipeline.SampleRate != 3 {
		t.Errorf("Expected defaults, got sample rate %d", cfg.Pipeline.SampleRate)
	}
}
