package audio

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
)

// Extractor pulls the audio track out of a video file as mono 16 kHz WAV,
// the format the transcription service expects.
type Extractor struct {
	ffmpegPath string
	tempDir    string
}

func NewExtractor() (*Extractor, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	tempDir := filepath.Join(os.TempDir(), "badminton-audio")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &Extractor{ffmpegPath: ffmpegPath, tempDir: tempDir}, nil
}

// Extract writes the audio track to a temp WAV file and returns its path.
// The caller removes the file when done.
func (e *Extractor) Extract(videoPath string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not accessible: %w", err)
	}

	outputPath := filepath.Join(e.tempDir, fmt.Sprintf("audio_%s.wav", uuid.New().String()))

	args := []string{
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outputPath,
	}
	cmd := exec.Command(e.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		os.Remove(outputPath)
		log.Printf("[AUDIO] ffmpeg stderr: %s", stderr.String())
		return "", fmt.Errorf("failed to extract audio: %w", err)
	}

	return outputPath, nil
}

func (e *Extractor) Cleanup() error {
	return os.RemoveAll(e.tempDir)
}
