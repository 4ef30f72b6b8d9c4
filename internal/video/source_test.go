package video

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

// rawFrames builds a synthetic rawvideo stream of count frames at w x h.
func rawFrames(count, w, h int) *bytes.Buffer {
	frameSize := w * h * 3
	buf := bytes.NewBuffer(make([]byte, 0, count*frameSize))
	for i := 0; i < count; i++ {
		frame := make([]byte, frameSize)
		for j := range frame {
			frame[j] = byte(i)
		}
		buf.Write(frame)
	}
	return buf
}

func drain(t *testing.T, fr *frameReader) ([]int, []float64) {
	t.Helper()
	var indices []int
	var timestamps []float64
	for {
		_, index, ts, err := fr.Next()
		if err == io.EOF {
			return indices, timestamps
		}
		if err != nil {
			t.Fatalf("Unexpected error from frame reader: %v", err)
		}
		indices = append(indices, index)
		timestamps = append(timestamps, ts)
	}
}

func TestFrameReader_SamplingCounts(t *testing.T) {
	tests := []struct {
		name       string
		frames     int
		sampleRate int
		want       int
	}{
		{"every frame", 10, 1, 10},
		{"every third", 300, 3, 100},
		{"every fifth uneven", 11, 5, 3},
		{"rate beyond stream", 4, 10, 1},
		{"single frame", 1, 1, 1},
		{"empty stream", 0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fr := newFrameReader(rawFrames(tt.frames, 4, 4), 4, 4, tt.sampleRate, 30)
			indices, _ := drain(t, fr)

			if len(indices) != tt.want {
				t.Errorf("Expected %d sampled frames, got %d", tt.want, len(indices))
			}
			if tt.want > 0 && indices[0] != 0 {
				t.Errorf("Expected first sampled frame to be raw frame 0, got %d", indices[0])
			}
			for i, index := range indices {
				if index != i*tt.sampleRate {
					t.Errorf("Expected sampled index %d at position %d, got %d", i*tt.sampleRate, i, index)
				}
			}
		})
	}
}

func TestFrameReader_Timestamps(t *testing.T) {
	fr := newFrameReader(rawFrames(9, 2, 2), 2, 2, 4, 25)
	_, timestamps := drain(t, fr)

	want := []float64{0, 4.0 / 25, 8.0 / 25}
	if len(timestamps) != len(want) {
		t.Fatalf("Expected %d timestamps, got %d", len(want), len(timestamps))
	}
	for i := range want {
		if math.Abs(timestamps[i]-want[i]) > 1e-9 {
			t.Errorf("Timestamp %d: expected %f, got %f", i, want[i], timestamps[i])
		}
	}
}

func TestFrameReader_FrameBuffersAreIndependent(t *testing.T) {
	fr := newFrameReader(rawFrames(2, 2, 2), 2, 2, 1, 30)

	first, _, _, err := fr.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, _, _, err := fr.Next()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first.Pix[0] != 0 || second.Pix[0] != 1 {
		t.Errorf("Frames share a buffer: got %d and %d", first.Pix[0], second.Pix[0])
	}
}

func TestFrameReader_TruncatedTrailingFrame(t *testing.T) {
	buf := rawFrames(3, 4, 4)
	buf.Write(make([]byte, 7)) // partial fourth frame

	fr := newFrameReader(buf, 4, 4, 1, 30)

	seen := 0
	for {
		_, _, _, err := fr.Next()
		if err == nil {
			seen++
			continue
		}
		var decodeErr *FrameDecodeError
		if errors.As(err, &decodeErr) {
			if decodeErr.FrameNumber != 3 {
				t.Errorf("Expected decode error for frame 3, got %d", decodeErr.FrameNumber)
			}
			break
		}
		t.Fatalf("Expected FrameDecodeError, got %v", err)
	}

	if seen != 3 {
		t.Errorf("Expected 3 complete frames before the decode error, got %d", seen)
	}

	if _, _, _, err := fr.Next(); err != io.EOF {
		t.Errorf("Expected EOF after decode error, got %v", err)
	}
}

func TestParseRational(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 29.97002997002997},
		{"25", 25},
		{"0/0", 0},
		{"garbage", 0},
	}

	for _, tt := range tests {
		if got := parseRational(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("parseRational(%q): expected %f, got %f", tt.in, tt.want, got)
		}
	}
}

func TestParseProbeOutput(t *testing.T) {
	output := "r_frame_rate=30000/1001\nduration=12.512500\n"
	fps, duration := parseProbeOutput(output)

	if math.Abs(fps-29.97002997002997) > 1e-9 {
		t.Errorf("Expected fps 29.97, got %f", fps)
	}
	if math.Abs(duration-12.5125) > 1e-9 {
		t.Errorf("Expected duration 12.5125, got %f", duration)
	}
}

func TestParseBannerDuration(t *testing.T) {
	output := "Input #0, mov,mp4, from 'match.mp4':\n  Duration: 00:02:05.40, start: 0.000000, bitrate: 1000 kb/s\n"
	duration, err := parseBannerDuration(output)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(duration-125.4) > 1e-9 {
		t.Errorf("Expected duration 125.4, got %f", duration)
	}

	if _, err := parseBannerDuration("no duration here"); err == nil {
		t.Error("Expected error for output without duration")
	}
}
