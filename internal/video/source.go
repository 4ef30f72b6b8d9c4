package video

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Source produces a lazy, finite, non-restartable sequence of sampled
// frames. Next returns io.EOF at end-of-stream and *FrameDecodeError for a
// frame that failed to decode (the caller skips it and calls Next again).
type Source interface {
	// Next returns the frame, its raw frame number and its timestamp in
	// seconds from the start of the video.
	Next() (Frame, int, float64, error)
	Close() error
}

// SourceOptions tune sampling and spatial preprocessing.
type SourceOptions struct {
	SampleRate   int // keep 1 of every N raw frames, N >= 1
	TargetWidth  int
	TargetHeight int
}

// frameReader applies temporal sampling to a stream of fixed-size raw RGB24
// frames. It is separate from the ffmpeg plumbing so the sampling contract
// is testable against any io.Reader.
type frameReader struct {
	r          io.Reader
	width      int
	height     int
	sampleRate int
	fps        float64
	rawIndex   int
	buf        []byte
	done       bool
}

func newFrameReader(r io.Reader, width, height, sampleRate int, fps float64) *frameReader {
	if sampleRate < 1 {
		sampleRate = 1
	}
	if fps <= 0 {
		fps = 30.0
	}
	return &frameReader{
		r:          r,
		width:      width,
		height:     height,
		sampleRate: sampleRate,
		fps:        fps,
		buf:        make([]byte, width*height*3),
	}
}

func (fr *frameReader) Next() (Frame, int, float64, error) {
	if fr.done {
		return Frame{}, 0, 0, io.EOF
	}

	for {
		_, err := io.ReadFull(fr.r, fr.buf)
		if err == io.EOF {
			fr.done = true
			return Frame{}, 0, 0, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			// Truncated trailing frame. Report it once, then end the stream.
			fr.done = true
			return Frame{}, 0, 0, &FrameDecodeError{FrameNumber: fr.rawIndex, Err: err}
		}
		if err != nil {
			fr.done = true
			return Frame{}, 0, 0, fmt.Errorf("failed to read frame %d: %w", fr.rawIndex, err)
		}

		index := fr.rawIndex
		fr.rawIndex++

		if index%fr.sampleRate != 0 {
			continue
		}

		pix := make([]byte, len(fr.buf))
		copy(pix, fr.buf)

		// Timestamp is derived from the container frame rate. For constant
		// frame-rate input this equals the presentation clock; for variable
		// rate it is an approximation.
		timestamp := float64(index) / fr.fps

		return Frame{Pix: pix, Width: fr.width, Height: fr.height}, index, timestamp, nil
	}
}

// Close satisfies Source. frameReader owns no resources beyond the caller's
// io.Reader, so there is nothing to release.
func (fr *frameReader) Close() error {
	return nil
}

// FFmpegSource decodes a video file through an ffmpeg rawvideo pipe. It
// holds the child process for the lifetime of the sequence and releases it
// on Close or when the stream is exhausted.
type FFmpegSource struct {
	reader   *frameReader
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	stderr   *bytes.Buffer
	fps      float64
	duration float64
	closed   bool
}

// Open probes the file and starts an ffmpeg decode. Frames are scaled to the
// target size with area-averaging interpolation (anti-aliased downscaling)
// and emitted in RGB channel order.
func Open(path string, opts SourceOptions) (*FFmpegSource, error) {
	if opts.SampleRate < 1 {
		opts.SampleRate = 1
	}
	if opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", opts.TargetWidth, opts.TargetHeight)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenVideo, path, err)
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	fps, duration, err := probeVideo(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpenVideo, path, err)
	}

	args := []string{
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgb24",
		"-vf", fmt.Sprintf("scale=%d:%d:flags=area", opts.TargetWidth, opts.TargetHeight),
		"-",
	}
	cmd := exec.Command(ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start ffmpeg: %v", ErrOpenVideo, err)
	}

	log.Printf("[VIDEO] Decoding %s (fps=%.2f, duration=%.2fs, sample_rate=%d, target=%dx%d)",
		path, fps, duration, opts.SampleRate, opts.TargetWidth, opts.TargetHeight)

	return &FFmpegSource{
		reader:   newFrameReader(bufio.NewReaderSize(stdout, opts.TargetWidth*opts.TargetHeight*3), opts.TargetWidth, opts.TargetHeight, opts.SampleRate, fps),
		cmd:      cmd,
		stdout:   stdout,
		stderr:   &stderr,
		fps:      fps,
		duration: duration,
	}, nil
}

func (s *FFmpegSource) Next() (Frame, int, float64, error) {
	frame, index, ts, err := s.reader.Next()
	if err == io.EOF {
		// Stream exhausted: reap the child so the OS handle is released
		// even if the consumer never calls Close.
		s.release()
	}
	return frame, index, ts, err
}

// EstimatedFrames returns the expected number of sampled frames, for
// progress reporting. It is an estimate based on probed fps and duration.
func (s *FFmpegSource) EstimatedFrames() int {
	if s.fps <= 0 || s.duration <= 0 {
		return 0
	}
	total := s.duration * s.fps
	return int(math.Ceil(total / float64(s.reader.sampleRate)))
}

func (s *FFmpegSource) Close() error {
	return s.release()
}

func (s *FFmpegSource) release() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.stdout.Close()
	if err := s.cmd.Wait(); err != nil {
		// Expected when the consumer abandons the stream early: ffmpeg dies
		// on the broken pipe. Log only if it produced diagnostics.
		if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
			lines := strings.Split(msg, "\n")
			log.Printf("[VIDEO] ffmpeg exited: %v (%s)", err, lines[len(lines)-1])
		}
	}
	return nil
}

// probeVideo reads frame rate and duration with ffprobe, falling back to
// parsing ffmpeg's banner output when ffprobe is unavailable.
func probeVideo(path string) (fps float64, duration float64, err error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err == nil {
		cmd := exec.Command(ffprobePath,
			"-v", "error",
			"-select_streams", "v:0",
			"-show_entries", "stream=r_frame_rate:format=duration",
			"-of", "default=noprint_wrappers=1",
			path)

		var stdout bytes.Buffer
		cmd.Stdout = &stdout

		if err := cmd.Run(); err == nil {
			fps, duration = parseProbeOutput(stdout.String())
			if fps > 0 {
				return fps, duration, nil
			}
		}
	}

	// ffprobe missing or unhelpful: pull the duration out of ffmpeg stderr
	// and assume 30 fps.
	ffmpegPath, lookErr := exec.LookPath("ffmpeg")
	if lookErr != nil {
		return 0, 0, fmt.Errorf("neither ffprobe nor ffmpeg available: %w", lookErr)
	}

	cmd := exec.Command(ffmpegPath, "-i", path, "-f", "null", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	_ = cmd.Run()

	duration, parseErr := parseBannerDuration(stderr.String())
	if parseErr != nil {
		return 0, 0, parseErr
	}
	return 30.0, duration, nil
}

func parseProbeOutput(output string) (fps float64, duration float64) {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if value, ok := strings.CutPrefix(line, "r_frame_rate="); ok {
			fps = parseRational(value)
		}
		if value, ok := strings.CutPrefix(line, "duration="); ok {
			if d, err := strconv.ParseFloat(value, 64); err == nil {
				duration = d
			}
		}
	}
	return fps, duration
}

// parseRational converts ffprobe's "num/den" frame-rate form.
func parseRational(value string) float64 {
	if num, den, found := strings.Cut(value, "/"); found {
		n, errN := strconv.ParseFloat(num, 64)
		d, errD := strconv.ParseFloat(den, 64)
		if errN == nil && errD == nil && d != 0 {
			return n / d
		}
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseBannerDuration(output string) (float64, error) {
	const prefix = "Duration: "
	start := strings.Index(output, prefix)
	if start == -1 {
		return 0, fmt.Errorf("duration not found in ffmpeg output")
	}
	start += len(prefix)

	end := strings.Index(output[start:], ",")
	if end == -1 {
		return 0, fmt.Errorf("invalid duration format")
	}

	parts := strings.Split(output[start:start+end], ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration format: %s", output[start:start+end])
	}

	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, err
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, err
	}

	return hours*3600 + minutes*60 + seconds, nil
}
