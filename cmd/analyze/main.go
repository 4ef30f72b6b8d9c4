// Command analyze runs the full pipeline against a local video file without
// the server: pose estimation, metrics, transcription and report generation,
// writing the report to stdout or a file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/joho/godotenv"
	"github.com/shree2604/badminton-ai/internal/audio"
	"github.com/shree2604/badminton-ai/internal/overlay"
	"github.com/shree2604/badminton-ai/internal/pose"
	"github.com/shree2604/badminton-ai/internal/report"
	"github.com/shree2604/badminton-ai/internal/video"
)

func main() {
	var (
		videoPath  = flag.String("video", "", "Path to the match video file")
		role       = flag.String("role", "coach", "Report audience: coach, student or parent")
		locale     = flag.String("locale", "en", "Report language")
		playerNum  = flag.Int("player", 1, "Player number the analysis concerns")
		output     = flag.String("output", "", "Write the report to this file instead of stdout")
		poseURL    = flag.String("pose-url", "", "Pose server URL (defaults to POSE_SERVER_URL)")
		sampleRate = flag.Int("sample-rate", 3, "Process every Nth frame")
		skipAudio  = flag.Bool("skip-audio", false, "Skip audio extraction and transcription")
		overlayDir = flag.String("overlay-dir", "", "Write annotated skeleton snapshots to this directory")
	)
	flag.Parse()

	if *videoPath == "" {
		log.Fatal("Please provide a video file with -video")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	serverURL := *poseURL
	if serverURL == "" {
		serverURL = os.Getenv("POSE_SERVER_URL")
	}
	if serverURL == "" {
		serverURL = "http://localhost:9090"
	}

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("GEMINI_API_KEY not set")
	}
	generator, err := report.NewGenerator(geminiKey)
	if err != nil {
		log.Fatal("Failed to initialize report generator:", err)
	}

	poseConfig := pose.NewConfig()
	poseConfig.ServerURL = serverURL
	estimator := pose.NewClient(poseConfig)

	opts := video.DefaultOptions()
	opts.SampleRate = *sampleRate
	opts.RetainFrames = *overlayDir != ""

	src, err := video.Open(*videoPath, video.SourceOptions{
		SampleRate:   opts.SampleRate,
		TargetWidth:  opts.TargetWidth,
		TargetHeight: opts.TargetHeight,
	})
	if err != nil {
		log.Fatal("Failed to open video:", err)
	}
	defer src.Close()

	bar := pb.StartNew(src.EstimatedFrames())
	opts.Progress = func(framesDone int) {
		bar.SetCurrent(int64(framesDone))
	}

	ctx := context.Background()
	processor := video.NewProcessor(estimator, opts)

	fmt.Printf("Analyzing %s (every %d frames)\n", *videoPath, opts.SampleRate)
	result, err := processor.Process(ctx, src)
	bar.Finish()
	if err != nil {
		log.Fatal("Analysis failed:", err)
	}

	fmt.Printf("Frames with pose: %d, without: %d, failed: %d\n",
		result.FramesWithPose, result.FramesWithoutPose, len(result.Failures))

	if *overlayDir != "" {
		if err := writeOverlays(*overlayDir, processor.Snapshots(), result); err != nil {
			log.Printf("Failed to write overlay snapshots: %v", err)
		}
	}

	transcript := ""
	if !*skipAudio {
		transcript = transcribe(ctx, *videoPath, *locale)
	}

	content, err := generator.Generate(ctx, report.Request{
		Analysis:   result,
		Transcript: transcript,
		Role:       report.Role(*role),
		Locale:     *locale,
		PlayerNum:  *playerNum,
	})
	if err != nil {
		log.Fatal("Report generation failed:", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(content), 0644); err != nil {
			log.Fatal("Failed to write report:", err)
		}
		fmt.Printf("Report written to %s\n", *output)
	} else {
		fmt.Println()
		fmt.Println(content)
	}
}

func writeOverlays(dir string, snapshots map[int]video.Frame, result *video.Analysis) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	rendered, err := overlay.NewRenderer(overlay.DefaultOptions()).RenderAll(snapshots, result)
	if err != nil {
		return err
	}

	for frameNumber, data := range rendered {
		name := filepath.Join(dir, fmt.Sprintf("frame_%06d.jpg", frameNumber))
		if err := os.WriteFile(name, data, 0644); err != nil {
			return err
		}
	}
	fmt.Printf("Wrote %d annotated snapshots to %s\n", len(rendered), dir)
	return nil
}

func transcribe(ctx context.Context, videoPath, locale string) string {
	speechKey := os.Getenv("SPEECH_API_KEY")
	if speechKey == "" {
		log.Println("SPEECH_API_KEY not set, skipping transcription")
		return ""
	}

	extractor, err := audio.NewExtractor()
	if err != nil {
		log.Printf("Audio extraction unavailable: %v", err)
		return ""
	}

	audioPath, err := extractor.Extract(videoPath)
	if err != nil {
		log.Printf("Audio extraction failed: %v", err)
		return ""
	}
	defer os.Remove(audioPath)

	transcript, err := audio.NewSpeechClient(speechKey).Transcribe(ctx, audioPath, locale)
	if err != nil {
		log.Printf("Transcription failed: %v", err)
		return ""
	}
	return transcript
}
