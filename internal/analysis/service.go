// Package analysis coordinates one full run over an uploaded match video:
// frame pipeline, audio transcription and report generation, exposed as
// trackable sessions.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shree2604/badminton-ai/internal/audio"
	"github.com/shree2604/badminton-ai/internal/database"
	"github.com/shree2604/badminton-ai/internal/models"
	"github.com/shree2604/badminton-ai/internal/pose"
	"github.com/shree2604/badminton-ai/internal/report"
	"github.com/shree2604/badminton-ai/internal/storage"
	"github.com/shree2604/badminton-ai/internal/video"
)

// Generator produces the report text for a finished analysis.
type Generator interface {
	Generate(ctx context.Context, req report.Request) (string, error)
}

type Service struct {
	estimator   pose.Estimator
	extractor   *audio.Extractor
	transcriber audio.Transcriber
	generator   Generator
	videoRepo   *database.VideoRepository
	reportRepo  *database.ReportRepository
	storage     storage.Storage
	opts        video.Options
	language    string

	// process runs the frame pipeline; replaced in tests.
	process func(ctx context.Context, path string, progress func(int)) (*video.Analysis, error)

	sessions   map[string]*Session
	sessionsMu sync.RWMutex
}

type Config struct {
	Pipeline video.Options
	Language string
}

func NewService(
	estimator pose.Estimator,
	extractor *audio.Extractor,
	transcriber audio.Transcriber,
	generator Generator,
	videoRepo *database.VideoRepository,
	reportRepo *database.ReportRepository,
	storageService storage.Storage,
	config Config,
) *Service {
	if config.Language == "" {
		config.Language = "en"
	}

	s := &Service{
		estimator:   estimator,
		extractor:   extractor,
		transcriber: transcriber,
		generator:   generator,
		videoRepo:   videoRepo,
		reportRepo:  reportRepo,
		storage:     storageService,
		opts:        config.Pipeline,
		language:    config.Language,
		sessions:    make(map[string]*Session),
	}
	s.process = s.runPipeline
	return s
}

func (s *Service) runPipeline(ctx context.Context, path string, progress func(int)) (*video.Analysis, error) {
	opts := s.opts
	opts.Progress = progress
	processor := video.NewProcessor(s.estimator, opts)
	return processor.ProcessFile(ctx, path)
}

// StartAnalysis launches a background run for a stored video and returns
// the session to follow it by.
func (s *Service) StartAnalysis(ctx context.Context, videoID string, role report.Role, locale string) (*Session, error) {
	vid, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("getting video: %w", err)
	}
	if vid == nil {
		return nil, fmt.Errorf("video %s not found", videoID)
	}
	if !role.Valid() {
		role = report.RoleCoach
	}
	if locale == "" {
		locale = s.language
	}

	runCtx, cancel := context.WithCancel(context.Background())

	session := &Session{
		ID:         uuid.New().String(),
		VideoID:    videoID,
		Role:       string(role),
		Locale:     locale,
		Status:     StatusProcessing,
		StartedAt:  time.Now(),
		Updates:    make(chan SessionUpdate, 100),
		CancelFunc: cancel,
	}

	s.sessionsMu.Lock()
	s.sessions[session.ID] = session
	s.sessionsMu.Unlock()

	go s.runAnalysis(runCtx, session, vid)

	return session, nil
}

func (s *Service) GetSession(sessionID string) (*Session, bool) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()

	session, exists := s.sessions[sessionID]
	return session, exists
}

func (s *Service) StopAnalysis(sessionID string) error {
	s.sessionsMu.Lock()
	session, exists := s.sessions[sessionID]
	s.sessionsMu.Unlock()

	if !exists {
		return fmt.Errorf("session not found")
	}

	if session.CancelFunc != nil {
		log.Printf("[ANALYSIS] Stopping session %s", sessionID)
		session.CancelFunc()
	}

	return nil
}

func (s *Service) runAnalysis(ctx context.Context, session *Session, vid *models.Video) {
	defer close(session.Updates)

	log.Printf("[ANALYSIS] Starting session %s for video %s", session.ID, vid.ID)

	videoPath, err := s.storage.FilePath(vid.Filename)
	if err != nil {
		s.fail(session, fmt.Errorf("resolving video path: %w", err))
		return
	}

	progress := func(framesDone int) {
		session.ProcessedFrames = framesDone
		select {
		case session.Updates <- SessionUpdate{
			Type: "progress",
			Data: ProgressData{SessionID: session.ID, ProcessedFrames: framesDone},
		}:
		default:
		}
	}

	result, err := s.process(ctx, videoPath, progress)
	if err != nil {
		if ctx.Err() != nil {
			session.Status = StatusCancelled
			session.Updates <- SessionUpdate{
				Type: "cancelled",
				Data: map[string]interface{}{"message": "Analysis cancelled by user"},
			}
			log.Printf("[ANALYSIS] Session %s cancelled", session.ID)
			return
		}
		s.fail(session, err)
		return
	}

	transcript := s.transcribe(ctx, videoPath, session.Locale)

	if s.generator == nil {
		s.fail(session, errors.New("report generator not configured"))
		return
	}

	content, err := s.generator.Generate(ctx, report.Request{
		Analysis:   result,
		Transcript: transcript,
		Role:       report.Role(session.Role),
		Locale:     session.Locale,
	})
	if err != nil {
		s.fail(session, fmt.Errorf("generating report: %w", err))
		return
	}

	rep := models.NewReport(vid.ID, session.Role, session.Locale, content, transcript)
	rep.FramesWithPose = result.FramesWithPose
	rep.FramesWithoutPose = result.FramesWithoutPose
	rep.FailedFrames = len(result.Failures)
	if err := s.reportRepo.Create(ctx, rep); err != nil {
		s.fail(session, fmt.Errorf("saving report: %w", err))
		return
	}

	now := time.Now()
	session.CompletedAt = &now
	session.ReportID = rep.ID
	session.Status = StatusComplete

	session.Updates <- SessionUpdate{
		Type: "complete",
		Data: CompleteData{
			SessionID:         session.ID,
			VideoID:           vid.ID,
			ReportID:          rep.ID,
			FramesWithPose:    result.FramesWithPose,
			FramesWithoutPose: result.FramesWithoutPose,
			FailedFrames:      len(result.Failures),
			TimeElapsed:       time.Since(session.StartedAt),
		},
	}
	log.Printf("[ANALYSIS] Session %s complete: report %s (%d frames with pose, %d without) in %v",
		session.ID, rep.ID, result.FramesWithPose, result.FramesWithoutPose, time.Since(session.StartedAt))
}

// transcribe extracts the audio track and transcribes it. Failures degrade
// to an empty transcript rather than failing the whole run.
func (s *Service) transcribe(ctx context.Context, videoPath, locale string) string {
	if s.extractor == nil || s.transcriber == nil {
		return ""
	}

	audioPath, err := s.extractor.Extract(videoPath)
	if err != nil {
		log.Printf("[ANALYSIS] Audio extraction failed, continuing without transcript: %v", err)
		return ""
	}
	defer os.Remove(audioPath)

	transcript, err := s.transcriber.Transcribe(ctx, audioPath, locale)
	if err != nil {
		log.Printf("[ANALYSIS] Transcription failed, continuing without transcript: %v", err)
		return ""
	}
	return transcript
}

func (s *Service) fail(session *Session, err error) {
	log.Printf("[ANALYSIS] Session %s failed: %v", session.ID, err)
	session.Status = StatusError
	session.Error = err.Error()
	session.Updates <- SessionUpdate{
		Type: "error",
		Data: map[string]interface{}{"message": err.Error()},
	}
}
