package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/shree2604/badminton-ai/internal/analysis"
	"github.com/shree2604/badminton-ai/internal/api"
	"github.com/shree2604/badminton-ai/internal/audio"
	"github.com/shree2604/badminton-ai/internal/config"
	"github.com/shree2604/badminton-ai/internal/database"
	"github.com/shree2604/badminton-ai/internal/pose"
	"github.com/shree2604/badminton-ai/internal/report"
	"github.com/shree2604/badminton-ai/internal/storage"
	"github.com/shree2604/badminton-ai/internal/video"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	localStorage, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		log.Fatal("Failed to initialize storage:", err)
	}

	db, err := database.NewDB(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Conn()).Run(cfg.Migrations); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	videoRepo := database.NewVideoRepository(db)
	reportRepo := database.NewReportRepository(db)

	estimator := pose.NewClient(&pose.Config{
		ServerURL:              cfg.Pose.ServerURL,
		MinDetectionConfidence: cfg.Pose.MinDetectionConfidence,
		MinTrackingConfidence:  cfg.Pose.MinTrackingConfidence,
	})

	var extractor *audio.Extractor
	extractor, err = audio.NewExtractor()
	if err != nil {
		log.Printf("Warning: audio extraction unavailable: %v", err)
		extractor = nil
	}

	var transcriber audio.Transcriber
	if cfg.SpeechAPIKey != "" {
		transcriber = audio.NewSpeechClient(cfg.SpeechAPIKey)
	} else {
		log.Println("SPEECH_API_KEY not set, reports will have no transcript")
	}

	var generator analysis.Generator
	if cfg.GeminiAPIKey != "" {
		generator, err = report.NewGenerator(cfg.GeminiAPIKey)
		if err != nil {
			log.Fatal("Failed to initialize report generator:", err)
		}
	} else {
		log.Println("GEMINI_API_KEY not set, analysis runs will fail at report generation")
	}

	pipelineOpts := video.DefaultOptions()
	pipelineOpts.SampleRate = cfg.Pipeline.SampleRate
	pipelineOpts.TargetWidth = cfg.Pipeline.TargetWidth
	pipelineOpts.TargetHeight = cfg.Pipeline.TargetHeight
	pipelineOpts.BatchSize = cfg.Pipeline.BatchSize
	if cfg.Pipeline.MaxWorkers > 0 {
		pipelineOpts.MaxWorkers = cfg.Pipeline.MaxWorkers
	}
	pipelineOpts.CacheSize = cfg.Pipeline.CacheSize

	analysisService := analysis.NewService(
		estimator,
		extractor,
		transcriber,
		generator,
		videoRepo,
		reportRepo,
		localStorage,
		analysis.Config{Pipeline: pipelineOpts, Language: cfg.Language},
	)

	app := &api.App{
		Storage:       localStorage,
		DB:            db,
		VideoRepo:     videoRepo,
		ReportRepo:    reportRepo,
		MaxUploadSize: cfg.MaxUploadSize,
	}

	router := api.NewRouter(app, api.NewAnalysisHandlers(analysisService))

	log.Printf("Server starting on port %s", cfg.Port)
	log.Printf("Upload directory: %s", cfg.StoragePath)
	log.Printf("Database path: %s", cfg.DBPath)
	log.Printf("Pose server: %s", cfg.Pose.ServerURL)
	log.Printf("Max upload size: %d bytes", cfg.MaxUploadSize)

	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		log.Fatal(err)
	}
}
