package integration

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/shree2604/badminton-ai/internal/analysis"
	"github.com/shree2604/badminton-ai/internal/api"
	"github.com/shree2604/badminton-ai/internal/database"
	"github.com/shree2604/badminton-ai/internal/pose"
	"github.com/shree2604/badminton-ai/internal/report"
	"github.com/shree2604/badminton-ai/internal/storage"
	"github.com/shree2604/badminton-ai/internal/video"
)

type TestServer struct {
	Server     *httptest.Server
	App        *api.App
	DB         *database.DB
	VideoRepo  *database.VideoRepository
	ReportRepo *database.ReportRepository
	Storage    storage.Storage
}

type fixedGenerator struct {
	content string
}

func (g fixedGenerator) Generate(ctx context.Context, req report.Request) (string, error) {
	return g.content, nil
}

func setupTestServer(t *testing.T) *TestServer {
	t.Helper()
	tempDir := t.TempDir()

	localStorage, err := storage.NewLocalStorage(filepath.Join(tempDir, "uploads"))
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	db, err := database.NewDB(database.Config{Path: filepath.Join(tempDir, "test.db")})
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}

	videoRepo := database.NewVideoRepository(db)
	reportRepo := database.NewReportRepository(db)

	poseConfig := pose.NewConfig()
	poseConfig.ServerURL = "http://localhost:0"
	analysisService := analysis.NewService(
		pose.NewClient(poseConfig),
		nil,
		nil,
		fixedGenerator{content: "generated report"},
		videoRepo,
		reportRepo,
		localStorage,
		analysis.Config{Pipeline: video.DefaultOptions()},
	)

	app := &api.App{
		Storage:       localStorage,
		DB:            db,
		VideoRepo:     videoRepo,
		ReportRepo:    reportRepo,
		MaxUploadSize: 10 * 1024 * 1024,
	}

	router := api.NewRouter(app, api.NewAnalysisHandlers(analysisService))
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		db.Close()
	})

	return &TestServer{
		Server:     server,
		App:        app,
		DB:         db,
		VideoRepo:  videoRepo,
		ReportRepo: reportRepo,
		Storage:    localStorage,
	}
}

func createMultipartUpload(title, description, filename string, content []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, bytes.NewReader(content)); err != nil {
		return nil, "", err
	}

	if err := writer.WriteField("title", title); err != nil {
		return nil, "", err
	}
	if err := writer.WriteField("description", description); err != nil {
		return nil, "", err
	}

	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return body, writer.FormDataContentType(), nil
}

func countVideosInDB(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM videos").Scan(&count)
	return count, err
}

func uploadTestVideo(t *testing.T, server string, title, description string) *http.Response {
	t.Helper()
	content := []byte("fake mp4 content for testing")
	body, contentType, err := createMultipartUpload(title, description, "test.mp4", content)
	if err != nil {
		t.Fatalf("Failed to create multipart upload: %v", err)
	}

	req, err := http.NewRequest("POST", fmt.Sprintf("%s/api/videos", server), body)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to upload video: %v", err)
	}

	return resp
}
