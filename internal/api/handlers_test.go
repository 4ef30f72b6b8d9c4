package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shree2604/badminton-ai/internal/analysis"
	"github.com/shree2604/badminton-ai/internal/database"
	"github.com/shree2604/badminton-ai/internal/models"
	"github.com/shree2604/badminton-ai/internal/report"
	"github.com/shree2604/badminton-ai/internal/storage"
	"github.com/shree2604/badminton-ai/internal/video"
)

type nullGenerator struct{}

func (nullGenerator) Generate(ctx context.Context, req report.Request) (string, error) {
	return "report", nil
}

func newTestServer(t *testing.T) (http.Handler, *App) {
	t.Helper()

	db, err := database.NewDB(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	app := &App{
		Storage:       store,
		DB:            db,
		VideoRepo:     database.NewVideoRepository(db),
		ReportRepo:    database.NewReportRepository(db),
		MaxUploadSize: 10 << 20,
	}

	svc := analysis.NewService(nil, nil, nil, nullGenerator{}, app.VideoRepo, app.ReportRepo, store, analysis.Config{
		Pipeline: video.DefaultOptions(),
	})

	return NewRouter(app, NewAnalysisHandlers(svc)), app
}

func multipartUpload(t *testing.T, title, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if title != "" {
		if err := writer.WriteField("title", title); err != nil {
			t.Fatalf("Failed to write title field: %v", err)
		}
	}

	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write file content: %v", err)
	}
	writer.Close()

	return &body, writer.FormDataContentType()
}

func TestPingHandler(t *testing.T) {
	router, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/ping", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "pong" {
		t.Errorf("Expected 'pong', got %q", rec.Body.String())
	}
}

func TestUploadHandler(t *testing.T) {
	router, _ := newTestServer(t)

	t.Run("Success", func(t *testing.T) {
		body, contentType := multipartUpload(t, "Semifinal", "rally.mp4", []byte("video bytes"))

		req := httptest.NewRequest("POST", "/api/videos", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp videoResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Title != "Semifinal" {
			t.Errorf("Expected title 'Semifinal', got %q", resp.Title)
		}
		if resp.ID == "" {
			t.Error("Expected non-empty video ID")
		}
	})

	t.Run("MissingTitle", func(t *testing.T) {
		body, contentType := multipartUpload(t, "", "rally.mp4", []byte("video bytes"))

		req := httptest.NewRequest("POST", "/api/videos", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rec.Code)
		}
	})

	t.Run("RejectsNonVideo", func(t *testing.T) {
		body, contentType := multipartUpload(t, "Notes", "notes.txt", []byte("not a video"))

		req := httptest.NewRequest("POST", "/api/videos", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", rec.Code)
		}
	})
}

func TestVideoHandlers(t *testing.T) {
	router, app := newTestServer(t)
	ctx := context.Background()

	vid := models.NewVideo("Final", "Championship", "final.mp4", "video/mp4", 42)
	if err := app.VideoRepo.Create(ctx, vid); err != nil {
		t.Fatalf("Failed to create video: %v", err)
	}

	t.Run("List", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		var resp []videoResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp) != 1 {
			t.Errorf("Expected 1 video, got %d", len(resp))
		}
	})

	t.Run("Get", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos/"+vid.ID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos/missing-id", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})
}

func TestStreamVideoHandler(t *testing.T) {
	router, _ := newTestServer(t)

	content := make([]byte, 4096)
	for i := range content {
		content[i] = byte(i % 251)
	}

	body, contentType := multipartUpload(t, "Streamable", "stream.mp4", content)
	uploadReq := httptest.NewRequest("POST", "/api/videos", body)
	uploadReq.Header.Set("Content-Type", contentType)
	uploadRec := httptest.NewRecorder()
	router.ServeHTTP(uploadRec, uploadReq)
	if uploadRec.Code != http.StatusCreated {
		t.Fatalf("Upload failed with status %d", uploadRec.Code)
	}

	var uploaded videoResponse
	if err := json.NewDecoder(uploadRec.Body).Decode(&uploaded); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}

	streamURL := fmt.Sprintf("/api/videos/%s/stream", uploaded.ID)

	t.Run("FullContent", func(t *testing.T) {
		req := httptest.NewRequest("GET", streamURL, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		if rec.Header().Get("Accept-Ranges") != "bytes" {
			t.Error("Expected Accept-Ranges: bytes header")
		}
		got, _ := io.ReadAll(rec.Body)
		if !bytes.Equal(got, content) {
			t.Error("Streamed content does not match upload")
		}
	})

	t.Run("RangeRequest", func(t *testing.T) {
		req := httptest.NewRequest("GET", streamURL, nil)
		req.Header.Set("Range", "bytes=0-1023")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusPartialContent {
			t.Fatalf("Expected status 206, got %d", rec.Code)
		}
		got, _ := io.ReadAll(rec.Body)
		if len(got) != 1024 {
			t.Errorf("Expected 1024 bytes, got %d", len(got))
		}
	})

	t.Run("MissingVideo", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos/missing/stream", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})
}

func TestReportHandlers(t *testing.T) {
	router, app := newTestServer(t)
	ctx := context.Background()

	vid := models.NewVideo("Match", "", "match.mp4", "video/mp4", 1)
	if err := app.VideoRepo.Create(ctx, vid); err != nil {
		t.Fatalf("Failed to create video: %v", err)
	}
	rep := models.NewReport(vid.ID, "coach", "en", "Work on net play.", "")
	if err := app.ReportRepo.Create(ctx, rep); err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}

	t.Run("Get", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/reports/"+rep.ID, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		var resp reportResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.Content != "Work on net play." {
			t.Errorf("Unexpected report content: %q", resp.Content)
		}
	})

	t.Run("GetMissing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/reports/missing-id", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})

	t.Run("ListByVideo", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/videos/"+vid.ID+"/reports", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", rec.Code)
		}
		var resp []reportResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp) != 1 {
			t.Errorf("Expected 1 report, got %d", len(resp))
		}
	})
}

func TestAnalysisHandlers_MissingResources(t *testing.T) {
	router, _ := newTestServer(t)

	t.Run("StartMissingVideo", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/videos/missing/analysis", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})

	t.Run("GetMissingSession", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/sessions/missing", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})

	t.Run("StopMissingSession", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/sessions/missing/stop", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})

	t.Run("StreamMissingSession", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/sessions/missing/events", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", rec.Code)
		}
	})
}
