package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shree2604/badminton-ai/internal/database"
	"github.com/shree2604/badminton-ai/internal/models"
	"github.com/shree2604/badminton-ai/internal/storage"
)

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

type App struct {
	Storage       storage.Storage
	DB            *database.DB
	VideoRepo     *database.VideoRepository
	ReportRepo    *database.ReportRepository
	MaxUploadSize int64
}

type videoResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadTime  time.Time `json:"upload_time"`
}

func toVideoResponse(v *models.Video) videoResponse {
	return videoResponse{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		ContentType: v.ContentType,
		Size:        v.Size,
		UploadTime:  v.UploadTime,
	}
}

type reportResponse struct {
	ID                string    `json:"id"`
	VideoID           string    `json:"video_id"`
	Role              string    `json:"role"`
	Locale            string    `json:"locale"`
	Content           string    `json:"content"`
	Transcript        string    `json:"transcript"`
	FramesWithPose    int       `json:"frames_with_pose"`
	FramesWithoutPose int       `json:"frames_without_pose"`
	FailedFrames      int       `json:"failed_frames"`
	CreatedAt         time.Time `json:"created_at"`
}

func toReportResponse(rep *models.Report) reportResponse {
	return reportResponse{
		ID:                rep.ID,
		VideoID:           rep.VideoID,
		Role:              rep.Role,
		Locale:            rep.Locale,
		Content:           rep.Content,
		Transcript:        rep.Transcript,
		FramesWithPose:    rep.FramesWithPose,
		FramesWithoutPose: rep.FramesWithoutPose,
		FailedFrames:      rep.FailedFrames,
		CreatedAt:         rep.CreatedAt,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[API] Error encoding response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (app *App) UploadHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, app.MaxUploadSize)

	if err := r.ParseMultipartForm(app.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "File too large")
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to get file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "video/") && contentType != "application/octet-stream" {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if ext != ".mp4" {
			respondError(w, http.StatusBadRequest, "Only MP4 video files are allowed")
			return
		}
		contentType = "video/mp4"
	}

	title := r.FormValue("title")
	if title == "" {
		respondError(w, http.StatusBadRequest, "Title is required")
		return
	}

	description := r.FormValue("description")

	filename, err := app.Storage.SaveFile(file, storage.FileInfo{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	video := models.NewVideo(title, description, filename, contentType, header.Size)
	if err := app.VideoRepo.Create(r.Context(), video); err != nil {
		app.Storage.DeleteFile(filename)
		respondError(w, http.StatusInternalServerError, "Failed to save video information")
		return
	}

	respondJSON(w, http.StatusCreated, toVideoResponse(video))
}

func (app *App) ListVideosHandler(w http.ResponseWriter, r *http.Request) {
	videos, err := app.VideoRepo.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error loading videos")
		return
	}

	resp := make([]videoResponse, 0, len(videos))
	for _, v := range videos {
		resp = append(resp, toVideoResponse(v))
	}
	respondJSON(w, http.StatusOK, resp)
}

func (app *App) GetVideoHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	video, err := app.VideoRepo.GetByID(r.Context(), videoID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error loading video")
		return
	}
	if video == nil {
		respondError(w, http.StatusNotFound, "Video not found")
		return
	}

	respondJSON(w, http.StatusOK, toVideoResponse(video))
}

func (app *App) StreamVideoHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	video, err := app.VideoRepo.GetByID(r.Context(), videoID)
	if err != nil || video == nil {
		http.NotFound(w, r)
		return
	}

	file, err := app.Storage.OpenFile(video.Filename)
	if err != nil {
		http.Error(w, "Video file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	stat, err := file.(interface{ Stat() (os.FileInfo, error) }).Stat()
	if err != nil {
		http.Error(w, "Error accessing video file", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", video.ContentType)

	// ServeContent handles Range requests, Accept-Ranges and 206 responses.
	http.ServeContent(w, r, video.Filename, stat.ModTime(), file)
}

func (app *App) GetReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := chi.URLParam(r, "id")

	rep, err := app.ReportRepo.GetByID(r.Context(), reportID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error loading report")
		return
	}
	if rep == nil {
		respondError(w, http.StatusNotFound, "Report not found")
		return
	}

	respondJSON(w, http.StatusOK, toReportResponse(rep))
}

func (app *App) ListVideoReportsHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	reports, err := app.ReportRepo.ListByVideo(r.Context(), videoID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Error loading reports")
		return
	}

	resp := make([]reportResponse, 0, len(reports))
	for _, rep := range reports {
		resp = append(resp, toReportResponse(rep))
	}
	respondJSON(w, http.StatusOK, resp)
}
