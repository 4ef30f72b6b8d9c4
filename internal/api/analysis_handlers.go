package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shree2604/badminton-ai/internal/analysis"
	"github.com/shree2604/badminton-ai/internal/report"
)

type AnalysisHandlers struct {
	service *analysis.Service
}

func NewAnalysisHandlers(service *analysis.Service) *AnalysisHandlers {
	return &AnalysisHandlers{service: service}
}

type sessionResponse struct {
	SessionID       string `json:"session_id"`
	VideoID         string `json:"video_id"`
	Role            string `json:"role"`
	Locale          string `json:"locale"`
	Status          string `json:"status"`
	ProcessedFrames int    `json:"processed_frames"`
	ReportID        string `json:"report_id,omitempty"`
	Error           string `json:"error,omitempty"`
}

func toSessionResponse(s *analysis.Session) sessionResponse {
	return sessionResponse{
		SessionID:       s.ID,
		VideoID:         s.VideoID,
		Role:            s.Role,
		Locale:          s.Locale,
		Status:          s.Status,
		ProcessedFrames: s.ProcessedFrames,
		ReportID:        s.ReportID,
		Error:           s.Error,
	}
}

func (h *AnalysisHandlers) StartAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")

	role := report.Role(r.FormValue("role"))
	locale := r.FormValue("locale")

	session, err := h.service.StartAnalysis(r.Context(), videoID, role, locale)
	if err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Failed to start analysis: %v", err))
		return
	}

	respondJSON(w, http.StatusAccepted, toSessionResponse(session))
}

func (h *AnalysisHandlers) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, exists := h.service.GetSession(sessionID)
	if !exists {
		respondError(w, http.StatusNotFound, "Session not found")
		return
	}

	respondJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *AnalysisHandlers) StopAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.service.StopAnalysis(sessionID); err != nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("Failed to stop analysis: %v", err))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

// AnalysisStreamHandler forwards session updates as server-sent events
// until the session finishes or the client disconnects.
func (h *AnalysisHandlers) AnalysisStreamHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, exists := h.service.GetSession(sessionID)
	if !exists {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	clientGone := r.Context().Done()

	for {
		select {
		case update, ok := <-session.Updates:
			if !ok {
				return
			}

			data, err := json.Marshal(update.Data)
			if err != nil {
				log.Printf("[API] Error marshaling update: %v", err)
				continue
			}

			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", update.Type, string(data))
			flusher.Flush()

		case <-clientGone:
			return
		}
	}
}
