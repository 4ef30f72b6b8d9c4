package analysis

import (
	"context"
	"time"
)

const (
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusCancelled  = "cancelled"
	StatusError      = "error"
)

type Session struct {
	ID              string
	VideoID         string
	Role            string
	Locale          string
	Status          string
	ProcessedFrames int
	ReportID        string
	Error           string
	StartedAt       time.Time
	CompletedAt     *time.Time
	Updates         chan SessionUpdate
	CancelFunc      context.CancelFunc
}

type SessionUpdate struct {
	Type string
	Data interface{}
}

type ProgressData struct {
	SessionID       string `json:"session_id"`
	ProcessedFrames int    `json:"processed_frames"`
	EstimatedFrames int    `json:"estimated_frames"`
}

type CompleteData struct {
	SessionID         string        `json:"session_id"`
	VideoID           string        `json:"video_id"`
	ReportID          string        `json:"report_id"`
	FramesWithPose    int           `json:"frames_with_pose"`
	FramesWithoutPose int           `json:"frames_without_pose"`
	FailedFrames      int           `json:"failed_frames"`
	TimeElapsed       time.Duration `json:"time_elapsed"`
}
