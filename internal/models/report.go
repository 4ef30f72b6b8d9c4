package models

import (
	"time"

	"github.com/google/uuid"
)

// Report is the persisted outcome of one analysis run: the generated text
// plus the summary counters. The frame-level aggregate itself is not stored.
type Report struct {
	ID                string
	VideoID           string
	Role              string
	Locale            string
	Content           string
	Transcript        string
	FramesWithPose    int
	FramesWithoutPose int
	FailedFrames      int
	CreatedAt         time.Time
}

func NewReport(videoID, role, locale, content, transcript string) *Report {
	return &Report{
		ID:         uuid.New().String(),
		VideoID:    videoID,
		Role:       role,
		Locale:     locale,
		Content:    content,
		Transcript: transcript,
		CreatedAt:  time.Now(),
	}
}
