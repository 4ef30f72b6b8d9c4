package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shree2604/badminton-ai/internal/models"
)

type ReportRepository struct {
	db *DB
}

func NewReportRepository(db *DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	query := `
	INSERT INTO reports (id, video_id, role, locale, content, transcript,
		frames_with_pose, frames_without_pose, failed_frames, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.conn.ExecContext(ctx, query,
		report.ID,
		report.VideoID,
		report.Role,
		report.Locale,
		report.Content,
		report.Transcript,
		report.FramesWithPose,
		report.FramesWithoutPose,
		report.FailedFrames,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	query := `
	SELECT id, video_id, role, locale, content, transcript,
		frames_with_pose, frames_without_pose, failed_frames, created_at
	FROM reports WHERE id = ?`

	var report models.Report
	err := r.db.conn.QueryRowContext(ctx, query, id).Scan(
		&report.ID,
		&report.VideoID,
		&report.Role,
		&report.Locale,
		&report.Content,
		&report.Transcript,
		&report.FramesWithPose,
		&report.FramesWithoutPose,
		&report.FailedFrames,
		&report.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return &report, nil
}

// ListByVideo returns all reports generated for a video, newest first.
func (r *ReportRepository) ListByVideo(ctx context.Context, videoID string) ([]*models.Report, error) {
	query := `
	SELECT id, video_id, role, locale, content, transcript,
		frames_with_pose, frames_without_pose, failed_frames, created_at
	FROM reports WHERE video_id = ? ORDER BY created_at DESC`

	rows, err := r.db.conn.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.Report
	for rows.Next() {
		var report models.Report
		if err := rows.Scan(
			&report.ID,
			&report.VideoID,
			&report.Role,
			&report.Locale,
			&report.Content,
			&report.Transcript,
			&report.FramesWithPose,
			&report.FramesWithoutPose,
			&report.FailedFrames,
			&report.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, &report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}
