package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/taskforge/project-service/internal/repositories"
)

type analyticsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewAnalyticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// Progress reports the share of completed tasks. A project with no tasks is
// 0.00 percent complete, not a division error.
func (s *analyticsService) Progress(ctx context.Context, projectID uint) (*ProgressResponse, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	counts, err := s.repo.Analytics().TaskStatusCounts(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}

	percent := 0.0
	if counts.Total > 0 {
		percent = float64(counts.Completed) / float64(counts.Total) * 100
	}

	return &ProgressResponse{
		Progress:      fmt.Sprintf("%.2f", percent),
		TotalTask:     counts.Total,
		CompletedTask: counts.Completed,
		OngoingTask:   counts.Ongoing,
		PendingTask:   counts.Pending,
	}, nil
}

// Workload reports each user's share of the project's distinct assigned
// tasks. A project with tasks but no assignments is a not-found condition,
// distinct from a project with no tasks at all.
func (s *analyticsService) Workload(ctx context.Context, projectID uint) ([]*WorkloadEntry, error) {
	if err := s.requireProject(ctx, projectID); err != nil {
		return nil, err
	}

	rows, err := s.repo.Analytics().WorkloadRows(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoAssignments
	}

	totalAssigned, err := s.repo.Analytics().DistinctAssignedTasks(ctx, nil, projectID)
	if err != nil {
		return nil, err
	}

	entries := make([]*WorkloadEntry, 0, len(rows))
	for _, row := range rows {
		percent := 0.0
		if totalAssigned > 0 {
			percent = float64(row.TaskCount) / float64(totalAssigned) * 100
		}

		entries = append(entries, &WorkloadEntry{
			UserID:     row.UserID,
			Username:   row.Username,
			TaskCount:  row.TaskCount,
			Percentage: fmt.Sprintf("%.2f", percent),
		})
	}

	return entries, nil
}

// ExportWorkload renders the workload table into an xlsx workbook.
func (s *analyticsService) ExportWorkload(ctx context.Context, projectID uint) ([]byte, error) {
	entries, err := s.Workload(ctx, projectID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Workload"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{"User ID", "Username", "Tasks", "Share (%)"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, entry := range entries {
		values := []interface{}{entry.UserID, entry.Username, entry.TaskCount, entry.Percentage}
		for colIdx, value := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write workload row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	s.logger.Info("Workload exported", "project_id", projectID, "rows", len(entries))

	return buf.Bytes(), nil
}

func (s *analyticsService) requireProject(ctx context.Context, projectID uint) error {
	exists, err := s.repo.Project().Exists(ctx, nil, projectID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrProjectNotFound
	}
	return nil
}
