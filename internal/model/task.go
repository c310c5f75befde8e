package model

import (
	"fmt"
	"path/filepath"
	"time"
)

// ArchiveTask represents a queued or running archive job
type ArchiveTask struct {
	ID         string
	Job        ArchiveJob
	Status     TaskStatus
	Progress   float64 // 0.0 to 1.0
	Percent    int     // 0 to 100
	Message    string  // latest progress message
	LastError  string  // last error message if any
	StartedAt  time.Time
	FinishedAt time.Time
}

// Inputs returns the files the task operates on
func (at *ArchiveTask) Inputs() []string {
	if at.Job.Path != "" {
		return []string{at.Job.Path}
	}
	return at.Job.Files
}

// GetDisplayTitle returns the file name for single-file tasks, or the task folder
// and file count for batches
func (at *ArchiveTask) GetDisplayTitle() string {
	if at.Job.Path != "" {
		return filepath.Base(at.Job.Path)
	}
	if len(at.Job.Files) == 0 {
		return ""
	}
	dir := filepath.Base(filepath.Dir(at.Job.Files[0]))
	if len(at.Job.Files) == 1 {
		return dir + " (1 file)"
	}
	return fmt.Sprintf("%s (%d files)", dir, len(at.Job.Files))
}

// Elapsed returns how long the task ran, or has been running
func (at *ArchiveTask) Elapsed() time.Duration {
	if at.StartedAt.IsZero() {
		return 0
	}
	if at.FinishedAt.IsZero() {
		return time.Since(at.StartedAt)
	}
	return at.FinishedAt.Sub(at.StartedAt)
}

