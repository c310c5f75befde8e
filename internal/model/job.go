package model

import "errors"

// ErrInvalidJob is returned when a job names neither a path nor a file list
var ErrInvalidJob = errors.New("both file path and file list are empty")

// ErrAmbiguousJob is returned when a job names both a path and a file list
var ErrAmbiguousJob = errors.New("file path and file list are mutually exclusive")

// ArchiveJob describes one user-triggered archive operation
type ArchiveJob struct {
	Path     string   // single file to compress or archive to decompress
	Files    []string // task files to compress in sequence
	Settings ArchiveSettings
}

// IsBatch reports whether the job operates on a file list
func (j ArchiveJob) IsBatch() bool {
	return j.Path == "" && len(j.Files) > 0
}

// Validate checks the job shape and its settings without touching the filesystem
func (j ArchiveJob) Validate() error {
	if j.Path == "" && len(j.Files) == 0 {
		return ErrInvalidJob
	}
	if j.Path != "" && len(j.Files) > 0 {
		return ErrAmbiguousJob
	}
	return j.Settings.Validate()
}
