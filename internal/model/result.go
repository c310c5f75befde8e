package model

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a failed archive operation
type ErrorKind string

const (
	// ErrorMissingInput means the input did not exist; the file is skipped silently
	ErrorMissingInput ErrorKind = "missing-input"

	// ErrorWriteFailure means creating the archive failed; the original is preserved
	ErrorWriteFailure ErrorKind = "write-failure"

	// ErrorValidationFailure means the archive was written but failed its check
	ErrorValidationFailure ErrorKind = "validation-failure"

	// ErrorExtractionIncomplete means extraction failed or left entries missing
	ErrorExtractionIncomplete ErrorKind = "extraction-incomplete"

	// ErrorInvalidConfiguration means the job could not be started at all
	ErrorInvalidConfiguration ErrorKind = "invalid-configuration"
)

// String returns the string representation of ErrorKind
func (k ErrorKind) String() string {
	return string(k)
}

// Operation names what the worker did with a file
type Operation string

const (
	OperationCompress   Operation = "compress"
	OperationDecompress Operation = "decompress"
)

// JobError is a classified archive failure
type JobError struct {
	Kind ErrorKind
	Path string
	Err  error
}

// NewJobError creates a classified error for path
func NewJobError(kind ErrorKind, path string, err error) *JobError {
	return &JobError{Kind: kind, Path: path, Err: err}
}

func (e *JobError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// Message returns the text shown to the user for this error
func (e *JobError) Message() string {
	switch e.Kind {
	case ErrorWriteFailure:
		return fmt.Sprintf("Error compressing file\n%v", e.Err)
	case ErrorValidationFailure:
		return fmt.Sprintf("Error compressing file, archive failed validation\n%v", e.Err)
	case ErrorExtractionIncomplete:
		return fmt.Sprintf("Error decompressing file\n%v", e.Err)
	default:
		return e.Err.Error()
	}
}

// FileResult is the outcome for one input file
type FileResult struct {
	Path      string
	Output    string
	Operation Operation
	Skipped   bool
	Deleted   bool
	Err       *JobError
}

// OK reports whether the file was processed without error
func (r FileResult) OK() bool {
	return r.Err == nil
}

// JobResult is the outcome of a whole job
type JobResult struct {
	TaskID string
	Files  []FileResult
	Err    *JobError // job-level failure, set when no file was attempted
}

// Errors returns every error in the result, job-level first
func (r JobResult) Errors() []*JobError {
	var errs []*JobError
	if r.Err != nil {
		errs = append(errs, r.Err)
	}
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, f.Err)
		}
	}
	return errs
}

// OK reports whether the job finished without any error
func (r JobResult) OK() bool {
	return len(r.Errors()) == 0
}

// Summary returns a one-line description of the result
func (r JobResult) Summary() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	var done, skipped, failed int
	for _, f := range r.Files {
		switch {
		case f.Err != nil:
			failed++
		case f.Skipped:
			skipped++
		default:
			done++
		}
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%d processed", done))
	if skipped > 0 {
		b.WriteString(fmt.Sprintf(", %d skipped", skipped))
	}
	if failed > 0 {
		b.WriteString(fmt.Sprintf(", %d failed", failed))
	}
	return b.String()
}
