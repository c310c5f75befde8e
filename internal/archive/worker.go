package archive

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ytget/scene-archiver/internal/model"
)

// Progress message formats
const (
	CompressingFileFormat   = "Compressing %s... Will close when completed."
	DecompressingFileFormat = "Decompressing %s... Will close when completed."
)

var (
	// ErrUnsupportedFormat is returned for archive formats other than Zip and Tar.gz
	ErrUnsupportedFormat = model.ErrUnsupportedFormat

	// ErrSameTarget is returned when the archive path would overwrite its source
	ErrSameTarget = errors.New("archive path equals source path")

	// ErrNotRegular is returned when the input is not a regular file
	ErrNotRegular = errors.New("not a regular file")

	// ErrMissingEntries is returned when extracted entries are not on disk
	ErrMissingEntries = errors.New("uncompressed file not found")

	// ErrTargetExists is returned when a file already occupies the archive path
	ErrTargetExists = errors.New("archive path already exists")
)

// Hooks receives worker events. Both callbacks are optional and are invoked
// on the worker's goroutine.
type Hooks struct {
	// OnProgress is called before each file with its index, the total count
	// and a user-facing message
	OnProgress func(index, total int, message string)

	// OnError is called exactly once for every reported error
	OnError func(*model.JobError)
}

// Worker performs the file operations of archive jobs
type Worker struct {
	hooks    Hooks
	validate func(path string, format model.ArchiveFormat) error
	extract  func(path, dir string, format model.ArchiveFormat) ([]string, error)
}

// NewWorker creates a worker reporting through hooks
func NewWorker(hooks Hooks) *Worker {
	return &Worker{hooks: hooks, validate: validateArchive, extract: extractArchive}
}

// Run executes job. An invalid job is reported once and performs no I/O. A
// single path is decompressed when it names an archive and compressed
// otherwise; a file list is compressed file by file in order.
func (w *Worker) Run(job model.ArchiveJob) model.JobResult {
	var result model.JobResult

	if err := job.Validate(); err != nil {
		result.Err = w.fail(model.ErrorInvalidConfiguration, job.Path, err)
		return result
	}

	if job.Path != "" {
		result.Files = append(result.Files, w.runPath(job.Path, job.Settings))
		return result
	}

	total := len(job.Files)
	for i, file := range job.Files {
		w.progress(i, total, fmt.Sprintf(CompressingFileFormat, filepath.Base(file)))
		result.Files = append(result.Files, w.Compress(file, job.Settings))
	}
	return result
}

func (w *Worker) runPath(path string, settings model.ArchiveSettings) model.FileResult {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		log.Printf("Skipping %s: not an existing file", path)
		return model.FileResult{Path: path, Skipped: true}
	}

	if IsArchive(path) {
		w.progress(0, 1, fmt.Sprintf(DecompressingFileFormat, filepath.Base(path)))
		return w.Decompress(path, settings)
	}
	w.progress(0, 1, fmt.Sprintf(CompressingFileFormat, filepath.Base(path)))
	return w.Compress(path, settings)
}

// Compress writes file into a single-entry archive next to it, validates the
// archive, and removes the original only when validation passed and
// settings.DeleteOld is set. A missing file is skipped without error.
func (w *Worker) Compress(file string, settings model.ArchiveSettings) model.FileResult {
	res := model.FileResult{Path: file, Operation: model.OperationCompress}

	info, err := os.Stat(file)
	if os.IsNotExist(err) {
		log.Printf("Skipping missing file %s", file)
		res.Skipped = true
		return res
	}
	if err != nil {
		res.Err = w.fail(model.ErrorWriteFailure, file, err)
		return res
	}
	if !info.Mode().IsRegular() {
		res.Err = w.fail(model.ErrorWriteFailure, file, ErrNotRegular)
		return res
	}

	if err := settings.Validate(); err != nil {
		res.Err = w.fail(model.ErrorInvalidConfiguration, file, err)
		return res
	}

	target := ArchivePath(file, settings.Format)
	res.Output = target
	if filepath.Clean(target) == filepath.Clean(file) {
		res.Err = w.fail(model.ErrorWriteFailure, file, ErrSameTarget)
		return res
	}

	if _, err := os.Lstat(target); err == nil {
		res.Err = w.fail(model.ErrorWriteFailure, file, fmt.Errorf("%w: %s", ErrTargetExists, filepath.Base(target)))
		return res
	}

	if err := writeArchive(target, file, settings); err != nil {
		// os.ErrExist means another file took the path; it is not ours to remove
		if !errors.Is(err, os.ErrExist) {
			os.Remove(target)
		}
		res.Err = w.fail(model.ErrorWriteFailure, file, err)
		return res
	}

	if err := w.validate(target, settings.Format); err != nil {
		os.Remove(target)
		res.Err = w.fail(model.ErrorValidationFailure, file, err)
		return res
	}

	if settings.DeleteOld {
		if err := os.Remove(file); err != nil {
			res.Err = w.fail(model.ErrorWriteFailure, file, fmt.Errorf("remove original: %w", err))
			return res
		}
		res.Deleted = true
	}

	log.Printf("Compressed %s -> %s", file, target)
	return res
}

// Decompress extracts the archive into its own directory, checks that every
// listed entry exists afterwards, and removes the archive only then and only
// when settings.DeleteOld is set
func (w *Worker) Decompress(file string, settings model.ArchiveSettings) model.FileResult {
	res := model.FileResult{Path: file, Operation: model.OperationDecompress}

	if _, err := os.Stat(file); os.IsNotExist(err) {
		log.Printf("Skipping missing archive %s", file)
		res.Skipped = true
		return res
	}

	format, ok := DetectFormat(file)
	if !ok {
		res.Err = w.fail(model.ErrorInvalidConfiguration, file, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(file)))
		return res
	}

	dir := filepath.Dir(file)
	res.Output = dir

	names, err := w.extract(file, dir, format)
	if err != nil {
		res.Err = w.fail(model.ErrorExtractionIncomplete, file, err)
		return res
	}

	if missing := missingEntries(dir, names); len(missing) > 0 {
		res.Err = w.fail(model.ErrorExtractionIncomplete, file, fmt.Errorf("%w: %v", ErrMissingEntries, missing))
		return res
	}

	if settings.DeleteOld {
		if err := os.Remove(file); err != nil {
			res.Err = w.fail(model.ErrorWriteFailure, file, fmt.Errorf("extracted, but could not remove archive: %w", err))
			return res
		}
		res.Deleted = true
	}

	log.Printf("Decompressed %s into %s (%d entries)", file, dir, len(names))
	return res
}

func writeArchive(target, source string, settings model.ArchiveSettings) error {
	switch settings.Format {
	case model.FormatZip:
		method, err := settings.ZipMethod.Method()
		if err != nil {
			return err
		}
		return writeZip(target, source, method)
	case model.FormatTarGz:
		return writeTarGz(target, source)
	default:
		return ErrUnsupportedFormat
	}
}

func extractArchive(path, dir string, format model.ArchiveFormat) ([]string, error) {
	switch format {
	case model.FormatZip:
		return extractZip(path, dir)
	case model.FormatTarGz:
		return extractTarGz(path, dir)
	default:
		return nil, ErrUnsupportedFormat
	}
}

// validateArchive re-opens a freshly written archive
func validateArchive(path string, format model.ArchiveFormat) error {
	var err error
	switch format {
	case model.FormatZip:
		_, err = testZip(path)
	case model.FormatTarGz:
		_, err = listTarGz(path)
	default:
		err = ErrUnsupportedFormat
	}
	return err
}

func missingEntries(dir string, names []string) []string {
	var missing []string
	for _, name := range names {
		target, err := entryPath(dir, name)
		if err != nil {
			missing = append(missing, name)
			continue
		}
		if _, err := os.Lstat(target); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

func (w *Worker) progress(index, total int, message string) {
	if w.hooks.OnProgress != nil {
		w.hooks.OnProgress(index, total, message)
	}
}

func (w *Worker) fail(kind model.ErrorKind, path string, err error) *model.JobError {
	jobErr := model.NewJobError(kind, path, err)
	log.Printf("Archive error: %v", jobErr)
	if w.hooks.OnError != nil {
		w.hooks.OnError(jobErr)
	}
	return jobErr
}
