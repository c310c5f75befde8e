package archive

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ytget/scene-archiver/internal/model"
)

// ErrUnsafeEntry is returned when an archive entry would land outside the
// extraction directory
var ErrUnsafeEntry = errors.New("archive entry escapes target directory")

// ArchivePath returns the archive written for file: its final extension is
// replaced by the format's extension. Names without an extension, or consisting
// only of a leading-dot name, get the extension appended.
func ArchivePath(file string, format model.ArchiveFormat) string {
	return trimExtension(file) + format.Extension()
}

// DetectFormat determines the archive format from the file name suffix
func DetectFormat(path string) (model.ArchiveFormat, bool) {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, model.ExtTarGz):
		return model.FormatTarGz, true
	case strings.HasSuffix(lower, model.ExtZip):
		return model.FormatZip, true
	default:
		return "", false
	}
}

// IsArchive reports whether path names a zip or tar.gz archive
func IsArchive(path string) bool {
	_, ok := DetectFormat(path)
	return ok
}

func trimExtension(file string) string {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	if ext == "" || ext == base {
		return file
	}
	return strings.TrimSuffix(file, ext)
}

// entryPath resolves an archive entry name inside dir, rejecting names that
// would escape it
func entryPath(dir, name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafeEntry, name)
	}
	return filepath.Join(dir, clean), nil
}
