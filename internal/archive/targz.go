package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/ytget/scene-archiver/internal/platform"
)

// ErrUnsupportedEntry is returned for tar entries that are neither regular
// files nor directories
var ErrUnsupportedEntry = errors.New("unsupported tar entry type")

// writeTarGz writes a single-entry gzip-compressed tar holding source under its basename
func writeTarGz(target, source string) (err error) {
	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return err
	}

	out, err := createTarget(target)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	gw, err := gzip.NewWriterLevel(out, gzip.DefaultCompression)
	if err != nil {
		return err
	}
	tw := tar.NewWriter(gw)

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = filepath.Base(source)

	if err := tw.WriteHeader(header); err != nil {
		return err
	}
	if _, err := io.Copy(tw, src); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gw.Close()
}

// listTarGz reads the whole archive, so the gzip checksum is verified, and
// returns the entry names
func listTarGz(path string) ([]string, error) {
	var names []string
	err := walkTarGz(path, func(header *tar.Header, r io.Reader) error {
		names = append(names, header.Name)
		_, err := io.Copy(io.Discard, r)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, ErrEmptyArchive
	}
	return names, nil
}

// extractTarGz extracts every entry into dir and returns the entry names
func extractTarGz(path, dir string) ([]string, error) {
	var names []string
	err := walkTarGz(path, func(header *tar.Header, r io.Reader) error {
		if err := extractTarEntry(header, r, dir); err != nil {
			return err
		}
		names = append(names, header.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

func extractTarEntry(header *tar.Header, r io.Reader, dir string) error {
	target, err := entryPath(dir, header.Name)
	if err != nil {
		return err
	}

	switch header.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, platform.DefaultDirPermissions)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), platform.DefaultDirPermissions); err != nil {
			return err
		}
		if err := writeEntry(target, r, header.FileInfo().Mode().Perm()); err != nil {
			return fmt.Errorf("extract %s: %w", header.Name, err)
		}
		if !header.ModTime.IsZero() {
			_ = os.Chtimes(target, header.ModTime, header.ModTime)
		}
		return nil
	default:
		return fmt.Errorf("%w: %s (%c)", ErrUnsupportedEntry, header.Name, header.Typeflag)
	}
}

func walkTarGz(path string, fn func(*tar.Header, io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gr.Close()

	tr := tar.NewReader(gr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			// drain the block padding so the gzip trailer checksum is read
			_, err = io.Copy(io.Discard, gr)
			return err
		}
		if err != nil {
			return err
		}
		if err := fn(header, tr); err != nil {
			return err
		}
	}
}
