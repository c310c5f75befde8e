package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/ulikunitz/xz/lzma"

	"github.com/ytget/scene-archiver/internal/model"
	"github.com/ytget/scene-archiver/internal/platform"
)

// ErrEmptyArchive is returned when a written archive lists no entries
var ErrEmptyArchive = errors.New("archive contains no entries")

// LZMA entry framing (PKWARE APPNOTE 5.8.8). The classic .lzma stream header
// is 5 property bytes followed by an 8 byte uncompressed size; zip entries carry
// a 4 byte version/size prefix and the 5 property bytes only.
const (
	lzmaVersionMajor = 9
	lzmaVersionMinor = 4
	lzmaPropsLen     = 5
	lzmaHeaderLen    = 13
	lzmaEOSFlag      = 0x2
)

// writeZip writes a single-entry zip archive holding source under its basename
func writeZip(target, source string, method uint16) (err error) {
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

	zw := zip.NewWriter(out)
	registerZipCompressors(zw)

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.Base(source)
	header.Method = method
	if method == model.MethodLZMA {
		header.Flags |= lzmaEOSFlag
	}

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}
	if _, err := io.Copy(w, src); err != nil {
		return err
	}
	return zw.Close()
}

// testZip reads every entry to the end so each CRC-32 is verified and returns
// the entry names
func testZip(path string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	registerZipDecompressors(&zr.Reader)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if err := drainZipEntry(f); err != nil {
			return nil, fmt.Errorf("bad entry %s: %w", f.Name, err)
		}
		names = append(names, f.Name)
	}
	if len(names) == 0 {
		return nil, ErrEmptyArchive
	}
	return names, nil
}

func drainZipEntry(f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(io.Discard, rc)
	return err
}

// extractZip extracts every entry into dir and returns the entry names
func extractZip(path, dir string) ([]string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	registerZipDecompressors(&zr.Reader)

	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if err := extractZipEntry(f, dir); err != nil {
			return nil, err
		}
		names = append(names, f.Name)
	}
	return names, nil
}

func extractZipEntry(f *zip.File, dir string) error {
	target, err := entryPath(dir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, platform.DefaultDirPermissions)
	}
	if err := os.MkdirAll(filepath.Dir(target), platform.DefaultDirPermissions); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := writeEntry(target, rc, f.Mode().Perm()); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	if !f.Modified.IsZero() {
		_ = os.Chtimes(target, f.Modified, f.Modified)
	}
	return nil
}

// createTarget creates a new archive file. An existing file is never
// truncated; the error then matches os.ErrExist.
func createTarget(target string) (*os.File, error) {
	return os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, platform.DefaultFilePermissions)
}

// writeEntry creates target with perm and copies r into it
func writeEntry(target string, r io.Reader, perm os.FileMode) (err error) {
	if perm == 0 {
		perm = platform.DefaultFilePermissions
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, r)
	return err
}

func registerZipCompressors(zw *zip.Writer) {
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.DefaultCompression)
	})
	zw.RegisterCompressor(model.MethodBzip2, newBzip2Writer)
	zw.RegisterCompressor(model.MethodLZMA, newLZMAWriter)
}

func registerZipDecompressors(zr *zip.Reader) {
	zr.RegisterDecompressor(model.MethodBzip2, newBzip2Reader)
	zr.RegisterDecompressor(model.MethodLZMA, newLZMAReader)
}

func newBzip2Writer(w io.Writer) (io.WriteCloser, error) {
	return bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
}

func newBzip2Reader(r io.Reader) io.ReadCloser {
	br, err := bzip2.NewReader(r, nil)
	if err != nil {
		return errReadCloser{err}
	}
	return br
}

// newLZMAWriter returns an encoder for a zip LZMA entry. Nothing is written
// until the first Write or Close, because the zip writer creates the
// compressor before it writes the entry's local header.
func newLZMAWriter(w io.Writer) (io.WriteCloser, error) {
	return &lzmaEntryWriter{w: w}, nil
}

// lzmaEntryWriter writes the zip LZMA prefix followed by a classic stream whose
// header has the uncompressed size field stripped. The stream always ends with
// an EOS marker because no size is stored.
type lzmaEntryWriter struct {
	w   io.Writer
	enc *lzma.Writer
}

func (l *lzmaEntryWriter) start() error {
	if l.enc != nil {
		return nil
	}
	prefix := []byte{lzmaVersionMajor, lzmaVersionMinor, 0, 0}
	binary.LittleEndian.PutUint16(prefix[2:], lzmaPropsLen)
	if _, err := l.w.Write(prefix); err != nil {
		return err
	}
	enc, err := lzma.NewWriter(&lzmaHeaderFilter{w: l.w})
	if err != nil {
		return err
	}
	l.enc = enc
	return nil
}

func (l *lzmaEntryWriter) Write(p []byte) (int, error) {
	if err := l.start(); err != nil {
		return 0, err
	}
	return l.enc.Write(p)
}

func (l *lzmaEntryWriter) Close() error {
	if err := l.start(); err != nil {
		return err
	}
	return l.enc.Close()
}

// newLZMAReader rebuilds a classic .lzma header (unknown size) in front of the
// entry's raw stream
func newLZMAReader(r io.Reader) io.ReadCloser {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return errReadCloser{err}
	}
	if n := binary.LittleEndian.Uint16(prefix[2:]); n != lzmaPropsLen {
		return errReadCloser{fmt.Errorf("lzma: unexpected properties size %d", n)}
	}

	header := make([]byte, lzmaHeaderLen)
	if _, err := io.ReadFull(r, header[:lzmaPropsLen]); err != nil {
		return errReadCloser{err}
	}
	for i := lzmaPropsLen; i < lzmaHeaderLen; i++ {
		header[i] = 0xff
	}

	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(header), r))
	if err != nil {
		return errReadCloser{err}
	}
	return io.NopCloser(lr)
}

// lzmaHeaderFilter drops the 8 size bytes of the classic header
type lzmaHeaderFilter struct {
	w    io.Writer
	seen int64
}

func (f *lzmaHeaderFilter) Write(p []byte) (int, error) {
	n := len(p)
	out := p
	if f.seen < lzmaHeaderLen {
		out = make([]byte, 0, len(p))
		for i, b := range p {
			pos := f.seen + int64(i)
			if pos >= lzmaPropsLen && pos < lzmaHeaderLen {
				continue
			}
			out = append(out, b)
		}
	}
	f.seen += int64(n)
	if len(out) == 0 {
		return n, nil
	}
	if _, err := f.w.Write(out); err != nil {
		return 0, err
	}
	return n, nil
}

// errReadCloser defers a decompressor setup error to the first Read
type errReadCloser struct {
	err error
}

func (e errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errReadCloser) Close() error             { return nil }
