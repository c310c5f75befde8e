package model

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for archive formats other than Zip and Tar.gz
	ErrUnsupportedFormat = errors.New("invalid compression type")

	// ErrUnsupportedZipMethod is returned for unknown zip compression levels
	ErrUnsupportedZipMethod = errors.New("invalid zip compression level")
)

// ArchiveFormat selects the container produced by compression
type ArchiveFormat string

const (
	FormatZip   ArchiveFormat = "Zip"
	FormatTarGz ArchiveFormat = "Tar.gz"
)

// Archive file extensions
const (
	ExtZip   = ".zip"
	ExtTarGz = ".tar.gz"
)

// String returns the string representation of ArchiveFormat
func (f ArchiveFormat) String() string {
	return string(f)
}

// IsValid reports whether the format is one the worker can produce
func (f ArchiveFormat) IsValid() bool {
	return f == FormatZip || f == FormatTarGz
}

// Extension returns the archive extension for the format, or "" if unknown
func (f ArchiveFormat) Extension() string {
	switch f {
	case FormatZip:
		return ExtZip
	case FormatTarGz:
		return ExtTarGz
	default:
		return ""
	}
}

// ZipMethod names the entry compression used inside zip archives
type ZipMethod string

const (
	ZipStored   ZipMethod = "ZIP_STORED"
	ZipDeflated ZipMethod = "ZIP_DEFLATED"
	ZipBzip2    ZipMethod = "ZIP_BZIP2"
	ZipLZMA     ZipMethod = "ZIP_LZMA"
)

// Zip method identifiers as written in the zip local file header
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodBzip2   uint16 = 12
	MethodLZMA    uint16 = 14
)

var zipMethodIDs = map[ZipMethod]uint16{
	ZipStored:   MethodStore,
	ZipDeflated: MethodDeflate,
	ZipBzip2:    MethodBzip2,
	ZipLZMA:     MethodLZMA,
}

// String returns the string representation of ZipMethod
func (m ZipMethod) String() string {
	return string(m)
}

// Method returns the numeric zip method id
func (m ZipMethod) Method() (uint16, error) {
	id, ok := zipMethodIDs[m]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedZipMethod, string(m))
	}
	return id, nil
}

// FormatOptions returns the selectable archive formats in display order
func FormatOptions() []ArchiveFormat {
	return []ArchiveFormat{FormatZip, FormatTarGz}
}

// ZipMethodOptions returns the selectable zip methods in display order
func ZipMethodOptions() []ZipMethod {
	return []ZipMethod{ZipStored, ZipDeflated, ZipBzip2, ZipLZMA}
}

// ArchiveSettings holds the persisted compression preferences
type ArchiveSettings struct {
	Format    ArchiveFormat
	ZipMethod ZipMethod
	DeleteOld bool
}

// DefaultSettings returns the preferences used when nothing is stored
func DefaultSettings() ArchiveSettings {
	return ArchiveSettings{
		Format:    FormatZip,
		ZipMethod: ZipDeflated,
		DeleteOld: true,
	}
}

// Validate checks the settings against the supported enumerations
func (s ArchiveSettings) Validate() error {
	if !s.Format.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, string(s.Format))
	}
	if s.Format == FormatZip {
		if _, err := s.ZipMethod.Method(); err != nil {
			return err
		}
	}
	return nil
}
