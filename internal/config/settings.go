package config

import (
	"errors"
	"log"

	"fyne.io/fyne/v2"

	"github.com/ytget/scene-archiver/internal/model"
	"github.com/ytget/scene-archiver/internal/platform"
)

// Settings section and keys in the project configuration
const (
	SectionCompression = "compression"
	KeyType            = "type"
	KeyZipLevel        = "zipLevel"
	KeyDeleteOld       = "deleteOld"
)

// Default values
const (
	DefaultCompressionType = model.FormatZip
	DefaultZipMethod       = model.ZipDeflated
	DefaultDeleteOld       = true
)

// Settings reads and writes the compression preferences through a Store.
// Project scoped values win over user scoped ones, which win over the
// defaults. Stored values are returned as-is; the worker validates them.
type Settings struct {
	store Store
}

// NewSettings creates a new settings accessor
func NewSettings(store Store) *Settings {
	return &Settings{store: store}
}

// CompressionType returns the configured archive format
func (s *Settings) CompressionType() model.ArchiveFormat {
	if value, ok := s.stringValue(KeyType); ok {
		return model.ArchiveFormat(value)
	}
	return DefaultCompressionType
}

// ZipMethod returns the configured zip compression level
func (s *Settings) ZipMethod() model.ZipMethod {
	if value, ok := s.stringValue(KeyZipLevel); ok {
		return model.ZipMethod(value)
	}
	return DefaultZipMethod
}

// DeleteOld returns whether originals are removed after a successful operation
func (s *Settings) DeleteOld() bool {
	for _, scope := range lookupOrder {
		value, ok := s.store.Get(SectionCompression, KeyDeleteOld, scope)
		if !ok {
			continue
		}
		if deleteOld, ok := value.(bool); ok {
			return deleteOld
		}
		log.Printf("Ignoring non-boolean %s.%s value %v", SectionCompression, KeyDeleteOld, value)
	}
	return DefaultDeleteOld
}

// Current snapshots all three preferences
func (s *Settings) Current() model.ArchiveSettings {
	return model.ArchiveSettings{
		Format:    s.CompressionType(),
		ZipMethod: s.ZipMethod(),
		DeleteOld: s.DeleteOld(),
	}
}

// Save writes all three preferences to the project scope
func (s *Settings) Save(values model.ArchiveSettings) error {
	return s.save(values, ScopeProject)
}

// SaveUserDefaults writes all three preferences to the user scope, used by
// projects that have no compression settings of their own
func (s *Settings) SaveUserDefaults(values model.ArchiveSettings) error {
	return s.save(values, ScopeUser)
}

func (s *Settings) save(values model.ArchiveSettings, scope Scope) error {
	return errors.Join(
		s.store.Set(SectionCompression, KeyType, values.Format.String(), scope),
		s.store.Set(SectionCompression, KeyZipLevel, values.ZipMethod.String(), scope),
		s.store.Set(SectionCompression, KeyDeleteOld, values.DeleteOld, scope),
	)
}

var lookupOrder = []Scope{ScopeProject, ScopeUser}

func (s *Settings) stringValue(key string) (string, bool) {
	for _, scope := range lookupOrder {
		value, ok := s.store.Get(SectionCompression, key, scope)
		if !ok {
			continue
		}
		if str, ok := value.(string); ok && str != "" {
			return str, true
		}
	}
	return "", false
}

// Host window preferences
const (
	KeyProjectDir     = "project_directory"
	KeySceneFormats   = "scene_formats"
	KeyRevealOnFinish = "reveal_on_finish"
)

// DefaultSceneFormats are the extensions listed when nothing is configured
var DefaultSceneFormats = []string{".ma", ".mb", ".blend", ".hip", ".hipnc", ".nk", ".max", ".c4d", ".zip", ".gz"}

// HostPreferences holds the standalone host's own preferences
type HostPreferences struct {
	app fyne.App
}

// NewHostPreferences creates a new host preferences manager
func NewHostPreferences(app fyne.App) *HostPreferences {
	return &HostPreferences{app: app}
}

// GetProjectDirectory returns the directory browsed by the host window
func (p *HostPreferences) GetProjectDirectory() string {
	dir := p.app.Preferences().String(KeyProjectDir)
	if dir == "" {
		defaultDir, err := platform.GetDefaultProjectDir()
		if err != nil {
			defaultDir = "."
		}
		p.SetProjectDirectory(defaultDir)
		return defaultDir
	}
	return dir
}

// SetProjectDirectory sets the directory browsed by the host window
func (p *HostPreferences) SetProjectDirectory(dir string) {
	p.app.Preferences().SetString(KeyProjectDir, dir)
}

// GetSceneFormats returns the registered scene file extensions
func (p *HostPreferences) GetSceneFormats() []string {
	formats := p.app.Preferences().StringList(KeySceneFormats)
	if len(formats) == 0 {
		return append([]string(nil), DefaultSceneFormats...)
	}
	return formats
}

// SetSceneFormats sets the registered scene file extensions
func (p *HostPreferences) SetSceneFormats(formats []string) {
	p.app.Preferences().SetStringList(KeySceneFormats, formats)
}

// GetRevealOnFinish returns whether finished archives are revealed in the file manager
func (p *HostPreferences) GetRevealOnFinish() bool {
	return p.app.Preferences().BoolWithFallback(KeyRevealOnFinish, false)
}

// SetRevealOnFinish sets whether finished archives are revealed in the file manager
func (p *HostPreferences) SetRevealOnFinish(reveal bool) {
	p.app.Preferences().SetBool(KeyRevealOnFinish, reveal)
}
