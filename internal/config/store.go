package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/ytget/scene-archiver/internal/platform"
)

// Scope selects which configuration layer a value lives in
type Scope string

const (
	ScopeProject Scope = "project"
	ScopeUser    Scope = "user"
)

// ErrUnsupportedScope is returned by stores that only hold one scope
var ErrUnsupportedScope = errors.New("unsupported config scope")

// Store is the host configuration accessor keyed by (section, key, scope)
type Store interface {
	// Get returns the stored value and whether it was present
	Get(section, key string, scope Scope) (any, bool)
	Set(section, key string, value any, scope Scope) error
}

// PreferencesStore keeps values in Fyne preferences under
// "<scope>.<section>.<key>". Values are JSON encoded so their type survives.
type PreferencesStore struct {
	prefs fyne.Preferences
}

// NewPreferencesStore creates a store over the app's preferences
func NewPreferencesStore(app fyne.App) *PreferencesStore {
	return &PreferencesStore{prefs: app.Preferences()}
}

func preferenceKey(section, key string, scope Scope) string {
	return fmt.Sprintf("%s.%s.%s", scope, section, key)
}

// Get returns the decoded value stored for key
func (s *PreferencesStore) Get(section, key string, scope Scope) (any, bool) {
	raw := s.prefs.String(preferenceKey(section, key, scope))
	if raw == "" {
		return nil, false
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, false
	}
	return value, true
}

// Set stores value for key
func (s *PreferencesStore) Set(section, key string, value any, scope Scope) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s.%s: %w", section, key, err)
	}
	s.prefs.SetString(preferenceKey(section, key, scope), string(raw))
	return nil
}

// ScopedStore routes each scope to its own store
type ScopedStore map[Scope]Store

// Get reads key from the store registered for scope
func (s ScopedStore) Get(section, key string, scope Scope) (any, bool) {
	store, ok := s[scope]
	if !ok {
		return nil, false
	}
	return store.Get(section, key, scope)
}

// Set writes key to the store registered for scope
func (s ScopedStore) Set(section, key string, value any, scope Scope) error {
	store, ok := s[scope]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedScope, scope)
	}
	return store.Set(section, key, value, scope)
}

// ProjectConfigFile is the project configuration file name inside a project
const ProjectConfigFile = "pipeline.json"

// ProjectConfigPath returns the project configuration file of projectDir
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(projectDir, ProjectConfigFile)
}

// ProjectFileStore keeps project-scoped values in a JSON project config file
// of the form {"<section>": {"<key>": value}}
type ProjectFileStore struct {
	path string
	mu   sync.Mutex
}

// NewProjectFileStore creates a store backed by the JSON file at path. The
// file is created on the first Set.
func NewProjectFileStore(path string) *ProjectFileStore {
	return &ProjectFileStore{path: path}
}

// Path returns the config file location
func (s *ProjectFileStore) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// SetPath points the store at another project's config file
func (s *ProjectFileStore) SetPath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.path = path
}

// Get returns the value stored for key in the project file
func (s *ProjectFileStore) Get(section, key string, scope Scope) (any, bool) {
	if scope != ScopeProject {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return nil, false
	}
	values, ok := data[section].(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := values[key]
	return value, ok
}

// Set writes value for key into the project file
func (s *ProjectFileStore) Set(section, key string, value any, scope Scope) error {
	if scope != ScopeProject {
		return fmt.Errorf("%w: %s", ErrUnsupportedScope, scope)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.load()
	if err != nil {
		return err
	}
	values, ok := data[section].(map[string]any)
	if !ok {
		values = make(map[string]any)
		data[section] = values
	}
	values[key] = value
	return s.save(data)
}

// Load returns the whole project config; a missing file yields an empty map
func (s *ProjectFileStore) Load() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the whole project config
func (s *ProjectFileStore) Save(data map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(data)
}

func (s *ProjectFileStore) load() (map[string]any, error) {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}

	data := make(map[string]any)
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", s.path, err)
	}
	return data, nil
}

func (s *ProjectFileStore) save(data map[string]any) error {
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}
	if err := platform.CreateDirectoryIfNotExists(filepath.Dir(s.path)); err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, platform.DefaultFilePermissions); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
