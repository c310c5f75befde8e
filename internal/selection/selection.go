// Package selection picks the scene files of a task directory that a task
// compression job operates on.
package selection

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrNoFilesFound is returned when a custom range matches no file
	ErrNoFilesFound = errors.New("no files found for the given range")

	// ErrInvalidRange is returned for ranges that cannot match any version
	ErrInvalidRange = errors.New("invalid version range")
)

// NoFilesFoundMessage is the user-facing text for ErrNoFilesFound
const NoFilesFoundMessage = "No files found for the given range"

// MaxVersion is the largest four digit version token
const MaxVersion = 9999

var versionToken = regexp.MustCompile(`[vV](\d{4})`)

// Kind names a selection policy
type Kind string

const (
	KindAll          Kind = "all"
	KindAllButLatest Kind = "allButLatest"
	KindCustom       Kind = "custom"
)

// Policy chooses which task files are archived
type Policy struct {
	Kind  Kind
	Start int // first version, custom ranges only
	End   int // last version inclusive, custom ranges only
}

// All selects every scene file
func All() Policy {
	return Policy{Kind: KindAll}
}

// AllButLatest selects every scene file except the last in name order
func AllButLatest() Policy {
	return Policy{Kind: KindAllButLatest}
}

// Custom selects scene files whose version token lies in [start, end]
func Custom(start, end int) Policy {
	return Policy{Kind: KindCustom, Start: start, End: end}
}

// Validate checks the policy kind and, for custom ranges, its bounds
func (p Policy) Validate() error {
	switch p.Kind {
	case KindAll, KindAllButLatest:
		return nil
	case KindCustom:
		if p.Start < 1 || p.End < p.Start || p.End > MaxVersion {
			return fmt.Errorf("%w: %d-%d", ErrInvalidRange, p.Start, p.End)
		}
		return nil
	default:
		return fmt.Errorf("unknown selection policy %q", p.Kind)
	}
}

func (p Policy) String() string {
	if p.Kind == KindCustom {
		return fmt.Sprintf("%s(%d-%d)", p.Kind, p.Start, p.End)
	}
	return string(p.Kind)
}

// SceneFiles lists the regular files directly inside dir whose names end with
// one of exts, sorted by name
func SceneFiles(dir string, exts []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !hasSuffix(entry.Name(), exts) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func hasSuffix(name string, exts []string) bool {
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Version returns the first four digit version token in the file's base name
func Version(file string) (int, bool) {
	m := versionToken.FindStringSubmatch(filepath.Base(file))
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// Apply filters files, already sorted by name, with the policy. A custom range
// matching nothing returns ErrNoFilesFound.
func (p Policy) Apply(files []string) ([]string, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch p.Kind {
	case KindAllButLatest:
		if len(files) == 0 {
			return nil, nil
		}
		return append([]string(nil), files[:len(files)-1]...), nil
	case KindCustom:
		var selected []string
		for _, f := range files {
			if inRange(f, p.Start, p.End) {
				selected = append(selected, f)
			}
		}
		if len(selected) == 0 {
			return nil, ErrNoFilesFound
		}
		return selected, nil
	default:
		return append([]string(nil), files...), nil
	}
}

// inRange reports whether any version token of the base name lies in [start, end]
func inRange(file string, start, end int) bool {
	for _, m := range versionToken.FindAllStringSubmatch(filepath.Base(file), -1) {
		v, err := strconv.Atoi(m[1])
		if err == nil && v >= start && v <= end {
			return true
		}
	}
	return false
}

// Select lists the scene files of dir and applies the policy
func Select(dir string, exts []string, p Policy) ([]string, error) {
	files, err := SceneFiles(dir, exts)
	if err != nil {
		return nil, err
	}
	return p.Apply(files)
}
