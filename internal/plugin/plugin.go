// Package plugin implements the compression plugin's dispatcher: it turns host
// menu actions and settings hooks into archive jobs.
package plugin

import (
	"errors"
	"log"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ytget/scene-archiver/internal/archive"
	"github.com/ytget/scene-archiver/internal/config"
	"github.com/ytget/scene-archiver/internal/host"
	"github.com/ytget/scene-archiver/internal/model"
	"github.com/ytget/scene-archiver/internal/platform"
	"github.com/ytget/scene-archiver/internal/selection"
)

// Menu entry labels
const (
	ActionCompressFile   = "Compress file"
	ActionDecompressFile = "Decompress file"
	ActionCompressTask   = "Compress Task"
)

// User-facing messages
const (
	MessageStarting         = "Compressing files... Will close when completed."
	MessageTaskFolderAbsent = "Task folder does not exist"
	MessageTarGzWarning     = "Tar.gz is Experimental, the pipeline does not behave as intended. Use at your own risk"
)

// ScenefilesDir is the project subdirectory holding department/task folders
const ScenefilesDir = "Scenefiles"

// excludedFormats are scene formats that are archives themselves
var excludedFormats = []string{".zip", ".gz"}

// Plugin dispatches user actions to the archive service
type Plugin struct {
	host     host.Host
	settings *config.Settings
	archiver archive.Archiver

	mu          sync.Mutex
	exts        []string
	active      int
	warnedTarGz bool
}

// New creates a plugin reporting through h and reading preferences from settings
func New(h host.Host, settings *config.Settings, archiver archive.Archiver) *Plugin {
	return &Plugin{
		host:     h,
		settings: settings,
		archiver: archiver,
	}
}

// OnPluginsLoaded caches the host's scene formats without the archive formats
func (p *Plugin) OnPluginsLoaded() {
	formats := p.host.SceneFormats()
	exts := make([]string, 0, len(formats))
	for _, ext := range formats {
		if isExcludedFormat(ext) {
			continue
		}
		exts = append(exts, ext)
	}

	p.mu.Lock()
	p.exts = exts
	p.mu.Unlock()
	log.Printf("Loaded %d scene formats", len(exts))
}

func isExcludedFormat(ext string) bool {
	for _, excluded := range excludedFormats {
		if strings.EqualFold(ext, excluded) {
			return true
		}
	}
	return false
}

// SceneExtensions returns the scene formats task selection matches against
func (p *Plugin) SceneExtensions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.exts...)
}

// FileContextMenu adds "Compress file" for a regular file or "Decompress
// file" for an archive
func (p *Plugin) FileContextMenu(menu host.Menu, path string) {
	if !platform.IsRegularFile(path) {
		return
	}

	label := ActionCompressFile
	if archive.IsArchive(path) {
		label = ActionDecompressFile
	}
	menu.AddAction(label, func() {
		if _, err := p.DoJob(path, nil); err != nil {
			log.Printf("Failed to start job for %s: %v", path, err)
		}
	})
}

// TaskDir returns the scene file directory of a task, or false when the
// context does not name a complete task
func TaskDir(ctx host.TaskContext) (string, bool) {
	if ctx.ProjectPath == "" || ctx.Department == "" || ctx.Task == "" {
		return "", false
	}
	return filepath.Join(ctx.ProjectPath, ScenefilesDir, ctx.Department, ctx.Task), true
}

// TaskContextMenu adds "Compress Task" for an existing task directory. A
// missing directory is reported instead.
func (p *Plugin) TaskContextMenu(menu host.Menu, ctx host.TaskContext) {
	dir, ok := TaskDir(ctx)
	if !ok {
		return
	}
	if !platform.IsDirectory(dir) {
		p.host.Popup(MessageTaskFolderAbsent, host.TitleError)
		return
	}

	menu.AddAction(ActionCompressTask, func() {
		p.host.PromptRange(dir, func(policy selection.Policy) {
			if _, err := p.CompressTask(dir, policy); err != nil {
				log.Printf("Task compression of %s not started: %v", dir, err)
			}
		})
	})
}

// CompressTask selects the task files of dir with policy and compresses them.
// A selection error is shown once and no job is submitted.
func (p *Plugin) CompressTask(dir string, policy selection.Policy) (*archive.Future, error) {
	files, err := selection.Select(dir, p.SceneExtensions(), policy)
	if errors.Is(err, selection.ErrNoFilesFound) {
		p.host.Popup(selection.NoFilesFoundMessage, host.TitleError)
		return nil, err
	}
	if err != nil {
		p.host.Popup(err.Error(), host.TitleError)
		return nil, err
	}

	log.Printf("Compressing %d files of %s (%s)", len(files), dir, policy)
	return p.DoJob("", files)
}

// DoJob snapshots the current settings into a job for path or files and
// submits it. The progress indicator stays up until every job has finished.
func (p *Plugin) DoJob(path string, files []string) (*archive.Future, error) {
	job := model.ArchiveJob{
		Path:     path,
		Files:    files,
		Settings: p.settings.Current(),
	}

	p.begin()
	future, err := p.archiver.Submit(job,
		archive.WithProgress(p.onProgress),
		archive.WithErrorHandler(p.onError),
	)
	if err != nil {
		p.host.Popup(err.Error(), host.TitleCompressionError)
		p.finish()
		return nil, err
	}
	return future, nil
}

func (p *Plugin) begin() {
	p.mu.Lock()
	p.active++
	first := p.active == 1
	p.mu.Unlock()

	if first {
		p.host.ShowProgress(MessageStarting)
	} else {
		p.host.UpdateProgress(MessageStarting)
	}
}

func (p *Plugin) finish() {
	p.mu.Lock()
	p.active--
	last := p.active == 0
	p.mu.Unlock()

	if last {
		p.host.HideProgress()
	}
	p.host.RefreshUI()
}

func (p *Plugin) onProgress(task *model.ArchiveTask) {
	if task.Status.IsFinished() {
		p.finish()
		return
	}
	if task.Message != "" {
		p.host.UpdateProgress(task.Message)
	}
}

func (p *Plugin) onError(task *model.ArchiveTask, err *model.JobError) {
	p.host.Popup(err.Message(), host.TitleCompressionError)
}

// LoadSettingsUI fills the settings form from the project settings map,
// seeding the compression section with defaults when it is missing
func (p *Plugin) LoadSettingsUI(form host.SettingsForm, settings map[string]any) {
	values, ok := config.LoadSection(settings)
	if !ok {
		return
	}
	form.SetValues(values)
}

// SaveSettingsUI writes the form's values into the project settings map
func (p *Plugin) SaveSettingsUI(form host.SettingsForm, settings map[string]any) {
	config.SaveSection(settings, form.Values())
}

// FormatChanged reacts to a format selection in the settings form and reports
// whether the zip level control applies. Choosing Tar.gz warns once.
func (p *Plugin) FormatChanged(format model.ArchiveFormat) bool {
	if format == model.FormatZip {
		return true
	}

	p.mu.Lock()
	warn := format == model.FormatTarGz && !p.warnedTarGz
	if warn {
		p.warnedTarGz = true
	}
	p.mu.Unlock()

	if warn {
		p.host.Popup(MessageTarGzWarning, host.TitleWarning)
	}
	return false
}
