// Package host declares the collaborators the compression plugin needs from
// the pipeline application that embeds it. Each interface covers one hook
// point so the plugin never depends on a generic callback registry.
package host

import (
	"github.com/ytget/scene-archiver/internal/model"
	"github.com/ytget/scene-archiver/internal/selection"
)

// Popup titles used by the plugin
const (
	TitleError            = "Error"
	TitleWarning          = "Warning"
	TitleCompressionError = "Compression Error"
)

// Notifier shows a blocking message to the user
type Notifier interface {
	Popup(message, title string)
}

// Progress is the shared "work in progress" indicator
type Progress interface {
	ShowProgress(message string)
	UpdateProgress(message string)
	HideProgress()
}

// Refresher asks the host to reload its file views
type Refresher interface {
	RefreshUI()
}

// SceneFormats lists the scene file extensions registered in the host
type SceneFormats interface {
	SceneFormats() []string
}

// Menu is a context menu the plugin may add entries to
type Menu interface {
	AddAction(label string, action func())
}

// TaskContext identifies the task selected in the host's browser
type TaskContext struct {
	ProjectPath string
	Department  string
	Task        string
}

// TaskRangePrompt asks the user which files of a task directory to compress.
// submit is called at most once with the chosen policy.
type TaskRangePrompt interface {
	PromptRange(dir string, submit func(selection.Policy))
}

// SettingsForm is the compression section of the host's project settings panel
type SettingsForm interface {
	Values() model.ArchiveSettings
	SetValues(values model.ArchiveSettings)
}

// Host bundles every collaborator the plugin uses at runtime
type Host interface {
	Notifier
	Progress
	Refresher
	SceneFormats
	TaskRangePrompt
}
