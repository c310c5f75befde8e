package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconRefresh  = "⟳"
	IconRunning  = "▶"
	IconPending  = "⏳"
	IconError    = "❌"
	IconFolder   = "📁"
	IconArchive  = "🗜"
	IconFile     = "📄"
)

// Text fragments
const (
	MiddleDotSeparator  = " · "
	ProgressLabelFormat = "%d%%"
	TaskLabelFormat     = "%s / %s"
)

// Window and dialog titles
const (
	AppTitle       = "Scene Archiver"
	TitleTaskRange = "Compressing a Task"
	TitleSettings  = "Settings"
	TitleFinished  = "Compression finished"
)

// Layout sizing
const (
	StatusLabelWidth  float32 = 96
	PercentLabelWidth float32 = 48

	RowMinWidth  float32 = 320
	RowMinHeight float32 = 56

	TaskPaneOffset = 0.3
	JobPaneOffset  = 0.65

	SettingsDialogWidth  float32 = 500
	SettingsDialogHeight float32 = 420
	RangeDialogWidth     float32 = 380
)

// Debounce durations
const (
	UIUpdateDebounce = 100 * time.Millisecond
)
