package ui

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/scene-archiver/internal/archive"
	"github.com/ytget/scene-archiver/internal/config"
	"github.com/ytget/scene-archiver/internal/host"
	"github.com/ytget/scene-archiver/internal/model"
	"github.com/ytget/scene-archiver/internal/platform"
	"github.com/ytget/scene-archiver/internal/plugin"
	"github.com/ytget/scene-archiver/internal/selection"
)

var _ host.Host = (*RootUI)(nil)

// RootUI is the standalone host window: a task browser, the selected task's
// scene files and the archive job list
type RootUI struct {
	window       fyne.Window
	prefs        *config.HostPreferences
	projectStore *config.ProjectFileStore
	settings     *config.Settings
	archiveSvc   archive.Archiver
	plugin       *plugin.Plugin

	projectEntry *widget.Entry
	taskList     *widget.List
	fileList     *widget.List
	jobList      *widget.List

	dataMutex    sync.Mutex
	tasks        []host.TaskContext
	selectedTask int
	files        []string
	jobs         []*model.ArchiveTask
	jobStatus    map[string]model.TaskStatus

	// UI update debouncing
	lastUIUpdate  time.Time
	uiUpdateMutex sync.Mutex

	// Notification panel
	notificationContainer *fyne.Container
	notificationLabel     *widget.Label
	notificationSpinner   *widget.ProgressBarInfinite
}

// NewRootUI creates the host window around archiveSvc and loads the plugin
func NewRootUI(window fyne.Window, app fyne.App, archiveSvc archive.Archiver) *RootUI {
	prefs := config.NewHostPreferences(app)
	projectDir := prefs.GetProjectDirectory()
	projectStore := config.NewProjectFileStore(config.ProjectConfigPath(projectDir))
	settings := config.NewSettings(config.ScopedStore{
		config.ScopeProject: projectStore,
		config.ScopeUser:    config.NewPreferencesStore(app),
	})

	ui := &RootUI{
		window:       window,
		prefs:        prefs,
		projectStore: projectStore,
		settings:     settings,
		archiveSvc:   archiveSvc,
		selectedTask: -1,
		jobStatus:    make(map[string]model.TaskStatus),
	}
	ui.plugin = plugin.New(ui, settings, archiveSvc)

	window.SetTitle(AppTitle)
	ui.archiveSvc.SetUpdateCallback(ui.onJobUpdate)

	ui.setupUI()
	ui.plugin.OnPluginsLoaded()
	ui.projectEntry.SetText(projectDir)
	ui.reloadTasks()
	return ui
}

// Plugin returns the compression plugin driven by this window
func (ui *RootUI) Plugin() *plugin.Plugin {
	return ui.plugin
}

// setupUI creates and arranges all UI components
func (ui *RootUI) setupUI() {
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	ui.projectEntry = widget.NewEntry()
	ui.projectEntry.SetPlaceHolder("Project directory")
	ui.projectEntry.OnSubmitted = ui.setProjectDirectory

	browseBtn := widget.NewButton("Browse", ui.onBrowseProject)
	refreshBtn := widget.NewButton(IconRefresh, ui.RefreshUI)
	refreshBtn.Importance = widget.LowImportance

	left := container.NewHBox(settingsBtn)
	if logo, err := LoadLogoResource(); err == nil {
		logoImage := canvas.NewImageFromResource(logo)
		logoImage.SetMinSize(fyne.NewSize(32, 32))
		logoImage.FillMode = canvas.ImageFillContain
		left = container.NewHBox(logoImage, settingsBtn)
	}
	topPanel := container.NewBorder(nil, nil, left, container.NewHBox(browseBtn, refreshBtn), ui.projectEntry)

	// Notification panel under the project row, hidden by default
	ui.notificationLabel = widget.NewLabel("")
	ui.notificationLabel.Alignment = fyne.TextAlignLeading
	ui.notificationSpinner = widget.NewProgressBarInfinite()
	ui.notificationSpinner.Hide()
	ui.notificationContainer = container.NewHBox(ui.notificationSpinner, container.NewPadded(ui.notificationLabel))
	ui.notificationContainer.Hide()

	ui.taskList = widget.NewList(ui.taskCount, ui.createBrowserItem, ui.updateTaskItem)
	ui.taskList.OnSelected = ui.onTaskSelected
	ui.fileList = widget.NewList(ui.fileCount, ui.createBrowserItem, ui.updateFileItem)
	ui.jobList = widget.NewList(ui.jobCount, ui.createJobItem, ui.updateJobItem)

	files := container.NewVSplit(ui.fileList, ui.jobList)
	files.Offset = JobPaneOffset
	split := container.NewHSplit(ui.taskList, files)
	split.Offset = TaskPaneOffset

	ui.window.SetContent(container.NewBorder(
		container.NewVBox(topPanel, ui.notificationContainer),
		nil, nil, nil,
		split,
	))
	log.Printf("UI setup completed successfully")
}

// Popup shows message in an information dialog
func (ui *RootUI) Popup(message, title string) {
	log.Printf("%s: %s", title, message)
	fyne.Do(func() {
		dialog.ShowInformation(title, message, ui.window)
	})
}

// ShowProgress shows the notification panel with a spinner
func (ui *RootUI) ShowProgress(message string) {
	ui.showNotification(message, true)
}

// UpdateProgress replaces the notification panel text
func (ui *RootUI) UpdateProgress(message string) {
	ui.showNotification(message, true)
}

// HideProgress hides the notification panel
func (ui *RootUI) HideProgress() {
	ui.hideNotification()
}

// RefreshUI reloads the task and file lists from disk
func (ui *RootUI) RefreshUI() {
	fyne.Do(ui.reloadTasks)
}

// SceneFormats returns the extensions configured in the host preferences
func (ui *RootUI) SceneFormats() []string {
	return ui.prefs.GetSceneFormats()
}

// PromptRange opens the task range dialog for dir
func (ui *RootUI) PromptRange(dir string, submit func(selection.Policy)) {
	fyne.Do(func() {
		NewTaskRangeDialog(ui.window, dir, submit, func(err error) {
			ui.Popup(err.Error(), host.TitleError)
		}).Show()
	})
}

// showNotification displays a message in the notification panel under the
// project row. When spinning is true, a spinner shows background activity.
func (ui *RootUI) showNotification(message string, spinning bool) {
	if ui.notificationLabel == nil || ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationLabel.SetText(message)
		if spinning {
			ui.notificationSpinner.Show()
		} else {
			ui.notificationSpinner.Hide()
		}
		ui.notificationContainer.Show()
		ui.notificationContainer.Refresh()
	})
}

// hideNotification hides the notification panel.
func (ui *RootUI) hideNotification() {
	if ui.notificationContainer == nil || ui.notificationSpinner == nil {
		return
	}
	fyne.Do(func() {
		ui.notificationSpinner.Hide()
		ui.notificationContainer.Hide()
	})
}

// setProjectDirectory switches the browser and the project config to dir
func (ui *RootUI) setProjectDirectory(dir string) {
	if dir == "" {
		return
	}
	if !platform.IsDirectory(dir) {
		ui.Popup("Project directory does not exist: "+dir, host.TitleError)
		return
	}
	ui.prefs.SetProjectDirectory(dir)
	ui.projectStore.SetPath(config.ProjectConfigPath(dir))
	log.Printf("Project directory set to %s", dir)

	ui.dataMutex.Lock()
	ui.selectedTask = -1
	ui.dataMutex.Unlock()
	ui.taskList.UnselectAll()
	ui.reloadTasks()
}

func (ui *RootUI) onBrowseProject() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		ui.projectEntry.SetText(uri.Path())
		ui.setProjectDirectory(uri.Path())
	}, ui.window)
}

// onShowSettings shows the settings dialog
func (ui *RootUI) onShowSettings() {
	NewSettingsDialog(ui.window, ui.prefs, ui.projectStore, ui.settings, ui.plugin, func() {
		ui.plugin.OnPluginsLoaded()
		ui.projectEntry.SetText(ui.prefs.GetProjectDirectory())
		ui.reloadTasks()
	}).Show()
}

// reloadTasks rescans the project's tasks and the selected task's files.
// Must run on the UI goroutine.
func (ui *RootUI) reloadTasks() {
	projectDir := ui.prefs.GetProjectDirectory()
	tasks, err := discoverTasks(projectDir)
	if err != nil {
		log.Printf("Failed to list tasks of %s: %v", projectDir, err)
	}

	ui.dataMutex.Lock()
	var selected host.TaskContext
	hadSelection := ui.selectedTask >= 0 && ui.selectedTask < len(ui.tasks)
	if hadSelection {
		selected = ui.tasks[ui.selectedTask]
	}
	ui.tasks = tasks
	ui.selectedTask = -1
	if hadSelection {
		for i, t := range tasks {
			if t == selected {
				ui.selectedTask = i
				break
			}
		}
	}
	ui.dataMutex.Unlock()

	ui.taskList.Refresh()
	ui.reloadFiles()
}

// reloadFiles lists the scene files of the selected task
func (ui *RootUI) reloadFiles() {
	ui.dataMutex.Lock()
	var dir string
	if ui.selectedTask >= 0 {
		dir, _ = plugin.TaskDir(ui.tasks[ui.selectedTask])
	}
	ui.dataMutex.Unlock()

	var files []string
	if dir != "" {
		var err error
		files, err = selection.SceneFiles(dir, ui.prefs.GetSceneFormats())
		if err != nil {
			log.Printf("Failed to list scene files of %s: %v", dir, err)
		}
	}

	ui.dataMutex.Lock()
	ui.files = files
	ui.dataMutex.Unlock()
	ui.fileList.Refresh()
}

func (ui *RootUI) onTaskSelected(id widget.ListItemID) {
	ui.dataMutex.Lock()
	ui.selectedTask = id
	ui.dataMutex.Unlock()
	ui.reloadFiles()
}

func (ui *RootUI) taskCount() int {
	ui.dataMutex.Lock()
	defer ui.dataMutex.Unlock()
	return len(ui.tasks)
}

func (ui *RootUI) fileCount() int {
	ui.dataMutex.Lock()
	defer ui.dataMutex.Unlock()
	return len(ui.files)
}

func (ui *RootUI) jobCount() int {
	ui.dataMutex.Lock()
	defer ui.dataMutex.Unlock()
	return len(ui.jobs)
}

func (ui *RootUI) createBrowserItem() fyne.CanvasObject {
	return newBrowserItem()
}

func (ui *RootUI) updateTaskItem(id widget.ListItemID, obj fyne.CanvasObject) {
	ui.dataMutex.Lock()
	if id >= len(ui.tasks) {
		ui.dataMutex.Unlock()
		return
	}
	ctx := ui.tasks[id]
	ui.dataMutex.Unlock()

	if item, ok := obj.(*browserItem); ok {
		item.SetContent(IconFolder, taskLabel(ctx))
		item.onSecondaryTap = func(pos fyne.Position) {
			menu := &popupMenu{}
			ui.plugin.TaskContextMenu(menu, ctx)
			menu.show(ui.window.Canvas(), pos)
		}
	}
}

func (ui *RootUI) updateFileItem(id widget.ListItemID, obj fyne.CanvasObject) {
	ui.dataMutex.Lock()
	if id >= len(ui.files) {
		ui.dataMutex.Unlock()
		return
	}
	path := ui.files[id]
	ui.dataMutex.Unlock()

	if item, ok := obj.(*browserItem); ok {
		item.SetContent(fileIcon(path), filepath.Base(path))
		item.onSecondaryTap = func(pos fyne.Position) {
			menu := &popupMenu{}
			ui.plugin.FileContextMenu(menu, path)
			menu.show(ui.window.Canvas(), pos)
		}
	}
}

func (ui *RootUI) createJobItem() fyne.CanvasObject {
	return NewJobRow(ui.onRevealJob)
}

func (ui *RootUI) updateJobItem(id widget.ListItemID, obj fyne.CanvasObject) {
	ui.dataMutex.Lock()
	if id >= len(ui.jobs) {
		ui.dataMutex.Unlock()
		return
	}
	task := ui.jobs[id]
	ui.dataMutex.Unlock()

	if row, ok := obj.(*JobRow); ok {
		row.UpdateTask(task)
	}
}

// onRevealJob opens the folder holding the job's first input
func (ui *RootUI) onRevealJob(task *model.ArchiveTask) {
	inputs := task.Inputs()
	if len(inputs) == 0 {
		return
	}
	if err := platform.OpenFileInManager(filepath.Dir(inputs[0])); err != nil {
		log.Printf("Error revealing %s: %v", inputs[0], err)
		ui.Popup("Cannot open file manager: "+err.Error(), host.TitleError)
	}
}

// shouldRefresh limits job list refreshes while a job streams progress.
// Status changes always go through.
func (ui *RootUI) shouldRefresh(statusChanged bool) bool {
	ui.uiUpdateMutex.Lock()
	defer ui.uiUpdateMutex.Unlock()

	now := time.Now()
	if !statusChanged && now.Sub(ui.lastUIUpdate) < UIUpdateDebounce {
		return false
	}
	ui.lastUIUpdate = now
	return true
}

// onJobUpdate handles task snapshots from the archive service
func (ui *RootUI) onJobUpdate(task *model.ArchiveTask) {
	ui.dataMutex.Lock()
	previous, known := ui.jobStatus[task.ID]
	ui.jobStatus[task.ID] = task.Status
	statusChanged := !known || previous != task.Status
	justFinished := statusChanged && task.Status.IsFinished()

	replaced := false
	for i, existing := range ui.jobs {
		if existing.ID == task.ID {
			ui.jobs[i] = task
			replaced = true
			break
		}
	}
	if !replaced {
		ui.jobs = append(ui.jobs, task)
	}
	ui.dataMutex.Unlock()

	if justFinished {
		log.Printf("Archive task %s finished with status %s", task.ID, task.Status)
		ui.sendCompletionNotification(task)
		if ui.prefs.GetRevealOnFinish() {
			ui.onRevealJob(task)
		}
	}

	if !ui.shouldRefresh(statusChanged) {
		return
	}
	fyne.Do(func() {
		ui.jobList.Refresh()
	})
}

// sendCompletionNotification sends a system notification for a finished job
func (ui *RootUI) sendCompletionNotification(task *model.ArchiveTask) {
	fyne.CurrentApp().SendNotification(&fyne.Notification{
		Title:   TitleFinished,
		Content: task.GetDisplayTitle() + MiddleDotSeparator + task.Status.String(),
	})
}
