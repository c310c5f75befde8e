package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/scene-archiver/internal/archive"
	"github.com/ytget/scene-archiver/internal/config"
	"github.com/ytget/scene-archiver/internal/host"
	"github.com/ytget/scene-archiver/internal/model"
	"github.com/ytget/scene-archiver/internal/selection"
)

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	project := t.TempDir()
	for name, content := range files {
		path := filepath.Join(project, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return project
}

func newTestRoot(t *testing.T, project string) (*RootUI, fyne.Window) {
	t.Helper()
	app := test.NewApp()
	t.Cleanup(app.Quit)
	app.Preferences().SetString(config.KeyProjectDir, project)

	service := archive.NewService()
	t.Cleanup(service.Close)

	w := test.NewWindow(nil)
	t.Cleanup(w.Close)
	return NewRootUI(w, app, service), w
}

func TestPolicyFromInputs(t *testing.T) {
	tests := []struct {
		choice, start, end string
		want               selection.Policy
		wantErr            bool
	}{
		{RangeChoiceAll, "", "", selection.All(), false},
		{RangeChoiceAllButLatest, "x", "y", selection.AllButLatest(), false},
		{RangeChoiceCustom, "1", "2", selection.Custom(1, 2), false},
		{RangeChoiceCustom, " 3 ", "3", selection.Custom(3, 3), false},
		{RangeChoiceCustom, "abc", "2", selection.Policy{}, true},
		{RangeChoiceCustom, "1", "", selection.Policy{}, true},
		{RangeChoiceCustom, "5", "2", selection.Policy{}, true},
		{RangeChoiceCustom, "0", "2", selection.Policy{}, true},
		{"", "1", "2", selection.Policy{}, true},
	}

	for _, tt := range tests {
		got, err := policyFromInputs(tt.choice, tt.start, tt.end)
		if (err != nil) != tt.wantErr {
			t.Errorf("policyFromInputs(%q, %q, %q) error = %v, wantErr %v", tt.choice, tt.start, tt.end, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, selection.ErrInvalidRange) {
				t.Errorf("policyFromInputs(%q, %q, %q) error = %v, want ErrInvalidRange", tt.choice, tt.start, tt.end, err)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("policyFromInputs(%q, %q, %q) = %v, want %v", tt.choice, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestTaskRangeDialog_CustomEnablesEntries(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	var submitted []selection.Policy
	rd := NewTaskRangeDialog(w, "/project/Scenefiles/anim/shot010", func(p selection.Policy) {
		submitted = append(submitted, p)
	}, nil)

	if !rd.start.Disabled() || !rd.end.Disabled() {
		t.Error("Range entries should start disabled")
	}
	rd.choice.SetSelected(RangeChoiceCustom)
	if rd.start.Disabled() || rd.end.Disabled() {
		t.Error("Range entries should be enabled for a custom range")
	}

	rd.onConfirm(false)
	if len(submitted) != 0 {
		t.Fatal("Cancel should not submit")
	}
	rd.onConfirm(true)
	if len(submitted) != 1 || submitted[0] != selection.Custom(DefaultRangeStart, DefaultRangeEnd) {
		t.Errorf("Expected default custom range, got %v", submitted)
	}
}

func TestTaskRangeDialog_InvalidRangeReportsError(t *testing.T) {
	test.NewApp()
	w := test.NewWindow(nil)
	defer w.Close()

	var gotErr error
	rd := NewTaskRangeDialog(w, "dir", func(selection.Policy) {
		t.Error("Invalid range should not submit")
	}, func(err error) { gotErr = err })

	rd.choice.SetSelected(RangeChoiceCustom)
	rd.start.SetText("9")
	rd.end.SetText("1")
	rd.onConfirm(true)

	if !errors.Is(gotErr, selection.ErrInvalidRange) {
		t.Errorf("Expected ErrInvalidRange, got %v", gotErr)
	}
}

func TestFormatsFromText(t *testing.T) {
	got := formatsFromText("ma, .MB;blend  .ma\n.")
	want := []string{".ma", ".mb", ".blend"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("formatsFromText = %v, want %v", got, want)
	}
	if got := formatsFromText("  "); len(got) != 0 {
		t.Errorf("Expected no formats, got %v", got)
	}
}

func TestDiscoverTasks(t *testing.T) {
	project := writeProject(t, map[string]string{
		"Scenefiles/light/shot020/a.ma": "x",
		"Scenefiles/anim/shot020/a.ma":  "x",
		"Scenefiles/anim/shot010/a.ma":  "x",
		"Scenefiles/anim/notes.txt":     "x",
	})

	tasks, err := discoverTasks(project)
	if err != nil {
		t.Fatalf("discoverTasks failed: %v", err)
	}
	want := []host.TaskContext{
		{ProjectPath: project, Department: "anim", Task: "shot010"},
		{ProjectPath: project, Department: "anim", Task: "shot020"},
		{ProjectPath: project, Department: "light", Task: "shot020"},
	}
	if !reflect.DeepEqual(tasks, want) {
		t.Errorf("discoverTasks = %v, want %v", tasks, want)
	}
	if got := taskLabel(want[0]); got != "anim / shot010" {
		t.Errorf("taskLabel = %q", got)
	}

	tasks, err = discoverTasks(t.TempDir())
	if err != nil || len(tasks) != 0 {
		t.Errorf("Project without Scenefiles should have no tasks, got %v, %v", tasks, err)
	}
}

func TestFileIcon(t *testing.T) {
	if fileIcon("shot_v0001.zip") != IconArchive || fileIcon("shot_v0001.tar.gz") != IconArchive {
		t.Error("Archives should use the archive icon")
	}
	if fileIcon("shot_v0001.ma") != IconFile {
		t.Error("Scene files should use the file icon")
	}
}

func TestPopupMenu(t *testing.T) {
	menu := &popupMenu{}
	if menu.show(nil, fyne.NewPos(0, 0)) {
		t.Error("Empty menu should not be shown")
	}
	menu.AddAction("Compress file", func() {})
	menu.AddAction("Decompress file", func() {})
	if got := menu.Labels(); !reflect.DeepEqual(got, []string{"Compress file", "Decompress file"}) {
		t.Errorf("Labels = %v", got)
	}
}

func TestEffectivePercent(t *testing.T) {
	tests := []struct {
		task model.ArchiveTask
		want int
	}{
		{model.ArchiveTask{Status: model.TaskStatusCompleted}, 100},
		{model.ArchiveTask{Status: model.TaskStatusRunning, Percent: 40}, 40},
		{model.ArchiveTask{Status: model.TaskStatusRunning, Progress: 0.001}, MinProgressPercent},
		{model.ArchiveTask{Status: model.TaskStatusRunning, Progress: 0.5}, 50},
		{model.ArchiveTask{Status: model.TaskStatusPending}, 0},
		{model.ArchiveTask{Status: model.TaskStatusRunning, Percent: 130}, 100},
	}
	for _, tt := range tests {
		if got := effectivePercent(&tt.task); got != tt.want {
			t.Errorf("effectivePercent(%+v) = %d, want %d", tt.task, got, tt.want)
		}
	}
}

func TestJobRow_UpdateTask(t *testing.T) {
	test.NewApp()

	var revealed *model.ArchiveTask
	row := NewJobRow(func(task *model.ArchiveTask) { revealed = task })

	running := &model.ArchiveTask{
		ID:      "archive-1",
		Job:     model.ArchiveJob{Path: "/p/shot_v0001.ma"},
		Status:  model.TaskStatusRunning,
		Percent: 50,
		Message: "Compressing file 1 of 2",
	}
	row.UpdateTask(running)
	if row.titleLabel.Text != "shot_v0001.ma" {
		t.Errorf("Title = %q", row.titleLabel.Text)
	}
	if row.progressLabel.Text != "50%" {
		t.Errorf("Progress = %q", row.progressLabel.Text)
	}
	if row.messageLabel.Text != running.Message {
		t.Errorf("Message = %q", row.messageLabel.Text)
	}
	if !row.revealBtn.Disabled() {
		t.Error("Reveal should be disabled while running")
	}

	failed := *running
	failed.Status = model.TaskStatusError
	failed.LastError = "Could not compress\nshot_v0001.ma"
	row.UpdateTask(&failed)
	if row.messageLabel.Text != "Could not compress shot_v0001.ma" {
		t.Errorf("Error message = %q", row.messageLabel.Text)
	}
	if row.statusLabel.Importance != widget.DangerImportance {
		t.Errorf("Status importance = %v, want danger", row.statusLabel.Importance)
	}
	if row.revealBtn.Disabled() {
		t.Error("Reveal should be enabled once finished")
	}

	test.Tap(row.revealBtn)
	if revealed == nil || revealed.ID != "archive-1" {
		t.Errorf("Reveal callback got %v", revealed)
	}
}

func TestRootUI_BrowsesProject(t *testing.T) {
	project := writeProject(t, map[string]string{
		"Scenefiles/anim/shot010/shot_v0001.ma": "one",
		"Scenefiles/anim/shot010/shot_v0002.ma": "two",
		"Scenefiles/anim/shot010/readme.txt":    "skip",
	})
	ui, _ := newTestRoot(t, project)

	if ui.taskCount() != 1 {
		t.Fatalf("Expected 1 task, got %d", ui.taskCount())
	}
	if ui.fileCount() != 0 {
		t.Errorf("No files should be listed before a task is selected, got %d", ui.fileCount())
	}

	ui.onTaskSelected(0)
	if ui.fileCount() != 2 {
		t.Errorf("Expected 2 scene files, got %d", ui.fileCount())
	}
	if got := ui.SceneFormats(); !reflect.DeepEqual(got, config.DefaultSceneFormats) {
		t.Errorf("SceneFormats = %v", got)
	}
}

func TestRootUI_CompressTaskUpdatesJobs(t *testing.T) {
	project := writeProject(t, map[string]string{
		"Scenefiles/anim/shot010/shot_v0001.ma": "one",
		"Scenefiles/anim/shot010/shot_v0002.ma": "two",
	})
	ui, _ := newTestRoot(t, project)
	dir := filepath.Join(project, "Scenefiles", "anim", "shot010")

	future, err := ui.Plugin().CompressTask(dir, selection.All())
	if err != nil {
		t.Fatalf("CompressTask failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := future.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if !result.OK() {
		t.Fatalf("Expected success, got %+v", result)
	}

	for _, name := range []string{"shot_v0001.zip", "shot_v0002.zip"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("Expected %s: %v", name, err)
		}
	}

	if ui.jobCount() != 1 {
		t.Fatalf("Expected 1 job, got %d", ui.jobCount())
	}
	ui.dataMutex.Lock()
	status := ui.jobs[0].Status
	ui.dataMutex.Unlock()
	if status != model.TaskStatusCompleted {
		t.Errorf("Job status = %s, want Completed", status)
	}
}

func TestRootUI_SetProjectDirectory(t *testing.T) {
	first := writeProject(t, map[string]string{"Scenefiles/anim/shot010/a_v0001.ma": "x"})
	second := writeProject(t, map[string]string{
		"Scenefiles/anim/shot010/a_v0001.ma": "x",
		"Scenefiles/fx/shot010/a_v0001.hip":  "x",
	})
	ui, w := newTestRoot(t, first)

	ui.setProjectDirectory(second)
	if ui.taskCount() != 2 {
		t.Errorf("Expected 2 tasks after switching project, got %d", ui.taskCount())
	}
	if got := ui.projectStore.Path(); got != config.ProjectConfigPath(second) {
		t.Errorf("Project config path = %q", got)
	}

	ui.setProjectDirectory(filepath.Join(second, "missing"))
	if w.Canvas().Overlays().Top() == nil {
		t.Error("A missing project directory should be reported")
	}
	if ui.prefs.GetProjectDirectory() != second {
		t.Error("A missing project directory should not be stored")
	}
}

func TestSettingsDialog_LoadAndSave(t *testing.T) {
	project := writeProject(t, map[string]string{
		config.ProjectConfigFile: `{"compression": {"type": "Tar.gz", "zipLevel": "ZIP_STORED", "deleteOld": false}}`,
	})
	ui, w := newTestRoot(t, project)

	sd := NewSettingsDialog(w, ui.prefs, ui.projectStore, ui.settings, ui.plugin, nil)
	sd.load()

	want := model.ArchiveSettings{Format: model.FormatTarGz, ZipMethod: model.ZipStored, DeleteOld: false}
	if got := sd.Values(); got != want {
		t.Errorf("Values = %+v, want %+v", got, want)
	}
	if sd.zipRow.Visible() {
		t.Error("Zip level should be hidden for Tar.gz")
	}
	if w.Canvas().Overlays().Top() != nil {
		t.Error("Loading Tar.gz should not warn")
	}

	sd.formatSelect.SetSelected(model.FormatZip.String())
	if !sd.zipRow.Visible() {
		t.Error("Zip level should be shown for Zip")
	}
	sd.zipSelect.SetSelected(model.ZipLZMA.String())
	sd.deleteCheck.SetChecked(true)
	sd.formatsEntry.SetText("ma, hip")

	if err := sd.save(); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	data, err := ui.projectStore.Load()
	if err != nil {
		t.Fatal(err)
	}
	section, _ := data[config.SectionCompression].(map[string]any)
	if section[config.KeyType] != "Zip" || section[config.KeyZipLevel] != "ZIP_LZMA" || section[config.KeyDeleteOld] != true {
		t.Errorf("Saved section = %v", section)
	}
	if got := ui.settings.Current(); got.ZipMethod != model.ZipLZMA {
		t.Errorf("Settings read back %+v", got)
	}
	if got := ui.prefs.GetSceneFormats(); !reflect.DeepEqual(got, []string{".ma", ".hip"}) {
		t.Errorf("Scene formats = %v", got)
	}
}

func TestSettingsDialog_TarGzWarnsWhenChosen(t *testing.T) {
	ui, w := newTestRoot(t, t.TempDir())

	sd := NewSettingsDialog(w, ui.prefs, ui.projectStore, ui.settings, ui.plugin, nil)
	sd.load()
	if sd.Values().Format != model.FormatZip {
		t.Fatalf("Expected default Zip, got %s", sd.Values().Format)
	}

	sd.formatSelect.SetSelected(model.FormatTarGz.String())
	if w.Canvas().Overlays().Top() == nil {
		t.Error("Choosing Tar.gz should warn")
	}
	if sd.zipRow.Visible() {
		t.Error("Zip level should be hidden for Tar.gz")
	}
}
