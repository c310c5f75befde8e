package ui

import (
	"errors"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/scene-archiver/internal/config"
	"github.com/ytget/scene-archiver/internal/host"
	"github.com/ytget/scene-archiver/internal/model"
	"github.com/ytget/scene-archiver/internal/plugin"
)

// formatsFromText parses a comma or space separated extension list. Each
// extension gets a leading dot.
func formatsFromText(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\n'
	})
	formats := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || f == "." {
			continue
		}
		if !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats
}

// SettingsDialog edits the project's compression section and the host
// window preferences
type SettingsDialog struct {
	window       fyne.Window
	dialog       *dialog.ConfirmDialog
	prefs        *config.HostPreferences
	projectStore *config.ProjectFileStore
	settings     *config.Settings
	plugin       *plugin.Plugin

	// Compression section
	formatSelect *widget.Select
	zipSelect    *widget.Select
	zipRow       *fyne.Container
	deleteCheck  *widget.Check

	// Host preferences
	projectDirEntry *widget.Entry
	formatsEntry    *widget.Entry
	revealCheck     *widget.Check

	loading bool
	onSaved func()
}

var _ host.SettingsForm = (*SettingsDialog)(nil)

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(window fyne.Window, prefs *config.HostPreferences, projectStore *config.ProjectFileStore,
	settings *config.Settings, p *plugin.Plugin, onSaved func()) *SettingsDialog {
	sd := &SettingsDialog{
		window:       window,
		prefs:        prefs,
		projectStore: projectStore,
		settings:     settings,
		plugin:       p,
		onSaved:      onSaved,
	}
	sd.createUI()
	return sd
}

// Show loads the current values and displays the dialog
func (sd *SettingsDialog) Show() {
	sd.load()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	formats := make([]string, 0, len(model.FormatOptions()))
	for _, f := range model.FormatOptions() {
		formats = append(formats, f.String())
	}
	methods := make([]string, 0, len(model.ZipMethodOptions()))
	for _, m := range model.ZipMethodOptions() {
		methods = append(methods, m.String())
	}

	sd.zipSelect = widget.NewSelect(methods, nil)
	sd.zipRow = container.NewVBox(widget.NewLabel("Zip compression level:"), sd.zipSelect)
	sd.formatSelect = widget.NewSelect(formats, sd.onFormatChanged)
	sd.deleteCheck = widget.NewCheck("Delete originals after success", nil)

	sd.projectDirEntry = widget.NewEntry()
	sd.projectDirEntry.SetPlaceHolder("Project directory path")
	browseBtn := widget.NewButton("Browse", sd.onBrowseDirectory)
	projectRow := container.NewBorder(nil, nil, nil, browseBtn, sd.projectDirEntry)

	sd.formatsEntry = widget.NewEntry()
	sd.formatsEntry.SetPlaceHolder(".ma, .mb, .blend")
	sd.revealCheck = widget.NewCheck("Reveal results in file manager", nil)

	form := container.NewVBox(
		widget.NewLabel("Compression"),
		widget.NewSeparator(),

		widget.NewLabel("Compression type:"),
		sd.formatSelect,
		sd.zipRow,
		sd.deleteCheck,

		widget.NewSeparator(),
		widget.NewLabel("Browser"),
		widget.NewSeparator(),

		widget.NewLabel("Project directory:"),
		projectRow,

		widget.NewLabel("Scene formats:"),
		sd.formatsEntry,
		sd.revealCheck,
	)

	sd.dialog = dialog.NewCustomConfirm(TitleSettings, "Save", "Cancel", form, sd.onSave, sd.window)
	sd.dialog.Resize(fyne.NewSize(SettingsDialogWidth, SettingsDialogHeight))
}

// Values returns the compression values currently shown
func (sd *SettingsDialog) Values() model.ArchiveSettings {
	return model.ArchiveSettings{
		Format:    model.ArchiveFormat(sd.formatSelect.Selected),
		ZipMethod: model.ZipMethod(sd.zipSelect.Selected),
		DeleteOld: sd.deleteCheck.Checked,
	}
}

// SetValues shows values in the compression controls
func (sd *SettingsDialog) SetValues(values model.ArchiveSettings) {
	sd.formatSelect.SetSelected(values.Format.String())
	sd.zipSelect.SetSelected(values.ZipMethod.String())
	sd.deleteCheck.SetChecked(values.DeleteOld)
}

// onFormatChanged toggles the zip level row. Programmatic changes while
// loading never raise the Tar.gz warning.
func (sd *SettingsDialog) onFormatChanged(selected string) {
	format := model.ArchiveFormat(selected)
	zipApplies := format == model.FormatZip
	if !sd.loading {
		zipApplies = sd.plugin.FormatChanged(format)
	}
	if zipApplies {
		sd.zipRow.Show()
	} else {
		sd.zipRow.Hide()
	}
}

// load fills the dialog from the resolved settings, then from the project file
func (sd *SettingsDialog) load() {
	sd.loading = true
	defer func() { sd.loading = false }()

	sd.SetValues(sd.settings.Current())
	data, err := sd.projectStore.Load()
	if err != nil {
		log.Printf("Failed to load project config %s: %v", sd.projectStore.Path(), err)
	} else {
		sd.plugin.LoadSettingsUI(sd, data)
	}

	sd.projectDirEntry.SetText(sd.prefs.GetProjectDirectory())
	sd.formatsEntry.SetText(strings.Join(sd.prefs.GetSceneFormats(), ", "))
	sd.revealCheck.SetChecked(sd.prefs.GetRevealOnFinish())
}

// onBrowseDirectory handles directory browsing
func (sd *SettingsDialog) onBrowseDirectory() {
	dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			return
		}
		sd.projectDirEntry.SetText(uri.Path())
	}, sd.window)
}

func (sd *SettingsDialog) onSave(confirmed bool) {
	if !confirmed {
		return
	}
	if err := sd.save(); err != nil {
		log.Printf("Failed to save settings: %v", err)
		dialog.ShowError(err, sd.window)
		return
	}
	if sd.onSaved != nil {
		sd.onSaved()
	}
	dialog.ShowInformation(TitleSettings, "Settings saved successfully!", sd.window)
}

// save writes the host preferences first, so the compression section lands
// in the config file of the project chosen in this dialog
func (sd *SettingsDialog) save() error {
	if dir := strings.TrimSpace(sd.projectDirEntry.Text); dir != "" {
		sd.prefs.SetProjectDirectory(dir)
		sd.projectStore.SetPath(config.ProjectConfigPath(dir))
	}
	if formats := formatsFromText(sd.formatsEntry.Text); len(formats) > 0 {
		sd.prefs.SetSceneFormats(formats)
	}
	sd.prefs.SetRevealOnFinish(sd.revealCheck.Checked)

	data, err := sd.projectStore.Load()
	if err != nil {
		return err
	}
	sd.plugin.SaveSettingsUI(sd, data)
	return errors.Join(
		sd.projectStore.Save(data),
		sd.settings.SaveUserDefaults(sd.Values()),
	)
}
