package ui

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/scene-archiver/internal/selection"
)

// Range choices shown in the task range dialog
const (
	RangeChoiceAll          = "All"
	RangeChoiceAllButLatest = "All but latest"
	RangeChoiceCustom       = "Custom"
)

// Default custom range bounds
const (
	DefaultRangeStart = 1
	DefaultRangeEnd   = 2
)

// policyFromInputs converts the dialog's inputs into a selection policy
func policyFromInputs(choice, start, end string) (selection.Policy, error) {
	switch choice {
	case RangeChoiceAll:
		return selection.All(), nil
	case RangeChoiceAllButLatest:
		return selection.AllButLatest(), nil
	case RangeChoiceCustom:
		s, err := strconv.Atoi(strings.TrimSpace(start))
		if err != nil {
			return selection.Policy{}, fmt.Errorf("%w: start %q is not a number", selection.ErrInvalidRange, start)
		}
		e, err := strconv.Atoi(strings.TrimSpace(end))
		if err != nil {
			return selection.Policy{}, fmt.Errorf("%w: end %q is not a number", selection.ErrInvalidRange, end)
		}
		policy := selection.Custom(s, e)
		if err := policy.Validate(); err != nil {
			return selection.Policy{}, err
		}
		return policy, nil
	default:
		return selection.Policy{}, fmt.Errorf("%w: unknown choice %q", selection.ErrInvalidRange, choice)
	}
}

// TaskRangeDialog asks which versions of a task to compress
type TaskRangeDialog struct {
	window fyne.Window
	dialog *dialog.ConfirmDialog

	choice *widget.RadioGroup
	start  *widget.Entry
	end    *widget.Entry

	onSubmit func(selection.Policy)
	onError  func(error)
}

// NewTaskRangeDialog creates the dialog for the task folder dir
func NewTaskRangeDialog(window fyne.Window, dir string, onSubmit func(selection.Policy), onError func(error)) *TaskRangeDialog {
	rd := &TaskRangeDialog{
		window:   window,
		onSubmit: onSubmit,
		onError:  onError,
	}
	rd.createUI(dir)
	return rd
}

func (rd *TaskRangeDialog) createUI(dir string) {
	rd.start = widget.NewEntry()
	rd.start.SetText(strconv.Itoa(DefaultRangeStart))
	rd.end = widget.NewEntry()
	rd.end.SetText(strconv.Itoa(DefaultRangeEnd))

	rd.choice = widget.NewRadioGroup(
		[]string{RangeChoiceAll, RangeChoiceAllButLatest, RangeChoiceCustom},
		rd.onChoiceChanged,
	)
	rd.choice.Required = true
	rd.choice.SetSelected(RangeChoiceAll)

	folder := widget.NewLabel(IconFolder + " " + dir)
	folder.Truncation = fyne.TextTruncateEllipsis

	content := container.NewVBox(
		folder,
		widget.NewSeparator(),
		rd.choice,
		widget.NewForm(
			widget.NewFormItem("Start", rd.start),
			widget.NewFormItem("End", rd.end),
		),
	)

	rd.dialog = dialog.NewCustomConfirm(TitleTaskRange, "Start", "Cancel", content, rd.onConfirm, rd.window)
	rd.dialog.Resize(fyne.NewSize(RangeDialogWidth, content.MinSize().Height))
}

// onChoiceChanged enables the range entries only for a custom range
func (rd *TaskRangeDialog) onChoiceChanged(choice string) {
	if rd.start == nil || rd.end == nil {
		return
	}
	if choice == RangeChoiceCustom {
		rd.start.Enable()
		rd.end.Enable()
	} else {
		rd.start.Disable()
		rd.end.Disable()
	}
}

func (rd *TaskRangeDialog) onConfirm(confirmed bool) {
	if !confirmed {
		return
	}
	policy, err := policyFromInputs(rd.choice.Selected, rd.start.Text, rd.end.Text)
	if err != nil {
		if rd.onError != nil {
			rd.onError(err)
		}
		return
	}
	rd.onSubmit(policy)
}

// Show displays the dialog
func (rd *TaskRangeDialog) Show() {
	rd.dialog.Show()
}
