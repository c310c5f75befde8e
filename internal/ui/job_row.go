package ui

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/ytget/scene-archiver/internal/model"
)

// Progress calculation constants
const (
	MaxProgressPercent = 100
	MinProgressPercent = 1
)

// effectivePercent turns a task's progress into a label percentage. Running
// tasks with any progress never show 0%.
func effectivePercent(task *model.ArchiveTask) int {
	if task.Status == model.TaskStatusCompleted {
		return MaxProgressPercent
	}
	percent := task.Percent
	if percent <= 0 && task.Progress > 0 {
		percent = int(task.Progress * MaxProgressPercent)
		if percent == 0 {
			percent = MinProgressPercent
		}
	}
	if percent < 0 {
		return 0
	}
	if percent > MaxProgressPercent {
		return MaxProgressPercent
	}
	return percent
}

// statusText returns the status label text and importance for a task
func statusText(task *model.ArchiveTask) (string, widget.Importance) {
	switch task.Status {
	case model.TaskStatusError:
		return IconError + " " + task.Status.String(), widget.DangerImportance
	case model.TaskStatusCompleted:
		return task.Status.String(), widget.SuccessImportance
	case model.TaskStatusRunning:
		return IconRunning + " " + task.Status.String(), widget.HighImportance
	default:
		return IconPending + " " + task.Status.String(), widget.MediumImportance
	}
}

// singleLine flattens multi-line messages such as error popups for a row
func singleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// JobRow shows one archive job
type JobRow struct {
	widget.BaseWidget

	task *model.ArchiveTask

	titleLabel    *widget.Label
	statusLabel   *widget.Label
	progressLabel *widget.Label
	messageLabel  *widget.Label
	revealBtn     *widget.Button

	onReveal func(task *model.ArchiveTask)
}

// NewJobRow creates a new job row widget
func NewJobRow(onReveal func(task *model.ArchiveTask)) *JobRow {
	jr := &JobRow{onReveal: onReveal}
	jr.ExtendBaseWidget(jr)

	jr.titleLabel = widget.NewLabel("")
	jr.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	jr.titleLabel.Truncation = fyne.TextTruncateEllipsis

	jr.statusLabel = widget.NewLabel("")
	jr.statusLabel.Alignment = fyne.TextAlignTrailing
	jr.progressLabel = widget.NewLabel("")
	jr.progressLabel.Alignment = fyne.TextAlignTrailing

	jr.messageLabel = widget.NewLabel("")
	jr.messageLabel.Truncation = fyne.TextTruncateEllipsis
	jr.messageLabel.TextStyle = fyne.TextStyle{Italic: true}

	jr.revealBtn = widget.NewButton("open", func() {
		if jr.task != nil && jr.onReveal != nil {
			jr.onReveal(jr.task)
		}
	})
	jr.revealBtn.Importance = widget.MediumImportance
	jr.revealBtn.Disable()
	return jr
}

// UpdateTask updates the row with new task data
func (jr *JobRow) UpdateTask(task *model.ArchiveTask) {
	if task == nil {
		return
	}
	jr.task = task

	jr.titleLabel.SetText(task.GetDisplayTitle())

	text, importance := statusText(task)
	jr.statusLabel.Importance = importance
	jr.statusLabel.SetText(text)

	if task.Status == model.TaskStatusCompleted {
		jr.progressLabel.SetText("")
	} else {
		jr.progressLabel.SetText(fmt.Sprintf(ProgressLabelFormat, effectivePercent(task)))
	}

	switch {
	case task.LastError != "":
		jr.messageLabel.SetText(singleLine(task.LastError))
	case task.Status == model.TaskStatusCompleted && !task.FinishedAt.IsZero():
		jr.messageLabel.SetText("done in " + task.Elapsed().Round(time.Millisecond).String())
	default:
		jr.messageLabel.SetText(task.Message)
	}

	if task.Status.IsFinished() {
		jr.revealBtn.Enable()
	} else {
		jr.revealBtn.Disable()
	}
}

// CreateRenderer creates the widget renderer
func (jr *JobRow) CreateRenderer() fyne.WidgetRenderer {
	fixedWidth := func(w float32, obj fyne.CanvasObject) fyne.CanvasObject {
		spacer := canvas.NewRectangle(color.Transparent)
		spacer.SetMinSize(fyne.NewSize(w, obj.MinSize().Height))
		return container.NewStack(spacer, obj)
	}

	info := container.NewHBox(
		fixedWidth(StatusLabelWidth, jr.statusLabel),
		fixedWidth(PercentLabelWidth, jr.progressLabel),
		jr.revealBtn,
	)
	top := container.NewBorder(nil, nil, nil, info, jr.titleLabel)

	spacer := canvas.NewRectangle(color.Transparent)
	spacer.SetMinSize(fyne.NewSize(RowMinWidth, RowMinHeight))

	return widget.NewSimpleRenderer(container.NewStack(
		spacer,
		container.NewVBox(top, jr.messageLabel, widget.NewSeparator()),
	))
}
