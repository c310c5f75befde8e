package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// popupMenu collects plugin menu entries and shows them at the pointer
type popupMenu struct {
	items []*fyne.MenuItem
}

// AddAction appends an entry to the menu
func (m *popupMenu) AddAction(label string, action func()) {
	m.items = append(m.items, fyne.NewMenuItem(label, action))
}

// Labels returns the entry labels in insertion order
func (m *popupMenu) Labels() []string {
	labels := make([]string, len(m.items))
	for i, item := range m.items {
		labels[i] = item.Label
	}
	return labels
}

// show opens the menu at pos and reports whether there was anything to show
func (m *popupMenu) show(c fyne.Canvas, pos fyne.Position) bool {
	if len(m.items) == 0 {
		return false
	}
	widget.ShowPopUpMenuAtPosition(fyne.NewMenu("", m.items...), c, pos)
	return true
}

// browserItem is a list row that reports secondary taps, so the host can open
// the plugin's context menu on right click
type browserItem struct {
	widget.BaseWidget

	icon  *widget.Label
	label *widget.Label

	onSecondaryTap func(pos fyne.Position)
}

func newBrowserItem() *browserItem {
	item := &browserItem{
		icon:  widget.NewLabel(""),
		label: widget.NewLabel(""),
	}
	item.label.Truncation = fyne.TextTruncateEllipsis
	item.ExtendBaseWidget(item)
	return item
}

// SetContent updates the row text
func (i *browserItem) SetContent(icon, text string) {
	i.icon.SetText(icon)
	i.label.SetText(text)
}

// TappedSecondary opens the context menu at the pointer
func (i *browserItem) TappedSecondary(e *fyne.PointEvent) {
	if i.onSecondaryTap != nil {
		i.onSecondaryTap(e.AbsolutePosition)
	}
}

// CreateRenderer creates the widget renderer
func (i *browserItem) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, i.icon, nil, i.label))
}
