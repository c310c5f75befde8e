// Package ui contains the Fyne-based desktop host for the compression plugin.
// It lists a project's tasks and scene files, offers the plugin's context
// menus on right click, and renders the progress indicator, archive jobs,
// the task range dialog and the settings dialog.
package ui
