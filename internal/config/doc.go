// Package config provides the compression settings accessor over a project
// scoped configuration store, the Fyne preferences and JSON project file
// stores, and the standalone host's own preferences.
package config
