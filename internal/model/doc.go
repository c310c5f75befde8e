package model

// Package model defines the transient data structures passed between the plugin,
// the archive worker and the UI: archive jobs and settings, task status enums,
// per-file results and the error taxonomy reported back to the user.
