package model

// TaskStatus represents the status of an archive task
type TaskStatus string

const (
	// TaskStatusPending means the task is queued behind another job
	TaskStatusPending TaskStatus = "Pending"

	// TaskStatusRunning means the worker is processing the task's files
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusCompleted means every file was processed without error
	TaskStatusCompleted TaskStatus = "Completed"

	// TaskStatusError means at least one file reported an error
	TaskStatusError TaskStatus = "Error"
)

// String returns the string representation of TaskStatus
func (ts TaskStatus) String() string {
	return string(ts)
}

// IsActive returns true if the task is queued or running
func (ts TaskStatus) IsActive() bool {
	return ts == TaskStatusPending || ts == TaskStatusRunning
}

// IsFinished returns true if the task is in a finished state (completed or error)
func (ts TaskStatus) IsFinished() bool {
	return ts == TaskStatusCompleted || ts == TaskStatusError
}
