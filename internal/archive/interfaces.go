package archive

import (
	"github.com/ytget/scene-archiver/internal/model"
)

// Archiver defines the interface for the archive service.
type Archiver interface {
	SetUpdateCallback(func(*model.ArchiveTask))
	Submit(job model.ArchiveJob, opts ...SubmitOption) (*Future, error)
	GetTask(taskID string) (*model.ArchiveTask, bool)
	GetAllTasks() []*model.ArchiveTask
	Close()
}
