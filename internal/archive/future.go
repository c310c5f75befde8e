package archive

import (
	"context"

	"github.com/ytget/scene-archiver/internal/model"
)

// Future is the handle for a submitted job
type Future struct {
	taskID string
	done   chan struct{}
	result model.JobResult
}

func newFuture(taskID string) *Future {
	return &Future{taskID: taskID, done: make(chan struct{})}
}

// TaskID returns the id of the task backing this future
func (f *Future) TaskID() string {
	return f.taskID
}

// Done is closed once the job finished
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the job finished or ctx is done. The job itself keeps
// running when ctx expires.
func (f *Future) Wait(ctx context.Context) (model.JobResult, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return model.JobResult{TaskID: f.taskID}, ctx.Err()
	}
}

// Result returns the result if the job already finished
func (f *Future) Result() (model.JobResult, bool) {
	select {
	case <-f.done:
		return f.result, true
	default:
		return model.JobResult{}, false
	}
}

func (f *Future) resolve(result model.JobResult) {
	f.result = result
	close(f.done)
}
