package archive

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ytget/scene-archiver/internal/model"
)

// TaskIDPrefix prefixes every archive task id
const TaskIDPrefix = "archive-"

// ErrServiceClosed is returned by Submit after Close
var ErrServiceClosed = errors.New("archive service is closed")

// SubmitOption configures a single submitted job
type SubmitOption func(*submitConfig)

type submitConfig struct {
	onProgress func(task *model.ArchiveTask)
	onError    func(task *model.ArchiveTask, err *model.JobError)
}

// WithProgress registers a callback receiving this job's task snapshots
// whenever its progress changes
func WithProgress(fn func(task *model.ArchiveTask)) SubmitOption {
	return func(c *submitConfig) {
		c.onProgress = fn
	}
}

// WithErrorHandler registers a callback invoked once for every error the job reports
func WithErrorHandler(fn func(task *model.ArchiveTask, err *model.JobError)) SubmitOption {
	return func(c *submitConfig) {
		c.onError = fn
	}
}

type queuedJob struct {
	task   *model.ArchiveTask
	future *Future
	cfg    submitConfig
}

var _ Archiver = (*Service)(nil)

// Service runs archive jobs one at a time in submission order
type Service struct {
	tasks      map[string]*model.ArchiveTask
	pending    []*queuedJob
	closed     bool
	tasksMutex sync.RWMutex
	onUpdate   func(*model.ArchiveTask) // callback for UI updates

	wake    chan struct{}
	stopped chan struct{}
}

// NewService creates an archive service and starts its worker goroutine
func NewService() *Service {
	s := &Service{
		tasks:   make(map[string]*model.ArchiveTask),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go s.loop()
	return s
}

// SetUpdateCallback sets the callback function for task updates
func (s *Service) SetUpdateCallback(callback func(*model.ArchiveTask)) {
	s.tasksMutex.Lock()
	defer s.tasksMutex.Unlock()
	s.onUpdate = callback
}

// Submit queues job and returns a future resolved with its result. Invalid
// jobs are accepted and fail with an invalid-configuration error when run.
func (s *Service) Submit(job model.ArchiveJob, opts ...SubmitOption) (*Future, error) {
	var cfg submitConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	task := &model.ArchiveTask{
		ID:     generateTaskID(),
		Job:    job,
		Status: model.TaskStatusPending,
	}
	future := newFuture(task.ID)

	s.tasksMutex.Lock()
	if s.closed {
		s.tasksMutex.Unlock()
		return nil, ErrServiceClosed
	}
	s.tasks[task.ID] = task
	s.pending = append(s.pending, &queuedJob{task: task, future: future, cfg: cfg})
	queued := len(s.pending)
	s.tasksMutex.Unlock()

	log.Printf("Queued archive task %s (%s), %d pending", task.ID, task.GetDisplayTitle(), queued)
	s.signal()
	s.notifyUpdate(task)
	return future, nil
}

// GetTask returns a snapshot of an archive task by ID
func (s *Service) GetTask(taskID string) (*model.ArchiveTask, bool) {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	task, exists := s.tasks[taskID]
	if !exists {
		return nil, false
	}
	snapshot := *task
	return &snapshot, true
}

// GetAllTasks returns snapshots of all known tasks ordered by id
func (s *Service) GetAllTasks() []*model.ArchiveTask {
	s.tasksMutex.RLock()
	defer s.tasksMutex.RUnlock()
	tasks := make([]*model.ArchiveTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		snapshot := *task
		tasks = append(tasks, &snapshot)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}

// Close stops accepting jobs and waits until the queued ones have finished
func (s *Service) Close() {
	s.tasksMutex.Lock()
	s.closed = true
	s.tasksMutex.Unlock()
	s.signal()
	<-s.stopped
}

func (s *Service) loop() {
	defer close(s.stopped)
	for {
		job, ok := s.next()
		if !ok {
			return
		}
		s.execute(job)
	}
}

// next pops the oldest pending job, blocking until one arrives or the service
// is closed with an empty queue
func (s *Service) next() (*queuedJob, bool) {
	for {
		s.tasksMutex.Lock()
		if len(s.pending) > 0 {
			job := s.pending[0]
			s.pending = s.pending[1:]
			s.tasksMutex.Unlock()
			return job, true
		}
		if s.closed {
			s.tasksMutex.Unlock()
			return nil, false
		}
		s.tasksMutex.Unlock()
		<-s.wake
	}
}

func (s *Service) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// execute performs the actual archive work for one job
func (s *Service) execute(q *queuedJob) {
	task := q.task

	s.tasksMutex.Lock()
	task.Status = model.TaskStatusRunning
	task.StartedAt = time.Now()
	s.tasksMutex.Unlock()
	s.notify(q, task)

	worker := NewWorker(Hooks{
		OnProgress: func(index, total int, message string) {
			s.tasksMutex.Lock()
			task.Message = message
			if total > 0 {
				task.Progress = float64(index) / float64(total)
				task.Percent = int(task.Progress * 100)
			}
			s.tasksMutex.Unlock()
			s.notify(q, task)
		},
		OnError: func(err *model.JobError) {
			s.tasksMutex.Lock()
			task.LastError = err.Message()
			snapshot := *task
			s.tasksMutex.Unlock()
			if q.cfg.onError != nil {
				q.cfg.onError(&snapshot, err)
			}
		},
	})

	result := s.runSafely(worker, task)
	result.TaskID = task.ID

	s.tasksMutex.Lock()
	if result.OK() {
		task.Status = model.TaskStatusCompleted
		task.Progress = 1.0
		task.Percent = 100
	} else {
		task.Status = model.TaskStatusError
	}
	task.FinishedAt = time.Now()
	s.tasksMutex.Unlock()

	log.Printf("Archive task %s finished: %s (%s)", task.ID, result.Summary(), task.Elapsed().Round(time.Millisecond))
	s.notify(q, task)
	q.future.resolve(result)
}

// runSafely converts a panic inside the worker into a job error so one bad
// file never takes the host down
func (s *Service) runSafely(worker *Worker, task *model.ArchiveTask) (result model.JobResult) {
	defer func() {
		if r := recover(); r != nil {
			result.Err = worker.fail(model.ErrorWriteFailure, task.Job.Path, fmt.Errorf("worker panic: %v", r))
		}
	}()
	return worker.Run(task.Job)
}

func (s *Service) notify(q *queuedJob, task *model.ArchiveTask) {
	s.tasksMutex.RLock()
	snapshot := *task
	s.tasksMutex.RUnlock()
	if q.cfg.onProgress != nil {
		q.cfg.onProgress(&snapshot)
	}
	s.notifyUpdate(&snapshot)
}

// notifyUpdate calls the update callback if set
func (s *Service) notifyUpdate(task *model.ArchiveTask) {
	s.tasksMutex.RLock()
	callback := s.onUpdate
	snapshot := *task
	s.tasksMutex.RUnlock()
	if callback != nil {
		callback(&snapshot)
	}
}

// generateTaskID generates a unique task ID using UUID v7 for better uniqueness and time ordering
func generateTaskID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(TaskIDPrefix+"%d", time.Now().UnixNano())
	}
	return TaskIDPrefix + id.String()
}
