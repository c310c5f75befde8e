package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ytget/scene-archiver/internal/model"
)

func waitResult(t *testing.T, f *Future) model.JobResult {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := f.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	return result
}

func TestNewService(t *testing.T) {
	service := NewService()
	defer service.Close()

	if len(service.GetAllTasks()) != 0 {
		t.Errorf("Expected no tasks, got %d", len(service.GetAllTasks()))
	}
}

func TestSubmit_CompletesJob(t *testing.T) {
	dir := t.TempDir()
	source := writeScene(t, dir, "shot_v0001.ma", sceneData)

	service := NewService()
	defer service.Close()

	future, err := service.Submit(model.ArchiveJob{Path: source, Settings: model.DefaultSettings()})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(future.TaskID(), TaskIDPrefix) {
		t.Errorf("Expected task id prefix %q, got %s", TaskIDPrefix, future.TaskID())
	}

	result := waitResult(t, future)
	if !result.OK() {
		t.Fatalf("Expected job to succeed, got %v", result.Errors())
	}
	if result.TaskID != future.TaskID() {
		t.Errorf("Expected result task id %s, got %s", future.TaskID(), result.TaskID)
	}

	task, exists := service.GetTask(future.TaskID())
	if !exists {
		t.Fatal("Expected task to exist")
	}
	if task.Status != model.TaskStatusCompleted {
		t.Errorf("Expected status Completed, got %s", task.Status)
	}
	if task.Percent != 100 {
		t.Errorf("Expected 100 percent, got %d", task.Percent)
	}

	if _, err := os.Stat(filepath.Join(dir, "shot_v0001.zip")); err != nil {
		t.Errorf("Expected archive to exist: %v", err)
	}
}

func TestSubmit_InvalidJobReportsOnce(t *testing.T) {
	service := NewService()
	defer service.Close()

	var mu sync.Mutex
	var reported []*model.JobError
	future, err := service.Submit(model.ArchiveJob{Settings: model.DefaultSettings()},
		WithErrorHandler(func(task *model.ArchiveTask, err *model.JobError) {
			mu.Lock()
			reported = append(reported, err)
			mu.Unlock()
		}))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	result := waitResult(t, future)
	if result.Err == nil || !errors.Is(result.Err, model.ErrInvalidJob) {
		t.Fatalf("Expected ErrInvalidJob, got %v", result.Err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 {
		t.Errorf("Expected exactly one reported error, got %d", len(reported))
	}

	task, _ := service.GetTask(future.TaskID())
	if task.Status != model.TaskStatusError {
		t.Errorf("Expected status Error, got %s", task.Status)
	}
	if task.LastError == "" {
		t.Error("Expected LastError to be recorded")
	}
}

func TestSubmit_RunsJobsInOrder(t *testing.T) {
	dir := t.TempDir()
	service := NewService()
	defer service.Close()

	var mu sync.Mutex
	running := 0
	overlap := false
	var order []string

	track := func(name string) SubmitOption {
		return WithProgress(func(task *model.ArchiveTask) {
			mu.Lock()
			defer mu.Unlock()
			switch task.Status {
			case model.TaskStatusRunning:
				if task.Message == "" {
					running++
					if running > 1 {
						overlap = true
					}
					order = append(order, name)
				}
			case model.TaskStatusCompleted, model.TaskStatusError:
				running--
			}
		})
	}

	var futures []*Future
	for _, name := range []string{"shot_v0001.ma", "shot_v0002.ma", "shot_v0003.ma"} {
		source := writeScene(t, dir, name, sceneData)
		f, err := service.Submit(model.ArchiveJob{Path: source, Settings: model.DefaultSettings()}, track(name))
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		futures = append(futures, f)
	}

	for _, f := range futures {
		if result := waitResult(t, f); !result.OK() {
			t.Errorf("Job %s failed: %v", f.TaskID(), result.Errors())
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("Jobs must not overlap")
	}
	expected := []string{"shot_v0001.ma", "shot_v0002.ma", "shot_v0003.ma"}
	if len(order) != len(expected) {
		t.Fatalf("Expected %d started jobs, got %v", len(expected), order)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Errorf("Expected job %d to be %s, got %s", i, expected[i], order[i])
		}
	}
}

func TestSubmit_AfterClose(t *testing.T) {
	service := NewService()
	service.Close()

	_, err := service.Submit(model.ArchiveJob{Path: "/tmp/x.ma", Settings: model.DefaultSettings()})
	if !errors.Is(err, ErrServiceClosed) {
		t.Errorf("Expected ErrServiceClosed, got %v", err)
	}
}

func TestClose_DrainsQueue(t *testing.T) {
	dir := t.TempDir()
	service := NewService()

	var futures []*Future
	for _, name := range []string{"a.ma", "b.ma"} {
		source := writeScene(t, dir, name, sceneData)
		f, err := service.Submit(model.ArchiveJob{Path: source, Settings: model.DefaultSettings()})
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
		futures = append(futures, f)
	}

	service.Close()

	for _, f := range futures {
		if _, done := f.Result(); !done {
			t.Errorf("Expected job %s to finish before Close returned", f.TaskID())
		}
	}
}

func TestSetUpdateCallback(t *testing.T) {
	dir := t.TempDir()
	source := writeScene(t, dir, "shot_v0001.ma", sceneData)

	service := NewService()
	defer service.Close()

	var mu sync.Mutex
	statuses := map[model.TaskStatus]bool{}
	service.SetUpdateCallback(func(task *model.ArchiveTask) {
		mu.Lock()
		statuses[task.Status] = true
		mu.Unlock()
	})

	future, err := service.Submit(model.ArchiveJob{Path: source, Settings: model.DefaultSettings()})
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	waitResult(t, future)

	mu.Lock()
	defer mu.Unlock()
	for _, status := range []model.TaskStatus{model.TaskStatusPending, model.TaskStatusRunning, model.TaskStatusCompleted} {
		if !statuses[status] {
			t.Errorf("Expected an update with status %s", status)
		}
	}
}

func TestFuture_WaitHonoursContext(t *testing.T) {
	f := newFuture("archive-test")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := f.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if result.TaskID != "archive-test" {
		t.Errorf("Expected task id in result, got %q", result.TaskID)
	}
	if _, done := f.Result(); done {
		t.Error("Future must not be resolved")
	}
}

func TestGenerateTaskID(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateTaskID()
		if ids[id] {
			t.Errorf("Duplicate task id %s", id)
		}
		ids[id] = true
	}
}
