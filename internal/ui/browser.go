package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ytget/scene-archiver/internal/archive"
	"github.com/ytget/scene-archiver/internal/host"
	"github.com/ytget/scene-archiver/internal/plugin"
)

// discoverTasks lists the department/task folders under the project's
// Scenefiles directory, sorted by department then task
func discoverTasks(projectDir string) ([]host.TaskContext, error) {
	root := filepath.Join(projectDir, plugin.ScenefilesDir)
	departments, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var tasks []host.TaskContext
	for _, dep := range departments {
		if !dep.IsDir() {
			continue
		}
		entries, err := os.ReadDir(filepath.Join(root, dep.Name()))
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			tasks = append(tasks, host.TaskContext{
				ProjectPath: projectDir,
				Department:  dep.Name(),
				Task:        entry.Name(),
			})
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Department != tasks[j].Department {
			return tasks[i].Department < tasks[j].Department
		}
		return tasks[i].Task < tasks[j].Task
	})
	return tasks, nil
}

func taskLabel(ctx host.TaskContext) string {
	return fmt.Sprintf(TaskLabelFormat, ctx.Department, ctx.Task)
}

func fileIcon(path string) string {
	if archive.IsArchive(path) {
		return IconArchive
	}
	return IconFile
}
