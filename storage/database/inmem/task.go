package inmemdb

import (
	"sort"
	"strings"

	"github.com/HillyAttic/opsboard/core/task"
)

type taskRepository struct {
	db *taskTable
}

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks
}

func (repo *taskRepository) CreateTask(tsk task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) QueryAllTasks() ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *taskRepository) GetTaskByID(id string) (task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tsk, ok := repo.db.table[id]; ok {
		return *tsk, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) FilterTasks(filter task.QueryFilter) ([]task.Task, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(tsk task.Task) bool {
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(tsk.Title), s) &&
				!strings.Contains(strings.ToLower(tsk.Notes), s) {
				return false
			}
		}
		if filter.AssigneeID != "" && tsk.AssigneeID != filter.AssigneeID {
			return false
		}
		if filter.Pattern != "" && tsk.Recurrence.Pattern != filter.Pattern {
			return false
		}
		if filter.Paused != nil && tsk.Recurrence.Paused != *filter.Paused {
			return false
		}
		return true
	}

	tasks := make([]task.Task, 0)
	for _, tsk := range repo.query() {
		if match(tsk) {
			tasks = append(tasks, tsk)
		}
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(tsk task.Task) (task.Task, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origTsk, ok := repo.db.table[tsk.ID]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	tsk.CreatedAt = origTsk.CreatedAt
	repo.db.table[tsk.ID] = &tsk
	return tsk, nil
}

func (repo *taskRepository) DeleteTasksByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
