package task

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("task not found")
)

type (
	Repository interface {
		CreateTask(tsk Task) (Task, error)
		QueryAllTasks() ([]Task, error)
		GetTaskByID(id string) (Task, error)
		// FilterTasks applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on Task.Title or Task.Notes.
		FilterTasks(filter QueryFilter) ([]Task, error)
		UpdateTask(tsk Task) (Task, error)
		DeleteTasksByID(ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(nt NewTask) (Task, error) {
	now := time.Now().UTC()
	tsk := Task{
		ID:         uuid.NewString(),
		Title:      nt.Title,
		Notes:      nt.Notes,
		AssigneeID: nt.AssigneeID,
		ClientIDs:  nt.ClientIDs,
		Recurrence: nt.Recurrence().Normalized(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateTask(tsk)
}

func (svc *Service) QueryAll() ([]Task, error) {
	return svc.repo.QueryAllTasks()
}

func (svc *Service) GetByID(id string) (Task, error) {
	return svc.repo.GetTaskByID(id)
}

func (svc *Service) Filter(filter QueryFilter) ([]Task, error) {
	return svc.repo.FilterTasks(filter)
}

func (svc *Service) Update(id string, ut UpdateTask) (Task, error) {
	tsk := Task{
		ID:         id,
		Title:      ut.Title,
		Notes:      ut.Notes,
		AssigneeID: ut.AssigneeID,
		ClientIDs:  ut.ClientIDs,
		Recurrence: ut.Recurrence().Normalized(),
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpdateTask(tsk)
}

// Pause suspends occurrence generation for the task. A paused task expands
// to zero occurrences until resumed.
func (svc *Service) Pause(id string) (Task, error) {
	return svc.setPaused(id, true)
}

// Resume re-enables occurrence generation for the task.
func (svc *Service) Resume(id string) (Task, error) {
	return svc.setPaused(id, false)
}

func (svc *Service) setPaused(id string, paused bool) (Task, error) {
	tsk, err := svc.repo.GetTaskByID(id)
	if err != nil {
		return Task{}, err
	}
	if tsk.Recurrence.Paused == paused {
		return tsk, nil
	}
	tsk.Recurrence.Paused = paused
	tsk.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTask(tsk)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteTasksByID(ids...)
}
