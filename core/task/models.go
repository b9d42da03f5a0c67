package task

import (
	"time"

	"github.com/HillyAttic/opsboard/core"
	"github.com/HillyAttic/opsboard/core/schedule"
)

// Task is a recurring piece of work tracked per client per period.
type Task struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Notes      string `json:"notes,omitempty"`
	AssigneeID string `json:"assignee_id,omitempty"`
	// ClientIDs scopes the task to specific clients; empty means
	// "all active clients".
	ClientIDs  []string            `json:"client_ids,omitempty"`
	Recurrence schedule.Recurrence `json:"recurrence"`
	CreatedAt  time.Time           `json:"created_at"` // UTC
	UpdatedAt  time.Time           `json:"updated_at"` // UTC
}

// NewTask contains information needed to create a new Task. Dates come in as
// strings and are normalized to the canonical date-only representation here,
// at the boundary, so the scheduler never sees mixed representations.
type NewTask struct {
	Title      string            `json:"title" validate:"required"`
	Notes      string            `json:"notes"`
	AssigneeID string            `json:"assignee_id"`
	ClientIDs  []string          `json:"client_ids"`
	StartDate  string            `json:"start_date" validate:"required"`
	EndDate    string            `json:"end_date"`
	Pattern    schedule.Pattern  `json:"pattern" validate:"required,pattern"`
	Paused     bool              `json:"paused"`

	recurrence schedule.Recurrence
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.Notes = core.CleanString(nt.Notes)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}

	start, err := schedule.ParseDate(nt.StartDate)
	if err != nil {
		return core.NewValidationError(schedule.ErrInvalidDefinition,
			core.FieldError{Field: "start_date", Error: "invalid date; expected YYYY-MM-DD"})
	}
	var end time.Time
	if nt.EndDate != "" {
		if end, err = schedule.ParseDate(nt.EndDate); err != nil {
			return core.NewValidationError(schedule.ErrInvalidDefinition,
				core.FieldError{Field: "end_date", Error: "invalid date; expected YYYY-MM-DD"})
		}
	}

	nt.recurrence = schedule.Recurrence{
		StartDate: start,
		EndDate:   end,
		Pattern:   nt.Pattern,
		Paused:    nt.Paused,
	}
	return nil
}

// Recurrence returns the normalized definition; only valid after Validate.
func (nt *NewTask) Recurrence() schedule.Recurrence {
	return nt.recurrence
}

// UpdateTask defines what information may be provided to modify an existing
// Task. The pattern is immutable: changing the cadence conceptually starts a
// new recurrence series, so it is created as a new task instead.
type UpdateTask struct {
	Title      string   `json:"title"`
	Notes      string   `json:"notes"`
	AssigneeID string   `json:"assignee_id"`
	ClientIDs  []string `json:"client_ids"`
	StartDate  string   `json:"start_date"`
	EndDate    string   `json:"end_date"`

	recurrence schedule.Recurrence
}

func (ut *UpdateTask) Validate(origTask Task) error {
	title := core.CleanString(ut.Title)
	if title != "" {
		ut.Title = title
	} else {
		ut.Title = origTask.Title
	}
	ut.Notes = core.CleanString(ut.Notes)
	if ut.Notes == "" {
		ut.Notes = origTask.Notes
	}
	if ut.AssigneeID == "" {
		ut.AssigneeID = origTask.AssigneeID
	}
	if ut.ClientIDs == nil {
		ut.ClientIDs = origTask.ClientIDs
	}

	if err := core.Validate.Struct(ut); err != nil {
		return err
	}

	ut.recurrence = origTask.Recurrence
	if ut.StartDate != "" {
		start, err := schedule.ParseDate(ut.StartDate)
		if err != nil {
			return core.NewValidationError(schedule.ErrInvalidDefinition,
				core.FieldError{Field: "start_date", Error: "invalid date; expected YYYY-MM-DD"})
		}
		ut.recurrence.StartDate = start
	}
	if ut.EndDate != "" {
		end, err := schedule.ParseDate(ut.EndDate)
		if err != nil {
			return core.NewValidationError(schedule.ErrInvalidDefinition,
				core.FieldError{Field: "end_date", Error: "invalid date; expected YYYY-MM-DD"})
		}
		ut.recurrence.EndDate = end
	}
	return nil
}

// Recurrence returns the updated definition; only valid after Validate.
func (ut *UpdateTask) Recurrence() schedule.Recurrence {
	return ut.recurrence
}

type QueryFilter struct {
	Search     string           `query:"search"`
	AssigneeID string           `query:"assignee_id"`
	Pattern    schedule.Pattern `query:"pattern"`
	Paused     *bool            `query:"paused"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.AssigneeID == "" && qf.Pattern == "" && qf.Paused == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
