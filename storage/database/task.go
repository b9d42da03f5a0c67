package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/schedule"
	"github.com/HillyAttic/opsboard/core/task"
)

type taskRow struct {
	ID         string         `db:"id"`
	Title      string         `db:"title"`
	Notes      string         `db:"notes"`
	AssigneeID string         `db:"assignee_id"`
	ClientIDs  pq.StringArray `db:"client_ids"`
	StartDate  time.Time      `db:"start_date"`
	EndDate    sql.NullTime   `db:"end_date"`
	Pattern    string         `db:"pattern"`
	Paused     bool           `db:"paused"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func (row taskRow) toTask() task.Task {
	def := schedule.Recurrence{
		StartDate: schedule.NormalizeDate(row.StartDate),
		Pattern:   schedule.Pattern(row.Pattern),
		Paused:    row.Paused,
	}
	if row.EndDate.Valid {
		def.EndDate = schedule.NormalizeDate(row.EndDate.Time)
	}
	return task.Task{
		ID:         row.ID,
		Title:      row.Title,
		Notes:      row.Notes,
		AssigneeID: row.AssigneeID,
		ClientIDs:  row.ClientIDs,
		Recurrence: def,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func toTasks(rows []taskRow) []task.Task {
	tsks := make([]task.Task, len(rows))
	for i, row := range rows {
		tsks[i] = row.toTask()
	}
	return tsks
}

func nullDate(d time.Time) sql.NullTime {
	return sql.NullTime{Time: d, Valid: !d.IsZero()}
}

type TaskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*TaskRepository)(nil)

func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (repo *TaskRepository) CreateTask(tsk task.Task) (task.Task, error) {
	q := `
INSERT INTO task (id, title, notes, assignee_id, client_ids, start_date, end_date, pattern, paused, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.Exec(q,
		tsk.ID, tsk.Title, tsk.Notes, tsk.AssigneeID, pq.Array(tsk.ClientIDs),
		tsk.Recurrence.StartDate, nullDate(tsk.Recurrence.EndDate),
		string(tsk.Recurrence.Pattern), tsk.Recurrence.Paused,
		tsk.CreatedAt, tsk.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "creating task")
	}
	return tsk, nil
}

func (repo *TaskRepository) QueryAllTasks() ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.Select(&rows, `SELECT * FROM task ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	return toTasks(rows), nil
}

func (repo *TaskRepository) GetTaskByID(id string) (task.Task, error) {
	var row taskRow
	if err := repo.db.Get(&row, `SELECT * FROM task WHERE id = $1`, id); err != nil {
		return task.Task{}, trapNoRowsErr(err, task.ErrNotFound, "getting task")
	}
	return row.toTask(), nil
}

func (repo *TaskRepository) FilterTasks(filter task.QueryFilter) ([]task.Task, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(title ILIKE "+p+" OR notes ILIKE "+p+")")
	}
	if filter.AssigneeID != "" {
		where = append(where, "assignee_id = "+arg(filter.AssigneeID))
	}
	if filter.Pattern != "" {
		where = append(where, "pattern = "+arg(string(filter.Pattern)))
	}
	if filter.Paused != nil {
		where = append(where, "paused = "+arg(*filter.Paused))
	}

	q := "SELECT * FROM task"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []taskRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering tasks")
	}
	return toTasks(rows), nil
}

// UpdateTask persists the full task state. The service always passes a
// complete task so the pattern column is written but never changes value.
func (repo *TaskRepository) UpdateTask(tsk task.Task) (task.Task, error) {
	q := `
UPDATE task
SET title = $2, notes = $3, assignee_id = $4, client_ids = $5,
    start_date = $6, end_date = $7, pattern = $8, paused = $9, updated_at = $10
WHERE id = $1`
	res, err := repo.db.Exec(q,
		tsk.ID, tsk.Title, tsk.Notes, tsk.AssigneeID, pq.Array(tsk.ClientIDs),
		tsk.Recurrence.StartDate, nullDate(tsk.Recurrence.EndDate),
		string(tsk.Recurrence.Pattern), tsk.Recurrence.Paused, tsk.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetTaskByID(tsk.ID)
}

func (repo *TaskRepository) DeleteTasksByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM task WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting tasks")
	}
	// completions for a deleted task are orphaned otherwise
	if _, err := repo.db.Exec(`DELETE FROM completion WHERE task_id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting task completions")
	}
	return nil
}
