package database

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/ledger"
)

type completionRow struct {
	TaskID      string    `db:"task_id"`
	EntityID    string    `db:"entity_id"`
	PeriodKey   string    `db:"period_key"`
	CompletedAt time.Time `db:"completed_at"`
	CompletedBy string    `db:"completed_by"`
}

func (row completionRow) toRecord() ledger.CompletionRecord {
	return ledger.CompletionRecord{
		TaskID:      row.TaskID,
		EntityID:    row.EntityID,
		PeriodKey:   row.PeriodKey,
		CompletedAt: row.CompletedAt.UTC(),
		CompletedBy: row.CompletedBy,
	}
}

type CompletionRepository struct {
	db *sqlx.DB
}

var _ ledger.Repository = (*CompletionRepository)(nil)

func NewCompletionRepository(db *sqlx.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

func (repo *CompletionRepository) QueryCompletionsByTask(taskID string) ([]ledger.CompletionRecord, error) {
	var rows []completionRow
	q := `SELECT * FROM completion WHERE task_id = $1`
	if err := repo.db.Select(&rows, q, taskID); err != nil {
		return nil, errors.Wrap(err, "querying completions")
	}
	recs := make([]ledger.CompletionRecord, len(rows))
	for i, row := range rows {
		recs[i] = row.toRecord()
	}
	return recs, nil
}

// UpsertCompletion is last-writer-wins: re-checking an already-checked box
// overwrites the timestamp and author.
func (repo *CompletionRepository) UpsertCompletion(rec ledger.CompletionRecord) (ledger.CompletionRecord, error) {
	q := `
INSERT INTO completion (task_id, entity_id, period_key, completed_at, completed_by)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (task_id, entity_id, period_key)
DO UPDATE SET completed_at = EXCLUDED.completed_at, completed_by = EXCLUDED.completed_by`
	_, err := repo.db.Exec(q, rec.TaskID, rec.EntityID, rec.PeriodKey, rec.CompletedAt, rec.CompletedBy)
	if err != nil {
		return ledger.CompletionRecord{}, errors.Wrap(err, "upserting completion")
	}
	return rec, nil
}

func (repo *CompletionRepository) DeleteCompletion(taskID, entityID, periodKey string) error {
	q := `DELETE FROM completion WHERE task_id = $1 AND entity_id = $2 AND period_key = $3`
	if _, err := repo.db.Exec(q, taskID, entityID, periodKey); err != nil {
		return errors.Wrap(err, "deleting completion")
	}
	return nil
}
