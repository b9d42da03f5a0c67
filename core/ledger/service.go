package ledger

import (
	"errors"
	"time"

	"github.com/HillyAttic/opsboard/core"
)

var (
	// errors
	ErrMissingKey = errors.New("task, entity and period are all required")
)

type (
	Repository interface {
		// QueryCompletionsByTask returns every completion record for the task,
		// in one read.
		QueryCompletionsByTask(taskID string) ([]CompletionRecord, error)
		// UpsertCompletion inserts or overwrites the record for its key.
		// Last writer wins; there are no mergeable fields.
		UpsertCompletion(rec CompletionRecord) (CompletionRecord, error)
		// DeleteCompletion removes the record for the key. Deleting an absent
		// key is not an error.
		DeleteCompletion(taskID, entityID, periodKey string) error
	}

	Service struct {
		repo    Repository
		nowFunc func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFunc: time.Now}
}

// CompletionsForTask batch-reads all completion records for a task, keyed by
// (entity, period). Callers annotate many occurrences from this single read
// rather than one lookup per grid cell.
func (svc *Service) CompletionsForTask(taskID string) (map[Key]CompletionRecord, error) {
	if taskID == "" {
		return nil, core.NewValidationError(ErrMissingKey, core.FieldError{Field: "task_id", Error: "this field is required"})
	}
	recs, err := svc.repo.QueryCompletionsByTask(taskID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[Key]CompletionRecord, len(recs))
	for _, rec := range recs {
		byKey[rec.Key()] = rec
	}
	return byKey, nil
}

// SetCompletion marks an occurrence completed. Setting an already-completed
// key updates CompletedAt/CompletedBy instead of erroring or duplicating.
func (svc *Service) SetCompletion(taskID, entityID, periodKey, completedBy string) (CompletionRecord, error) {
	if err := checkKey(taskID, entityID, periodKey); err != nil {
		return CompletionRecord{}, err
	}
	rec := CompletionRecord{
		TaskID:      taskID,
		EntityID:    entityID,
		PeriodKey:   periodKey,
		CompletedAt: svc.nowFunc().UTC(),
		CompletedBy: completedBy,
	}
	return svc.repo.UpsertCompletion(rec)
}

// ClearCompletion removes the record for the key. Unchecking a box that was
// never checked is not an error condition.
func (svc *Service) ClearCompletion(taskID, entityID, periodKey string) error {
	if err := checkKey(taskID, entityID, periodKey); err != nil {
		return err
	}
	return svc.repo.DeleteCompletion(taskID, entityID, periodKey)
}

func checkKey(taskID, entityID, periodKey string) error {
	var flds []core.FieldError
	if taskID == "" {
		flds = append(flds, core.FieldError{Field: "task_id", Error: "this field is required"})
	}
	if entityID == "" {
		flds = append(flds, core.FieldError{Field: "entity_id", Error: "this field is required"})
	}
	if periodKey == "" {
		flds = append(flds, core.FieldError{Field: "period_key", Error: "this field is required"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(ErrMissingKey, flds...)
	}
	return nil
}
