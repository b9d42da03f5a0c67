package ledger

import "time"

// Key identifies one occurrence of one task for one tracked entity.
// TaskID is carried separately since reads are batched per task.
type Key struct {
	EntityID  string `json:"entity_id"`
	PeriodKey string `json:"period_key"`
}

// CompletionRecord is the persisted fact that a specific occurrence was
// completed for a specific tracked entity. Records are only ever written by
// explicit user action; the scheduler reads them and never writes.
type CompletionRecord struct {
	TaskID      string    `json:"task_id"`
	EntityID    string    `json:"entity_id"`
	PeriodKey   string    `json:"period_key"`
	CompletedAt time.Time `json:"completed_at"` // UTC
	CompletedBy string    `json:"completed_by"`
}

func (rec CompletionRecord) Key() Key {
	return Key{EntityID: rec.EntityID, PeriodKey: rec.PeriodKey}
}
