package inmemdb

import (
	"sort"

	"github.com/HillyAttic/opsboard/core/ledger"
)

type completionRepository struct {
	db *completionTable
}

func NewCompletionRepository(db *DB) ledger.Repository {
	return &completionRepository{db: db.completion}
}

func (repo *completionRepository) QueryCompletionsByTask(taskID string) ([]ledger.CompletionRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]ledger.CompletionRecord, 0)
	for key, rec := range repo.db.table {
		if key.taskID == taskID {
			recs = append(recs, *rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].EntityID != recs[j].EntityID {
			return recs[i].EntityID < recs[j].EntityID
		}
		return recs[i].PeriodKey < recs[j].PeriodKey
	})
	return recs, nil
}

func (repo *completionRepository) UpsertCompletion(rec ledger.CompletionRecord) (ledger.CompletionRecord, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := completionKey{taskID: rec.TaskID, entityID: rec.EntityID, periodKey: rec.PeriodKey}
	repo.db.table[key] = &rec
	return rec, nil
}

func (repo *completionRepository) DeleteCompletion(taskID, entityID, periodKey string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.table, completionKey{taskID: taskID, entityID: entityID, periodKey: periodKey})
	return nil
}
