package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HillyAttic/opsboard/core"
	"github.com/HillyAttic/opsboard/core/ledger"
	inmemdb "github.com/HillyAttic/opsboard/storage/database/inmem"
)

func newSvc(t *testing.T) *ledger.Service {
	t.Helper()
	return ledger.NewService(inmemdb.NewCompletionRepository(inmemdb.NewDB()))
}

func TestSetCompletion(t *testing.T) {
	svc := newSvc(t)

	rec, err := svc.SetCompletion("task1", "client1", "2026-Q1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "task1", rec.TaskID)
	assert.Equal(t, "client1", rec.EntityID)
	assert.Equal(t, "2026-Q1", rec.PeriodKey)
	assert.Equal(t, "alice", rec.CompletedBy)
	assert.False(t, rec.CompletedAt.IsZero())

	byKey, err := svc.CompletionsForTask("task1")
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	got, ok := byKey[ledger.Key{EntityID: "client1", PeriodKey: "2026-Q1"}]
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestSetCompletionIdempotent(t *testing.T) {
	svc := newSvc(t)

	first, err := svc.SetCompletion("task1", "client1", "2026-Q1", "alice")
	require.NoError(t, err)

	// last writer wins; no duplicate record
	second, err := svc.SetCompletion("task1", "client1", "2026-Q1", "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", second.CompletedBy)
	assert.False(t, second.CompletedAt.Before(first.CompletedAt))

	byKey, err := svc.CompletionsForTask("task1")
	require.NoError(t, err)
	require.Len(t, byKey, 1)
	assert.Equal(t, "bob", byKey[ledger.Key{EntityID: "client1", PeriodKey: "2026-Q1"}].CompletedBy)
}

func TestClearCompletion(t *testing.T) {
	svc := newSvc(t)

	_, err := svc.SetCompletion("task1", "client1", "2026-Q1", "alice")
	require.NoError(t, err)

	require.NoError(t, svc.ClearCompletion("task1", "client1", "2026-Q1"))

	byKey, err := svc.CompletionsForTask("task1")
	require.NoError(t, err)
	assert.Empty(t, byKey)

	// clearing an absent key is a no-op
	require.NoError(t, svc.ClearCompletion("task1", "client1", "2026-Q1"))
	require.NoError(t, svc.ClearCompletion("nope", "client1", "2026-Q1"))
}

func TestCompletionsForTaskScoping(t *testing.T) {
	svc := newSvc(t)

	_, err := svc.SetCompletion("task1", "client1", "2026-01", "alice")
	require.NoError(t, err)
	_, err = svc.SetCompletion("task1", "client2", "2026-01", "alice")
	require.NoError(t, err)
	_, err = svc.SetCompletion("task2", "client1", "2026-01", "alice")
	require.NoError(t, err)

	byKey, err := svc.CompletionsForTask("task1")
	require.NoError(t, err)
	assert.Len(t, byKey, 2)

	byKey, err = svc.CompletionsForTask("task2")
	require.NoError(t, err)
	assert.Len(t, byKey, 1)
}

func TestMissingKeyValidation(t *testing.T) {
	svc := newSvc(t)

	tests := []struct {
		name                         string
		taskID, entityID, periodKey  string
		wantFields                   []string
	}{
		{"all missing", "", "", "", []string{"task_id", "entity_id", "period_key"}},
		{"missing task", "", "client1", "2026-01", []string{"task_id"}},
		{"missing entity", "task1", "", "2026-01", []string{"entity_id"}},
		{"missing period", "task1", "client1", "", []string{"period_key"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SetCompletion(tt.taskID, tt.entityID, tt.periodKey, "alice")
			var vErr *core.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Len(t, vErr.Fields, len(tt.wantFields))
			for i, fld := range tt.wantFields {
				assert.Equal(t, fld, vErr.Fields[i].Field)
			}

			err = svc.ClearCompletion(tt.taskID, tt.entityID, tt.periodKey)
			require.ErrorAs(t, err, &vErr)
		})
	}

	_, err := svc.CompletionsForTask("")
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
}
