package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/HillyAttic/opsboard/core/ledger"
	"github.com/HillyAttic/opsboard/core/schedule"
)

// overdueLookbackMonths bounds how far back the digest scans for
// never-completed occurrences.
const overdueLookbackMonths = 12

// OverdueItem is one pending (past due, not completed) occurrence for one
// client.
type OverdueItem struct {
	TaskID     string    `json:"task_id"`
	TaskTitle  string    `json:"task_title"`
	ClientID   string    `json:"client_id"`
	ClientName string    `json:"client_name"`
	PeriodKey  string    `json:"period_key"`
	Date       time.Time `json:"date"`
}

// OverdueSummary collects every pending occurrence across all tasks as of the
// given date. Tasks whose ledger read fails are skipped with a warning; a
// partial digest beats none.
func (svc *Service) OverdueSummary(asOf time.Time) ([]OverdueItem, error) {
	tasks, err := svc.taskSvc.QueryAll()
	if err != nil {
		return nil, err
	}

	asOf = schedule.NormalizeDate(asOf)
	windowStart := asOf.AddDate(0, -overdueLookbackMonths, 0)

	items := make([]OverdueItem, 0)
	for _, tsk := range tasks {
		occs, err := schedule.Expand(tsk.Recurrence, windowStart, asOf)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("overdue summary: skipping task %s: %v", tsk.ID, err), err)
			continue
		}
		if len(occs) == 0 {
			continue
		}

		completions, err := svc.ledgerSvc.CompletionsForTask(tsk.ID)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("overdue summary: ledger read failed for task %s: %v", tsk.ID, err), err)
			continue
		}
		clients, err := svc.clientsForTask(tsk)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("overdue summary: client lookup failed for task %s: %v", tsk.ID, err), err)
			continue
		}

		for _, clt := range clients {
			for _, occ := range occs {
				_, done := completions[ledger.Key{EntityID: clt.ID, PeriodKey: occ.PeriodKey}]
				if schedule.Classify(occ, done, asOf) == schedule.StatusPending {
					items = append(items, OverdueItem{
						TaskID:     tsk.ID,
						TaskTitle:  tsk.Title,
						ClientID:   clt.ID,
						ClientName: clt.Name,
						PeriodKey:  occ.PeriodKey,
						Date:       occ.Date,
					})
				}
			}
		}
	}
	return items, nil
}

// OverdueCSV renders the digest attachment.
func OverdueCSV(items []OverdueItem) (*bytes.Buffer, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)

	records := [][]string{{"task", "client", "period", "due_date"}}
	for _, item := range items {
		records = append(records, []string{
			item.TaskTitle, item.ClientName, item.PeriodKey, item.Date.Format("2006-01-02"),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return nil, err
	}
	return buf, nil
}
