package report

import (
	"fmt"
	"time"

	"github.com/HillyAttic/opsboard/core"
	"github.com/HillyAttic/opsboard/core/client"
	"github.com/HillyAttic/opsboard/core/ledger"
	"github.com/HillyAttic/opsboard/core/schedule"
	"github.com/HillyAttic/opsboard/core/task"
)

type (
	Service struct {
		taskSvc   *task.Service
		clientSvc *client.Service
		ledgerSvc *ledger.Service
		logger    core.Logger
		nowFunc   func() time.Time // mockable
	}

	// Period is one column of the completion grid.
	Period struct {
		Key  string    `json:"key"`
		Date time.Time `json:"date"`
	}

	// Cell is one (client, period) intersection.
	Cell struct {
		PeriodKey   string          `json:"period_key"`
		Date        time.Time       `json:"date"`
		Status      schedule.Status `json:"status"`
		CompletedAt *time.Time      `json:"completed_at,omitempty"`
		CompletedBy string          `json:"completed_by,omitempty"`
	}

	Row struct {
		ClientID   string `json:"client_id"`
		ClientName string `json:"client_name"`
		Cells      []Cell `json:"cells"`
	}

	// Grid is the client × period completion matrix for one task.
	Grid struct {
		TaskID    string   `json:"task_id"`
		TaskTitle string   `json:"task_title"`
		Pattern   string   `json:"pattern"`
		Badge     string   `json:"badge"`
		Periods   []Period `json:"periods"`
		Rows      []Row    `json:"rows"`
		// LedgerDegraded is set when the completion store could not be read;
		// occurrences are still rendered, with status "unknown".
		LedgerDegraded bool `json:"ledger_degraded,omitempty"`
	}
)

func NewService(taskSvc *task.Service, clientSvc *client.Service, ledgerSvc *ledger.Service, logger core.Logger) *Service {
	return &Service{
		taskSvc:   taskSvc,
		clientSvc: clientSvc,
		ledgerSvc: ledgerSvc,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// CompletionGrid expands the task's recurrence over [windowStart, windowEnd]
// and joins it against one batch ledger read. A ledger outage degrades the
// grid (status "unknown") instead of failing the render, since occurrence
// computation does not depend on the ledger. An optional `today` override
// pins classification for deterministic rendering.
func (svc *Service) CompletionGrid(taskID string, windowStart, windowEnd time.Time, today ...time.Time) (Grid, error) {
	tsk, err := svc.taskSvc.GetByID(taskID)
	if err != nil {
		return Grid{}, err
	}

	occs, err := schedule.Expand(tsk.Recurrence, windowStart, windowEnd)
	if err != nil {
		return Grid{}, err
	}

	clients, err := svc.clientsForTask(tsk)
	if err != nil {
		return Grid{}, err
	}

	var degraded bool
	completions, err := svc.ledgerSvc.CompletionsForTask(taskID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("completion grid: ledger read failed, degrading: %v", err), err)
		degraded = true
	}

	asOf := svc.nowFunc().UTC()
	if len(today) > 0 {
		asOf = today[0]
	}

	grid := Grid{
		TaskID:         tsk.ID,
		TaskTitle:      tsk.Title,
		Pattern:        tsk.Recurrence.Pattern.Label(),
		Badge:          tsk.Recurrence.Pattern.Badge(),
		Periods:        make([]Period, 0, len(occs)),
		Rows:           make([]Row, 0, len(clients)),
		LedgerDegraded: degraded,
	}
	for _, occ := range occs {
		grid.Periods = append(grid.Periods, Period{Key: occ.PeriodKey, Date: occ.Date})
	}

	for _, clt := range clients {
		row := Row{
			ClientID:   clt.ID,
			ClientName: clt.Name,
			Cells:      make([]Cell, 0, len(occs)),
		}
		for _, occ := range occs {
			cell := Cell{PeriodKey: occ.PeriodKey, Date: occ.Date}
			if degraded {
				cell.Status = schedule.StatusUnknown
			} else {
				rec, done := completions[ledger.Key{EntityID: clt.ID, PeriodKey: occ.PeriodKey}]
				cell.Status = schedule.Classify(occ, done, asOf)
				if done {
					completedAt := rec.CompletedAt
					cell.CompletedAt = &completedAt
					cell.CompletedBy = rec.CompletedBy
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid, nil
}

// clientsForTask resolves the task's client scope: explicit ids when set,
// all active clients otherwise.
func (svc *Service) clientsForTask(tsk task.Task) ([]client.Client, error) {
	if len(tsk.ClientIDs) > 0 {
		return svc.clientSvc.GetByIDs(tsk.ClientIDs)
	}
	return svc.clientSvc.QueryActive()
}
