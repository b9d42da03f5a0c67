package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/opsboard/core/ledger"
	"github.com/HillyAttic/opsboard/core/report"
	"github.com/HillyAttic/opsboard/core/schedule"
	"github.com/HillyAttic/opsboard/core/task"
	"github.com/HillyAttic/opsboard/core/user"
	testutil "github.com/HillyAttic/opsboard/tests"
)

func createTask(t *testing.T, title, assigneeID string, def schedule.Recurrence, clientIDs ...string) task.Task {
	t.Helper()
	now := time.Now().UTC()
	tsk, err := taskRepo.CreateTask(task.Task{
		ID:         uuid.NewString(),
		Title:      title,
		AssigneeID: assigneeID,
		ClientIDs:  clientIDs,
		Recurrence: def.Normalized(),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("createTask() failed: %v", err)
	}
	return tsk
}

func Test_taskApi_create(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "managr", "mgr@test.cd", "", []string{user.RoleManager}, true)

	tests := []httpTest{
		{
			name: "Auth required", body: []byte("{}"),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "Manager required", body: []byte("{}"), token: getToken(t, staff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Empty data", body: []byte("{}"), token: getToken(t, manager),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"title":      "this field is required",
				"start_date": "this field is required",
				"pattern":    "this field is required",
			}),
		},
		{
			name: "Unknown pattern",
			body: marchallObj(t, map[string]string{
				"title": "VAT filing", "start_date": "2026-01-15", "pattern": "weekly",
			}),
			token: getToken(t, manager), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"pattern": "must be one of monthly, quarterly, half-yearly or yearly"}),
		},
		{
			name: "Malformed start date",
			body: marchallObj(t, map[string]string{
				"title": "VAT filing", "start_date": "15/01/2026", "pattern": "quarterly",
			}),
			token: getToken(t, manager), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"start_date": "invalid date; expected YYYY-MM-DD"}),
		},
		{
			name: "Create",
			body: marchallObj(t, map[string]string{
				"title": "VAT filing", "start_date": "2026-01-15", "pattern": "quarterly",
			}),
			token: getToken(t, manager), wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/tasks", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var created task.Task
				if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
					t.Fatalf("unmarshalling Task: %v", err)
				}
				if created.Title != "VAT filing" {
					t.Errorf("title = %q; want %q", created.Title, "VAT filing")
				}
				if created.Recurrence.Pattern != schedule.PatternQuarterly {
					t.Errorf("pattern = %q; want %q", created.Recurrence.Pattern, schedule.PatternQuarterly)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_taskApi_query(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "managr", "mgr@test.cd", "", []string{user.RoleManager}, true)

	def := schedule.Recurrence{StartDate: schedule.Date(2026, time.January, 15), Pattern: schedule.PatternQuarterly}
	mine := createTask(t, "VAT filing", staff.ID, def)
	other := createTask(t, "Payroll run", manager.ID, def)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Staff only see their own", token: getToken(t, staff),
			wantCode: http.StatusOK, wantData: marchallList(t, mine),
		},
		{
			name: "Managers see all", token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: marchallList(t, mine, other),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/tasks", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_taskApi_pauseResume(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "managr", "mgr@test.cd", "", []string{user.RoleManager}, true)

	def := schedule.Recurrence{StartDate: schedule.Date(2026, time.January, 15), Pattern: schedule.PatternMonthly}
	tsk := createTask(t, "Bank reconciliation", "", def)

	type extra struct {
		wantPaused bool
	}
	tests := []httpTest{
		{
			name: "Manager required", path: "/v1/tasks/" + tsk.ID + "/pause", token: getToken(t, staff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Unknown task", path: "/v1/tasks/lol/pause", token: getToken(t, manager),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "task not found"}),
		},
		{
			name: "Pause", path: "/v1/tasks/" + tsk.ID + "/pause", token: getToken(t, manager),
			wantCode: http.StatusOK, extra: extra{wantPaused: true},
		},
		{
			name: "Resume", path: "/v1/tasks/" + tsk.ID + "/resume", token: getToken(t, manager),
			wantCode: http.StatusOK, extra: extra{wantPaused: false},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if extra, ok := tt.extra.(extra); ok {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var got task.Task
				if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
					t.Fatalf("unmarshalling Task: %v", err)
				}
				if got.Recurrence.Paused != extra.wantPaused {
					t.Errorf("paused = %v; want %v", got.Recurrence.Paused, extra.wantPaused)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_taskApi_occurrences(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)

	def := schedule.Recurrence{StartDate: schedule.Date(2026, time.January, 15), Pattern: schedule.PatternQuarterly}
	tsk := createTask(t, "VAT filing", staff.ID, def)

	wantOccs := []schedule.Occurrence{
		{PeriodKey: "2026-Q1", Date: schedule.Date(2026, time.January, 15)},
		{PeriodKey: "2026-Q2", Date: schedule.Date(2026, time.April, 15)},
		{PeriodKey: "2026-Q3", Date: schedule.Date(2026, time.July, 15)},
		{PeriodKey: "2026-Q4", Date: schedule.Date(2026, time.October, 15)},
	}

	tests := []httpTest{
		{
			name: "Unknown task", path: "/v1/tasks/lol/occurrences", token: getToken(t, staff),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "task not found"}),
		},
		{
			name: "Malformed window", path: "/v1/tasks/" + tsk.ID + "/occurrences?from=lol", token: getToken(t, staff),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"from": "invalid date; expected YYYY-MM-DD"}),
		},
		{
			name: "Inverted window", path: "/v1/tasks/" + tsk.ID + "/occurrences?from=2026-12-31&to=2026-01-01",
			token: getToken(t, staff), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"from": "must not be after 'to'"}),
		},
		{
			name: "Whole year", path: "/v1/tasks/" + tsk.ID + "/occurrences?from=2026-01-01&to=2026-12-31",
			token: getToken(t, staff), wantCode: http.StatusOK, wantData: marchallObj(t, wantOccs),
		},
		{
			name: "Clipped window", path: "/v1/tasks/" + tsk.ID + "/occurrences?from=2026-04-01&to=2026-09-30",
			token: getToken(t, staff), wantCode: http.StatusOK, wantData: marchallObj(t, wantOccs[1:3]),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_taskApi_completions(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)
	clt := testutil.CreateClient(t, cltRepo, "Acme", "ACM", true)

	def := schedule.Recurrence{StartDate: schedule.Date(2026, time.January, 15), Pattern: schedule.PatternQuarterly}
	tsk := createTask(t, "VAT filing", staff.ID, def, clt.ID)

	token := getToken(t, staff)

	t.Run("Unknown task", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"entity_id": clt.ID, "period_key": "2026-Q1"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/tasks/lol/completions", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "task not found"}),
		}, rec)
	})

	t.Run("Missing key", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"period_key": "2026-Q1"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/tasks/"+tsk.ID+"/completions", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"entity_id": "this field is required"}),
		}, rec)
	})

	t.Run("Set", func(t *testing.T) {
		body := marchallObj(t, map[string]string{"entity_id": clt.ID, "period_key": "2026-Q1"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/tasks/"+tsk.ID+"/completions", token, body)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got ledger.CompletionRecord
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("unmarshalling CompletionRecord: %v", err)
		}
		if got.CompletedBy != staff.ID {
			t.Errorf("completed_by = %q; want the authenticated user %q", got.CompletedBy, staff.ID)
		}
	})

	t.Run("Grid reflects the completion", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/tasks/"+tsk.ID+"/grid?from=2026-01-01&to=2026-12-31", token)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var grid report.Grid
		if err := json.Unmarshal(rec.Body.Bytes(), &grid); err != nil {
			t.Fatalf("unmarshalling Grid: %v", err)
		}
		if len(grid.Rows) != 1 || len(grid.Rows[0].Cells) != 4 {
			t.Fatalf("grid = %d rows; want 1 row with 4 cells", len(grid.Rows))
		}
		cell := grid.Rows[0].Cells[0]
		if cell.Status != schedule.StatusCompleted {
			t.Errorf("Q1 status = %q; want %q", cell.Status, schedule.StatusCompleted)
		}
		if cell.CompletedBy != staff.ID {
			t.Errorf("Q1 completed_by = %q; want %q", cell.CompletedBy, staff.ID)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/tasks/"+tsk.ID+"/completions?entity_id="+clt.ID+"&period_key=2026-Q1", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}

		recs, err := ledgerSvc.CompletionsForTask(tsk.ID)
		if err != nil {
			t.Fatalf("CompletionsForTask() failed: %v", err)
		}
		if len(recs) != 0 {
			t.Errorf("expected no completion records left, got %d", len(recs))
		}
	})
}
