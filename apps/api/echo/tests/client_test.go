package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/HillyAttic/opsboard/core/client"
	"github.com/HillyAttic/opsboard/core/schedule"
	"github.com/HillyAttic/opsboard/core/user"
	testutil "github.com/HillyAttic/opsboard/tests"
)

func Test_clientApi_create(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "managr", "mgr@test.cd", "", []string{user.RoleManager}, true)
	testutil.CreateClient(t, cltRepo, "Acme", "acme", true)

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
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{
			name: "Bad code", body: marchallObj(t, map[string]string{"name": "Globex", "code": "glo-bex!"}),
			token: getToken(t, manager), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "only alphanumeric characters and underscores are allowed"}),
		},
		{
			name: "Duplicate code", body: marchallObj(t, map[string]string{"name": "Acme Corp", "code": "ACME"}),
			token: getToken(t, manager), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"code": "a client with this code already exists"}),
		},
		{
			name: "Create", body: marchallObj(t, map[string]string{"name": "Globex", "code": "globex"}),
			token: getToken(t, manager), wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/clients", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var created client.Client
				if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
					t.Fatalf("unmarshalling Client: %v", err)
				}
				if created.Code != "globex" {
					t.Errorf("code = %q; want %q", created.Code, "globex")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_clientApi_destroy(t *testing.T) {
	app := setup(t)

	manager := testutil.CreateUser(t, usrRepo, "Manager", "managr", "mgr@test.cd", "", []string{user.RoleManager}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	clt := testutil.CreateClient(t, cltRepo, "Acme", "acme", true)

	tests := []httpTest{
		{
			name: "Admin required", path: "/v1/clients/" + clt.ID, token: getToken(t, manager),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Unknown client", path: "/v1/clients/lol", token: getToken(t, admin),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "client not found"}),
		},
		{name: "Destroy", path: "/v1/clients/" + clt.ID, token: getToken(t, admin), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodDelete, tt.path, tt.token)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				clts, err := cltRepo.QueryAllClients()
				if err != nil {
					t.Fatalf("QueryAllClients() failed: %v", err)
				}
				if len(clts) != 0 {
					t.Errorf("expected no clients left, got %d", len(clts))
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_reportApi_overdue(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)
	manager := testutil.CreateUser(t, usrRepo, "Manager", "managr", "mgr@test.cd", "", []string{user.RoleManager}, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Manager required", token: getToken(t, staff),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Nothing overdue", token: getToken(t, manager),
			wantCode: http.StatusOK, wantData: []byte("[]"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/reports/overdue", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_reportApi_calendar(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, true)
	clt := testutil.CreateClient(t, cltRepo, "Acme", "acme", true)

	def := schedule.Recurrence{StartDate: schedule.Date(2026, time.January, 15), Pattern: schedule.PatternQuarterly}
	tsk := createTask(t, "VAT filing", staff.ID, def, clt.ID)

	req, rec := newAuthRequest(http.MethodGet, "/v1/calendar.ics?from=2026-01-01&to=2026-12-31", getToken(t, staff))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}
	if ctype := rec.Header().Get("Content-Type"); !strings.HasPrefix(ctype, "text/calendar") {
		t.Errorf("Content-Type = %q; want text/calendar", ctype)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "BEGIN:VCALENDAR") {
		t.Errorf("expected an iCalendar body, got %q", body[:min(len(body), 40)])
	}
	if !strings.Contains(body, "UID:"+tsk.ID+"/2026-Q1") {
		t.Error("expected the Q1 occurrence event in the feed")
	}
}
