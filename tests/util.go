package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/opsboard/core"
	"github.com/HillyAttic/opsboard/core/client"
	"github.com/HillyAttic/opsboard/core/schedule"
	"github.com/HillyAttic/opsboard/core/task"
	"github.com/HillyAttic/opsboard/core/user"
)

// NewConfig returns a config suitable for tests; no env lookups, no files.
func NewConfig() *core.Config {
	return &core.Config{
		Debug:           false,
		TestMode:        true,
		Env:             "TEST",
		Build:           "test",
		AppName:         "Opsboard",
		SecretKey:       "secret",
		FrontendBaseURL: "http://localhost:3000",
		DefaultFromName: "Opsboard",
		DefaultFromAddr: "noreply@test.local",
		Server: core.ServerConfig{
			Addr:                      ":0",
			ShutdownTimeout:           time.Second,
			JWTExpirationDelta:        time.Hour,
			JWTRefreshExpirationDelta: time.Hour,
			PasswordResetTimeoutDelta: time.Hour,
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateClient(t *testing.T, repo client.Repository, name, code string, isActive bool) client.Client {
	t.Helper()
	now := time.Now().UTC()
	clt, err := repo.CreateClient(client.Client{
		ID:        uuid.NewString(),
		Name:      name,
		Code:      code,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateClient() failed: %v", err)
	}
	return clt
}

func CreateTask(t *testing.T, repo task.Repository, title string, def schedule.Recurrence, clientIDs ...string) task.Task {
	t.Helper()
	now := time.Now().UTC()
	tsk, err := repo.CreateTask(task.Task{
		ID:         uuid.NewString(),
		Title:      title,
		ClientIDs:  clientIDs,
		Recurrence: def.Normalized(),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}
