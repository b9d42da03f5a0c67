package inmemdb

import (
	"sync"

	"github.com/HillyAttic/opsboard/core/client"
	"github.com/HillyAttic/opsboard/core/ledger"
	"github.com/HillyAttic/opsboard/core/task"
	"github.com/HillyAttic/opsboard/core/user"
)

type (
	userTable struct {
		mutex sync.RWMutex
		table map[string]*user.User
	}

	clientTable struct {
		mutex sync.RWMutex
		table map[string]*client.Client
	}

	taskTable struct {
		mutex sync.RWMutex
		table map[string]*task.Task
	}

	completionTable struct {
		mutex sync.RWMutex
		table map[completionKey]*ledger.CompletionRecord
	}

	completionKey struct {
		taskID    string
		entityID  string
		periodKey string
	}

	// DB is an in-memory store for tests and local development.
	DB struct {
		user       *userTable
		client     *clientTable
		task       *taskTable
		completion *completionTable
	}
)

func NewDB() *DB {
	return &DB{
		user:       &userTable{table: make(map[string]*user.User)},
		client:     &clientTable{table: make(map[string]*client.Client)},
		task:       &taskTable{table: make(map[string]*task.Task)},
		completion: &completionTable{table: make(map[completionKey]*ledger.CompletionRecord)},
	}
}
