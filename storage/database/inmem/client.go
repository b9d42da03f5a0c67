package inmemdb

import (
	"sort"

	"github.com/HillyAttic/opsboard/core/client"
)

type clientRepository struct {
	db *clientTable
}

func NewClientRepository(db *DB) client.Repository {
	return &clientRepository{db: db.client}
}

func (repo *clientRepository) query() []client.Client {
	clients := make([]client.Client, 0, len(repo.db.table))
	for _, c := range repo.db.table {
		clients = append(clients, *c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients
}

func (repo *clientRepository) CheckCodeUniqueness(code string, excludedClients ...client.Client) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	excluded := make(map[string]bool, len(excludedClients))
	for _, clt := range excludedClients {
		excluded[clt.ID] = true
	}

	for _, clt := range repo.query() {
		if clt.Code == code && !excluded[clt.ID] {
			return client.ErrCodeExists
		}
	}
	return nil
}

func (repo *clientRepository) CreateClient(clt client.Client) (client.Client, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.table[clt.ID] = &clt
	return clt, nil
}

func (repo *clientRepository) QueryAllClients() ([]client.Client, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *clientRepository) QueryActiveClients() ([]client.Client, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	clients := make([]client.Client, 0)
	for _, clt := range repo.query() {
		if clt.IsActive != nil && *clt.IsActive {
			clients = append(clients, clt)
		}
	}
	return clients, nil
}

func (repo *clientRepository) GetClientByID(id string) (client.Client, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if clt, ok := repo.db.table[id]; ok {
		return *clt, nil
	}
	return client.Client{}, client.ErrNotFound
}

func (repo *clientRepository) GetClientsByID(ids []string) ([]client.Client, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	clients := make([]client.Client, 0, len(ids))
	for _, clt := range repo.query() {
		if wanted[clt.ID] {
			clients = append(clients, clt)
		}
	}
	return clients, nil
}

func (repo *clientRepository) UpdateClient(clt client.Client, isActive *bool) (client.Client, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origClt, ok := repo.db.table[clt.ID]
	if !ok {
		return client.Client{}, client.ErrNotFound
	}
	if clt.Name != "" {
		origClt.Name = clt.Name
	}
	if clt.Code != "" {
		origClt.Code = clt.Code
	}
	if isActive != nil {
		origClt.IsActive = isActive
	}
	if !clt.UpdatedAt.IsZero() {
		origClt.UpdatedAt = clt.UpdatedAt
	}

	repo.db.table[clt.ID] = origClt
	return *origClt, nil
}

func (repo *clientRepository) DeleteClientsByID(ids ...string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
