package database

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/client"
)

type clientRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Code      string    `db:"code"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row clientRow) toClient() client.Client {
	isActive := row.IsActive
	return client.Client{
		ID:        row.ID,
		Name:      row.Name,
		Code:      row.Code,
		IsActive:  &isActive,
		CreatedAt: row.CreatedAt.UTC(),
		UpdatedAt: row.UpdatedAt.UTC(),
	}
}

func toClients(rows []clientRow) []client.Client {
	clts := make([]client.Client, len(rows))
	for i, row := range rows {
		clts[i] = row.toClient()
	}
	return clts
}

type ClientRepository struct {
	db *sqlx.DB
}

var _ client.Repository = (*ClientRepository)(nil)

func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (repo *ClientRepository) CheckCodeUniqueness(code string, excludedClients ...client.Client) error {
	exclIDs := make([]string, 0, len(excludedClients))
	for _, clt := range excludedClients {
		exclIDs = append(exclIDs, clt.ID)
	}

	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM client WHERE code = $1 AND NOT (id = ANY($2)))`
	if err := repo.db.Get(&exists, q, code, pq.Array(exclIDs)); err != nil {
		return errors.Wrap(err, "checking client code uniqueness")
	}
	if exists {
		return client.ErrCodeExists
	}
	return nil
}

func (repo *ClientRepository) CreateClient(clt client.Client) (client.Client, error) {
	isActive := true
	if clt.IsActive != nil {
		isActive = *clt.IsActive
	}
	q := `
INSERT INTO client (id, name, code, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.Exec(q, clt.ID, clt.Name, clt.Code, isActive, clt.CreatedAt, clt.UpdatedAt)
	if err != nil {
		return client.Client{}, errors.Wrap(err, "creating client")
	}
	clt.IsActive = &isActive
	return clt, nil
}

func (repo *ClientRepository) QueryAllClients() ([]client.Client, error) {
	var rows []clientRow
	if err := repo.db.Select(&rows, `SELECT * FROM client ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying clients")
	}
	return toClients(rows), nil
}

func (repo *ClientRepository) QueryActiveClients() ([]client.Client, error) {
	var rows []clientRow
	if err := repo.db.Select(&rows, `SELECT * FROM client WHERE is_active ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying active clients")
	}
	return toClients(rows), nil
}

func (repo *ClientRepository) GetClientByID(id string) (client.Client, error) {
	var row clientRow
	if err := repo.db.Get(&row, `SELECT * FROM client WHERE id = $1`, id); err != nil {
		return client.Client{}, trapNoRowsErr(err, client.ErrNotFound, "getting client")
	}
	return row.toClient(), nil
}

func (repo *ClientRepository) GetClientsByID(ids []string) ([]client.Client, error) {
	var rows []clientRow
	q := `SELECT * FROM client WHERE id = ANY($1) ORDER BY name`
	if err := repo.db.Select(&rows, q, pq.Array(ids)); err != nil {
		return nil, errors.Wrap(err, "getting clients")
	}
	return toClients(rows), nil
}

func (repo *ClientRepository) UpdateClient(clt client.Client, isActive *bool) (client.Client, error) {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if clt.Name != "" {
		set = append(set, "name = "+arg(clt.Name))
	}
	if clt.Code != "" {
		set = append(set, "code = "+arg(clt.Code))
	}
	if isActive != nil {
		set = append(set, "is_active = "+arg(*isActive))
	}
	if !clt.UpdatedAt.IsZero() {
		set = append(set, "updated_at = "+arg(clt.UpdatedAt))
	}
	if len(set) == 0 {
		return repo.GetClientByID(clt.ID)
	}

	q := "UPDATE client SET " + strings.Join(set, ", ") + " WHERE id = " + arg(clt.ID)
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return client.Client{}, errors.Wrap(err, "updating client")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return client.Client{}, client.ErrNotFound
	}
	return repo.GetClientByID(clt.ID)
}

func (repo *ClientRepository) DeleteClientsByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM client WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting clients")
	}
	return nil
}
