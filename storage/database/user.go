package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/HillyAttic/opsboard/core/user"
)

type userRow struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	Username     string       `db:"username"`
	Email        string       `db:"email"`
	IsActive     bool         `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte       `db:"password_hash"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
	LastLogin    sql.NullTime `db:"last_login"`
}

func (row userRow) toUser() user.User {
	isActive := row.IsActive
	usr := user.User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		IsActive:     &isActive,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
	if row.LastLogin.Valid {
		usr.LastLogin = row.LastLogin.Time.UTC()
	}
	return usr
}

func toUsers(rows []userRow) []user.User {
	usrs := make([]user.User, len(rows))
	for i, row := range rows {
		usrs[i] = row.toUser()
	}
	return usrs
}

type UserRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*UserRepository)(nil)

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (repo *UserRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	exclIDs := make([]string, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		exclIDs = append(exclIDs, usr.ID)
	}

	check := func(field, value string, domainErr error) error {
		if value == "" {
			return nil
		}
		var exists bool
		q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE ` + field + ` = $1 AND NOT (id = ANY($2)))`
		if err := repo.db.Get(&exists, q, value, pq.Array(exclIDs)); err != nil {
			return errors.Wrap(err, "checking user uniqueness")
		}
		if exists {
			return domainErr
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *UserRepository) CreateUser(usr user.User) (user.User, error) {
	isActive := true
	if usr.IsActive != nil {
		isActive = *usr.IsActive
	}
	q := `
INSERT INTO "user" (id, name, username, email, is_active, roles, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.Exec(q,
		usr.ID, usr.Name, usr.Username, usr.Email, isActive,
		pq.Array(usr.Roles), usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	usr.IsActive = &isActive
	return usr, nil
}

func (repo *UserRepository) QueryAllUsers() ([]user.User, error) {
	var rows []userRow
	if err := repo.db.Select(&rows, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo *UserRepository) getUser(where string, args ...interface{}) (user.User, error) {
	var row userRow
	if err := repo.db.Get(&row, `SELECT * FROM "user" WHERE `+where, args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return row.toUser(), nil
}

func (repo *UserRepository) GetUserByID(id string) (user.User, error) {
	return repo.getUser("id = $1", id)
}

func (repo *UserRepository) GetUserByUsername(username string) (user.User, error) {
	return repo.getUser("username = $1", username)
}

func (repo *UserRepository) GetUserByEmail(email string) (user.User, error) {
	return repo.getUser("email = $1", email)
}

func (repo *UserRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	return repo.getUser("username = $1 OR email = $1", username)
}

func (repo *UserRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	where := make([]string, 0, 5)
	args := make([]interface{}, 0, 5)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		where = append(where, "(name ILIKE "+p+" OR username ILIKE "+p+" OR email ILIKE "+p+")")
	}
	if len(filter.Roles) > 0 {
		where = append(where, "roles && "+arg(pq.Array(filter.Roles)))
	}
	if filter.IsActive != nil {
		where = append(where, "is_active = "+arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		where = append(where, "created_at >= "+arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		where = append(where, "created_at <= "+arg(filter.CreatedTo))
	}

	q := `SELECT * FROM "user"`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at"

	var rows []userRow
	if err := repo.db.Select(&rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return toUsers(rows), nil
}

// UpdateUser updates the user's non-zero fields. isActive is applied only
// when non-nil so a plain update cannot accidentally deactivate.
func (repo *UserRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 8)
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + itoa(len(args))
	}

	if usr.Name != "" {
		set = append(set, "name = "+arg(usr.Name))
	}
	if usr.Username != "" {
		set = append(set, "username = "+arg(usr.Username))
	}
	if usr.Email != "" {
		set = append(set, "email = "+arg(usr.Email))
	}
	if usr.Roles != nil {
		set = append(set, "roles = "+arg(pq.Array(usr.Roles)))
	}
	if len(usr.PasswordHash) > 0 {
		set = append(set, "password_hash = "+arg(usr.PasswordHash))
	}
	if !usr.LastLogin.IsZero() {
		set = append(set, "last_login = "+arg(usr.LastLogin))
	}
	if isActive != nil {
		set = append(set, "is_active = "+arg(*isActive))
	}
	if !usr.UpdatedAt.IsZero() {
		set = append(set, "updated_at = "+arg(usr.UpdatedAt))
	}
	if len(set) == 0 {
		return repo.GetUserByID(usr.ID)
	}

	q := `UPDATE "user" SET ` + strings.Join(set, ", ") + ` WHERE id = ` + arg(usr.ID)
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(usr.ID)
}

func (repo *UserRepository) DeleteUsersByID(ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := repo.db.Exec(`DELETE FROM "user" WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
