package client

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/HillyAttic/opsboard/core"
)

var (
	// errors
	ErrNotFound   = errors.New("client not found")
	ErrCodeExists = errors.New("a client with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(code string, excludedClients ...Client) error
		CreateClient(clt Client) (Client, error)
		QueryAllClients() ([]Client, error)
		QueryActiveClients() ([]Client, error)
		GetClientByID(id string) (Client, error)
		GetClientsByID(ids []string) ([]Client, error)
		UpdateClient(clt Client, isActive *bool) (Client, error)
		DeleteClientsByID(ids ...string) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(code string, exclClients ...Client) error {
	if code == "" {
		return nil
	}
	if err := svc.repo.CheckCodeUniqueness(code, exclClients...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(nc NewClient) (Client, error) {
	now := time.Now().UTC()
	isActive := true
	clt := Client{
		ID:        uuid.NewString(),
		Name:      nc.Name,
		Code:      nc.Code,
		IsActive:  &isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateClient(clt)
}

func (svc *Service) QueryAll() ([]Client, error) {
	return svc.repo.QueryAllClients()
}

// QueryActive returns the clients a task without an explicit client scope
// applies to.
func (svc *Service) QueryActive() ([]Client, error) {
	return svc.repo.QueryActiveClients()
}

func (svc *Service) GetByID(id string) (Client, error) {
	return svc.repo.GetClientByID(id)
}

func (svc *Service) GetByIDs(ids []string) ([]Client, error) {
	return svc.repo.GetClientsByID(ids)
}

func (svc *Service) Update(id string, uc UpdateClient) (Client, error) {
	clt := Client{
		ID:        id,
		Name:      uc.Name,
		Code:      uc.Code,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateClient(clt, uc.IsActive)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteClientsByID(ids...)
}
