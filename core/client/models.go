package client

import (
	"time"

	"github.com/HillyAttic/opsboard/core"
)

// Client is a tracked entity: recurring task completion is recorded per
// client per period.
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsActive  *bool     `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewClient contains information needed to create a new Client.
type NewClient struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"omitempty,alphanum_"`
}

func (nc *NewClient) Validate(svc *Service) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Code = core.CleanString(nc.Code, true /* lower */)

	if err := core.Validate.Struct(nc); err != nil {
		return err
	}
	return svc.checkUniqueness(nc.Code)
}

// UpdateClient defines what information may be provided to modify an existing Client.
type UpdateClient struct {
	Name     string `json:"name"`
	Code     string `json:"code" validate:"omitempty,alphanum_"`
	IsActive *bool  `json:"is_active"`
}

func (uc *UpdateClient) Validate(origClt Client, svc *Service) error {
	name := core.CleanString(uc.Name)
	if name != "" {
		uc.Name = name
	} else {
		uc.Name = origClt.Name
	}

	code := core.CleanString(uc.Code, true /* lower */)
	if code != "" {
		uc.Code = code
	} else {
		uc.Code = origClt.Code
	}

	if err := core.Validate.Struct(uc); err != nil {
		return err
	}
	return svc.checkUniqueness(uc.Code, origClt)
}
