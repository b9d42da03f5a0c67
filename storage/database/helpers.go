package database

import (
	"database/sql"
	"strconv"

	"github.com/pkg/errors"
)

// trapNoRowsErr converts sql.ErrNoRows into the domain's not-found error so
// callers never depend on database/sql.
func trapNoRowsErr(err, domainErr error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return domainErr
	}
	return errors.Wrap(err, msg)
}

func itoa(n int) string { return strconv.Itoa(n) }
