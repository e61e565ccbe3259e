package services

import (
	"database/sql"
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrBadRequest    = errors.New("bad request")
	ErrRenderFailure = errors.New("invoice render failed")
	ErrGateway       = errors.New("payment gateway unavailable")
)

// notFound turns a missing row into ErrNotFound and passes anything else through.
func notFound(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}
