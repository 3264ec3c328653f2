package repository

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Domain-level errors I let bubble up from the repository implementations.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("conflict")
	ErrInvalidValue  = errors.New("invalid value")
)

// MapPgError translates common Postgres error codes to domain errors.
// I map only the codes the service layer turns into field errors or 409s;
// anything else goes up as is and ends in a 503.
func MapPgError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return ErrConflict
		case pgerrcode.CheckViolation, pgerrcode.InvalidTextRepresentation:
			return ErrInvalidValue
		}
	}
	return err
}
