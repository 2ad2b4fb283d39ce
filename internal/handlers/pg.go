package handlers

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether err is a Postgres unique
// constraint violation (SQLSTATE 23505). The Exists-then-Create pair
// in the blocklist handlers races under concurrent duplicate adds;
// the constraint is the backstop and must read as a conflict, not a
// server error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
