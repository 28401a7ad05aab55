package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
// Sobre identificadores recién emitidos un 23505 significa bug del asignador
// (los repos lo traducen a domain.ErrDuplicateIdentifier); sobre un movement_id
// reenviado significa replay idempotente.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}
