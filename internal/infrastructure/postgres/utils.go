package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/almacen-api/internal/domain"
)

// Códigos SQLSTATE que la capa de dominio distingue.
const (
	codeUniqueViolation  = "23505"
	codeNotNullViolation = "23502"
	codeFKViolation      = "23503"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// mapStoreError traduce errores de PostgreSQL al taxón de dominio: clave
// duplicada (folio/barcode), campo requerido ausente, violación referencial.
// Cualquier otro error (incluidos fallos de conexión) se envuelve con la
// operación que lo produjo.
func mapStoreError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return fmt.Errorf("%w: %s (%s)", domain.ErrDuplicate, op, pgErr.ConstraintName)
		case codeNotNullViolation:
			return fmt.Errorf("%w: %s, columna %s requerida", domain.ErrInvalidInput, op, pgErr.ColumnName)
		case codeFKViolation:
			return fmt.Errorf("%w: %s (%s)", domain.ErrNotFound, op, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
