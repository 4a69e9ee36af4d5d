package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation est le code PostgreSQL d'une violation de contrainte UNIQUE.
// C'est lui qui porte la sémantique de toggle : un INSERT refusé pour ce code
// signifie "l'edge existe déjà", pas "erreur technique".
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
