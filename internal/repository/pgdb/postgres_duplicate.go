package pgdb

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// postgresDuplicate сообщает, что ошибка вызвана нарушением уникальности (23505).
func postgresDuplicate(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
