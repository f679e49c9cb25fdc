// Package repository holds the Postgres queries of the service. Every query
// that touches user data carries a user_id predicate, so a row owned by
// somebody else behaves exactly like a missing row.
package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a row does not exist or is not owned by the
// caller.
var ErrNotFound = errors.New("not found")

type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
