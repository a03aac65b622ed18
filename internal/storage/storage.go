// Package storage implements the per-service Store interfaces on PostgreSQL
// via sqlx. All lifecycle transitions are conditional updates so the
// check-then-set sequences in the services are safe under concurrency.
package storage

import (
	"github.com/jmoiron/sqlx"

	"github.com/faenaapp/faena-backend/shared/postgresql"
)

// Storage bundles every repository over one connection pool.
type Storage struct {
	db *sqlx.DB
}

// NewStorage creates the repository set.
func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{db: pg.GetDB()}
}
