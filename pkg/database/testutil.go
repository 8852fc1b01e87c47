package database

import (
	pgxmock "github.com/pashagolub/pgxmock/v3"
)

// NewMockPool creates a pgxmock pool for repository tests. The mock satisfies
// DBTX, so it can stand in for the real pgxpool behind any repository.
// Finish each test with ExpectationsWereMet to catch unmatched queries.
func NewMockPool() (pgxmock.PgxPoolIface, error) {
	return pgxmock.NewPool()
}
