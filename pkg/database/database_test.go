package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTables(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	clients := &Clients{DB: sqlx.NewDb(mockDB, "sqlmock")}

	for _, table := range []string{"profiles", "medications", "injection_logs", "reminders", "export_jobs"} {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, clients.CreateTables(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTablesStopsOnError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	clients := &Clients{DB: sqlx.NewDb(mockDB, "sqlmock")}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS profiles").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS medications").WillReturnError(errors.New("permission denied"))

	err = clients.CreateTables(context.Background())
	assert.ErrorContains(t, err, "failed to create medications table")
	assert.NoError(t, mock.ExpectationsWereMet())
}
