package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-studio-api/internal/repository"
	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type txProviderMock struct {
	db *sqlx.DB
}

func newTxProviderMock(t *testing.T) (txProvider, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlx.NewDb(db, "postgres")}, mock
}

func (p *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return p.db.BeginTxx(ctx, opts)
}

type noopTxProvider struct{}

func (noopTxProvider) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return nil, errors.New("transaction provider unavailable")
}

func TestInTxCommits(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	err := inTx(context.Background(), provider, func(tx *sqlx.Tx) error { return nil })
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxRollsBackOnError(t *testing.T) {
	provider, mock := newTxProviderMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := inTx(context.Background(), provider, func(tx *sqlx.Tx) error { return appErrors.ErrCapacityExceeded })
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxBeginFailure(t *testing.T) {
	err := inTx(context.Background(), noopTxProvider{}, func(tx *sqlx.Tx) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestStoreError(t *testing.T) {
	assert.ErrorIs(t, storeError(sql.ErrNoRows, "class not found", "x"), appErrors.ErrNotFound)
	assert.ErrorIs(t, storeError(&repository.UniqueViolationError{Constraint: "c"}, "", "taken"), appErrors.ErrConflict)
	assert.ErrorIs(t, storeError(errors.New("boom"), "", "failed"), appErrors.ErrInternal)
	assert.ErrorIs(t, storeError(appErrors.ErrCapacityExceeded, "", ""), appErrors.ErrCapacityExceeded)
}
