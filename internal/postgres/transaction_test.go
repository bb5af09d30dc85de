package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/seatbill/seatbill/internal/config"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	log, err := logger.NewLogger(config.GetDefaultConfig())
	require.NoError(t, err)

	return NewDBFromSQLX(sqlx.NewDb(rawDB, "postgres"), log), mock
}

func TestWithTx_Commit(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO things").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := db.WithTx(context.Background(), func(ctx context.Context) error {
		_, err := db.GetQuerier(ctx).ExecContext(ctx, "INSERT INTO things VALUES (1)")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.WithTx(context.Background(), func(ctx context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_NestedReusesTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	// One begin and one commit for two nested WithTx calls.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE things").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := db.WithTx(context.Background(), func(outer context.Context) error {
		return db.WithTx(outer, func(inner context.Context) error {
			outerTx, ok := GetTx(outer)
			require.True(t, ok)
			innerTx, ok := GetTx(inner)
			require.True(t, ok)
			assert.Equal(t, outerTx.ID, innerTx.ID)

			_, err := db.GetQuerier(inner).ExecContext(inner, "UPDATE things SET n = 1")
			return err
		})
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_InnerErrorRollsBackOuter(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("inner failure")
	err := db.WithTx(context.Background(), func(outer context.Context) error {
		return db.WithTx(outer, func(inner context.Context) error {
			return boom
		})
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTx_QuerierOutsideTransaction(t *testing.T) {
	db, _ := newMockDB(t)

	// Without a transaction in the context the base DB is returned.
	q := db.GetQuerier(context.Background())
	assert.Equal(t, db.DB, q)
}

func TestIsRetryableTxError(t *testing.T) {
	assert.True(t, IsRetryableTxError(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryableTxError(&pq.Error{Code: "40P01"}))
	assert.False(t, IsRetryableTxError(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryableTxError(errors.New("plain error")))
	assert.False(t, IsRetryableTxError(nil))
}
