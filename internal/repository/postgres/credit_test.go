package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/seatbill/seatbill/internal/config"
	"github.com/seatbill/seatbill/internal/domain/credit"
	ierr "github.com/seatbill/seatbill/internal/errors"
	"github.com/seatbill/seatbill/internal/logger"
	"github.com/seatbill/seatbill/internal/postgres"
	"github.com/seatbill/seatbill/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepoDB(t *testing.T) (*postgres.DB, sqlmock.Sqlmock, *logger.Logger) {
	t.Helper()

	rawDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { rawDB.Close() })

	log, err := logger.NewLogger(config.GetDefaultConfig())
	require.NoError(t, err)

	return postgres.NewDBFromSQLX(sqlx.NewDb(rawDB, "postgres"), log), mock, log
}

func TestCreditRepository_Balance(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewCreditRepository(db, log)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WithArgs("org_1", string(types.StatusPublished)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("125.50"))

	balance, err := repo.Balance(context.Background(), "org_1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(125.50).Equal(balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditRepository_BalanceEmptyLedger(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewCreditRepository(db, log)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\)`).
		WithArgs("org_empty", string(types.StatusPublished)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("0"))

	balance, err := repo.Balance(context.Background(), "org_empty")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestCreditRepository_Create(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewCreditRepository(db, log)

	mock.ExpectExec(`INSERT INTO credit_transactions`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	txn := &credit.Transaction{
		ID:        "ctxn_test",
		OrgID:     "org_1",
		Amount:    decimal.NewFromInt(-78),
		Type:      types.CreditTransactionTypeUserPay,
		BaseModel: types.GetDefaultBaseModel(context.Background()),
	}
	require.NoError(t, repo.Create(context.Background(), txn))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreditRepository_CreateFailureMarkedDatabase(t *testing.T) {
	db, mock, log := newMockRepoDB(t)
	repo := NewCreditRepository(db, log)

	mock.ExpectExec(`INSERT INTO credit_transactions`).
		WillReturnError(assert.AnError)

	txn := &credit.Transaction{
		ID:        "ctxn_fail",
		OrgID:     "org_1",
		Amount:    decimal.NewFromInt(10),
		Type:      types.CreditTransactionTypeTopUp,
		BaseModel: types.GetDefaultBaseModel(context.Background()),
	}
	err := repo.Create(context.Background(), txn)
	require.Error(t, err)
	assert.True(t, ierr.IsDatabase(err))
}
