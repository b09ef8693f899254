package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlasbank-portal/internal/domain/business"
)

func businessRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "business_type", "customer_id", "account_id", "loan_id",
		"status", "remark", "operator_id", "created_at", "decided_at",
	})
}

func TestBusinessRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BusinessRepository{querier: mock, logger: newTestLogger()}

	query := regexp.QuoteMeta(`
			INSERT INTO businesses (business_type, customer_id, account_id, loan_id, status, remark, operator_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id
		`)

	t.Run("success", func(t *testing.T) {
		accountID := int64(10)
		customerID := int64(9)
		b := &business.Business{
			Type:       business.TypeDeposit,
			CustomerID: &customerID,
			AccountID:  &accountID,
			Status:     business.StatusCompleted,
			Remark:     "payday",
			OperatorID: 2,
			CreatedAt:  time.Now(),
		}

		mock.ExpectQuery(query).
			WithArgs(b.Type, b.CustomerID, b.AccountID, b.LoanID, b.Status, b.Remark, b.OperatorID, b.CreatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(42)))

		err := repo.Create(context.Background(), b)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), b.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBusinessRepository_LockForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BusinessRepository{querier: mock, logger: newTestLogger()}

	query := regexp.QuoteMeta(`
			SELECT ` + businessColumns + `
			FROM businesses
			WHERE id = $1
			FOR UPDATE
		`)

	t.Run("success", func(t *testing.T) {
		accountID := int64(10)
		now := time.Now()
		mock.ExpectQuery(query).
			WithArgs(int64(61)).
			WillReturnRows(businessRows().AddRow(
				int64(61), business.TypeCloseAccount, nil, &accountID, nil,
				business.StatusPending, "moving banks", int64(2), now, nil,
			))

		b, err := repo.LockForUpdate(context.Background(), 61)

		assert.NoError(t, err)
		assert.Equal(t, business.TypeCloseAccount, b.Type)
		assert.Equal(t, business.StatusPending, b.Status)
		require.NotNil(t, b.AccountID)
		assert.Equal(t, int64(10), *b.AccountID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(99)).
			WillReturnRows(businessRows())

		b, err := repo.LockForUpdate(context.Background(), 99)

		assert.Nil(t, b)
		assert.ErrorIs(t, err, business.ErrBusinessNotFound{BusinessID: 99})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBusinessRepository_Decide(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &BusinessRepository{querier: mock, logger: newTestLogger()}

	query := regexp.QuoteMeta(`
			UPDATE businesses
			SET status = $1, remark = $2, decided_at = $3
			WHERE id = $4 AND status = $5
		`)

	t.Run("success", func(t *testing.T) {
		decidedAt := time.Now()
		mock.ExpectExec(query).
			WithArgs(business.StatusCompleted, "ok", decidedAt, int64(61), business.StatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := repo.Decide(context.Background(), 61, business.StatusCompleted, "ok", decidedAt)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already decided", func(t *testing.T) {
		decidedAt := time.Now()
		mock.ExpectExec(query).
			WithArgs(business.StatusRejected, "", decidedAt, int64(61), business.StatusPending).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.Decide(context.Background(), 61, business.StatusRejected, "", decidedAt)

		assert.ErrorIs(t, err, business.ErrAlreadyDecided)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
