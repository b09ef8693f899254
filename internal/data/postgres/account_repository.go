// Package postgres provides PostgreSQL implementations of the domain
// repositories. All balance-bearing reads used for mutation go through
// SELECT ... FOR UPDATE so the engine never acts on stale state.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/platform/persistence"
)

const accountColumns = `id, account_no, kind, balance, interest_rate, overdraft_limit, created_at, closed_at`

// AccountRepository implements the account.Repository interface for PostgreSQL
type AccountRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(logger *slog.Logger, db *persistence.PostgresDB) account.Repository {
	return &AccountRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so multiple repository calls
// commit or roll back together
func (r *AccountRepository) WithTx(tx pgx.Tx) account.Repository {
	return &AccountRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanAccount(row pgx.Row) (*account.Account, error) {
	var acc account.Account
	err := row.Scan(
		&acc.ID,
		&acc.AccountNo,
		&acc.Kind,
		&acc.Balance,
		&acc.InterestRate,
		&acc.OverdraftLimit,
		&acc.CreatedAt,
		&acc.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// Create stores a new account and fills in its generated id
func (r *AccountRepository) Create(ctx context.Context, acc *account.Account) error {
	query := `
		INSERT INTO accounts (account_no, kind, balance, interest_rate, overdraft_limit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		acc.AccountNo,
		acc.Kind,
		acc.Balance,
		acc.InterestRate,
		acc.OverdraftLimit,
		acc.CreatedAt,
	).Scan(&acc.ID)
	if err != nil {
		r.logger.Error("Failed to create account", "account_no", acc.AccountNo, "error", err)
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to get account", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}

// GetByAccountNo retrieves an account by its account number. Returns nil, nil
// when no account carries the number.
func (r *AccountRepository) GetByAccountNo(ctx context.Context, accountNo string) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE account_no = $1
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, accountNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get account by account number", "account_no", accountNo, "error", err)
		return nil, fmt.Errorf("failed to get account by account number: %w", err)
	}

	return acc, nil
}

// LockForUpdate obtains an exclusive lock on the account and returns its
// current state. Must be called within a transaction.
func (r *AccountRepository) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`

	acc, err := scanAccount(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrAccountNotFound{AccountID: id}
		}
		r.logger.Error("Failed to lock account for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock account for update: %w", err)
	}

	return acc, nil
}

// LockPairForUpdate locks two accounts in one statement ordered by ascending
// id. The fixed lock order across all concurrent transfers is the sole
// deadlock-avoidance mechanism, so it must never be bypassed.
func (r *AccountRepository) LockPairForUpdate(ctx context.Context, idA, idB int64) (*account.Account, *account.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1 OR id = $2
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.querier.Query(ctx, query, idA, idB)
	if err != nil {
		r.logger.Error("Failed to lock account pair", "id_a", idA, "id_b", idB, "error", err)
		return nil, nil, fmt.Errorf("failed to lock account pair: %w", err)
	}
	defer rows.Close()

	locked := make(map[int64]*account.Account, 2)
	for rows.Next() {
		var acc account.Account
		if err := rows.Scan(
			&acc.ID,
			&acc.AccountNo,
			&acc.Kind,
			&acc.Balance,
			&acc.InterestRate,
			&acc.OverdraftLimit,
			&acc.CreatedAt,
			&acc.ClosedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan locked account: %w", err)
		}
		locked[acc.ID] = &acc
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read locked accounts: %w", err)
	}

	first, ok := locked[idA]
	if !ok {
		return nil, nil, account.ErrAccountNotFound{AccountID: idA}
	}
	second, ok := locked[idB]
	if !ok {
		return nil, nil, account.ErrAccountNotFound{AccountID: idB}
	}

	return first, second, nil
}

// UpdateBalance persists a balance computed under an exclusive lock
func (r *AccountRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, balance, id)
	if err != nil {
		r.logger.Error("Failed to update account balance", "id", id, "error", err)
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountNotFound{AccountID: id}
	}

	return nil
}

// MarkClosed freezes the account, stamping closed_at exactly once
func (r *AccountRepository) MarkClosed(ctx context.Context, id int64, closedAt time.Time) error {
	query := `
		UPDATE accounts
		SET kind = $1, closed_at = $2
		WHERE id = $3 AND closed_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, account.KindClosed, closedAt, id)
	if err != nil {
		r.logger.Error("Failed to mark account closed", "id", id, "error", err)
		return fmt.Errorf("failed to mark account closed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return account.ErrAccountClosed
	}

	return nil
}

// OwnedBy reports whether the customer owns the account
func (r *AccountRepository) OwnedBy(ctx context.Context, accountID, customerID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM customer_accounts
			WHERE account_id = $1 AND customer_id = $2
		)
	`

	var owned bool
	if err := r.querier.QueryRow(ctx, query, accountID, customerID).Scan(&owned); err != nil {
		r.logger.Error("Failed to check account ownership", "account_id", accountID, "customer_id", customerID, "error", err)
		return false, fmt.Errorf("failed to check account ownership: %w", err)
	}

	return owned, nil
}

// LinkOwner creates the owner relation for a newly opened account
func (r *AccountRepository) LinkOwner(ctx context.Context, accountID, customerID int64, at time.Time) error {
	query := `
		INSERT INTO customer_accounts (customer_id, account_id, last_access_date)
		VALUES ($1, $2, $3)
	`

	if _, err := r.querier.Exec(ctx, query, customerID, accountID, at); err != nil {
		r.logger.Error("Failed to link account owner", "account_id", accountID, "customer_id", customerID, "error", err)
		return fmt.Errorf("failed to link account owner: %w", err)
	}

	return nil
}

// TouchOwnership updates the owner relation's last access date
func (r *AccountRepository) TouchOwnership(ctx context.Context, accountID, customerID int64, at time.Time) error {
	query := `
		UPDATE customer_accounts
		SET last_access_date = $1
		WHERE account_id = $2 AND customer_id = $3
	`

	if _, err := r.querier.Exec(ctx, query, at, accountID, customerID); err != nil {
		r.logger.Error("Failed to touch account ownership", "account_id", accountID, "customer_id", customerID, "error", err)
		return fmt.Errorf("failed to touch account ownership: %w", err)
	}

	return nil
}

// PurgeClosedBefore deletes closed accounts past the retention cutoff. Journal
// rows and ownership links go with them via ON DELETE CASCADE.
func (r *AccountRepository) PurgeClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM accounts
		WHERE kind = $1 AND closed_at IS NOT NULL AND closed_at < $2
	`

	result, err := r.querier.Exec(ctx, query, account.KindClosed, cutoff)
	if err != nil {
		r.logger.Error("Failed to purge closed accounts", "cutoff", cutoff, "error", err)
		return 0, fmt.Errorf("failed to purge closed accounts: %w", err)
	}

	return result.RowsAffected(), nil
}
