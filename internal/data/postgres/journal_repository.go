package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/atlasbank-portal/internal/domain/journal"
	"github.com/atlasbank-portal/internal/platform/persistence"
)

// JournalRepository implements the journal.Repository interface for PostgreSQL
type JournalRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewJournalRepository creates a new PostgreSQL journal repository
func NewJournalRepository(logger *slog.Logger, db *persistence.PostgresDB) journal.Repository {
	return &JournalRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *JournalRepository) WithTx(tx pgx.Tx) journal.Repository {
	return &JournalRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// CreateEntry inserts an append-only journal row and fills in its generated id
func (r *JournalRepository) CreateEntry(ctx context.Context, e *journal.Entry) error {
	query := `
		INSERT INTO transactions (account_id, business_id, transfer_id, txn_type, amount, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		e.AccountID,
		e.BusinessID,
		e.TransferID,
		e.Type,
		e.Amount,
		e.BalanceAfter,
		e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		r.logger.Error("Failed to create journal entry", "account_id", e.AccountID, "txn_type", string(e.Type), "error", err)
		return fmt.Errorf("failed to create journal entry: %w", err)
	}

	return nil
}

// CreateTransfer inserts a transfer row and fills in its generated id
func (r *JournalRepository) CreateTransfer(ctx context.Context, t *journal.Transfer) error {
	query := `
		INSERT INTO transfers (from_account_id, to_account_id, amount, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		t.FromAccountID,
		t.ToAccountID,
		t.Amount,
		t.Status,
		t.CreatedAt,
	).Scan(&t.ID)
	if err != nil {
		r.logger.Error("Failed to create transfer", "from_account_id", t.FromAccountID, "to_account_id", t.ToAccountID, "error", err)
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	return nil
}

// ListByAccountID returns an account's journal rows oldest first
func (r *JournalRepository) ListByAccountID(ctx context.Context, accountID int64) ([]*journal.Entry, error) {
	query := `
		SELECT id, account_id, business_id, transfer_id, txn_type, amount, balance_after, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.querier.Query(ctx, query, accountID)
	if err != nil {
		r.logger.Error("Failed to list journal entries", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []*journal.Entry
	for rows.Next() {
		var e journal.Entry
		if err := rows.Scan(
			&e.ID,
			&e.AccountID,
			&e.BusinessID,
			&e.TransferID,
			&e.Type,
			&e.Amount,
			&e.BalanceAfter,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal entries: %w", err)
	}

	return entries, nil
}
