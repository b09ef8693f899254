package journal

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Repository manages journal entry and transfer persistence. Both tables are
// append-only: rows justify balance mutations and are never edited.
type Repository interface {
	// CreateEntry inserts a journal row and fills in its generated id
	CreateEntry(ctx context.Context, e *Entry) error

	// CreateTransfer inserts a transfer row and fills in its generated id
	CreateTransfer(ctx context.Context, t *Transfer) error

	// ListByAccountID returns an account's journal rows in created_at order,
	// oldest first. Used for balance replay and statements.
	ListByAccountID(ctx context.Context, accountID int64) ([]*Entry, error)

	WithTx(tx pgx.Tx) Repository
}
