package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/atlasbank-portal/internal/domain/branch"
	"github.com/atlasbank-portal/internal/platform/persistence"
)

// BranchRepository implements the branch.Repository interface for PostgreSQL
type BranchRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBranchRepository creates a new PostgreSQL branch repository
func NewBranchRepository(logger *slog.Logger, db *persistence.PostgresDB) branch.Repository {
	return &BranchRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *BranchRepository) WithTx(tx pgx.Tx) branch.Repository {
	return &BranchRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// GetByID retrieves a branch by its ID
func (r *BranchRepository) GetByID(ctx context.Context, id int64) (*branch.Branch, error) {
	query := `
		SELECT id, branch_code, name, city
		FROM branches
		WHERE id = $1
	`

	var b branch.Branch
	err := r.querier.QueryRow(ctx, query, id).Scan(&b.ID, &b.BranchCode, &b.Name, &b.City)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, branch.ErrBranchNotFound{BranchID: id}
		}
		r.logger.Error("Failed to get branch", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}

	return &b, nil
}

// Exists reports whether a branch row exists
func (r *BranchRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM branches WHERE id = $1)`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		r.logger.Error("Failed to check branch existence", "id", id, "error", err)
		return false, fmt.Errorf("failed to check branch existence: %w", err)
	}

	return exists, nil
}
