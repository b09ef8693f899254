package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/platform/persistence"
)

const businessColumns = `id, business_type, customer_id, account_id, loan_id, status, remark, operator_id, created_at, decided_at`

// BusinessRepository implements the business.Repository interface for PostgreSQL
type BusinessRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBusinessRepository creates a new PostgreSQL business repository
func NewBusinessRepository(logger *slog.Logger, db *persistence.PostgresDB) business.Repository {
	return &BusinessRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *BusinessRepository) WithTx(tx pgx.Tx) business.Repository {
	return &BusinessRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanBusiness(row pgx.Row) (*business.Business, error) {
	var b business.Business
	err := row.Scan(
		&b.ID,
		&b.Type,
		&b.CustomerID,
		&b.AccountID,
		&b.LoanID,
		&b.Status,
		&b.Remark,
		&b.OperatorID,
		&b.CreatedAt,
		&b.DecidedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a business record and fills in its generated id
func (r *BusinessRepository) Create(ctx context.Context, b *business.Business) error {
	query := `
		INSERT INTO businesses (business_type, customer_id, account_id, loan_id, status, remark, operator_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		b.Type,
		b.CustomerID,
		b.AccountID,
		b.LoanID,
		b.Status,
		b.Remark,
		b.OperatorID,
		b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		r.logger.Error("Failed to create business record", "business_type", string(b.Type), "error", err)
		return fmt.Errorf("failed to create business record: %w", err)
	}

	return nil
}

// GetByID retrieves a business record by its ID
func (r *BusinessRepository) GetByID(ctx context.Context, id int64) (*business.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE id = $1
	`

	b, err := scanBusiness(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, business.ErrBusinessNotFound{BusinessID: id}
		}
		r.logger.Error("Failed to get business record", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get business record: %w", err)
	}

	return b, nil
}

// LockForUpdate obtains an exclusive lock on the business row so each pending
// request is decided exactly once. Must be called within a transaction.
func (r *BusinessRepository) LockForUpdate(ctx context.Context, id int64) (*business.Business, error) {
	query := `
		SELECT ` + businessColumns + `
		FROM businesses
		WHERE id = $1
		FOR UPDATE
	`

	b, err := scanBusiness(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, business.ErrBusinessNotFound{BusinessID: id}
		}
		r.logger.Error("Failed to lock business record", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock business record: %w", err)
	}

	return b, nil
}

// Decide moves a pending business record to its final status
func (r *BusinessRepository) Decide(ctx context.Context, id int64, status business.Status, remark string, decidedAt time.Time) error {
	query := `
		UPDATE businesses
		SET status = $1, remark = $2, decided_at = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.querier.Exec(ctx, query, status, remark, decidedAt, id, business.StatusPending)
	if err != nil {
		r.logger.Error("Failed to decide business record", "id", id, "status", string(status), "error", err)
		return fmt.Errorf("failed to decide business record: %w", err)
	}

	if result.RowsAffected() == 0 {
		return business.ErrAlreadyDecided
	}

	return nil
}
