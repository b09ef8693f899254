package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/platform/persistence"
)

const loanColumns = `id, loan_no, amount, branch_id, interest_rate, term_months, repayment_method, status, start_date, end_date, outstanding, settled_at`

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLoanRepository creates a new PostgreSQL loan repository
func NewLoanRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.Repository {
	return &LoanRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *LoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return &LoanRepository{
		querier: tx,
		logger:  r.logger,
	}
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID,
		&l.LoanNo,
		&l.Amount,
		&l.BranchID,
		&l.InterestRate,
		&l.TermMonths,
		&l.Method,
		&l.Status,
		&l.StartDate,
		&l.EndDate,
		&l.Outstanding,
		&l.SettledAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create stores a new loan header and fills in its generated id
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (loan_no, amount, branch_id, interest_rate, term_months, repayment_method, status, start_date, end_date, outstanding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		l.LoanNo,
		l.Amount,
		l.BranchID,
		l.InterestRate,
		l.TermMonths,
		l.Method,
		l.Status,
		l.StartDate,
		l.EndDate,
		l.Outstanding,
	).Scan(&l.ID)
	if err != nil {
		r.logger.Error("Failed to create loan", "loan_no", l.LoanNo, "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// AddBorrowers links customers to the loan
func (r *LoanRepository) AddBorrowers(ctx context.Context, loanID int64, customerIDs []int64) error {
	query := `
		INSERT INTO customer_loans (customer_id, loan_id)
		SELECT unnest($1::bigint[]), $2
	`

	if _, err := r.querier.Exec(ctx, query, customerIDs, loanID); err != nil {
		r.logger.Error("Failed to add loan borrowers", "loan_id", loanID, "error", err)
		return fmt.Errorf("failed to add loan borrowers: %w", err)
	}

	return nil
}

// CreateScheduleEntries inserts the full amortization schedule for a loan
func (r *LoanRepository) CreateScheduleEntries(ctx context.Context, entries []loan.ScheduleEntry) error {
	query := `
		INSERT INTO repayment_schedules (loan_id, period_no, due_date, principal_due, interest_due, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for i := range entries {
		e := &entries[i]
		if _, err := r.querier.Exec(ctx, query,
			e.LoanID,
			e.PeriodNo,
			e.DueDate,
			e.PrincipalDue,
			e.InterestDue,
			e.Status,
		); err != nil {
			r.logger.Error("Failed to create schedule entry", "loan_id", e.LoanID, "period_no", e.PeriodNo, "error", err)
			return fmt.Errorf("failed to create schedule entry: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
	`

	l, err := scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to get loan", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

// GetByLoanNo retrieves a loan by its loan number. Returns nil, nil when no
// loan carries the number.
func (r *LoanRepository) GetByLoanNo(ctx context.Context, loanNo string) (*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE loan_no = $1
	`

	l, err := scanLoan(r.querier.QueryRow(ctx, query, loanNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get loan by loan number", "loan_no", loanNo, "error", err)
		return nil, fmt.Errorf("failed to get loan by loan number: %w", err)
	}

	return l, nil
}

// LockForUpdate obtains an exclusive lock on the loan row. Must be called
// within a transaction.
func (r *LoanRepository) LockForUpdate(ctx context.Context, id int64) (*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
		FOR UPDATE
	`

	l, err := scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to lock loan for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock loan for update: %w", err)
	}

	return l, nil
}

// ListSchedule returns the loan's schedule entries ordered by period
func (r *LoanRepository) ListSchedule(ctx context.Context, loanID int64) ([]loan.ScheduleEntry, error) {
	query := `
		SELECT id, loan_id, period_no, due_date, principal_due, interest_due, status
		FROM repayment_schedules
		WHERE loan_id = $1
		ORDER BY period_no
	`

	rows, err := r.querier.Query(ctx, query, loanID)
	if err != nil {
		r.logger.Error("Failed to list schedule entries", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf("failed to list schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []loan.ScheduleEntry
	for rows.Next() {
		var e loan.ScheduleEntry
		if err := rows.Scan(
			&e.ID,
			&e.LoanID,
			&e.PeriodNo,
			&e.DueDate,
			&e.PrincipalDue,
			&e.InterestDue,
			&e.Status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read schedule entries: %w", err)
	}

	return entries, nil
}

// BorrowedBy reports whether the customer is a borrower on the loan
func (r *LoanRepository) BorrowedBy(ctx context.Context, loanID, customerID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM customer_loans
			WHERE loan_id = $1 AND customer_id = $2
		)
	`

	var borrowed bool
	if err := r.querier.QueryRow(ctx, query, loanID, customerID).Scan(&borrowed); err != nil {
		r.logger.Error("Failed to check loan borrower", "loan_id", loanID, "customer_id", customerID, "error", err)
		return false, fmt.Errorf("failed to check loan borrower: %w", err)
	}

	return borrowed, nil
}

// SumRepayments totals all recorded repayments for the loan
func (r *LoanRepository) SumRepayments(ctx context.Context, loanID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM repayments
		WHERE loan_id = $1
	`

	var total decimal.Decimal
	if err := r.querier.QueryRow(ctx, query, loanID).Scan(&total); err != nil {
		r.logger.Error("Failed to sum repayments", "loan_id", loanID, "error", err)
		return decimal.Zero, fmt.Errorf("failed to sum repayments: %w", err)
	}

	return total, nil
}

// CreateRepayment inserts an immutable repayment record and fills in its
// generated id
func (r *LoanRepository) CreateRepayment(ctx context.Context, rep *loan.Repayment) error {
	query := `
		INSERT INTO repayments (loan_id, batch_no, paid_at, amount, savings_account_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		rep.LoanID,
		rep.BatchNo,
		rep.PaidAt,
		rep.Amount,
		rep.SavingsAccountID,
	).Scan(&rep.ID)
	if err != nil {
		r.logger.Error("Failed to create repayment", "loan_id", rep.LoanID, "batch_no", rep.BatchNo, "error", err)
		return fmt.Errorf("failed to create repayment: %w", err)
	}

	return nil
}

// UpdateStatus persists a loan status change decided under an exclusive lock
func (r *LoanRepository) UpdateStatus(ctx context.Context, id int64, status loan.Status, settledAt *time.Time) error {
	query := `
		UPDATE loans
		SET status = $1, settled_at = $2
		WHERE id = $3
	`

	result, err := r.querier.Exec(ctx, query, status, settledAt, id)
	if err != nil {
		r.logger.Error("Failed to update loan status", "id", id, "status", string(status), "error", err)
		return fmt.Errorf("failed to update loan status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: id}
	}

	return nil
}

// UpdateOutstanding persists the advisory outstanding snapshot
func (r *LoanRepository) UpdateOutstanding(ctx context.Context, id int64, outstanding decimal.Decimal) error {
	query := `
		UPDATE loans
		SET outstanding = $1
		WHERE id = $2
	`

	result, err := r.querier.Exec(ctx, query, outstanding, id)
	if err != nil {
		r.logger.Error("Failed to update loan outstanding", "id", id, "error", err)
		return fmt.Errorf("failed to update loan outstanding: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: id}
	}

	return nil
}

// DeleteCascade removes the loan together with its schedule, repayments, and
// borrower links. The dependent tables cascade on the loans foreign key.
func (r *LoanRepository) DeleteCascade(ctx context.Context, id int64) error {
	query := `DELETE FROM loans WHERE id = $1`

	result, err := r.querier.Exec(ctx, query, id)
	if err != nil {
		r.logger.Error("Failed to delete loan", "id", id, "error", err)
		return fmt.Errorf("failed to delete loan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: id}
	}

	return nil
}
