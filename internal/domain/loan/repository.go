package loan

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines loan persistence operations. Schedule entries and
// repayments are append-only; the loan header row is the only mutable state
// and must be locked before it is read for mutation.
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	AddBorrowers(ctx context.Context, loanID int64, customerIDs []int64) error
	CreateScheduleEntries(ctx context.Context, entries []ScheduleEntry) error

	GetByID(ctx context.Context, id int64) (*Loan, error)
	GetByLoanNo(ctx context.Context, loanNo string) (*Loan, error)
	LockForUpdate(ctx context.Context, id int64) (*Loan, error)

	// ListSchedule returns the loan's schedule entries ordered by period
	ListSchedule(ctx context.Context, loanID int64) ([]ScheduleEntry, error)

	// BorrowedBy reports whether the customer is a borrower on the loan
	BorrowedBy(ctx context.Context, loanID, customerID int64) (bool, error)

	// SumRepayments totals all recorded repayments for the loan
	SumRepayments(ctx context.Context, loanID int64) (decimal.Decimal, error)
	CreateRepayment(ctx context.Context, r *Repayment) error

	UpdateStatus(ctx context.Context, id int64, status Status, settledAt *time.Time) error
	UpdateOutstanding(ctx context.Context, id int64, outstanding decimal.Decimal) error

	// DeleteCascade removes the loan with its schedule entries, repayments,
	// and borrower links. Admin-only destructive path.
	DeleteCascade(ctx context.Context, id int64) error

	WithTx(tx pgx.Tx) Repository
}

// ErrLoanNotFound indicates a missing loan
type ErrLoanNotFound struct {
	LoanID int64
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + strconv.FormatInt(e.LoanID, 10)
}

// Is matches any ErrLoanNotFound when the target carries a zero id
func (e ErrLoanNotFound) Is(target error) bool {
	t, ok := target.(ErrLoanNotFound)
	if !ok {
		return false
	}
	return t.LoanID == 0 || e.LoanID == t.LoanID
}

// ErrNotBorrower indicates the calling customer is not a borrower on the loan
type ErrNotBorrower struct {
	LoanID     int64
	CustomerID int64
}

func (e ErrNotBorrower) Error() string {
	return "customer " + strconv.FormatInt(e.CustomerID, 10) +
		" is not a borrower on loan " + strconv.FormatInt(e.LoanID, 10)
}

// Is matches any ErrNotBorrower when the target carries zero ids
func (e ErrNotBorrower) Is(target error) bool {
	t, ok := target.(ErrNotBorrower)
	if !ok {
		return false
	}
	return (t.LoanID == 0 || e.LoanID == t.LoanID) &&
		(t.CustomerID == 0 || e.CustomerID == t.CustomerID)
}

// ErrDuplicateLoanNo indicates a loan number uniqueness violation
type ErrDuplicateLoanNo struct {
	LoanNo string
}

func (e ErrDuplicateLoanNo) Error() string {
	return "loan number already exists: " + e.LoanNo
}

// ErrInvalidTransition indicates a status change outside the allowed table
type ErrInvalidTransition struct {
	From Status
	To   Status
}

func (e ErrInvalidTransition) Error() string {
	return "invalid loan status transition: " + string(e.From) + " -> " + string(e.To)
}

// Is matches any ErrInvalidTransition when the target carries empty states
func (e ErrInvalidTransition) Is(target error) bool {
	t, ok := target.(ErrInvalidTransition)
	if !ok {
		return false
	}
	return (t.From == "" || e.From == t.From) && (t.To == "" || e.To == t.To)
}
