package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrAlreadySettled       = errors.New("loan is already settled")
	ErrAmountOutOfRange     = errors.New("repayment amount is out of range")
	ErrInvalidMethod        = errors.New("unsupported repayment method")
	ErrInvalidTerm          = errors.New("term must be a positive number of months")
	ErrInvalidRate          = errors.New("interest rate must not be negative")
	ErrInvalidPrincipal     = errors.New("loan amount must be positive")
	ErrNoBorrowers          = errors.New("loan requires at least one borrower")
	ErrConfirmationRequired = errors.New("operation requires explicit confirmation")
)

// Status is the lifecycle state of a loan
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusDisbursed Status = "DISBURSED"
	StatusSettled   Status = "SETTLED"
)

// Method selects the amortization scheme used when the schedule is generated
type Method string

const (
	MethodEqualInstallment Method = "EQUAL_INSTALLMENT"
	MethodEqualPrincipal   Method = "EQUAL_PRINCIPAL"
)

// ValidMethod reports whether m is a supported repayment method
func ValidMethod(m Method) bool {
	return m == MethodEqualInstallment || m == MethodEqualPrincipal
}

// allowedTransitions is the fixed table of administrative status transitions.
// Settlement through repayment is a separate entry point guarded only by
// "not already settled".
var allowedTransitions = map[Status][]Status{
	StatusPending:   {StatusApproved},
	StatusApproved:  {StatusDisbursed, StatusSettled},
	StatusDisbursed: {StatusSettled},
}

// CanTransition reports whether the administrative transition from -> to is allowed
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Loan is a loan header. Outstanding is an advisory snapshot maintained by the
// repayment processor; the authoritative figure is always recomputed from the
// principal, the rate, and the repayment records.
type Loan struct {
	ID           int64           `json:"id"`
	LoanNo       string          `json:"loan_no"`
	Amount       decimal.Decimal `json:"amount"`
	BranchID     int64           `json:"branch_id"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months"`
	Method       Method          `json:"repayment_method"`
	Status       Status          `json:"status"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	SettledAt    *time.Time      `json:"settled_at,omitempty"`
}

// ScheduleEntry is one period of the amortization schedule generated at
// origination. Entries are informational and never rewritten after creation.
type ScheduleEntry struct {
	ID           int64           `json:"id"`
	LoanID       int64           `json:"loan_id"`
	PeriodNo     int             `json:"period_no"`
	DueDate      time.Time       `json:"due_date"`
	PrincipalDue decimal.Decimal `json:"principal_due"`
	InterestDue  decimal.Decimal `json:"interest_due"`
	Status       string          `json:"status"`
}

// Repayment is an immutable record of an actual payment against a loan
type Repayment struct {
	ID               int64           `json:"id"`
	LoanID           int64           `json:"loan_id"`
	BatchNo          string          `json:"batch_no"`
	PaidAt           time.Time       `json:"paid_at"`
	Amount           decimal.Decimal `json:"amount"`
	SavingsAccountID int64           `json:"savings_account_id"`
}
