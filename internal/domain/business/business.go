package business

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// ErrAlreadyDecided indicates a pending request that was decided concurrently
var ErrAlreadyDecided = errors.New("business request has already been decided")

// Type identifies the customer-facing operation a business record anchors
type Type string

const (
	TypeDeposit      Type = "DEPOSIT"
	TypeWithdraw     Type = "WITHDRAW"
	TypeTransfer     Type = "TRANSFER"
	TypeRepayment    Type = "REPAYMENT"
	TypeCloseAccount Type = "CLOSE_ACCOUNT"
	TypeDeleteLoan   Type = "DELETE_LOAN"
)

// Status is the workflow state of a business record
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
)

// Business is the audit anchor for one customer-initiated money operation or
// approval workflow. Completed records are immutable; only pending closure
// requests move to COMPLETED or REJECTED through the approval workflow.
type Business struct {
	ID         int64      `json:"id"`
	Type       Type       `json:"business_type"`
	CustomerID *int64     `json:"customer_id,omitempty"`
	AccountID  *int64     `json:"account_id,omitempty"`
	LoanID     *int64     `json:"loan_id,omitempty"`
	Status     Status     `json:"status"`
	Remark     string     `json:"remark"`
	OperatorID int64      `json:"operator_id"`
	CreatedAt  time.Time  `json:"created_at"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

// Repository defines business record persistence operations
type Repository interface {
	// Create inserts the record and fills in its generated id
	Create(ctx context.Context, b *Business) error
	GetByID(ctx context.Context, id int64) (*Business, error)

	// LockForUpdate acquires an exclusive lock on a business row so the
	// approval workflow decides each pending request exactly once
	LockForUpdate(ctx context.Context, id int64) (*Business, error)

	Decide(ctx context.Context, id int64, status Status, remark string, decidedAt time.Time) error
	WithTx(tx pgx.Tx) Repository
}

// ErrBusinessNotFound indicates a missing business record
type ErrBusinessNotFound struct {
	BusinessID int64
}

func (e ErrBusinessNotFound) Error() string {
	return "business record not found: " + strconv.FormatInt(e.BusinessID, 10)
}

// Is matches any ErrBusinessNotFound when the target carries a zero id
func (e ErrBusinessNotFound) Is(target error) bool {
	t, ok := target.(ErrBusinessNotFound)
	if !ok {
		return false
	}
	return t.BusinessID == 0 || e.BusinessID == t.BusinessID
}
