package events

import (
	"time"

	"github.com/google/uuid"
)

// Operation kinds published after a committed engine operation
const (
	KindDeposit       = "DEPOSIT"
	KindWithdraw      = "WITHDRAW"
	KindTransfer      = "TRANSFER"
	KindLoanCreated   = "LOAN_CREATED"
	KindRepayment     = "REPAYMENT"
	KindLoanStatus    = "LOAN_STATUS_CHANGED"
	KindAccountClosed = "ACCOUNT_CLOSED"
)

// OperationEvent is the message published to the operation topic after a
// committed operation. Publishing is best-effort and happens strictly after
// commit; consumers must treat the journal as the source of truth.
type OperationEvent struct {
	EventID       uuid.UUID `json:"event_id"`
	Kind          string    `json:"kind"`
	BusinessID    int64     `json:"business_id,omitempty"`
	AccountIDs    []int64   `json:"account_ids,omitempty"`
	LoanID        int64     `json:"loan_id,omitempty"`
	Amount        string    `json:"amount,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
