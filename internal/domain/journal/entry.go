package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryType identifies the kind of balance change a journal row records
type EntryType string

const (
	EntryDeposit     EntryType = "DEPOSIT"
	EntryWithdraw    EntryType = "WITHDRAW"
	EntryTransferOut EntryType = "TRANSFER_OUT"
	EntryTransferIn  EntryType = "TRANSFER_IN"
	EntryRepayment   EntryType = "REPAYMENT"
)

// Entry is one append-only journal row. Amount is signed: credits positive,
// debits negative. BalanceAfter is a snapshot taken at write time and never
// recomputed, so replaying an account's entries in created_at order must
// reproduce its current balance exactly.
type Entry struct {
	ID           int64           `json:"id"`
	AccountID    int64           `json:"account_id"`
	BusinessID   *int64          `json:"business_id,omitempty"`
	TransferID   *int64          `json:"transfer_id,omitempty"`
	Type         EntryType       `json:"txn_type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Transfer is one row per transfer between two accounts
type Transfer struct {
	ID            int64           `json:"id"`
	FromAccountID int64           `json:"from_account_id"`
	ToAccountID   int64           `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
}
