package handler

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/journal"
	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/engine/ledger"
	"github.com/atlasbank-portal/internal/engine/lending"
	"github.com/atlasbank-portal/internal/engine/lifecycle"
)

// LedgerService is the money-movement surface consumed by the ledger handler
type LedgerService interface {
	Deposit(ctx context.Context, p shared.Principal, accountID int64, amount decimal.Decimal, remark string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, p shared.Principal, accountID int64, amount decimal.Decimal, remark string) (decimal.Decimal, error)
	Transfer(ctx context.Context, p shared.Principal, fromID, toID int64, amount decimal.Decimal, remark string) (*ledger.TransferResult, error)
	History(ctx context.Context, p shared.Principal, accountID int64) ([]*journal.Entry, error)
}

// LendingService is the loan surface consumed by the loan handler
type LendingService interface {
	CreateLoan(ctx context.Context, p shared.Principal, in lending.CreateLoanInput) (*loan.Loan, error)
	GetLoan(ctx context.Context, p shared.Principal, loanID int64) (*loan.Loan, error)
	Schedule(ctx context.Context, p shared.Principal, loanID int64) ([]loan.ScheduleEntry, error)
	Repay(ctx context.Context, p shared.Principal, loanID, savingsAccountID int64, amount decimal.Decimal, confirm bool) (*lending.RepayResult, error)
	UpdateLoanStatus(ctx context.Context, p shared.Principal, loanID int64, target loan.Status, confirm bool) error
}

// LifecycleService is the account-lifecycle surface consumed by the lifecycle handler
type LifecycleService interface {
	OpenAccount(ctx context.Context, p shared.Principal, in lifecycle.OpenAccountInput) (*account.Account, error)
	RequestClosure(ctx context.Context, p shared.Principal, accountID int64, reason string) (*lifecycle.ClosureResult, error)
	ApproveClosure(ctx context.Context, p shared.Principal, businessID int64, approve bool, remark string) error
	StartVerification(p shared.Principal) (string, error)
	DeleteLoan(ctx context.Context, p shared.Principal, loanID int64, code string) error
}

// Compile-time checks that the engine services satisfy the handler surfaces
var (
	_ LedgerService    = (*ledger.Service)(nil)
	_ LendingService   = (*lending.Service)(nil)
	_ LifecycleService = (*lifecycle.Service)(nil)
)
