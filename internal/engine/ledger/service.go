// Package ledger implements the money-movement core: deposits, withdrawals,
// and transfers. Every operation runs inside a single database transaction
// that locks the touched account rows, re-reads their balances under the lock,
// and writes the business record plus the journal rows atomically with the
// balance update.
package ledger

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/activity"
	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/journal"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/activitylog"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
	"github.com/atlasbank-portal/internal/platform/persistence"
)

// TransferResult carries the post-transfer balances of both accounts
type TransferResult struct {
	TransferID  int64           `json:"transfer_id"`
	FromBalance decimal.Decimal `json:"from_balance"`
	ToBalance   decimal.Decimal `json:"to_balance"`
}

// Service executes ledger operations
type Service struct {
	db         persistence.TxRunner
	accounts   account.Repository
	businesses business.Repository
	journal    journal.Repository
	activity   activitylog.Sink
	events     events.Publisher
	logger     *slog.Logger
}

// NewService creates a ledger service
func NewService(
	db persistence.TxRunner,
	accounts account.Repository,
	businesses business.Repository,
	journalRepo journal.Repository,
	activity activitylog.Sink,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:         db,
		accounts:   accounts,
		businesses: businesses,
		journal:    journalRepo,
		activity:   activity,
		events:     publisher,
		logger:     logger,
	}
}

// Deposit credits the account and returns the new balance
func (s *Service) Deposit(ctx context.Context, p shared.Principal, accountID int64, amount decimal.Decimal, remark string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, account.ErrInvalidAmount
	}

	var (
		newBalance decimal.Decimal
		biz        *business.Business
	)
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.checkOwnership(ctx, accounts, p, accountID); err != nil {
			return err
		}

		if err := acc.Deposit(amount); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, acc.ID, acc.Balance); err != nil {
			return err
		}

		now := time.Now().UTC()
		biz = s.newBusiness(business.TypeDeposit, p, &accountID, remark, now)
		if err := s.businesses.WithTx(tx).Create(ctx, biz); err != nil {
			return err
		}

		entry := &journal.Entry{
			AccountID:    acc.ID,
			BusinessID:   &biz.ID,
			Type:         journal.EntryDeposit,
			Amount:       amount,
			BalanceAfter: acc.Balance,
			CreatedAt:    now,
		}
		if err := s.journal.WithTx(tx).CreateEntry(ctx, entry); err != nil {
			return err
		}

		if err := s.touchOwnership(ctx, accounts, p, accountID, now); err != nil {
			return err
		}

		newBalance = acc.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("Deposit completed", "account_id", accountID, "business_id", biz.ID)
	s.afterCommit(ctx, events.KindDeposit, p, biz, []int64{accountID}, 0, amount)

	return newBalance, nil
}

// Withdraw debits the account, honoring the kind-specific floor, and returns
// the new balance
func (s *Service) Withdraw(ctx context.Context, p shared.Principal, accountID int64, amount decimal.Decimal, remark string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, account.ErrInvalidAmount
	}

	var (
		newBalance decimal.Decimal
		biz        *business.Business
	)
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if err := s.checkOwnership(ctx, accounts, p, accountID); err != nil {
			return err
		}

		if err := acc.Withdraw(amount); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, acc.ID, acc.Balance); err != nil {
			return err
		}

		now := time.Now().UTC()
		biz = s.newBusiness(business.TypeWithdraw, p, &accountID, remark, now)
		if err := s.businesses.WithTx(tx).Create(ctx, biz); err != nil {
			return err
		}

		entry := &journal.Entry{
			AccountID:    acc.ID,
			BusinessID:   &biz.ID,
			Type:         journal.EntryWithdraw,
			Amount:       amount.Neg(),
			BalanceAfter: acc.Balance,
			CreatedAt:    now,
		}
		if err := s.journal.WithTx(tx).CreateEntry(ctx, entry); err != nil {
			return err
		}

		if err := s.touchOwnership(ctx, accounts, p, accountID, now); err != nil {
			return err
		}

		newBalance = acc.Balance
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	s.logger.Info("Withdrawal completed", "account_id", accountID, "business_id", biz.ID)
	s.afterCommit(ctx, events.KindWithdraw, p, biz, []int64{accountID}, 0, amount)

	return newBalance, nil
}

// Transfer moves the amount between two accounts atomically. Both rows are
// locked in a single ascending-id statement so concurrent transfers over the
// same pair cannot deadlock.
func (s *Service) Transfer(ctx context.Context, p shared.Principal, fromID, toID int64, amount decimal.Decimal, remark string) (*TransferResult, error) {
	if !amount.IsPositive() {
		return nil, account.ErrInvalidAmount
	}
	if fromID == toID {
		return nil, account.ErrSameAccount
	}

	var (
		result TransferResult
		biz    *business.Business
	)
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)

		from, to, err := accounts.LockPairForUpdate(ctx, fromID, toID)
		if err != nil {
			return err
		}
		if err := s.checkOwnership(ctx, accounts, p, fromID); err != nil {
			return err
		}

		if err := from.Withdraw(amount); err != nil {
			return err
		}
		if err := to.Deposit(amount); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, from.ID, from.Balance); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, to.ID, to.Balance); err != nil {
			return err
		}

		now := time.Now().UTC()
		transfer := &journal.Transfer{
			FromAccountID: fromID,
			ToAccountID:   toID,
			Amount:        amount,
			Status:        "COMPLETED",
			CreatedAt:     now,
		}
		journalRepo := s.journal.WithTx(tx)
		if err := journalRepo.CreateTransfer(ctx, transfer); err != nil {
			return err
		}

		biz = s.newBusiness(business.TypeTransfer, p, &fromID, remark, now)
		if err := s.businesses.WithTx(tx).Create(ctx, biz); err != nil {
			return err
		}

		out := &journal.Entry{
			AccountID:    from.ID,
			BusinessID:   &biz.ID,
			TransferID:   &transfer.ID,
			Type:         journal.EntryTransferOut,
			Amount:       amount.Neg(),
			BalanceAfter: from.Balance,
			CreatedAt:    now,
		}
		if err := journalRepo.CreateEntry(ctx, out); err != nil {
			return err
		}
		in := &journal.Entry{
			AccountID:    to.ID,
			BusinessID:   &biz.ID,
			TransferID:   &transfer.ID,
			Type:         journal.EntryTransferIn,
			Amount:       amount,
			BalanceAfter: to.Balance,
			CreatedAt:    now,
		}
		if err := journalRepo.CreateEntry(ctx, in); err != nil {
			return err
		}

		if err := s.touchOwnership(ctx, accounts, p, fromID, now); err != nil {
			return err
		}

		result = TransferResult{
			TransferID:  transfer.ID,
			FromBalance: from.Balance,
			ToBalance:   to.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transfer completed",
		"from_account_id", fromID,
		"to_account_id", toID,
		"business_id", biz.ID,
	)
	s.afterCommit(ctx, events.KindTransfer, p, biz, []int64{fromID, toID}, 0, amount)

	return &result, nil
}

// History returns an account's journal rows oldest first. Non-admin callers
// only see accounts they own.
func (s *Service) History(ctx context.Context, p shared.Principal, accountID int64) ([]*journal.Entry, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		owned, err := s.accounts.OwnedBy(ctx, accountID, p.CustomerID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, account.ErrNotOwned{AccountID: accountID, CustomerID: p.CustomerID}
		}
	}

	return s.journal.ListByAccountID(ctx, accountID)
}

// checkOwnership enforces that non-admin principals only move money on
// accounts they own. Runs inside the locked transaction.
func (s *Service) checkOwnership(ctx context.Context, accounts account.Repository, p shared.Principal, accountID int64) error {
	if p.IsAdmin() {
		return nil
	}
	owned, err := accounts.OwnedBy(ctx, accountID, p.CustomerID)
	if err != nil {
		return err
	}
	if !owned {
		return account.ErrNotOwned{AccountID: accountID, CustomerID: p.CustomerID}
	}
	return nil
}

// touchOwnership refreshes the caller's last-access timestamp on the ownership
// row so the retention sweeper sees the account as active
func (s *Service) touchOwnership(ctx context.Context, accounts account.Repository, p shared.Principal, accountID int64, at time.Time) error {
	if p.IsAdmin() {
		return nil
	}
	return accounts.TouchOwnership(ctx, accountID, p.CustomerID, at)
}

func (s *Service) newBusiness(t business.Type, p shared.Principal, accountID *int64, remark string, at time.Time) *business.Business {
	b := &business.Business{
		Type:       t,
		AccountID:  accountID,
		Status:     business.StatusCompleted,
		Remark:     remark,
		OperatorID: p.UserID,
		CreatedAt:  at,
	}
	if p.CustomerID != 0 {
		customerID := p.CustomerID
		b.CustomerID = &customerID
	}
	return b
}

// afterCommit emits the best-effort side effects of a committed operation: the
// activity-log entry and the operation event. Failures are logged and dropped.
func (s *Service) afterCommit(ctx context.Context, kind string, p shared.Principal, biz *business.Business, accountIDs []int64, loanID int64, amount decimal.Decimal) {
	entry := &activity.Entry{
		ID:            uuid.NewString(),
		Kind:          kind,
		OperatorID:    p.UserID,
		CustomerID:    p.CustomerID,
		LoanID:        loanID,
		Amount:        amount.StringFixed(2),
		Detail:        biz.Remark,
		CorrelationID: shared.CorrelationID(ctx),
		CreatedAt:     time.Now().UTC(),
	}
	if len(accountIDs) > 0 {
		entry.AccountID = accountIDs[0]
	}
	s.activity.Record(entry)

	event := &events.OperationEvent{
		EventID:       uuid.New(),
		Kind:          kind,
		BusinessID:    biz.ID,
		AccountIDs:    accountIDs,
		LoanID:        loanID,
		Amount:        amount.StringFixed(2),
		CorrelationID: shared.CorrelationID(ctx),
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, strconv.FormatInt(biz.ID, 10), event); err != nil {
		s.logger.Warn("Failed to publish operation event",
			"kind", kind,
			"business_id", biz.ID,
			"error", err,
		)
	}
}
