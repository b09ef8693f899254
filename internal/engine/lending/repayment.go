package lending

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/journal"
	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
)

// RepayResult reports what a repayment actually did: the amount applied after
// clamping, the paying account's new balance, and whether the loan settled
type RepayResult struct {
	AmountApplied decimal.Decimal `json:"amount_applied"`
	NewBalance    decimal.Decimal `json:"new_balance"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	Settled       bool            `json:"settled"`
}

// Repay applies a payment from a customer-owned open savings account against
// a loan. The outstanding obligation is recomputed from the principal, the
// rate, and the recorded repayments inside the locked transaction; the
// requested amount is clamped to it within a small overpayment tolerance.
// When the obligation reaches zero the loan settles.
func (s *Service) Repay(ctx context.Context, p shared.Principal, loanID, savingsAccountID int64, amount decimal.Decimal, confirm bool) (*RepayResult, error) {
	if !confirm {
		return nil, loan.ErrConfirmationRequired
	}
	if !amount.IsPositive() {
		return nil, loan.ErrAmountOutOfRange
	}

	var (
		result RepayResult
		biz    *business.Business
	)
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)
		loans := s.loans.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, savingsAccountID)
		if err != nil {
			return err
		}
		if acc.Kind != account.KindSavings {
			return account.ErrNotSavings
		}
		if !p.IsAdmin() {
			owned, err := accounts.OwnedBy(ctx, savingsAccountID, p.CustomerID)
			if err != nil {
				return err
			}
			if !owned {
				return account.ErrNotOwned{AccountID: savingsAccountID, CustomerID: p.CustomerID}
			}
		}

		l, err := loans.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if !p.IsAdmin() {
			borrowed, err := loans.BorrowedBy(ctx, loanID, p.CustomerID)
			if err != nil {
				return err
			}
			if !borrowed {
				return loan.ErrNotBorrower{LoanID: loanID, CustomerID: p.CustomerID}
			}
		}
		if l.Status == loan.StatusSettled {
			return loan.ErrAlreadySettled
		}

		paidSoFar, err := loans.SumRepayments(ctx, loanID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		outstanding := Outstanding(l.Amount, l.InterestRate, l.StartDate, now, paidSoFar)

		// Clamp to the obligation within the overpayment tolerance
		applied := amount
		if applied.GreaterThan(outstanding) {
			if applied.Sub(outstanding).GreaterThan(repayTolerance) {
				return loan.ErrAmountOutOfRange
			}
			applied = outstanding
		}
		if !applied.IsPositive() {
			return loan.ErrAmountOutOfRange
		}

		if err := acc.Withdraw(applied); err != nil {
			return err
		}
		if err := accounts.UpdateBalance(ctx, acc.ID, acc.Balance); err != nil {
			return err
		}

		biz = &business.Business{
			Type:       business.TypeRepayment,
			AccountID:  &savingsAccountID,
			LoanID:     &loanID,
			Status:     business.StatusCompleted,
			Remark:     "loan repayment",
			OperatorID: p.UserID,
			CreatedAt:  now,
		}
		if p.CustomerID != 0 {
			customerID := p.CustomerID
			biz.CustomerID = &customerID
		}
		if err := s.businesses.WithTx(tx).Create(ctx, biz); err != nil {
			return err
		}

		repayment := &loan.Repayment{
			LoanID:           loanID,
			BatchNo:          uuid.NewString(),
			PaidAt:           now,
			Amount:           applied,
			SavingsAccountID: savingsAccountID,
		}
		if err := loans.CreateRepayment(ctx, repayment); err != nil {
			return err
		}

		entry := &journal.Entry{
			AccountID:    acc.ID,
			BusinessID:   &biz.ID,
			Type:         journal.EntryRepayment,
			Amount:       applied.Neg(),
			BalanceAfter: acc.Balance,
			CreatedAt:    now,
		}
		if err := s.journal.WithTx(tx).CreateEntry(ctx, entry); err != nil {
			return err
		}

		remaining := outstanding.Sub(applied)
		if remaining.LessThanOrEqual(decimal.Zero) {
			remaining = decimal.Zero
			settledAt := now
			if err := loans.UpdateStatus(ctx, loanID, loan.StatusSettled, &settledAt); err != nil {
				return err
			}
			result.Settled = true
		}
		if err := loans.UpdateOutstanding(ctx, loanID, remaining); err != nil {
			return err
		}

		result.AmountApplied = applied
		result.NewBalance = acc.Balance
		result.Outstanding = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Repayment applied",
		"loan_id", loanID,
		"savings_account_id", savingsAccountID,
		"amount_applied", result.AmountApplied.StringFixed(2),
		"settled", result.Settled,
	)
	s.afterCommit(ctx, events.KindRepayment, p, biz.ID, savingsAccountID, loanID, result.AmountApplied, biz.Remark)

	return &result, nil
}
