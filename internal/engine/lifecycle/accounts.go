package lifecycle

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
)

// OpenAccountInput carries a validated account-opening request
type OpenAccountInput struct {
	AccountNo      string          `json:"account_no"`
	Kind           account.Kind    `json:"kind"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	CustomerID     int64           `json:"customer_id"`
}

// ClosureResult reports how a closure request ended: closed immediately, or
// parked as a pending approval
type ClosureResult struct {
	BusinessID int64 `json:"business_id"`
	Closed     bool  `json:"closed"`
	Pending    bool  `json:"pending"`
}

// OpenAccount creates an account of the requested kind with a zero balance and
// links it to the owning customer
func (s *Service) OpenAccount(ctx context.Context, p shared.Principal, in OpenAccountInput) (*account.Account, error) {
	if in.Kind != account.KindSavings && in.Kind != account.KindChecking {
		return nil, account.ErrInvalidKind
	}
	if in.InterestRate.IsNegative() || in.OverdraftLimit.IsNegative() {
		return nil, account.ErrInvalidAmount
	}
	ownerID := in.CustomerID
	if !p.IsAdmin() {
		ownerID = p.CustomerID
	}

	now := s.now().UTC()
	acc := &account.Account{
		AccountNo:      in.AccountNo,
		Kind:           in.Kind,
		Balance:        decimal.Zero,
		InterestRate:   in.InterestRate,
		OverdraftLimit: in.OverdraftLimit,
		CreatedAt:      now,
	}

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)
		if err := accounts.Create(ctx, acc); err != nil {
			return err
		}
		return accounts.LinkOwner(ctx, acc.ID, ownerID, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account opened", "account_id", acc.ID, "account_no", acc.AccountNo, "kind", string(acc.Kind))
	s.record(ctx, "ACCOUNT_OPENED", p, acc.ID, 0, "account opened: "+acc.AccountNo)

	return acc, nil
}

// RequestClosure closes a zero-balance account immediately; otherwise it parks
// a pending approval request for an admin to decide
func (s *Service) RequestClosure(ctx context.Context, p shared.Principal, accountID int64, reason string) (*ClosureResult, error) {
	var result ClosureResult

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)

		acc, err := accounts.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if !p.IsAdmin() {
			owned, err := accounts.OwnedBy(ctx, accountID, p.CustomerID)
			if err != nil {
				return err
			}
			if !owned {
				return account.ErrNotOwned{AccountID: accountID, CustomerID: p.CustomerID}
			}
		}
		if !acc.Open() {
			return account.ErrAccountClosed
		}

		now := s.now().UTC()
		if acc.Balance.IsZero() {
			if err := accounts.MarkClosed(ctx, accountID, now); err != nil {
				return err
			}
			biz := newBusiness(business.TypeCloseAccount, p, &accountID, business.StatusCompleted, reason, now)
			decidedAt := now
			biz.DecidedAt = &decidedAt
			if err := s.businesses.WithTx(tx).Create(ctx, biz); err != nil {
				return err
			}
			result = ClosureResult{BusinessID: biz.ID, Closed: true}
			return nil
		}

		biz := newBusiness(business.TypeCloseAccount, p, &accountID, business.StatusPending, reason, now)
		if err := s.businesses.WithTx(tx).Create(ctx, biz); err != nil {
			return err
		}
		result = ClosureResult{BusinessID: biz.ID, Pending: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Closed {
		s.logger.Info("Account closed", "account_id", accountID, "business_id", result.BusinessID)
		s.record(ctx, "ACCOUNT_CLOSED", p, accountID, 0, reason)
		s.publish(ctx, events.KindAccountClosed, result.BusinessID, []int64{accountID}, 0)
	} else {
		s.logger.Info("Account closure pending approval", "account_id", accountID, "business_id", result.BusinessID)
		s.record(ctx, "CLOSURE_REQUESTED", p, accountID, 0, reason)
	}

	return &result, nil
}

// ApproveClosure decides a pending closure request. Approval closes the
// referenced account and completes the request; rejection only marks it
// rejected. Each pending request is decided exactly once.
func (s *Service) ApproveClosure(ctx context.Context, p shared.Principal, businessID int64, approve bool, remark string) error {
	if !p.IsAdmin() {
		return shared.ErrForbidden
	}

	var accountID int64
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		businesses := s.businesses.WithTx(tx)

		biz, err := businesses.LockForUpdate(ctx, businessID)
		if err != nil {
			return err
		}
		if biz.Type != business.TypeCloseAccount || biz.Status != business.StatusPending {
			return business.ErrAlreadyDecided
		}
		if biz.AccountID == nil {
			return business.ErrAlreadyDecided
		}
		accountID = *biz.AccountID

		now := s.now().UTC()
		if !approve {
			return businesses.Decide(ctx, businessID, business.StatusRejected, remark, now)
		}

		accounts := s.accounts.WithTx(tx)
		acc, err := accounts.LockForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		if acc.Open() {
			if err := accounts.MarkClosed(ctx, accountID, now); err != nil {
				return err
			}
		}
		return businesses.Decide(ctx, businessID, business.StatusCompleted, remark, now)
	})
	if err != nil {
		return err
	}

	if approve {
		s.logger.Info("Closure approved", "business_id", businessID, "account_id", accountID)
		s.record(ctx, "CLOSURE_APPROVED", p, accountID, 0, remark)
		s.publish(ctx, events.KindAccountClosed, businessID, []int64{accountID}, 0)
	} else {
		s.logger.Info("Closure rejected", "business_id", businessID, "account_id", accountID)
		s.record(ctx, "CLOSURE_REJECTED", p, accountID, 0, remark)
	}

	return nil
}
