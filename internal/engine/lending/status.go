package lending

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
)

// UpdateLoanStatus performs an administrative lifecycle transition, validated
// against the fixed allowed-transition table under an exclusive lock on the
// loan row. Settling stamps settled_at.
func (s *Service) UpdateLoanStatus(ctx context.Context, p shared.Principal, loanID int64, target loan.Status, confirm bool) error {
	if !p.IsAdmin() {
		return shared.ErrForbidden
	}
	if !confirm {
		return loan.ErrConfirmationRequired
	}

	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loans := s.loans.WithTx(tx)

		l, err := loans.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		if !loan.CanTransition(l.Status, target) {
			return loan.ErrInvalidTransition{From: l.Status, To: target}
		}

		if target == loan.StatusSettled {
			now := s.now().UTC()
			return loans.UpdateStatus(ctx, loanID, target, &now)
		}
		return loans.UpdateStatus(ctx, loanID, target, nil)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Loan status updated", "loan_id", loanID, "status", string(target))
	s.afterCommit(ctx, events.KindLoanStatus, p, 0, 0, loanID, decimal.Zero, "status -> "+string(target))

	return nil
}
