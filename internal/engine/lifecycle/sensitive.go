package lifecycle

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/shared"
)

// StartVerification mints a short-lived one-time code bound to the caller.
// The subsequent destructive call must present the code or fail. This is an
// anti-fat-finger control, not an authorization mechanism.
func (s *Service) StartVerification(p shared.Principal) (string, error) {
	if !p.IsAdmin() {
		return "", shared.ErrForbidden
	}

	code, err := s.codes.Issue(p.UserID)
	if err != nil {
		return "", err
	}

	s.logger.Info("Verification code issued", "operator_id", p.UserID)
	return code, nil
}

// DeleteLoan permanently removes a loan with its schedule, repayments, and
// borrower links. Admin-only, gated behind a fresh verification code. The
// audit trail survives: a business record describing the deletion is written
// in the same transaction.
func (s *Service) DeleteLoan(ctx context.Context, p shared.Principal, loanID int64, code string) error {
	if !p.IsAdmin() {
		return shared.ErrForbidden
	}
	if err := s.codes.Verify(p.UserID, code); err != nil {
		return err
	}

	var loanNo string
	err := s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loans := s.loans.WithTx(tx)

		l, err := loans.LockForUpdate(ctx, loanID)
		if err != nil {
			return err
		}
		loanNo = l.LoanNo

		if err := loans.DeleteCascade(ctx, loanID); err != nil {
			return err
		}

		now := s.now().UTC()
		biz := newBusiness(business.TypeDeleteLoan, p, nil, business.StatusCompleted, "deleted loan "+loanNo, now)
		decidedAt := now
		biz.DecidedAt = &decidedAt
		return s.businesses.WithTx(tx).Create(ctx, biz)
	})
	if err != nil {
		return err
	}

	s.logger.Info("Loan deleted", "loan_id", loanID, "loan_no", loanNo, "operator_id", p.UserID)
	s.record(ctx, "LOAN_DELETED", p, 0, loanID, "deleted loan "+loanNo)

	return nil
}
