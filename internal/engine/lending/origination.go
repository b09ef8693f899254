package lending

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/branch"
	"github.com/atlasbank-portal/internal/domain/customer"
	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
)

// CreateLoanInput carries a validated loan request
type CreateLoanInput struct {
	LoanNo       string          `json:"loan_no"`
	Amount       decimal.Decimal `json:"amount"`
	BranchID     int64           `json:"branch_id"`
	CustomerIDs  []int64         `json:"customer_ids"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months"`
	Method       loan.Method     `json:"repayment_method"`
}

// CreateLoan validates the request, generates the full amortization schedule,
// and persists the loan header, the borrower links, and all schedule rows in
// one transaction. The loan starts PENDING.
func (s *Service) CreateLoan(ctx context.Context, p shared.Principal, in CreateLoanInput) (*loan.Loan, error) {
	if len(in.CustomerIDs) == 0 {
		return nil, loan.ErrNoBorrowers
	}

	startDate := s.now().UTC().Truncate(24 * time.Hour)
	schedule, err := BuildSchedule(in.Amount, in.InterestRate, in.TermMonths, startDate, in.Method)
	if err != nil {
		return nil, err
	}

	// Referential checks fail fast before any write
	exists, err := s.branches.Exists(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, branch.ErrBranchNotFound{BranchID: in.BranchID}
	}
	missing, err := s.customers.MissingIDs(ctx, in.CustomerIDs)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, customer.ErrCustomerNotFound{CustomerID: missing[0]}
	}
	if existing, err := s.loans.GetByLoanNo(ctx, in.LoanNo); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, loan.ErrDuplicateLoanNo{LoanNo: in.LoanNo}
	}

	l := &loan.Loan{
		LoanNo:       in.LoanNo,
		Amount:       in.Amount,
		BranchID:     in.BranchID,
		InterestRate: in.InterestRate,
		TermMonths:   in.TermMonths,
		Method:       in.Method,
		Status:       loan.StatusPending,
		StartDate:    startDate,
		EndDate:      schedule[len(schedule)-1].DueDate,
		Outstanding:  in.Amount,
	}

	err = s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		loans := s.loans.WithTx(tx)

		if err := loans.Create(ctx, l); err != nil {
			return err
		}
		if err := loans.AddBorrowers(ctx, l.ID, in.CustomerIDs); err != nil {
			return err
		}
		for i := range schedule {
			schedule[i].LoanID = l.ID
		}
		return loans.CreateScheduleEntries(ctx, schedule)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Loan created",
		"loan_id", l.ID,
		"loan_no", l.LoanNo,
		"term_months", l.TermMonths,
		"repayment_method", string(l.Method),
	)
	s.afterCommit(ctx, events.KindLoanCreated, p, 0, 0, l.ID, l.Amount, "loan created: "+l.LoanNo)

	return l, nil
}

// Schedule returns a loan's amortization schedule entries. Non-admin callers
// only see loans they borrow on.
func (s *Service) Schedule(ctx context.Context, p shared.Principal, loanID int64) ([]loan.ScheduleEntry, error) {
	if _, err := s.GetLoan(ctx, p, loanID); err != nil {
		return nil, err
	}
	return s.loans.ListSchedule(ctx, loanID)
}
