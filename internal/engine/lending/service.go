// Package lending implements loan origination, the repayment processor, and
// the administrative status machine. The amortization schedule generated at
// origination is informational; collection is driven by the live simple-interest
// accrual recomputed from the repayment records on every payment.
package lending

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/activity"
	"github.com/atlasbank-portal/internal/domain/branch"
	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/customer"
	"github.com/atlasbank-portal/internal/domain/journal"
	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/activitylog"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
	"github.com/atlasbank-portal/internal/platform/persistence"
)

// Service executes lending operations
type Service struct {
	db         persistence.TxRunner
	loans      loan.Repository
	accounts   account.Repository
	customers  customer.Repository
	branches   branch.Repository
	businesses business.Repository
	journal    journal.Repository
	activity   activitylog.Sink
	events     events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a lending service
func NewService(
	db persistence.TxRunner,
	loans loan.Repository,
	accounts account.Repository,
	customers customer.Repository,
	branches branch.Repository,
	businesses business.Repository,
	journalRepo journal.Repository,
	activity activitylog.Sink,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:         db,
		loans:      loans,
		accounts:   accounts,
		customers:  customers,
		branches:   branches,
		businesses: businesses,
		journal:    journalRepo,
		activity:   activity,
		events:     publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// GetLoan returns a loan. Non-admin callers only see loans they borrow on.
func (s *Service) GetLoan(ctx context.Context, p shared.Principal, loanID int64) (*loan.Loan, error) {
	l, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		borrowed, err := s.loans.BorrowedBy(ctx, loanID, p.CustomerID)
		if err != nil {
			return nil, err
		}
		if !borrowed {
			return nil, loan.ErrNotBorrower{LoanID: loanID, CustomerID: p.CustomerID}
		}
	}
	return l, nil
}

// afterCommit emits the best-effort side effects of a committed operation: the
// activity-log entry and the operation event. Failures are logged and dropped.
func (s *Service) afterCommit(ctx context.Context, kind string, p shared.Principal, businessID, accountID, loanID int64, amount decimal.Decimal, detail string) {
	entry := &activity.Entry{
		ID:            uuid.NewString(),
		Kind:          kind,
		OperatorID:    p.UserID,
		CustomerID:    p.CustomerID,
		AccountID:     accountID,
		LoanID:        loanID,
		Detail:        detail,
		CorrelationID: shared.CorrelationID(ctx),
		CreatedAt:     s.now().UTC(),
	}
	if !amount.IsZero() {
		entry.Amount = amount.StringFixed(2)
	}
	s.activity.Record(entry)

	event := &events.OperationEvent{
		EventID:       uuid.New(),
		Kind:          kind,
		BusinessID:    businessID,
		LoanID:        loanID,
		CorrelationID: shared.CorrelationID(ctx),
		OccurredAt:    s.now().UTC(),
	}
	if accountID != 0 {
		event.AccountIDs = []int64{accountID}
	}
	if !amount.IsZero() {
		event.Amount = amount.StringFixed(2)
	}

	key := strconv.FormatInt(loanID, 10)
	if err := s.events.Publish(ctx, key, event); err != nil {
		s.logger.Warn("Failed to publish operation event",
			"kind", kind,
			"loan_id", loanID,
			"error", err,
		)
	}
}
