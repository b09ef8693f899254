// Package lifecycle implements account opening and closure, the pending-closure
// approval workflow, and the verification gate guarding destructive
// administrative operations.
package lifecycle

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/activity"
	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/journal"
	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/activitylog"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
	"github.com/atlasbank-portal/internal/platform/persistence"
	"github.com/atlasbank-portal/internal/platform/verification"
)

// Service executes account lifecycle operations and the verification gate
type Service struct {
	db         persistence.TxRunner
	accounts   account.Repository
	loans      loan.Repository
	businesses business.Repository
	journal    journal.Repository
	codes      *verification.Store
	activity   activitylog.Sink
	events     events.Publisher
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a lifecycle service
func NewService(
	db persistence.TxRunner,
	accounts account.Repository,
	loans loan.Repository,
	businesses business.Repository,
	journalRepo journal.Repository,
	codes *verification.Store,
	activity activitylog.Sink,
	publisher events.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		db:         db,
		accounts:   accounts,
		loans:      loans,
		businesses: businesses,
		journal:    journalRepo,
		codes:      codes,
		activity:   activity,
		events:     publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// record writes a best-effort activity-log entry after a committed operation
func (s *Service) record(ctx context.Context, kind string, p shared.Principal, accountID, loanID int64, detail string) {
	s.activity.Record(&activity.Entry{
		ID:            uuid.NewString(),
		Kind:          kind,
		OperatorID:    p.UserID,
		CustomerID:    p.CustomerID,
		AccountID:     accountID,
		LoanID:        loanID,
		Detail:        detail,
		CorrelationID: shared.CorrelationID(ctx),
		CreatedAt:     s.now().UTC(),
	})
}

// publish emits a best-effort operation event after a committed operation
func (s *Service) publish(ctx context.Context, kind string, businessID int64, accountIDs []int64, loanID int64) {
	event := &events.OperationEvent{
		EventID:       uuid.New(),
		Kind:          kind,
		BusinessID:    businessID,
		AccountIDs:    accountIDs,
		LoanID:        loanID,
		CorrelationID: shared.CorrelationID(ctx),
		OccurredAt:    s.now().UTC(),
	}
	if err := s.events.Publish(ctx, strconv.FormatInt(businessID, 10), event); err != nil {
		s.logger.Warn("Failed to publish operation event",
			"kind", kind,
			"business_id", businessID,
			"error", err,
		)
	}
}

func newBusiness(t business.Type, p shared.Principal, accountID *int64, status business.Status, remark string, at time.Time) *business.Business {
	b := &business.Business{
		Type:       t,
		AccountID:  accountID,
		Status:     status,
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
