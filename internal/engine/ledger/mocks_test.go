package ledger

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/activity"
	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/journal"
	"github.com/atlasbank-portal/internal/platform/messaging/events"
)

// fakeTxRunner runs the transactional closure directly with a nil tx
type fakeTxRunner struct{}

func (fakeTxRunner) ExecuteTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

type MockAccountRepo struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(ctx context.Context, a *account.Account) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) GetByAccountNo(ctx context.Context, accountNo string) (*account.Account, error) {
	args := m.Called(ctx, accountNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) LockForUpdate(ctx context.Context, id int64) (*account.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountRepo) LockPairForUpdate(ctx context.Context, idA, idB int64) (*account.Account, *account.Account, error) {
	args := m.Called(ctx, idA, idB)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*account.Account), args.Get(1).(*account.Account), args.Error(2)
}

func (m *MockAccountRepo) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	args := m.Called(ctx, id, balance)
	return args.Error(0)
}

func (m *MockAccountRepo) MarkClosed(ctx context.Context, id int64, closedAt time.Time) error {
	args := m.Called(ctx, id, closedAt)
	return args.Error(0)
}

func (m *MockAccountRepo) OwnedBy(ctx context.Context, accountID, customerID int64) (bool, error) {
	args := m.Called(ctx, accountID, customerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccountRepo) LinkOwner(ctx context.Context, accountID, customerID int64, at time.Time) error {
	args := m.Called(ctx, accountID, customerID, at)
	return args.Error(0)
}

func (m *MockAccountRepo) TouchOwnership(ctx context.Context, accountID, customerID int64, at time.Time) error {
	args := m.Called(ctx, accountID, customerID, at)
	return args.Error(0)
}

func (m *MockAccountRepo) PurgeClosedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepo) WithTx(tx pgx.Tx) account.Repository {
	args := m.Called(tx)
	return args.Get(0).(account.Repository)
}

type MockBusinessRepo struct {
	mock.Mock
}

func (m *MockBusinessRepo) Create(ctx context.Context, b *business.Business) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBusinessRepo) GetByID(ctx context.Context, id int64) (*business.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepo) LockForUpdate(ctx context.Context, id int64) (*business.Business, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*business.Business), args.Error(1)
}

func (m *MockBusinessRepo) Decide(ctx context.Context, id int64, status business.Status, remark string, decidedAt time.Time) error {
	args := m.Called(ctx, id, status, remark, decidedAt)
	return args.Error(0)
}

func (m *MockBusinessRepo) WithTx(tx pgx.Tx) business.Repository {
	args := m.Called(tx)
	return args.Get(0).(business.Repository)
}

type MockJournalRepo struct {
	mock.Mock
}

func (m *MockJournalRepo) CreateEntry(ctx context.Context, e *journal.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockJournalRepo) CreateTransfer(ctx context.Context, t *journal.Transfer) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockJournalRepo) ListByAccountID(ctx context.Context, accountID int64) ([]*journal.Entry, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*journal.Entry), args.Error(1)
}

func (m *MockJournalRepo) WithTx(tx pgx.Tx) journal.Repository {
	args := m.Called(tx)
	return args.Get(0).(journal.Repository)
}

type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(entry *activity.Entry) {
	m.Called(entry)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event *events.OperationEvent) error {
	args := m.Called(ctx, key, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
