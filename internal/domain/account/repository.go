package account

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines account persistence operations. All balance mutations go
// through LockForUpdate/LockPairForUpdate first; the engine never updates a
// balance it has not locked and read inside the same transaction.
type Repository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByAccountNo(ctx context.Context, accountNo string) (*Account, error)

	// LockForUpdate acquires an exclusive row lock for money movement
	LockForUpdate(ctx context.Context, id int64) (*Account, error)

	// LockPairForUpdate locks both accounts in a single statement ordered by
	// ascending id, so concurrent transfers over the same pair serialize
	// deterministically regardless of direction.
	LockPairForUpdate(ctx context.Context, idA, idB int64) (*Account, *Account, error)

	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error
	MarkClosed(ctx context.Context, id int64, closedAt time.Time) error

	// OwnedBy reports whether the customer owns the account. Called inside the
	// same locked transaction as the mutation to rule out TOCTOU races.
	OwnedBy(ctx context.Context, accountID, customerID int64) (bool, error)
	LinkOwner(ctx context.Context, accountID, customerID int64, at time.Time) error
	TouchOwnership(ctx context.Context, accountID, customerID int64, at time.Time) error

	// PurgeClosedBefore deletes closed accounts whose closed_at is older than
	// the cutoff, returning the number of purged rows.
	PurgeClosedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrAccountNotFound indicates a missing account
type ErrAccountNotFound struct {
	AccountID int64
}

func (e ErrAccountNotFound) Error() string {
	return "account not found: " + strconv.FormatInt(e.AccountID, 10)
}

// Is matches any ErrAccountNotFound when the target carries a zero id
func (e ErrAccountNotFound) Is(target error) bool {
	t, ok := target.(ErrAccountNotFound)
	if !ok {
		return false
	}
	return t.AccountID == 0 || e.AccountID == t.AccountID
}

// ErrNotOwned indicates the calling customer does not own the account
type ErrNotOwned struct {
	AccountID  int64
	CustomerID int64
}

func (e ErrNotOwned) Error() string {
	return "account " + strconv.FormatInt(e.AccountID, 10) +
		" is not owned by customer " + strconv.FormatInt(e.CustomerID, 10)
}

// Is matches any ErrNotOwned when the target carries zero ids
func (e ErrNotOwned) Is(target error) bool {
	t, ok := target.(ErrNotOwned)
	if !ok {
		return false
	}
	return (t.AccountID == 0 || e.AccountID == t.AccountID) &&
		(t.CustomerID == 0 || e.CustomerID == t.CustomerID)
}

// ErrDuplicateAccountNo indicates an account number uniqueness violation
type ErrDuplicateAccountNo struct {
	AccountNo string
}

func (e ErrDuplicateAccountNo) Error() string {
	return "account number already exists: " + e.AccountNo
}
