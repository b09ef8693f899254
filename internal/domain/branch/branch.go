package branch

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Branch is a bank branch that originates loans
type Branch struct {
	ID         int64  `json:"id"`
	BranchCode string `json:"branch_code"`
	Name       string `json:"name"`
	City       string `json:"city"`
}

// Repository defines branch persistence operations
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Branch, error)
	Exists(ctx context.Context, id int64) (bool, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrBranchNotFound indicates a missing branch
type ErrBranchNotFound struct {
	BranchID int64
}

func (e ErrBranchNotFound) Error() string {
	return "branch not found: " + strconv.FormatInt(e.BranchID, 10)
}

// Is matches any ErrBranchNotFound when the target carries a zero id
func (e ErrBranchNotFound) Is(target error) bool {
	t, ok := target.(ErrBranchNotFound)
	if !ok {
		return false
	}
	return t.BranchID == 0 || e.BranchID == t.BranchID
}
