package customer

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
)

// Customer is a bank customer. Customers own accounts and loans through join
// tables and are linked to at most one login principal.
type Customer struct {
	ID          int64      `json:"id"`
	CustomerNo  string     `json:"customer_no"`
	Name        string     `json:"name"`
	IdentityNo  string     `json:"identity_no"`
	City        string     `json:"city"`
	Street      string     `json:"street"`
	AssistantID *int64     `json:"assistant_employee_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Repository defines customer persistence operations
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)

	// MissingIDs returns the subset of ids with no customer row, in input order
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrCustomerNotFound indicates a missing customer
type ErrCustomerNotFound struct {
	CustomerID int64
}

func (e ErrCustomerNotFound) Error() string {
	return "customer not found: " + strconv.FormatInt(e.CustomerID, 10)
}

// Is matches any ErrCustomerNotFound when the target carries a zero id
func (e ErrCustomerNotFound) Is(target error) bool {
	t, ok := target.(ErrCustomerNotFound)
	if !ok {
		return false
	}
	return t.CustomerID == 0 || e.CustomerID == t.CustomerID
}
