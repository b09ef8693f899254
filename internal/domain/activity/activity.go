package activity

import (
	"context"
	"time"
)

// Entry is one append-only activity-log record. Activity logging is a side
// effect written outside the financial transaction; losing an entry never
// fails the operation that produced it.
type Entry struct {
	ID            string    `json:"id" bson:"_id"`
	Kind          string    `json:"kind" bson:"kind"`
	OperatorID    int64     `json:"operator_id" bson:"operator_id"`
	CustomerID    int64     `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	AccountID     int64     `json:"account_id,omitempty" bson:"account_id,omitempty"`
	LoanID        int64     `json:"loan_id,omitempty" bson:"loan_id,omitempty"`
	Amount        string    `json:"amount,omitempty" bson:"amount,omitempty"`
	Detail        string    `json:"detail,omitempty" bson:"detail,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// Repository manages activity-log persistence
type Repository interface {
	Create(ctx context.Context, entry *Entry) error

	// DeleteOlderThan purges entries created before the cutoff, returning the
	// number of deleted documents
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
