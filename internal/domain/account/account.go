package account

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountClosed     = errors.New("account is closed")
	ErrSameAccount       = errors.New("cannot transfer to the same account")
	ErrNotSavings        = errors.New("account is not a savings account")
	ErrInvalidKind       = errors.New("unsupported account kind")
	ErrBalanceNotZero    = errors.New("account balance is not zero")
)

// Kind distinguishes account subtypes. A closed account keeps its last balance
// frozen until the retention sweeper purges the row.
type Kind string

const (
	KindSavings  Kind = "savings"
	KindChecking Kind = "checking"
	KindClosed   Kind = "closed"
)

// Account represents a bank account. Kind-specific fields are only meaningful
// for the matching kind: InterestRate for savings, OverdraftLimit for checking.
type Account struct {
	ID             int64           `json:"id"`
	AccountNo      string          `json:"account_no"`
	Kind           Kind            `json:"kind"`
	Balance        decimal.Decimal `json:"balance"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	CreatedAt      time.Time       `json:"created_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty"`
}

// Open reports whether the account can still participate in money movement
func (a *Account) Open() bool {
	return a.Kind != KindClosed
}

// Floor returns the lowest balance the account may reach: zero for savings,
// minus the overdraft limit for checking.
func (a *Account) Floor() decimal.Decimal {
	if a.Kind == KindChecking {
		return a.OverdraftLimit.Neg()
	}
	return decimal.Zero
}

// CanDebit reports whether debiting amount keeps the balance at or above the floor
func (a *Account) CanDebit(amount decimal.Decimal) bool {
	return a.Balance.Sub(amount).GreaterThanOrEqual(a.Floor())
}

// Deposit adds the amount to the balance
func (a *Account) Deposit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.Open() {
		return ErrAccountClosed
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

// Withdraw subtracts the amount from the balance, honoring the overdraft floor
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.Open() {
		return ErrAccountClosed
	}
	if !a.CanDebit(amount) {
		return ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Close freezes the account. The balance is kept as-is and the row becomes
// eligible for purge once the retention window elapses.
func (a *Account) Close(at time.Time) error {
	if !a.Open() {
		return ErrAccountClosed
	}
	a.Kind = KindClosed
	a.ClosedAt = &at
	return nil
}
