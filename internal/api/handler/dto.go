package handler

import "github.com/shopspring/decimal"

// MoveMoneyRequest represents a deposit or withdrawal request
type MoveMoneyRequest struct {
	AccountID int64           `json:"account_id" binding:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Remark    string          `json:"remark,omitempty"`
}

// TransferRequest represents a transfer between two accounts
type TransferRequest struct {
	FromAccountID int64           `json:"from_account_id" binding:"required,gt=0"`
	ToAccountID   int64           `json:"to_account_id" binding:"required,gt=0"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Remark        string          `json:"remark,omitempty"`
}

// BalanceResponse represents the outcome of a single-account money movement
type BalanceResponse struct {
	AccountID int64  `json:"account_id"`
	Balance   string `json:"balance"`
}

// TransferResponse represents the outcome of a transfer
type TransferResponse struct {
	TransferID  int64  `json:"transfer_id"`
	FromBalance string `json:"from_balance"`
	ToBalance   string `json:"to_balance"`
}

// JournalEntryResponse represents one journal row in API responses
type JournalEntryResponse struct {
	ID           int64  `json:"id"`
	AccountID    int64  `json:"account_id"`
	Type         string `json:"txn_type"`
	Amount       string `json:"amount"`
	BalanceAfter string `json:"balance_after"`
	CreatedAt    string `json:"created_at"`
}

// CreateLoanRequest represents a loan origination request
type CreateLoanRequest struct {
	LoanNo       string          `json:"loan_no" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	BranchID     int64           `json:"branch_id" binding:"required,gt=0"`
	CustomerIDs  []int64         `json:"customer_ids" binding:"required,min=1"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermMonths   int             `json:"term_months" binding:"required,gt=0"`
	Method       string          `json:"repayment_method" binding:"required,oneof=EQUAL_INSTALLMENT EQUAL_PRINCIPAL"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID           int64  `json:"id"`
	LoanNo       string `json:"loan_no"`
	Amount       string `json:"amount"`
	BranchID     int64  `json:"branch_id"`
	InterestRate string `json:"interest_rate"`
	TermMonths   int    `json:"term_months"`
	Method       string `json:"repayment_method"`
	Status       string `json:"status"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Outstanding  string `json:"outstanding"`
	SettledAt    string `json:"settled_at,omitempty"`
}

// ScheduleEntryResponse represents one amortization period in API responses
type ScheduleEntryResponse struct {
	PeriodNo     int    `json:"period_no"`
	DueDate      string `json:"due_date"`
	PrincipalDue string `json:"principal_due"`
	InterestDue  string `json:"interest_due"`
	Status       string `json:"status"`
}

// RepayRequest represents a loan repayment request
type RepayRequest struct {
	SavingsAccountID int64           `json:"savings_account_id" binding:"required,gt=0"`
	Amount           decimal.Decimal `json:"amount" binding:"required"`
	Confirm          bool            `json:"confirm"`
}

// RepayResponse represents the outcome of a repayment
type RepayResponse struct {
	AmountApplied string `json:"amount_applied"`
	NewBalance    string `json:"new_balance"`
	Outstanding   string `json:"outstanding"`
	Settled       bool   `json:"settled"`
}

// UpdateLoanStatusRequest represents an administrative loan status transition
type UpdateLoanStatusRequest struct {
	Status  string `json:"status" binding:"required,oneof=PENDING APPROVED DISBURSED SETTLED"`
	Confirm bool   `json:"confirm"`
}

// OpenAccountRequest represents an account-opening request
type OpenAccountRequest struct {
	AccountNo      string          `json:"account_no" binding:"required"`
	Kind           string          `json:"kind" binding:"required,oneof=savings checking"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	CustomerID     int64           `json:"customer_id,omitempty"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID             int64  `json:"id"`
	AccountNo      string `json:"account_no"`
	Kind           string `json:"kind"`
	Balance        string `json:"balance"`
	InterestRate   string `json:"interest_rate,omitempty"`
	OverdraftLimit string `json:"overdraft_limit,omitempty"`
	CreatedAt      string `json:"created_at"`
	ClosedAt       string `json:"closed_at,omitempty"`
}

// CloseAccountRequest represents a closure request
type CloseAccountRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ClosureResponse represents the outcome of a closure request
type ClosureResponse struct {
	BusinessID int64 `json:"business_id"`
	Closed     bool  `json:"closed"`
	Pending    bool  `json:"pending"`
}

// DecideClosureRequest represents an admin decision on a pending closure
type DecideClosureRequest struct {
	Decision string `json:"decision" binding:"required,oneof=APPROVE REJECT"`
	Remark   string `json:"remark,omitempty"`
}

// VerificationResponse carries a freshly issued verification code
type VerificationResponse struct {
	Code string `json:"code"`
}

// DeleteLoanRequest carries the verification code guarding loan deletion
type DeleteLoanRequest struct {
	Code string `json:"code" binding:"required"`
}
