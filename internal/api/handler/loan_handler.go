package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atlasbank-portal/internal/api/middleware"
	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/engine/lending"
)

// LoanHandler handles HTTP requests for loan operations
type LoanHandler struct {
	lending LendingService
	logger  *slog.Logger
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(logger *slog.Logger, lendingService LendingService) *LoanHandler {
	return &LoanHandler{
		lending: lendingService,
		logger:  logger,
	}
}

// Create originates a loan with its full amortization schedule
func (h *LoanHandler) Create(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	l, err := h.lending.CreateLoan(c.Request.Context(), p, lending.CreateLoanInput{
		LoanNo:       req.LoanNo,
		Amount:       req.Amount,
		BranchID:     req.BranchID,
		CustomerIDs:  req.CustomerIDs,
		InterestRate: req.InterestRate,
		TermMonths:   req.TermMonths,
		Method:       loan.Method(req.Method),
	})
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapLoanToResponse(l))
}

// GetByID retrieves a loan, returning 404 if not found
func (h *LoanHandler) GetByID(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	loanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || loanID <= 0 {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	l, err := h.lending.GetLoan(c.Request.Context(), p, loanID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// Schedule lists a loan's amortization schedule
func (h *LoanHandler) Schedule(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	loanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || loanID <= 0 {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	entries, err := h.lending.Schedule(c.Request.Context(), p, loanID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	responses := make([]ScheduleEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, ScheduleEntryResponse{
			PeriodNo:     e.PeriodNo,
			DueDate:      e.DueDate.Format(time.RFC3339),
			PrincipalDue: e.PrincipalDue.StringFixed(2),
			InterestDue:  e.InterestDue.StringFixed(2),
			Status:       e.Status,
		})
	}
	RespondOK(c, responses)
}

// Repay applies a payment from a savings account against the loan
func (h *LoanHandler) Repay(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	loanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || loanID <= 0 {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	var req RepayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.lending.Repay(c.Request.Context(), p, loanID, req.SavingsAccountID, req.Amount, req.Confirm)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, RepayResponse{
		AmountApplied: result.AmountApplied.StringFixed(2),
		NewBalance:    result.NewBalance.StringFixed(2),
		Outstanding:   result.Outstanding.StringFixed(2),
		Settled:       result.Settled,
	})
}

// UpdateStatus performs an administrative loan lifecycle transition
func (h *LoanHandler) UpdateStatus(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	loanID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || loanID <= 0 {
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	var req UpdateLoanStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.lending.UpdateLoanStatus(c.Request.Context(), p, loanID, loan.Status(req.Status), req.Confirm); err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// mapLoanToResponse maps a loan entity to its response DTO
func mapLoanToResponse(l *loan.Loan) LoanResponse {
	resp := LoanResponse{
		ID:           l.ID,
		LoanNo:       l.LoanNo,
		Amount:       l.Amount.StringFixed(2),
		BranchID:     l.BranchID,
		InterestRate: l.InterestRate.String(),
		TermMonths:   l.TermMonths,
		Method:       string(l.Method),
		Status:       string(l.Status),
		StartDate:    l.StartDate.Format(time.RFC3339),
		EndDate:      l.EndDate.Format(time.RFC3339),
		Outstanding:  l.Outstanding.StringFixed(2),
	}
	if l.SettledAt != nil {
		resp.SettledAt = l.SettledAt.Format(time.RFC3339)
	}
	return resp
}
