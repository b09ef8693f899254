package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atlasbank-portal/internal/api/middleware"
	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/engine/lifecycle"
)

// LifecycleHandler handles HTTP requests for account lifecycle and the
// verification gate
type LifecycleHandler struct {
	lifecycle LifecycleService
	logger    *slog.Logger
}

// NewLifecycleHandler creates a new lifecycle handler
func NewLifecycleHandler(logger *slog.Logger, lifecycleService LifecycleService) *LifecycleHandler {
	return &LifecycleHandler{
		lifecycle: lifecycleService,
		logger:    logger,
	}
}

// OpenAccount creates a new account for the calling customer
func (h *LifecycleHandler) OpenAccount(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	acc, err := h.lifecycle.OpenAccount(c.Request.Context(), p, lifecycle.OpenAccountInput{
		AccountNo:      req.AccountNo,
		Kind:           account.Kind(req.Kind),
		InterestRate:   req.InterestRate,
		OverdraftLimit: req.OverdraftLimit,
		CustomerID:     req.CustomerID,
	})
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondCreated(c, mapAccountToResponse(acc))
}

// RequestClosure closes a zero-balance account immediately or parks a pending
// approval request
func (h *LifecycleHandler) RequestClosure(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	accountID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || accountID <= 0 {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var req CloseAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.lifecycle.RequestClosure(c.Request.Context(), p, accountID, req.Reason)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	resp := ClosureResponse{BusinessID: result.BusinessID, Closed: result.Closed, Pending: result.Pending}
	if result.Pending {
		RespondAccepted(c, resp)
		return
	}
	RespondOK(c, resp)
}

// DecideClosure approves or rejects a pending closure request
func (h *LifecycleHandler) DecideClosure(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	businessID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || businessID <= 0 {
		RespondBadRequest(c, "Invalid business ID")
		return
	}

	var req DecideClosureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	approve := req.Decision == "APPROVE"
	if err := h.lifecycle.ApproveClosure(c.Request.Context(), p, businessID, approve, req.Remark); err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// StartVerification mints a one-time code guarding destructive operations
func (h *LifecycleHandler) StartVerification(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	code, err := h.lifecycle.StartVerification(p)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, VerificationResponse{Code: code})
}

// DeleteLoan permanently removes a loan behind the verification gate
func (h *LifecycleHandler) DeleteLoan(c *gin.Context) {
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

	var req DeleteLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.lifecycle.DeleteLoan(c.Request.Context(), p, loanID, req.Code); err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondNoContent(c)
}

// mapAccountToResponse maps an account entity to its response DTO
func mapAccountToResponse(acc *account.Account) AccountResponse {
	resp := AccountResponse{
		ID:        acc.ID,
		AccountNo: acc.AccountNo,
		Kind:      string(acc.Kind),
		Balance:   acc.Balance.StringFixed(2),
		CreatedAt: acc.CreatedAt.Format(time.RFC3339),
	}
	switch acc.Kind {
	case account.KindSavings:
		resp.InterestRate = acc.InterestRate.String()
	case account.KindChecking:
		resp.OverdraftLimit = acc.OverdraftLimit.StringFixed(2)
	}
	if acc.ClosedAt != nil {
		resp.ClosedAt = acc.ClosedAt.Format(time.RFC3339)
	}
	return resp
}
