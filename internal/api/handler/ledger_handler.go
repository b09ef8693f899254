package handler

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atlasbank-portal/internal/api/middleware"
	"github.com/atlasbank-portal/internal/domain/journal"
)

// LedgerHandler handles HTTP requests for money movement
type LedgerHandler struct {
	ledger LedgerService
	logger *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, ledgerService LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledger: ledgerService,
		logger: logger,
	}
}

// Deposit credits an account owned by the calling customer
func (h *LedgerHandler) Deposit(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req MoveMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := h.ledger.Deposit(c.Request.Context(), p, req.AccountID, req.Amount, req.Remark)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, BalanceResponse{AccountID: req.AccountID, Balance: balance.StringFixed(2)})
}

// Withdraw debits an account owned by the calling customer
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req MoveMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := h.ledger.Withdraw(c.Request.Context(), p, req.AccountID, req.Amount, req.Remark)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, BalanceResponse{AccountID: req.AccountID, Balance: balance.StringFixed(2)})
}

// Transfer moves money between two accounts
func (h *LedgerHandler) Transfer(c *gin.Context) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.ledger.Transfer(c.Request.Context(), p, req.FromAccountID, req.ToAccountID, req.Amount, req.Remark)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	RespondOK(c, TransferResponse{
		TransferID:  result.TransferID,
		FromBalance: result.FromBalance.StringFixed(2),
		ToBalance:   result.ToBalance.StringFixed(2),
	})
}

// History lists an account's journal rows oldest first
func (h *LedgerHandler) History(c *gin.Context) {
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

	entries, err := h.ledger.History(c.Request.Context(), p, accountID)
	if err != nil {
		respondEngineError(c, h.logger, err)
		return
	}

	responses := make([]JournalEntryResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapEntryToResponse(e))
	}
	RespondOK(c, responses)
}

// mapEntryToResponse maps a journal entry to its response DTO
func mapEntryToResponse(e *journal.Entry) JournalEntryResponse {
	return JournalEntryResponse{
		ID:           e.ID,
		AccountID:    e.AccountID,
		Type:         string(e.Type),
		Amount:       e.Amount.StringFixed(2),
		BalanceAfter: e.BalanceAfter.StringFixed(2),
		CreatedAt:    e.CreatedAt.Format(time.RFC3339),
	}
}
