package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/atlasbank-portal/internal/domain/account"
	"github.com/atlasbank-portal/internal/domain/branch"
	"github.com/atlasbank-portal/internal/domain/business"
	"github.com/atlasbank-portal/internal/domain/customer"
	"github.com/atlasbank-portal/internal/domain/loan"
	"github.com/atlasbank-portal/internal/domain/shared"
	"github.com/atlasbank-portal/internal/platform/verification"
)

// respondEngineError maps engine errors to stable HTTP error responses. Errors
// with no mapping are treated as internal and logged with full detail; the
// client only sees a generic 500.
func respondEngineError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, account.ErrInvalidAmount),
		errors.Is(err, account.ErrSameAccount),
		errors.Is(err, account.ErrNotSavings),
		errors.Is(err, account.ErrInvalidKind),
		errors.Is(err, loan.ErrInvalidMethod),
		errors.Is(err, loan.ErrInvalidTerm),
		errors.Is(err, loan.ErrInvalidRate),
		errors.Is(err, loan.ErrInvalidPrincipal),
		errors.Is(err, loan.ErrNoBorrowers):
		RespondBadRequest(c, err.Error())

	case errors.Is(err, loan.ErrConfirmationRequired):
		RespondWithError(c, 400, "CONFIRMATION_REQUIRED", err.Error())

	case errors.Is(err, account.ErrInsufficientFunds):
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", err.Error())

	case errors.Is(err, loan.ErrAmountOutOfRange):
		RespondUnprocessable(c, "AMOUNT_OUT_OF_RANGE", err.Error())

	case errors.Is(err, loan.ErrInvalidTransition{}):
		RespondUnprocessable(c, "INVALID_TRANSITION", err.Error())

	case errors.Is(err, account.ErrAccountClosed),
		errors.Is(err, loan.ErrAlreadySettled),
		errors.Is(err, business.ErrAlreadyDecided):
		RespondConflict(c, err.Error())

	case errors.Is(err, account.ErrAccountNotFound{}),
		errors.Is(err, loan.ErrLoanNotFound{}),
		errors.Is(err, business.ErrBusinessNotFound{}),
		errors.Is(err, customer.ErrCustomerNotFound{}),
		errors.Is(err, branch.ErrBranchNotFound{}):
		RespondNotFound(c, err.Error())

	case errors.Is(err, account.ErrNotOwned{}),
		errors.Is(err, loan.ErrNotBorrower{}),
		errors.Is(err, shared.ErrForbidden):
		RespondForbidden(c, err.Error())

	case errors.Is(err, verification.ErrVerificationRequired),
		errors.Is(err, verification.ErrCodeExpired),
		errors.Is(err, verification.ErrCodeMismatch),
		errors.Is(err, verification.ErrTooManyAttempts):
		RespondWithError(c, 403, "VERIFICATION_FAILED", err.Error())

	default:
		var dupAccount account.ErrDuplicateAccountNo
		var dupLoan loan.ErrDuplicateLoanNo
		if errors.As(err, &dupAccount) || errors.As(err, &dupLoan) {
			RespondConflict(c, err.Error())
			return
		}

		logger.Error("Unhandled engine error", "error", err)
		RespondInternalError(c)
	}
}
