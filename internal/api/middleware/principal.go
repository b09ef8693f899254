package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atlasbank-portal/internal/domain/shared"
)

const (
	// UserIDHeader identifies the authenticated login principal
	UserIDHeader = "X-User-ID"

	// RoleHeader carries the principal's role, admin or user
	RoleHeader = "X-Role"

	// CustomerIDHeader carries the customer the principal acts for
	CustomerIDHeader = "X-Customer-ID"

	// PrincipalKey is the key used to store the principal in the context
	PrincipalKey = "principal"
)

// Principal middleware resolves the authenticated caller from the identity
// headers supplied by the fronting auth proxy. Requests without a valid
// principal are rejected; non-admin principals must carry a customer id.
func Principal() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := strconv.ParseInt(c.GetHeader(UserIDHeader), 10, 64)
		if err != nil || userID <= 0 {
			abortUnauthorized(c, "Missing or invalid "+UserIDHeader+" header")
			return
		}

		role := shared.Role(c.GetHeader(RoleHeader))
		if role != shared.RoleAdmin && role != shared.RoleUser {
			abortUnauthorized(c, "Missing or invalid "+RoleHeader+" header")
			return
		}

		var customerID int64
		if raw := c.GetHeader(CustomerIDHeader); raw != "" {
			customerID, err = strconv.ParseInt(raw, 10, 64)
			if err != nil || customerID <= 0 {
				abortUnauthorized(c, "Invalid "+CustomerIDHeader+" header")
				return
			}
		}
		if role == shared.RoleUser && customerID == 0 {
			abortUnauthorized(c, "Missing "+CustomerIDHeader+" header")
			return
		}

		c.Set(PrincipalKey, shared.Principal{
			UserID:     userID,
			Role:       role,
			CustomerID: customerID,
		})

		c.Next()
	}
}

// GetPrincipal retrieves the authenticated principal from the gin context
func GetPrincipal(c *gin.Context) (shared.Principal, bool) {
	if v, exists := c.Get(PrincipalKey); exists {
		if p, ok := v.(shared.Principal); ok {
			return p, true
		}
	}
	return shared.Principal{}, false
}

func abortUnauthorized(c *gin.Context, message string) {
	response := gin.H{
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	}
	if correlationID := GetCorrelationID(c); correlationID != "" {
		response["correlation_id"] = correlationID
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, response)
}
