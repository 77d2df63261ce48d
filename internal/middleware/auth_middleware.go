package middleware

import (
	"net/http"
	"strings"

	"go-leave/internal/auth/token"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ContextUserID  = "user_id"
	ContextRole    = "role"
	ContextTokenID = "token_id"
)

// BearerToken extracts the credential from an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	tokenString, found := strings.CutPrefix(c.GetHeader("Authorization"), token.BearerType+" ")
	if !found {
		return ""
	}
	return strings.TrimSpace(tokenString)
}

func AuthMiddleware(tokens token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.Parse(c.Request.Context(), BearerToken(c))
		if err != nil {
			httpErr := apperror.ToHTTP(err)
			if httpErr.Status == http.StatusInternalServerError {
				contextutil.GetLogger(c.Request.Context(), zap.L()).Error("token lookup failed", zap.Error(err))
			}
			response.Abort(c, httpErr.Status, httpErr.Code, httpErr.Message)
			return
		}

		c.Set(ContextUserID, claims.UserID())
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenID, claims.ID)

		ctx := contextutil.WithUserID(c.Request.Context(), claims.UserID())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
