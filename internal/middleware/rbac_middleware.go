package middleware

import (
	"net/http"

	"go-leave/internal/domain"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RBACService is satisfied by anything that can answer an EnforceRequest.
type RBACService interface {
	Enforce(req domain.EnforceRequest) (bool, error)
}

func RBACAuthorize(service RBACService, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get(ContextRole)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "Authentication is required")
			return
		}

		allowed, err := service.Enforce(domain.EnforceRequest{
			Role:     role.(string),
			Resource: resource,
			Action:   action,
		})
		if err != nil {
			contextutil.GetLogger(c.Request.Context(), zap.L()).Error("rbac enforce failed", zap.Error(err))
			response.Abort(c, http.StatusInternalServerError, apperror.CodeInternalError, apperror.ErrInternal.Message)
			return
		}

		if !allowed {
			response.Abort(c, http.StatusForbidden, apperror.CodeForbidden, "You do not have permission to perform this action")
			return
		}
		c.Next()
	}
}
