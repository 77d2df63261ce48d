package rbac

import (
	"net/http"

	"go-leave/internal/domain"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

// MyPermissions lets the client decide which actions to offer the caller.
func (h *Handler) MyPermissions(c *gin.Context) {
	role := c.GetString(middleware.ContextRole)

	perms, err := h.service.PermissionsForRole(role)
	if err != nil {
		h.logger.Error("failed to list permissions", zap.String("role", role), zap.Error(err))
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, nil)
		return
	}

	response.Success(c, http.StatusOK, domain.RolePermissionsResponse{
		Role:        role,
		Permissions: perms,
	}, nil)
}
