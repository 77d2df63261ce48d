package user

import (
	"net/http"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	svc    Service
	logger *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("user.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("user.handler")
	}
	return &Handler{svc: service, logger: l}
}

func writeError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Errors)
}

func (h *Handler) GetAll(c *gin.Context) {
	var req ListUsersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		appErr := apperror.MapValidationError(err)
		response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Fields)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)
	h.logger.Debug("http get all users", zap.String("role", req.Role))

	page, err := h.svc.GetAll(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}

	meta := response.NewPaginationMeta(page.Total, page.Page, page.RowsPerPage)
	response.Success(c, http.StatusOK, page.Items, &meta)
}

func (h *Handler) GetByID(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.svc.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
