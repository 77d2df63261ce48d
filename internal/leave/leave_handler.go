package leave

import (
	"net/http"

	"go-leave/internal/middleware"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("leave.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("leave request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Errors)
}

func writeBindError(c *gin.Context, err error) {
	appErr := apperror.MapValidationError(err)
	response.Error(c, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Fields)
}

func (h *Handler) GetAll(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.ListAll(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) GetMine(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.ListForCurrentUser(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Create(c *gin.Context) {
	callerID := c.GetString(middleware.ContextUserID)
	h.logger.Debug("http create leave", zap.String("caller_id", callerID))

	var req CreateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("http create leave validation failed", zap.Error(err))
		writeBindError(c, err)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)
	res, err := h.service.Create(ctx, callerID, req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, res, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)
	res, err := h.service.Update(ctx, actorFrom(c), c.Param("id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req UpdateLeaveStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)
	res, err := h.service.UpdateStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	if err := h.service.Delete(ctx, actorFrom(c), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func actorFrom(c *gin.Context) Actor {
	return Actor{
		ID:   c.GetString(middleware.ContextUserID),
		Role: c.GetString(middleware.ContextRole),
	}
}

func (h *Handler) Stats(c *gin.Context) {
	ctx := contextutil.WithLogger(c.Request.Context(), h.logger)

	res, err := h.service.Stats(ctx)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, res, nil)
}
