package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"

	idempotencyTTL     = 24 * time.Hour
	idempotencyLockTTL = 30 * time.Second
)

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response of a POST that already succeeded
// with the same Idempotency-Key for the same user and route. A second
// request arriving while the first is still running gets 409.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader(HeaderIdempotencyKey)
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		l := contextutil.GetLogger(ctx, zap.L())
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString(ContextUserID), idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Bytes()
		switch {
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal(val, &cached); jsonErr == nil {
				c.Header(HeaderReplayed, "true")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
			l.Warn("discarding unreadable idempotency entry", zap.String("key", cacheKey))
		case !errors.Is(err, redis.Nil):
			l.Error("idempotency lookup failed", zap.Error(err))
			response.Abort(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "Idempotency store unavailable")
			return
		}

		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			l.Error("idempotency lock failed", zap.Error(err))
			response.Abort(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "Idempotency store unavailable")
			return
		}
		if !isNew {
			response.Abort(c, http.StatusConflict, apperror.CodeConflict, "A request with this idempotency key is still being processed")
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		status := rec.Status()
		if status >= 200 && status < 300 {
			payload, _ := json.Marshal(cachedResponse{
				Status:      status,
				ContentType: rec.Header().Get("Content-Type"),
				Body:        rec.buf.Bytes(),
			})
			if err := rdb.Set(ctx, cacheKey, payload, idempotencyTTL).Err(); err != nil {
				l.Error("failed to store idempotent response", zap.Error(err))
			}
		}
		if err := rdb.Del(ctx, lockKey).Err(); err != nil {
			l.Warn("failed to release idempotency lock", zap.Error(err))
		}
	}
}
