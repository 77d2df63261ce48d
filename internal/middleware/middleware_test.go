package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/auth/token"
	"go-leave/internal/domain"
	"go-leave/internal/middleware"
	"go-leave/internal/shared/contextutil"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTokenManager struct {
	ParseFn func(ctx context.Context, raw string) (*token.Claims, error)
}

func (f *fakeTokenManager) Issue(ctx context.Context, userID, role string) (token.Issued, error) {
	return token.Issued{}, nil
}

func (f *fakeTokenManager) Parse(ctx context.Context, raw string) (*token.Claims, error) {
	return f.ParseFn(ctx, raw)
}

func (f *fakeTokenManager) Revoke(ctx context.Context, tokenID string) error {
	return nil
}

type fakeRBAC struct {
	allowed map[string]bool
	err     error
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.allowed[req.Role+":"+req.Resource+":"+req.Action], nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.ApiEnvelope {
	t.Helper()
	var env response.ApiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestAuthMiddleware(t *testing.T) {
	tokens := &fakeTokenManager{
		ParseFn: func(ctx context.Context, raw string) (*token.Claims, error) {
			switch raw {
			case "":
				return nil, autherrors.ErrTokenNotFound
			case "good":
				return &token.Claims{
					Role:             "employee",
					RegisteredClaims: jwt.RegisteredClaims{ID: "tok-1", Subject: "user-1"},
				}, nil
			case "expired":
				return nil, autherrors.ErrTokenExpired
			default:
				return nil, errors.New("redis: connection refused")
			}
		},
	}

	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(tokens), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":  c.GetString(middleware.ContextUserID),
			"role":     c.GetString(middleware.ContextRole),
			"token_id": c.GetString(middleware.ContextTokenID),
			"ctx_user": contextutil.GetUserID(c.Request.Context()),
		})
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "user-1", body["user_id"])
		assert.Equal(t, "employee", body["role"])
		assert.Equal(t, "tok-1", body["token_id"])
		assert.Equal(t, "user-1", body["ctx_user"])
	})

	t.Run("negative - missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		env := decodeEnvelope(t, w)
		assert.False(t, env.Ok)
		assert.Equal(t, autherrors.ErrTokenNotFound.Message, env.Error.Message)
	})

	t.Run("negative - non bearer scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Basic good")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("negative - expired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer expired")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, autherrors.ErrTokenExpired.Message, decodeEnvelope(t, w).Error.Message)
	})

	t.Run("negative - store failure is internal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer broken")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})
}

func withRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Set(middleware.ContextRole, role)
		}
		c.Next()
	}
}

func TestRBACAuthorize(t *testing.T) {
	svc := &fakeRBAC{allowed: map[string]bool{"admin:leave:review": true}}
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	t.Run("allowed", func(t *testing.T) {
		r := gin.New()
		r.PUT("/x", withRole("admin"), middleware.RBACAuthorize(svc, "leave", "review"), ok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/x", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("negative - denied", func(t *testing.T) {
		r := gin.New()
		r.PUT("/x", withRole("employee"), middleware.RBACAuthorize(svc, "leave", "review"), ok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/x", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("negative - missing auth context", func(t *testing.T) {
		r := gin.New()
		r.PUT("/x", middleware.RBACAuthorize(svc, "leave", "review"), ok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/x", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("negative - enforcer error", func(t *testing.T) {
		r := gin.New()
		r.PUT("/x", withRole("admin"), middleware.RBACAuthorize(&fakeRBAC{err: errors.New("boom")}, "leave", "review"), ok)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/x", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

// observeGlobal swaps the global logger for an in-memory one until the
// test ends.
func observeGlobal(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)
	return logs
}

func TestAuthMiddleware_LogsStoreFailureWithoutScopedLogger(t *testing.T) {
	logs := observeGlobal(t)
	tokens := &fakeTokenManager{
		ParseFn: func(ctx context.Context, raw string) (*token.Claims, error) {
			return nil, errors.New("redis: connection refused")
		},
	}

	r := gin.New()
	r.GET("/me", middleware.AuthMiddleware(tokens), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("token lookup failed").Len())
}

func TestRBACAuthorize_LogsEnforcerErrorWithoutScopedLogger(t *testing.T) {
	logs := observeGlobal(t)

	r := gin.New()
	r.PUT("/x", withRole("admin"), middleware.RBACAuthorize(&fakeRBAC{err: errors.New("boom")}, "leave", "review"),
		func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("rbac enforce failed").Len())
}

func TestRateLimitByIP(t *testing.T) {
	r := gin.New()
	r.POST("/login", middleware.RateLimitByIP(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "other clients keep their own bucket")
}

func TestRateLimitByUser(t *testing.T) {
	setUser := func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set(middleware.ContextUserID, uid)
		}
		c.Next()
	}
	r := gin.New()
	r.GET("/x", setUser, middleware.RateLimitByUser(0.001, 1), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(uid string) int {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if uid != "" {
			req.Header.Set("X-Test-User", uid)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("u1"))
	assert.Equal(t, http.StatusTooManyRequests, send("u1"))
	assert.Equal(t, http.StatusOK, send("u2"))
	assert.Equal(t, http.StatusOK, send(""))
	assert.Equal(t, http.StatusOK, send(""))
}

func TestRequestIDAndContextLogger(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.ContextLogger(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		assert.NotNil(t, contextutil.GetLogger(c.Request.Context(), nil))
		c.String(http.StatusOK, contextutil.GetRequestID(c.Request.Context()))
	})

	t.Run("propagates incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(middleware.HeaderRequestID, "rid-123")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-123", w.Body.String())
		assert.Equal(t, "rid-123", w.Header().Get(middleware.HeaderRequestID))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(middleware.HeaderRequestID))
	})
}
