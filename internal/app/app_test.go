package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-leave/internal/config"
	"go-leave/internal/leave"
	"go-leave/internal/shared/testdb"
	"go-leave/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSeedUsers_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := testdb.Open(t, &user.User{}, &leave.Leave{})

	require.NoError(t, seedUsers(ctx, db))
	require.NoError(t, seedUsers(ctx, db))

	var users []user.User
	require.NoError(t, db.Order("employee_id").Find(&users).Error)
	require.Len(t, users, 2)
	assert.Equal(t, "ADMIN001", users[0].EmployeeID)
	assert.Equal(t, user.RoleAdmin, users[0].Role)
	assert.Equal(t, "EMP001", users[1].EmployeeID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[1].Password), []byte(seedPassword)))
}

func TestRegisterModules_Routes(t *testing.T) {
	db := testdb.Open(t, &user.User{}, &leave.Leave{})
	rdb, _ := redismock.NewClientMock()

	router := gin.New()
	require.NoError(t, registerModules(router, db, rdb, &config.Config{JWTSecret: "test", TokenTTL: time.Hour}))

	got := map[string]bool{}
	for _, r := range router.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/register",
		"POST /api/login",
		"POST /api/logout",
		"GET /api/user",
		"GET /api/users",
		"GET /api/users/:id",
		"GET /api/permissions",
		"GET /api/leaves",
		"POST /api/leaves",
		"GET /api/leaves-current-user",
		"PUT /api/leaves/:id/update",
		"PUT /api/leaves/:id/updateStatus",
		"DELETE /api/leaves/:id/delete",
		"GET /api/leaves/stats",
		"GET /api/leave-stats",
	} {
		assert.True(t, got[want], want)
	}
}

func TestRegisterModules_LeavesRequireBearer(t *testing.T) {
	db := testdb.Open(t, &user.User{}, &leave.Leave{})
	rdb, _ := redismock.NewClientMock()

	router := gin.New()
	require.NoError(t, registerModules(router, db, rdb, &config.Config{JWTSecret: "test", TokenTTL: time.Hour}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leaves", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthHandler(t *testing.T) {
	db := testdb.Open(t)

	t.Run("ok", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectPing().SetVal("PONG")

		router := gin.New()
		router.GET("/healthz", healthHandler(db, rdb))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"database":"ok","redis":"ok"}`, w.Body.String())
	})

	t.Run("redis down", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectPing().SetErr(errors.New("dial tcp: refused"))

		router := gin.New()
		router.GET("/healthz", healthHandler(db, rdb))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"database":"ok","redis":"down"}`, w.Body.String())
	})
}
