package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-leave/internal/client"
	"go-leave/internal/leave"
	"go-leave/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "password" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"ok":    false,
				"error": map[string]any{"code": "UNAUTHORIZED", "message": "Invalid credentials"},
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"ok": true,
			"data": map[string]any{
				"message":      "Login successful",
				"access_token": "tok-123",
				"token_type":   "Bearer",
				"user":         map[string]any{"id": "u-1", "email": req["email"]},
			},
		})
	})

	mux.HandleFunc("GET /api/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"ok":    false,
				"error": map[string]any{"code": "UNAUTHORIZED", "message": "Authentication is required"},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": map[string]any{"id": "u-1", "role": "employee"}})
	})

	mux.HandleFunc("POST /api/leaves", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get(middleware.HeaderIdempotencyKey))

		var req leave.CreateLeaveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Reason == "" {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"ok": false,
				"error": map[string]any{
					"code":    "VALIDATION_ERROR",
					"message": "The given data was invalid",
					"errors":  map[string][]string{"reason": {"The reason field is required."}},
				},
			})
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "data": leave.LeaveResponse{
			ID:         "l-1",
			EmployeeID: req.EmployeeID,
			Status:     leave.StatusPending,
		}})
	})

	mux.HandleFunc("PUT /api/leaves/{id}/update", func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Equal(t, map[string]any{"reason": "x"}, raw)
		writeJSON(w, http.StatusForbidden, map[string]any{
			"ok":    false,
			"error": map[string]any{"code": "INVALID_STATE", "message": "Only pending leave records can be updated"},
		})
	})

	mux.HandleFunc("PUT /api/leaves/{id}/updateStatus", func(w http.ResponseWriter, r *http.Request) {
		var req leave.UpdateLeaveStatusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": leave.LeaveResponse{ID: r.PathValue("id"), Status: req.Status}})
	})

	mux.HandleFunc("DELETE /api/leaves/{id}/delete", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": map[string]bool{"deleted": true}})
	})

	mux.HandleFunc("GET /api/leave-stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": leave.StatsResponse{Total: 3, Approved: 1, Pending: 1, Rejected: 1}})
	})

	mux.HandleFunc("POST /api/logout", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": map[string]string{"message": "Logged out"}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginStoresToken(t *testing.T) {
	ctx := context.Background()
	store := &client.MemoryTokenStore{}
	c := client.New(newServer(t).URL, store)

	_, err := c.Me(ctx)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	res, err := c.Login(ctx, "employee1@example.com", "password")
	require.NoError(t, err)
	assert.Equal(t, "tok-123", res.AccessToken)
	assert.Equal(t, "tok-123", store.Token())

	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u-1", me.ID)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, store.Token())
}

func TestClient_LoginFailureKeepsStore(t *testing.T) {
	store := &client.MemoryTokenStore{}
	c := client.New(newServer(t).URL, store)

	_, err := c.Login(context.Background(), "employee1@example.com", "wrong")

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "UNAUTHORIZED", apiErr.Code)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, store.Token())
}

func TestClient_Leaves(t *testing.T) {
	ctx := context.Background()
	store := &client.MemoryTokenStore{}
	store.SetToken("tok-123")
	c := client.New(newServer(t).URL+"/", store)

	created, err := c.CreateLeave(ctx, leave.CreateLeaveRequest{
		EmployeeID: "EMP001",
		LeaveType:  leave.TypeAnnual,
		StartDate:  "2025-06-01",
		EndDate:    "2025-06-05",
		Reason:     "vacation",
	})
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, created.Status)

	_, err = c.CreateLeave(ctx, leave.CreateLeaveRequest{EmployeeID: "EMP001"})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, []string{"The reason field is required."}, apiErr.Errors["reason"])

	reason := "x"
	_, err = c.UpdateLeave(ctx, "l-1", leave.UpdateLeaveRequest{Reason: &reason})
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Equal(t, "INVALID_STATE", apiErr.Code)

	reviewed, err := c.UpdateLeaveStatus(ctx, "l-1", leave.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "l-1", reviewed.ID)
	assert.Equal(t, leave.StatusApproved, reviewed.Status)

	assert.NoError(t, c.DeleteLeave(ctx, "l-1"))

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, leave.StatsResponse{Total: 3, Approved: 1, Pending: 1, Rejected: 1}, stats)
}

type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.calls++
	return http.DefaultTransport.RoundTrip(req)
}

func TestClient_WithTransportKeepsBearer(t *testing.T) {
	store := &client.MemoryTokenStore{}
	store.SetToken("tok-123")
	rt := &countingTransport{}
	c := client.New(newServer(t).URL, store, client.WithTransport(rt))

	_, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, rt.calls)
}
