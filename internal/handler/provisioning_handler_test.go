package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pettycash/internal/apperr"
	"pettycash/internal/identity"
	"pettycash/internal/middleware"
	"pettycash/internal/model"
	"pettycash/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorBody(t *testing.T, body []byte) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(body, &payload), string(body))
	return payload["error"]
}

func provisioningServer(t *testing.T) (*testServer, *int) {
	s := newTestServer(t)
	created := 0
	s.provisioning.authorizeFn = func(_ context.Context, header string) (*identity.Session, error) {
		switch header {
		case "":
			return nil, apperr.Auth("Missing authorization header")
		case "Bearer admin-token":
			return s.admin, nil
		case "Bearer emp-token":
			return nil, apperr.Forbidden("Forbidden: admin role required")
		default:
			return nil, apperr.Auth("Unauthorized")
		}
	}
	s.provisioning.createFn = func(_ context.Context, caller *identity.Session, req service.CreateUserRequest) (*service.CreateUserResponse, error) {
		switch req.Email {
		case "":
			return nil, apperr.Validation("email, password, full_name, and role are required")
		case "taken@example.com":
			return nil, apperr.New(apperr.KindProvider, "A user with this email address has already been registered")
		case "panic@example.com":
			panic("identity client exploded")
		case "down@example.com":
			return nil, context.DeadlineExceeded
		}
		created++
		return &service.CreateUserResponse{UserID: "u-1", EmployeeID: 10000, Email: req.Email, FullName: req.FullName, Role: req.Role}, nil
	}
	return s, &created
}

func TestCreateUser_AuthorizationComesFirst(t *testing.T) {
	s, created := provisioningServer(t)

	rec := s.doJSON(http.MethodPost, "/create-user", "", `{not json`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing authorization header", errorBody(t, rec.Body.Bytes()))

	rec = s.doJSON(http.MethodPost, "/create-user", "forged", `{not json`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", errorBody(t, rec.Body.Bytes()))

	rec = s.doJSON(http.MethodPost, "/create-user", "emp-token", `{"email":"new@example.com","password":"pw","full_name":"New","role":"employee"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Forbidden: admin role required", errorBody(t, rec.Body.Bytes()))

	assert.Zero(t, *created)
}

func TestCreateUser_Outcomes(t *testing.T) {
	s, created := provisioningServer(t)

	rec := s.doJSON(http.MethodPost, "/create-user", "admin-token", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request payload", errorBody(t, rec.Body.Bytes()))

	rec = s.doJSON(http.MethodPost, "/create-user", "admin-token", `{"password":"pw"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email, password, full_name, and role are required", errorBody(t, rec.Body.Bytes()))

	rec = s.doJSON(http.MethodPost, "/create-user", "admin-token", `{"email":"taken@example.com","password":"pw","full_name":"T","role":"employee"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "A user with this email address has already been registered", errorBody(t, rec.Body.Bytes()))

	rec = s.doJSON(http.MethodPost, "/create-user", "admin-token", `{"email":"down@example.com","password":"pw","full_name":"D","role":"employee"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorBody(t, rec.Body.Bytes()))

	rec = s.doJSON(http.MethodPost, "/create-user", "admin-token", `{"email":"panic@example.com","password":"pw","full_name":"P","role":"employee"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", errorBody(t, rec.Body.Bytes()))

	rec = s.doJSON(http.MethodPost, "/create-user", "admin-token", `{"email":"aminata@example.com","password":"pw","full_name":"Aminata Ndiaye","role":"accountant"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var res service.CreateUserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, service.CreateUserResponse{
		UserID:     "u-1",
		EmployeeID: 10000,
		Email:      "aminata@example.com",
		FullName:   "Aminata Ndiaye",
		Role:       model.RoleAccountant,
	}, res)
	assert.Equal(t, 1, *created)
}

func TestCreateUser_AuthFailuresAreNotReplayed(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	promoted := false
	caller := &identity.Session{UserID: uuid.New(), Role: model.RoleEmployee}
	created := 0
	svc := &fakeProvisioningService{
		authorizeFn: func(context.Context, string) (*identity.Session, error) {
			if !promoted {
				return nil, apperr.Forbidden("Forbidden: admin role required")
			}
			caller.Role = model.RoleAdmin
			return caller, nil
		},
		createFn: func(_ context.Context, sess *identity.Session, req service.CreateUserRequest) (*service.CreateUserResponse, error) {
			created++
			return &service.CreateUserResponse{UserID: "u-9", EmployeeID: 10000 + created, Email: req.Email, Role: req.Role}, nil
		},
	}

	router := gin.New()
	NewProvisioningHandler(svc, middleware.Idempotency(rdb, time.Minute, nil), nil).RegisterRoutes(router.Group(""))

	body := `{"email":"ousmane@example.com","password":"pw","full_name":"Ousmane Sy","role":"employee"}`
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/create-user", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer promoted-token")
		req.Header.Set(middleware.IdempotencyKeyHeader, "create-ousmane")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := send()
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, mr.Keys(), "a rejected caller leaves nothing in the idempotency store")

	promoted = true
	rec = send()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, rec.Header().Get(middleware.ReplayedHeader))

	rec = send()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "true", rec.Header().Get(middleware.ReplayedHeader))
	assert.Equal(t, 1, created)
}
