package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/granada-os/credits-api/internal/middleware"
	"github.com/granada-os/credits-api/internal/pkg/jwt"
)

func protectedHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.GetAdminID(r.Context()) == uuid.Nil {
			t.Error("expected admin id on context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAdminAuth(t *testing.T) {
	jwtSvc := jwt.NewService("auth-middleware-secret", time.Hour)
	handler := middleware.AdminAuth(jwtSvc)(protectedHandler(t))

	adminID := uuid.New()
	token, err := jwtSvc.GenerateToken(adminID, "admin@test.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"malformed header", "Bearer", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.token", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/transactions", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)
			if resp.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, resp.Code)
			}
		})
	}
}

func TestAdminAuthExpiredToken(t *testing.T) {
	expired := jwt.NewService("auth-middleware-secret", -time.Minute)
	token, err := expired.GenerateToken(uuid.New(), "admin@test.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	handler := middleware.AdminAuth(jwt.NewService("auth-middleware-secret", time.Hour))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run")
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/admin/analytics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}
