package credit_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/granada-os/credits-api/internal/domain/credit"
	"github.com/granada-os/credits-api/internal/middleware"
	"github.com/granada-os/credits-api/internal/pkg/jwt"
)

func newCreditRouter(t *testing.T, svc credit.Service, adminAuth func(http.Handler) http.Handler) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/credits", credit.NewHandler(svc).Routes(adminAuth))
	return r
}

func doRequest(t *testing.T, r chi.Router, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestCreditEndpoints(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	userID := createTestUserWithCredits(t, db, 0)
	svc := credit.NewService(db, nil)

	jwtSvc := jwt.NewService("credit-endpoints-secret", time.Hour)
	r := newCreditRouter(t, svc, middleware.AdminAuth(jwtSvc))

	t.Run("POST /transaction purchase", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodPost, "/credits/transaction", "", map[string]interface{}{
			"userId": userID,
			"type":   "purchase",
			"amount": 100,
		})
		if resp.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
		}
	})

	t.Run("GET /balance", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/credits/balance?userId="+userID, "", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body credit.BalanceResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !body.Success || body.Balance != 100 || body.TotalPurchased != 100 {
			t.Fatalf("unexpected balance body: %+v", body)
		}
	})

	t.Run("GET /balance missing userId", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/credits/balance", "", nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}
	})

	t.Run("POST /transaction unknown user", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodPost, "/credits/transaction", "", map[string]interface{}{
			"userId": "no-such-user",
			"type":   "usage",
			"amount": 5,
		})
		if resp.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", resp.Code, resp.Body.String())
		}
	})

	t.Run("POST /transaction insufficient", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodPost, "/credits/transaction", "", map[string]interface{}{
			"userId": userID,
			"type":   "usage",
			"amount": 5000,
		})
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
		}
	})

	t.Run("GET /transactions", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/credits/transactions?userId="+userID+"&limit=10", "", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body credit.TransactionsResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(body.Transactions) != 1 {
			t.Fatalf("expected 1 ledger row, got %d", len(body.Transactions))
		}
	})

	t.Run("GET /admin/transactions unauthorized", func(t *testing.T) {
		resp := doRequest(t, r, http.MethodGet, "/credits/admin/transactions", "", nil)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.Code)
		}
	})

	t.Run("GET /admin/transactions", func(t *testing.T) {
		token := adminToken(t, jwtSvc)
		resp := doRequest(t, r, http.MethodGet, "/credits/admin/transactions?type=purchase", token, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		var body credit.AdminTransactionsResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !body.Success || body.Stats == nil {
			t.Fatalf("expected stats, got %+v", body)
		}
		if body.Stats.CreditsIssued != 100 {
			t.Fatalf("expected 100 credits issued, got %d", body.Stats.CreditsIssued)
		}
	})

	t.Run("GET /admin/transactions bad type filter", func(t *testing.T) {
		token := adminToken(t, jwtSvc)
		resp := doRequest(t, r, http.MethodGet, "/credits/admin/transactions?type=refund", token, nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", resp.Code)
		}
	})

	t.Run("GET /admin/analytics", func(t *testing.T) {
		token := adminToken(t, jwtSvc)
		resp := doRequest(t, r, http.MethodGet, "/credits/admin/analytics?days=7", token, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		var body credit.AnalyticsResponse
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Analytics == nil || len(body.Analytics.DailyStats) == 0 {
			t.Fatalf("expected at least one daily bucket, got %+v", body.Analytics)
		}
	})
}

func adminToken(t *testing.T, svc *jwt.Service) string {
	t.Helper()

	token, err := svc.GenerateToken(uuid.New(), "admin@test.com")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}
