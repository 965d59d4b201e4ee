package payment_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/granada-os/credits-api/internal/domain/payment"
)

type successBody struct {
	Success       bool   `json:"success"`
	CreditsAdded  int    `json:"creditsAdded"`
	TransactionID string `json:"transactionId"`
	ReceiptData   *struct {
		PackageName string `json:"packageName"`
		Issuer      string `json:"issuer"`
	} `json:"receiptData"`
}

type failureBody struct {
	Success      bool   `json:"success"`
	RetryCount   int    `json:"retryCount"`
	ErrorMessage string `json:"errorMessage"`
}

type errorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func paymentTestRouter(t *testing.T, svc *payment.Service) chi.Router {
	t.Helper()
	r := chi.NewRouter()
	r.Mount("/payment-flow", payment.NewHandler(svc).Routes())
	return r
}

func performRequest(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPaymentFlowEndpoints(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	userID := createTestUser(t, db)
	svc := payment.NewService(db, payment.NewDefaultPolicy(false, "guest-user"))
	r := paymentTestRouter(t, svc)

	t.Run("POST /success", func(t *testing.T) {
		resp := performRequest(t, r, http.MethodPost, "/payment-flow/success", map[string]interface{}{
			"userId":        userID,
			"packageId":     "professional",
			"amount":        24.99,
			"currency":      "USD",
			"processorType": "stripe",
			"customer":      map[string]string{"name": "Jane Doe", "email": "jane@example.com"},
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		var body successBody
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !body.Success || body.CreditsAdded != 150 {
			t.Fatalf("expected success=true creditsAdded=150, got %+v", body)
		}
		if body.TransactionID == "" {
			t.Fatal("expected generated transaction id")
		}
		if body.ReceiptData == nil || body.ReceiptData.Issuer != "Granada OS" {
			t.Fatalf("expected receipt with issuer, got %+v", body.ReceiptData)
		}
	})

	t.Run("POST /failure", func(t *testing.T) {
		resp := performRequest(t, r, http.MethodPost, "/payment-flow/failure", map[string]interface{}{
			"userId":        userID,
			"packageId":     "professional",
			"amount":        24.99,
			"currency":      "USD",
			"processorType": "stripe",
			"errorMessage":  "card declined",
		})
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
		}
		var body failureBody
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !body.Success || body.RetryCount != 0 || body.ErrorMessage != "card declined" {
			t.Fatalf("unexpected failure body: %+v", body)
		}
	})

	t.Run("GET /credits", func(t *testing.T) {
		resp := performRequest(t, r, http.MethodGet, "/payment-flow/credits/"+userID, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body struct {
			Success bool `json:"success"`
			Credits int  `json:"credits"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if !body.Success || body.Credits != 150 {
			t.Fatalf("expected credits 150, got %+v", body)
		}
	})

	t.Run("GET /credits unknown user", func(t *testing.T) {
		resp := performRequest(t, r, http.MethodGet, "/payment-flow/credits/no-such-user", nil)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", resp.Code)
		}
		var body errorBody
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body.Success || body.Error == "" {
			t.Fatalf("expected error envelope, got %+v", body)
		}
	})

	t.Run("GET /history", func(t *testing.T) {
		resp := performRequest(t, r, http.MethodGet, "/payment-flow/history/"+userID, nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
		var body struct {
			Success        bool              `json:"success"`
			Transactions   []json.RawMessage `json:"transactions"`
			CreditsHistory []json.RawMessage `json:"creditsHistory"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(body.Transactions) != 2 {
			t.Fatalf("expected 2 payment rows (success + failure), got %d", len(body.Transactions))
		}
		if len(body.CreditsHistory) != 1 {
			t.Fatalf("expected 1 ledger row, got %d", len(body.CreditsHistory))
		}
	})
}

func TestPaymentFlowValidation(t *testing.T) {
	db := setupTestDB(t)
	defer cleanupTestDB(db)

	svc := payment.NewService(db, payment.NewDefaultPolicy(false, "guest-user"))
	r := paymentTestRouter(t, svc)

	resp := performRequest(t, r, http.MethodPost, "/payment-flow/success", map[string]interface{}{
		"userId":        "u1",
		"packageId":     "basic",
		"currency":      "dollars",
		"processorType": "square",
	})
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", resp.Code, resp.Body.String())
	}
	var body errorBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Success || len(body.Details) == 0 {
		t.Fatalf("expected validation details, got %+v", body)
	}
}
