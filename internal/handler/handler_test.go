package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/minitoco/minitoco/internal/handler"
	"github.com/minitoco/minitoco/internal/repository/sqlite"
	"github.com/minitoco/minitoco/internal/service"
	"github.com/shopspring/decimal"
)

const testJWTSecret = "test-secret-key-for-handler-tests"

// newTestServer wires the full stack against a temp database.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := service.NewAuthService(db.Users(), testJWTSecret, 4, decimal.NewFromInt(1000))
	transfers := service.NewTransferService(db, db.Transactions(), logger)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, transfers)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// doJSON sends a JSON request and decodes the JSON response into out (when
// out is non-nil), returning the status code.
func doJSON(t *testing.T, method, url, token string, body any, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

// registerUser creates an account through the API and returns its access token.
func registerUser(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	var tokens struct {
		AccessToken string `json:"access_token"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/users", "", map[string]string{
		"email":      email,
		"first_name": "Test",
		"last_name":  "User",
		"password":   "password123",
	}, &tokens)
	if status != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, status)
	}
	if tokens.AccessToken == "" {
		t.Fatal("expected access token in register response")
	}
	return tokens.AccessToken
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler.HandleHealthz(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("expected status=ok, got %s", body["status"])
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv := newTestServer(t)

	registerUser(t, srv, "dup@example.com")

	status := doJSON(t, http.MethodPost, srv.URL+"/api/users", "", map[string]string{
		"email":      "dup@example.com",
		"first_name": "Other",
		"last_name":  "User",
		"password":   "password456",
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	srv := newTestServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/api/users", "", map[string]string{
		"email":      "weak@example.com",
		"first_name": "Weak",
		"last_name":  "Password",
		"password":   "short",
	}, nil)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", status)
	}
}

func TestTokens_PasswordGrant(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "login@example.com")

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		TokenType    string `json:"token_type"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/tokens", "", map[string]string{
		"grant_type": "password",
		"username":   "login@example.com",
		"password":   "password123",
	}, &tokens)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected a token pair")
	}
	if tokens.TokenType != "Bearer" {
		t.Fatalf("expected Bearer, got %s", tokens.TokenType)
	}

	// The refresh token can be exchanged for a new pair.
	status = doJSON(t, http.MethodPost, srv.URL+"/api/tokens", "", map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": tokens.RefreshToken,
	}, &tokens)
	if status != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", status)
	}
}

func TestTokens_BadCredentials(t *testing.T) {
	srv := newTestServer(t)
	registerUser(t, srv, "badpw@example.com")

	status := doJSON(t, http.MethodPost, srv.URL+"/api/tokens", "", map[string]string{
		"grant_type": "password",
		"username":   "badpw@example.com",
		"password":   "wrongpassword",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestTokens_UnsupportedGrant(t *testing.T) {
	srv := newTestServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/api/tokens", "", map[string]string{
		"grant_type": "client_credentials",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestMe(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "me@example.com")

	var detail struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Balance struct {
			Value string `json:"value"`
		} `json:"balance"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/users/me", token, nil, &detail)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if detail.User.Email != "me@example.com" {
		t.Fatalf("expected email me@example.com, got %s", detail.User.Email)
	}
	if detail.Balance.Value != "1000" {
		t.Fatalf("expected initial balance 1000, got %s", detail.Balance.Value)
	}
}

func TestGetUserByID(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "viewer@example.com")
	otherToken := registerUser(t, srv, "other@example.com")

	var otherDetail struct {
		User struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/api/users/me", otherToken, nil, &otherDetail)

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/users/"+otherDetail.User.ID, token, nil, &user)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if user.ID != otherDetail.User.ID {
		t.Fatalf("expected user ID %s, got %s", otherDetail.User.ID, user.ID)
	}
	if user.Email != "other@example.com" {
		t.Fatalf("expected email other@example.com, got %s", user.Email)
	}
}

func TestGetUserByID_Unknown(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "viewer@example.com")

	status := doJSON(t, http.MethodGet, srv.URL+"/api/users/no-such-user", token, nil, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestGetUserByID_Unauthenticated(t *testing.T) {
	srv := newTestServer(t)

	status := doJSON(t, http.MethodGet, srv.URL+"/api/users/some-id", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	srv := newTestServer(t)

	status := doJSON(t, http.MethodGet, srv.URL+"/api/users/me", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestCreateTransaction_Success(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "sender@example.com")
	registerUser(t, srv, "receiver@example.com")

	var result struct {
		Transaction struct {
			ID          string `json:"id"`
			Amount      string `json:"amount"`
			ToUserEmail string `json:"to_user_email"`
		} `json:"transaction"`
		FinalBalance string `json:"final_balance"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]string{
		"to_user_email": "receiver@example.com",
		"amount":        "10",
	}, &result)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if result.FinalBalance != "990" {
		t.Fatalf("expected final balance 990, got %s", result.FinalBalance)
	}
	if result.Transaction.Amount != "10" {
		t.Fatalf("expected amount 10, got %s", result.Transaction.Amount)
	}
	if result.Transaction.ToUserEmail != "receiver@example.com" {
		t.Fatalf("expected recipient email, got %s", result.Transaction.ToUserEmail)
	}
	if result.Transaction.ID == "" {
		t.Fatal("expected transaction ID")
	}
}

func TestCreateTransaction_InsufficientFunds(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "poor@example.com")
	registerUser(t, srv, "rich@example.com")

	status := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]string{
		"to_user_email": "rich@example.com",
		"amount":        "2000",
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}

	// The sender's balance must be untouched.
	var detail struct {
		Balance struct {
			Value string `json:"value"`
		} `json:"balance"`
	}
	doJSON(t, http.MethodGet, srv.URL+"/api/users/me", token, nil, &detail)
	if detail.Balance.Value != "1000" {
		t.Fatalf("expected balance unchanged at 1000, got %s", detail.Balance.Value)
	}
}

func TestCreateTransaction_UnknownRecipient(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "alone@example.com")

	status := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]string{
		"to_user_email": "nobody@example.com",
		"amount":        "10",
	}, nil)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestCreateTransaction_SelfTransfer(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "selfish@example.com")

	status := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]string{
		"to_user_email": "Selfish@Example.com",
		"amount":        "10",
	}, nil)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestCreateTransaction_InvalidAmount(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "amounts@example.com")
	registerUser(t, srv, "other@example.com")

	for _, amount := range []string{"0", "-5", "1.5", "abc", "", "92233720368547758079"} {
		status := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]string{
			"to_user_email": "other@example.com",
			"amount":        amount,
		}, nil)
		if status != http.StatusBadRequest {
			t.Fatalf("amount %q: expected 400, got %d", amount, status)
		}
	}
}

func TestCreateTransaction_Unauthenticated(t *testing.T) {
	srv := newTestServer(t)

	status := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", "", map[string]string{
		"to_user_email": "anyone@example.com",
		"amount":        "10",
	}, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
}

func TestListTransactions(t *testing.T) {
	srv := newTestServer(t)
	token := registerUser(t, srv, "history@example.com")
	registerUser(t, srv, "peer@example.com")

	for _, amount := range []string{"1", "2", "3"} {
		status := doJSON(t, http.MethodPost, srv.URL+"/api/transactions", token, map[string]string{
			"to_user_email": "peer@example.com",
			"amount":        amount,
		}, nil)
		if status != http.StatusOK {
			t.Fatalf("transfer %s: expected 200, got %d", amount, status)
		}
	}

	var body struct {
		Transactions []struct {
			Amount      string `json:"amount"`
			ToUserEmail string `json:"to_user_email"`
		} `json:"transactions"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/transactions", token, nil, &body)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(body.Transactions) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(body.Transactions))
	}
	// Newest first.
	for i, want := range []string{"3", "2", "1"} {
		if body.Transactions[i].Amount != want {
			t.Fatalf("position %d: expected amount %s, got %s", i, want, body.Transactions[i].Amount)
		}
	}
}
