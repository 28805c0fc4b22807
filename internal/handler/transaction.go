package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/minitoco/minitoco/internal/domain"
	"github.com/minitoco/minitoco/internal/service"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles toco transfer HTTP requests.
type TransactionHandler struct {
	auth      *service.AuthService
	transfers *service.TransferService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(auth *service.AuthService, transfers *service.TransferService) *TransactionHandler {
	return &TransactionHandler{auth: auth, transfers: transfers}
}

// HandleCreate sends tocos from the authenticated user to the user named by
// to_user_email. The transfer engine assumes a positive integer amount and
// distinct parties, so both are validated here before the recipient's email
// is resolved to an ID.
// POST /api/transactions
// Request:  {"to_user_email":"...","amount":"25"}
// Response: {"transaction":{...},"final_balance":"975"}
func (h *TransactionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	var req struct {
		ToUserEmail string `json:"to_user_email"`
		Amount      string `json:"amount"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsInteger() || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "Amount must be a positive whole number of tocos.")
		return
	}
	// The store holds balances as 64-bit integers.
	if !amount.BigInt().IsInt64() {
		writeError(w, http.StatusBadRequest, "Amount is too large.")
		return
	}

	if strings.EqualFold(req.ToUserEmail, user.Email) {
		writeError(w, http.StatusBadRequest, "You cannot send tocos to yourself.")
		return
	}

	toUser, err := h.auth.GetUserByEmail(r.Context(), req.ToUserEmail)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recipient not found.")
			return
		}
		slog.Error("resolve recipient", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	result, err := h.transfers.Transfer(r.Context(), amount, user.ID, toUser.ID)
	if err != nil {
		var insufficient *domain.InsufficientFundsError
		if errors.As(err, &insufficient) {
			writeError(w, http.StatusConflict, "Insufficient funds.")
			return
		}
		// The sender is the logged-in user and the recipient was just
		// resolved, so a not-found here is rare; log it but return the
		// friendlier 404.
		var notFound *domain.UserNotFoundError
		if errors.As(err, &notFound) {
			slog.Error("transfer party vanished", "user_id", notFound.UserID)
			writeError(w, http.StatusNotFound, "User not found.")
			return
		}
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, toTransferResultDTO(result))
}

// HandleList returns the transactions the authenticated user sent,
// newest first.
// GET /api/transactions
func (h *TransactionHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	transactions, err := h.transfers.ListTransactions(r.Context(), user.ID)
	if err != nil {
		slog.Error("list transactions", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": toTransactionDTOs(transactions),
	})
}
