package handler

import (
	"net/http"

	"github.com/minitoco/minitoco/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, auth *service.AuthService, transfers *service.TransferService) {
	users := NewUserHandler(auth)
	tokens := NewTokenHandler(auth)
	transactions := NewTransactionHandler(auth, transfers)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	mux.HandleFunc("POST /api/users", users.HandleRegister)
	mux.Handle("GET /api/users/me", RequireAuth(auth, http.HandlerFunc(users.HandleMe)))
	mux.Handle("GET /api/users/{user_id}", RequireAuth(auth, http.HandlerFunc(users.HandleGetByID)))

	mux.HandleFunc("POST /api/tokens", tokens.HandleCreate)

	mux.Handle("POST /api/transactions", RequireAuth(auth, http.HandlerFunc(transactions.HandleCreate)))
	mux.Handle("GET /api/transactions", RequireAuth(auth, http.HandlerFunc(transactions.HandleList)))
}
