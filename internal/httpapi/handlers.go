package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/auth"
	"github.com/prathap24reddy/billsplit-complete/internal/ledger"
	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

const signupMessage = "Account created successfully. Please sign in."

type signupResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Signup registers a user. The response carries a confirmation message plus a
// token, so clients may either sign in again or use the token directly.
func (a *API) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := a.authenticator.Register(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		a.fail(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrMissingFields):
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		a.logger.Error("Signup failed", "email", req.Email, "error", err)
		a.fail(w, http.StatusInternalServerError, "signup failed")
		return
	}

	token, err := a.jwtManager.Generate(user)
	if err != nil {
		a.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		a.fail(w, http.StatusInternalServerError, "signup failed")
		return
	}

	a.logger.Info("User registered", "user_id", user.ID)
	a.json(w, http.StatusCreated, signupResponse{Message: signupMessage, Token: token, User: user})
}

// Login exchanges credentials for a token.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		a.fail(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		a.fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		a.logger.Error("Login failed", "email", req.Email, "error", err)
		a.fail(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := a.jwtManager.Generate(user)
	if err != nil {
		a.logger.Error("Failed to generate token", "user_id", user.ID, "error", err)
		a.fail(w, http.StatusInternalServerError, "login failed")
		return
	}
	a.json(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// ListUsers handles GET /users.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.gateway.ListUsers(r.Context())
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, users)
}

type createTripRequest struct {
	Name   string `json:"name"`
	UserID string `json:"userId"`
	// Accepted for symmetry with the other snake_case bodies.
	UserIDSnake string `json:"user_id"`
}

// CreateTrip handles POST /trips.
func (a *API) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req createTripRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = req.UserIDSnake
	}

	trip, err := a.gateway.CreateTrip(r.Context(), req.Name, userID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusCreated, trip)
}

// ListTripsForUser handles GET /user-trips/{userId}.
func (a *API) ListTripsForUser(w http.ResponseWriter, r *http.Request) {
	trips, err := a.gateway.ListTripsForUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, trips)
}

// TripBalances handles GET /trips/{tripId}/balances.
func (a *API) TripBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := a.gateway.TripBalances(r.Context(), chi.URLParam(r, "tripId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, balances)
}

// AddMembership handles POST /trip_users.
func (a *API) AddMembership(w http.ResponseWriter, r *http.Request) {
	var req models.Membership
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	m, err := a.gateway.AddMembership(r.Context(), req.TripID, req.UserID)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusCreated, m)
}

// ListMembers handles GET /trip_users/{tripId}.
func (a *API) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.gateway.ListMembers(r.Context(), chi.URLParam(r, "tripId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, members)
}

type recordTransactionRequest struct {
	TripID      string              `json:"trip_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Note        string              `json:"note"`
	Allocations []models.Allocation `json:"allocations"`
	Split       *ledger.EvenSplit   `json:"split"`
}

type recordTransactionResponse struct {
	ID          string                    `json:"id"`
	Transaction *models.TransactionDetail `json:"transaction,omitempty"`
}

// RecordTransaction handles POST /transaction. Without allocations or a split
// it only creates the transaction row, and allocations follow through
// POST /transaction_users.
func (a *API) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req recordTransactionRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Allocations) == 0 && req.Split == nil {
		tx, err := a.gateway.RecordTransaction(r.Context(), req.TripID, req.Amount, req.Note)
		if err != nil {
			a.writeError(w, err)
			return
		}
		a.json(w, http.StatusCreated, recordTransactionResponse{ID: tx.ID})
		return
	}

	detail, err := a.gateway.RecordTransactionWithAllocations(r.Context(), ledger.RecordInput{
		TripID:      req.TripID,
		Amount:      req.Amount,
		Note:        req.Note,
		Allocations: req.Allocations,
		Split:       req.Split,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusCreated, recordTransactionResponse{ID: detail.ID, Transaction: detail})
}

// GetTransactionsForTrip handles GET /transaction/{id}, where id is a trip.
func (a *API) GetTransactionsForTrip(w http.ResponseWriter, r *http.Request) {
	details, err := a.gateway.GetTransactionsForTrip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, details)
}

type updateTransactionRequest struct {
	TripID string          `json:"trip_id"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

// UpdateTransaction handles PUT /transaction/{id}.
func (a *API) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := a.gateway.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), req.TripID, req.Amount, req.Note)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, tx)
}

// DeleteTransaction handles DELETE /transaction/{id}.
func (a *API) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := a.gateway.DeleteTransaction(r.Context(), chi.URLParam(r, "id")); err != nil {
		a.writeError(w, err)
		return
	}
	a.message(w, http.StatusOK, "transaction deleted")
}

type addAllocationRequest struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Borrow        decimal.Decimal `json:"borrow"`
	Lent          decimal.Decimal `json:"lent"`
}

// AddAllocation handles POST /transaction_users.
func (a *API) AddAllocation(w http.ResponseWriter, r *http.Request) {
	var req addAllocationRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err := a.gateway.AddAllocation(r.Context(), req.TransactionID, req.UserID, req.Lent, req.Borrow)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.message(w, http.StatusCreated, "allocation added")
}

type replaceAllocationsRequest struct {
	Allocations []models.Allocation `json:"allocations"`
}

// ReplaceAllocations handles PUT /transaction_users/{transactionId}.
func (a *API) ReplaceAllocations(w http.ResponseWriter, r *http.Request) {
	var req replaceAllocationsRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err.Error())
		return
	}

	detail, err := a.gateway.ReplaceAllocations(r.Context(), chi.URLParam(r, "transactionId"), req.Allocations)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, detail)
}

// DeleteAllocations handles DELETE /transaction_users/{transactionId}.
func (a *API) DeleteAllocations(w http.ResponseWriter, r *http.Request) {
	n, err := a.gateway.DeleteAllocationsForTransaction(r.Context(), chi.URLParam(r, "transactionId"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"message": "allocations deleted",
		"deleted": n,
	})
}
