package service

import (
	"github.com/shopspring/decimal"

	"github.com/prathap24reddy/billsplit-complete/internal/ledger"
	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

type CreateTripRequest struct {
	Name   string `json:"name"`
	UserID string `json:"user_id"`
}

type CreateTripResponse struct {
	Trip *models.Trip `json:"trip"`
}

type AddMembershipRequest struct {
	TripID string `json:"trip_id"`
	UserID string `json:"user_id"`
}

type AddMembershipResponse struct {
	Membership *models.Membership `json:"membership"`
}

type ListTripsForUserRequest struct {
	UserID string `json:"user_id"`
}

type ListTripsForUserResponse struct {
	Trips []*models.Trip `json:"trips"`
}

type ListMembersRequest struct {
	TripID string `json:"trip_id"`
}

type ListMembersResponse struct {
	Members []models.Member `json:"members"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []*models.User `json:"users"`
}

// RecordTransactionRequest records a transaction. With Allocations or Split
// set, the transaction and its allocations are written together; otherwise
// only the transaction row is created.
type RecordTransactionRequest struct {
	TripID      string              `json:"trip_id"`
	Amount      decimal.Decimal     `json:"amount"`
	Note        string              `json:"note"`
	Allocations []models.Allocation `json:"allocations,omitempty"`
	Split       *ledger.EvenSplit   `json:"split,omitempty"`
}

type RecordTransactionResponse struct {
	Transaction *models.TransactionDetail `json:"transaction"`
}

type AddAllocationRequest struct {
	TransactionID string          `json:"transaction_id"`
	UserID        string          `json:"user_id"`
	Lent          decimal.Decimal `json:"lent"`
	Borrow        decimal.Decimal `json:"borrow"`
}

type AddAllocationResponse struct {
	Allocation *models.Allocation `json:"allocation"`
}

type GetTransactionsForTripRequest struct {
	TripID string `json:"trip_id"`
}

type GetTransactionsForTripResponse struct {
	Transactions []*models.TransactionDetail `json:"transactions"`
}

type UpdateTransactionRequest struct {
	TransactionID string          `json:"transaction_id"`
	TripID        string          `json:"trip_id"`
	Amount        decimal.Decimal `json:"amount"`
	Note          string          `json:"note"`
}

type UpdateTransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

type DeleteTransactionRequest struct {
	TransactionID string `json:"transaction_id"`
}

type DeleteTransactionResponse struct{}

type DeleteAllocationsRequest struct {
	TransactionID string `json:"transaction_id"`
}

type DeleteAllocationsResponse struct {
	Deleted int64 `json:"deleted"`
}

type ReplaceAllocationsRequest struct {
	TransactionID string              `json:"transaction_id"`
	Allocations   []models.Allocation `json:"allocations"`
}

type ReplaceAllocationsResponse struct {
	Transaction *models.TransactionDetail `json:"transaction"`
}

type TripBalancesRequest struct {
	TripID string `json:"trip_id"`
}

type TripBalancesResponse struct {
	Balances *ledger.Balances `json:"balances"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *models.User `json:"user"`
}
