package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/prathap24reddy/billsplit-complete/internal/ledger"
	"github.com/prathap24reddy/billsplit-complete/internal/models"
)

// LedgerServiceName is the fully-qualified name of the ledger service.
const LedgerServiceName = "billsplit.v1.LedgerService"

// LedgerService implements the Connect LedgerService on top of the gateway.
type LedgerService struct {
	gateway *ledger.Gateway
	logger  *slog.Logger
}

// NewLedgerService creates a new LedgerService backed by gateway.
func NewLedgerService(gateway *ledger.Gateway, logger *slog.Logger) *LedgerService {
	return &LedgerService{gateway: gateway, logger: logger}
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	handle(mux, LedgerServiceName, "CreateTrip", svc.CreateTrip, opts...)
	handle(mux, LedgerServiceName, "AddMembership", svc.AddMembership, opts...)
	handle(mux, LedgerServiceName, "ListTripsForUser", svc.ListTripsForUser, opts...)
	handle(mux, LedgerServiceName, "ListMembers", svc.ListMembers, opts...)
	handle(mux, LedgerServiceName, "ListUsers", svc.ListUsers, opts...)
	handle(mux, LedgerServiceName, "RecordTransaction", svc.RecordTransaction, opts...)
	handle(mux, LedgerServiceName, "AddAllocation", svc.AddAllocation, opts...)
	handle(mux, LedgerServiceName, "GetTransactionsForTrip", svc.GetTransactionsForTrip, opts...)
	handle(mux, LedgerServiceName, "UpdateTransaction", svc.UpdateTransaction, opts...)
	handle(mux, LedgerServiceName, "DeleteTransaction", svc.DeleteTransaction, opts...)
	handle(mux, LedgerServiceName, "DeleteAllocations", svc.DeleteAllocations, opts...)
	handle(mux, LedgerServiceName, "ReplaceAllocations", svc.ReplaceAllocations, opts...)
	handle(mux, LedgerServiceName, "TripBalances", svc.TripBalances, opts...)
	return "/" + LedgerServiceName + "/", mux
}

// connectError maps a gateway error to the matching Connect code. Storage
// failures keep their cause out of the message.
func connectError(err error) *connect.Error {
	var code connect.Code
	switch ledger.KindOf(err) {
	case ledger.KindValidation:
		code = connect.CodeInvalidArgument
	case ledger.KindNotFound:
		code = connect.CodeNotFound
	case ledger.KindConflict:
		code = connect.CodeAlreadyExists
	case ledger.KindUnauthenticated:
		code = connect.CodeUnauthenticated
	case ledger.KindForbidden:
		code = connect.CodePermissionDenied
	default:
		code = connect.CodeInternal
	}
	return connect.NewError(code, errors.New(ledger.Message(err)))
}

// CreateTrip creates a trip owned by the caller.
func (s *LedgerService) CreateTrip(ctx context.Context, req *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error) {
	s.logger.Info("CreateTrip request received", "name", req.Msg.Name, "user_id", req.Msg.UserID)

	trip, err := s.gateway.CreateTrip(ctx, req.Msg.Name, req.Msg.UserID)
	if err != nil {
		s.logger.Error("CreateTrip failed", "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&CreateTripResponse{Trip: trip}), nil
}

// AddMembership adds a user to a trip.
func (s *LedgerService) AddMembership(ctx context.Context, req *connect.Request[AddMembershipRequest]) (*connect.Response[AddMembershipResponse], error) {
	s.logger.Info("AddMembership request received", "trip_id", req.Msg.TripID, "user_id", req.Msg.UserID)

	m, err := s.gateway.AddMembership(ctx, req.Msg.TripID, req.Msg.UserID)
	if err != nil {
		s.logger.Error("AddMembership failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&AddMembershipResponse{Membership: m}), nil
}

// ListTripsForUser lists the caller's trips.
func (s *LedgerService) ListTripsForUser(ctx context.Context, req *connect.Request[ListTripsForUserRequest]) (*connect.Response[ListTripsForUserResponse], error) {
	trips, err := s.gateway.ListTripsForUser(ctx, req.Msg.UserID)
	if err != nil {
		s.logger.Error("ListTripsForUser failed", "user_id", req.Msg.UserID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("ListTripsForUser successful", "user_id", req.Msg.UserID, "count", len(trips))
	return connect.NewResponse(&ListTripsForUserResponse{Trips: trips}), nil
}

// ListMembers lists the members of a trip.
func (s *LedgerService) ListMembers(ctx context.Context, req *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error) {
	members, err := s.gateway.ListMembers(ctx, req.Msg.TripID)
	if err != nil {
		s.logger.Error("ListMembers failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&ListMembersResponse{Members: members}), nil
}

// ListUsers lists every registered user.
func (s *LedgerService) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	users, err := s.gateway.ListUsers(ctx)
	if err != nil {
		s.logger.Error("ListUsers failed", "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&ListUsersResponse{Users: users}), nil
}

// RecordTransaction records a transaction, with its allocations when given.
func (s *LedgerService) RecordTransaction(ctx context.Context, req *connect.Request[RecordTransactionRequest]) (*connect.Response[RecordTransactionResponse], error) {
	msg := req.Msg
	s.logger.Info("RecordTransaction request received",
		"trip_id", msg.TripID,
		"amount", msg.Amount.String(),
		"allocations_count", len(msg.Allocations),
		"split", msg.Split != nil,
	)

	if len(msg.Allocations) == 0 && msg.Split == nil {
		tx, err := s.gateway.RecordTransaction(ctx, msg.TripID, msg.Amount, msg.Note)
		if err != nil {
			s.logger.Error("RecordTransaction failed", "trip_id", msg.TripID, "error", err)
			return nil, connectError(err)
		}
		detail := &models.TransactionDetail{
			Transaction:    *tx,
			Allocations:    []models.AllocationDetail{},
			Reconciliation: models.Reconcile(nil),
		}
		return connect.NewResponse(&RecordTransactionResponse{Transaction: detail}), nil
	}

	detail, err := s.gateway.RecordTransactionWithAllocations(ctx, ledger.RecordInput{
		TripID:      msg.TripID,
		Amount:      msg.Amount,
		Note:        msg.Note,
		Allocations: msg.Allocations,
		Split:       msg.Split,
	})
	if err != nil {
		s.logger.Error("RecordTransaction failed", "trip_id", msg.TripID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&RecordTransactionResponse{Transaction: detail}), nil
}

// AddAllocation adds one allocation to an existing transaction.
func (s *LedgerService) AddAllocation(ctx context.Context, req *connect.Request[AddAllocationRequest]) (*connect.Response[AddAllocationResponse], error) {
	msg := req.Msg
	a, err := s.gateway.AddAllocation(ctx, msg.TransactionID, msg.UserID, msg.Lent, msg.Borrow)
	if err != nil {
		s.logger.Error("AddAllocation failed", "transaction_id", msg.TransactionID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&AddAllocationResponse{Allocation: a}), nil
}

// GetTransactionsForTrip lists a trip's transactions with their allocations.
func (s *LedgerService) GetTransactionsForTrip(ctx context.Context, req *connect.Request[GetTransactionsForTripRequest]) (*connect.Response[GetTransactionsForTripResponse], error) {
	details, err := s.gateway.GetTransactionsForTrip(ctx, req.Msg.TripID)
	if err != nil {
		s.logger.Error("GetTransactionsForTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}

	s.logger.Info("GetTransactionsForTrip successful", "trip_id", req.Msg.TripID, "count", len(details))
	return connect.NewResponse(&GetTransactionsForTripResponse{Transactions: details}), nil
}

// UpdateTransaction replaces a transaction's trip, amount and note.
func (s *LedgerService) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[UpdateTransactionResponse], error) {
	msg := req.Msg
	s.logger.Info("UpdateTransaction request received", "transaction_id", msg.TransactionID)

	tx, err := s.gateway.UpdateTransaction(ctx, msg.TransactionID, msg.TripID, msg.Amount, msg.Note)
	if err != nil {
		s.logger.Error("UpdateTransaction failed", "transaction_id", msg.TransactionID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&UpdateTransactionResponse{Transaction: tx}), nil
}

// DeleteTransaction deletes a transaction and its allocations.
func (s *LedgerService) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	s.logger.Info("DeleteTransaction request received", "transaction_id", req.Msg.TransactionID)

	if err := s.gateway.DeleteTransaction(ctx, req.Msg.TransactionID); err != nil {
		s.logger.Error("DeleteTransaction failed", "transaction_id", req.Msg.TransactionID, "error", err)
		return nil, connectError(err)
	}

	return connect.NewResponse(&DeleteTransactionResponse{}), nil
}

// DeleteAllocations removes every allocation of a transaction.
func (s *LedgerService) DeleteAllocations(ctx context.Context, req *connect.Request[DeleteAllocationsRequest]) (*connect.Response[DeleteAllocationsResponse], error) {
	n, err := s.gateway.DeleteAllocationsForTransaction(ctx, req.Msg.TransactionID)
	if err != nil {
		s.logger.Error("DeleteAllocations failed", "transaction_id", req.Msg.TransactionID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&DeleteAllocationsResponse{Deleted: n}), nil
}

// ReplaceAllocations re-splits a transaction.
func (s *LedgerService) ReplaceAllocations(ctx context.Context, req *connect.Request[ReplaceAllocationsRequest]) (*connect.Response[ReplaceAllocationsResponse], error) {
	detail, err := s.gateway.ReplaceAllocations(ctx, req.Msg.TransactionID, req.Msg.Allocations)
	if err != nil {
		s.logger.Error("ReplaceAllocations failed", "transaction_id", req.Msg.TransactionID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&ReplaceAllocationsResponse{Transaction: detail}), nil
}

// TripBalances returns net balances and settlement transfers for a trip.
func (s *LedgerService) TripBalances(ctx context.Context, req *connect.Request[TripBalancesRequest]) (*connect.Response[TripBalancesResponse], error) {
	balances, err := s.gateway.TripBalances(ctx, req.Msg.TripID)
	if err != nil {
		s.logger.Error("TripBalances failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, connectError(err)
	}
	return connect.NewResponse(&TripBalancesResponse{Balances: balances}), nil
}

// LedgerServiceClient is a client for the billsplit.v1.LedgerService service.
type LedgerServiceClient struct {
	createTrip             *connect.Client[CreateTripRequest, CreateTripResponse]
	addMembership          *connect.Client[AddMembershipRequest, AddMembershipResponse]
	listTripsForUser       *connect.Client[ListTripsForUserRequest, ListTripsForUserResponse]
	listMembers            *connect.Client[ListMembersRequest, ListMembersResponse]
	listUsers              *connect.Client[ListUsersRequest, ListUsersResponse]
	recordTransaction      *connect.Client[RecordTransactionRequest, RecordTransactionResponse]
	addAllocation          *connect.Client[AddAllocationRequest, AddAllocationResponse]
	getTransactionsForTrip *connect.Client[GetTransactionsForTripRequest, GetTransactionsForTripResponse]
	updateTransaction      *connect.Client[UpdateTransactionRequest, UpdateTransactionResponse]
	deleteTransaction      *connect.Client[DeleteTransactionRequest, DeleteTransactionResponse]
	deleteAllocations      *connect.Client[DeleteAllocationsRequest, DeleteAllocationsResponse]
	replaceAllocations     *connect.Client[ReplaceAllocationsRequest, ReplaceAllocationsResponse]
	tripBalances           *connect.Client[TripBalancesRequest, TripBalancesResponse]
}

// NewLedgerServiceClient constructs a client for the LedgerService at baseURL
// (for example, http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	return &LedgerServiceClient{
		createTrip:             unary[CreateTripRequest, CreateTripResponse](httpClient, baseURL, LedgerServiceName, "CreateTrip", opts...),
		addMembership:          unary[AddMembershipRequest, AddMembershipResponse](httpClient, baseURL, LedgerServiceName, "AddMembership", opts...),
		listTripsForUser:       unary[ListTripsForUserRequest, ListTripsForUserResponse](httpClient, baseURL, LedgerServiceName, "ListTripsForUser", opts...),
		listMembers:            unary[ListMembersRequest, ListMembersResponse](httpClient, baseURL, LedgerServiceName, "ListMembers", opts...),
		listUsers:              unary[ListUsersRequest, ListUsersResponse](httpClient, baseURL, LedgerServiceName, "ListUsers", opts...),
		recordTransaction:      unary[RecordTransactionRequest, RecordTransactionResponse](httpClient, baseURL, LedgerServiceName, "RecordTransaction", opts...),
		addAllocation:          unary[AddAllocationRequest, AddAllocationResponse](httpClient, baseURL, LedgerServiceName, "AddAllocation", opts...),
		getTransactionsForTrip: unary[GetTransactionsForTripRequest, GetTransactionsForTripResponse](httpClient, baseURL, LedgerServiceName, "GetTransactionsForTrip", opts...),
		updateTransaction:      unary[UpdateTransactionRequest, UpdateTransactionResponse](httpClient, baseURL, LedgerServiceName, "UpdateTransaction", opts...),
		deleteTransaction:      unary[DeleteTransactionRequest, DeleteTransactionResponse](httpClient, baseURL, LedgerServiceName, "DeleteTransaction", opts...),
		deleteAllocations:      unary[DeleteAllocationsRequest, DeleteAllocationsResponse](httpClient, baseURL, LedgerServiceName, "DeleteAllocations", opts...),
		replaceAllocations:     unary[ReplaceAllocationsRequest, ReplaceAllocationsResponse](httpClient, baseURL, LedgerServiceName, "ReplaceAllocations", opts...),
		tripBalances:           unary[TripBalancesRequest, TripBalancesResponse](httpClient, baseURL, LedgerServiceName, "TripBalances", opts...),
	}
}

func (c *LedgerServiceClient) CreateTrip(ctx context.Context, req *connect.Request[CreateTripRequest]) (*connect.Response[CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddMembership(ctx context.Context, req *connect.Request[AddMembershipRequest]) (*connect.Response[AddMembershipResponse], error) {
	return c.addMembership.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListTripsForUser(ctx context.Context, req *connect.Request[ListTripsForUserRequest]) (*connect.Response[ListTripsForUserResponse], error) {
	return c.listTripsForUser.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListMembers(ctx context.Context, req *connect.Request[ListMembersRequest]) (*connect.Response[ListMembersResponse], error) {
	return c.listMembers.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListUsers(ctx context.Context, req *connect.Request[ListUsersRequest]) (*connect.Response[ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordTransaction(ctx context.Context, req *connect.Request[RecordTransactionRequest]) (*connect.Response[RecordTransactionResponse], error) {
	return c.recordTransaction.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddAllocation(ctx context.Context, req *connect.Request[AddAllocationRequest]) (*connect.Response[AddAllocationResponse], error) {
	return c.addAllocation.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetTransactionsForTrip(ctx context.Context, req *connect.Request[GetTransactionsForTripRequest]) (*connect.Response[GetTransactionsForTripResponse], error) {
	return c.getTransactionsForTrip.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[UpdateTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[DeleteTransactionRequest]) (*connect.Response[DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteAllocations(ctx context.Context, req *connect.Request[DeleteAllocationsRequest]) (*connect.Response[DeleteAllocationsResponse], error) {
	return c.deleteAllocations.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ReplaceAllocations(ctx context.Context, req *connect.Request[ReplaceAllocationsRequest]) (*connect.Response[ReplaceAllocationsResponse], error) {
	return c.replaceAllocations.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) TripBalances(ctx context.Context, req *connect.Request[TripBalancesRequest]) (*connect.Response[TripBalancesResponse], error) {
	return c.tripBalances.CallUnary(ctx, req)
}
