package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/prathap24reddy/billsplit-complete/internal/middleware"
)

// Mount is an extra handler served under Pattern, such as a Connect service
// or the metrics endpoint. Mounts bypass the bearer check and do their own.
type Mount struct {
	Pattern string
	Handler http.Handler
}

// NewRouter builds the route table.
func NewRouter(api *API, mounts ...Mount) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.RequestLogger,
	)

	r.Get("/healthz", api.Health)

	r.Post("/signup", api.Signup)
	r.Post("/login", api.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireBearer(api.jwtManager))

		r.Get("/users", api.ListUsers)
		r.Get("/user-trips/{userId}", api.ListTripsForUser)

		r.Post("/trips", api.CreateTrip)
		r.Get("/trips/{tripId}/balances", api.TripBalances)

		r.Route("/trip_users", func(r chi.Router) {
			r.Post("/", api.AddMembership)
			r.Get("/{tripId}", api.ListMembers)
		})

		// GET takes a trip id, PUT and DELETE a transaction id.
		r.Route("/transaction", func(r chi.Router) {
			r.Post("/", api.RecordTransaction)
			r.Get("/{id}", api.GetTransactionsForTrip)
			r.Put("/{id}", api.UpdateTransaction)
			r.Delete("/{id}", api.DeleteTransaction)
		})

		r.Route("/transaction_users", func(r chi.Router) {
			r.Post("/", api.AddAllocation)
			r.Put("/{transactionId}", api.ReplaceAllocations)
			r.Delete("/{transactionId}", api.DeleteAllocations)
		})
	})

	for _, m := range mounts {
		r.Handle(m.Pattern, m.Handler)
	}

	return r
}

// Health reports liveness.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}
