// Package httpapi serves the ledger's REST routes with chi. Handlers decode
// JSON, call the gateway and map its error kinds to HTTP status codes.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prathap24reddy/billsplit-complete/internal/auth"
	"github.com/prathap24reddy/billsplit-complete/internal/ledger"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// API holds the dependencies of the REST handlers.
type API struct {
	gateway       *ledger.Gateway
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	logger        *slog.Logger
}

// New creates the REST API.
func New(gateway *ledger.Gateway, authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger) *API {
	return &API{
		gateway:       gateway,
		authenticator: authenticator,
		jwtManager:    jwtManager,
		logger:        logger,
	}
}

func (a *API) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *API) message(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"message": msg})
}

func (a *API) fail(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

// writeError writes a gateway error with the status code of its kind.
func (a *API) writeError(w http.ResponseWriter, err error) {
	a.fail(w, statusFor(ledger.KindOf(err)), ledger.Message(err))
}

func statusFor(kind ledger.Kind) int {
	switch kind {
	case ledger.KindValidation:
		return http.StatusBadRequest
	case ledger.KindUnauthenticated:
		return http.StatusUnauthorized
	case ledger.KindForbidden:
		return http.StatusForbidden
	case ledger.KindNotFound:
		return http.StatusNotFound
	case ledger.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. Unknown fields are ignored.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("request body is required")
	}
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}
