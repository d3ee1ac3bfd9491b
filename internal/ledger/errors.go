package ledger

import (
	"errors"
	"fmt"

	"github.com/prathap24reddy/billsplit-complete/internal/storage"
)

// Kind classifies a gateway error so transports can map it to a status code
// without inspecting error text.
type Kind uint8

const (
	// KindStorage covers persistence failures not otherwise classified.
	KindStorage Kind = iota
	// KindValidation is a malformed or missing required field.
	KindValidation
	// KindNotFound is a referenced id that does not exist.
	KindNotFound
	// KindConflict is a duplicate membership or allocation.
	KindConflict
	// KindUnauthenticated means no caller identity was supplied.
	KindUnauthenticated
	// KindForbidden means the caller lacks the tripMember capability.
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	default:
		return "storage"
	}
}

// Error is the error type returned by every Gateway operation.
type Error struct {
	Op   string // gateway operation, e.g. "CreateTrip"
	Kind Kind
	Msg  string // human-readable message, safe to show callers
	Err  error  // underlying cause, may be nil
}

// Sentinels for errors.Is. They match any *Error of the same Kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrStorage         = &Error{Kind: KindStorage}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrForbidden       = &Error{Kind: KindForbidden}
)

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Op == "" {
		return "ledger: " + msg
	}
	return fmt.Sprintf("ledger: %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

// KindOf returns the Kind of err. Errors that are not *Error are KindStorage.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Message returns the caller-facing message of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	return "internal error"
}

func validationError(op, format string, args ...any) error {
	return &Error{Op: op, Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFound(op, what, id string) error {
	return &Error{Op: op, Kind: KindNotFound, Msg: fmt.Sprintf("%s %s not found", what, id)}
}

// translate classifies an error coming out of the store. Errors already
// classified by the gateway pass through unchanged.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &Error{Op: op, Kind: KindNotFound, Msg: "not found", Err: err}
	case errors.Is(err, storage.ErrConflict):
		return &Error{Op: op, Kind: KindConflict, Msg: "already exists", Err: err}
	case errors.Is(err, storage.ErrReference):
		return &Error{Op: op, Kind: KindNotFound, Msg: "referenced record does not exist", Err: err}
	default:
		return &Error{Op: op, Kind: KindStorage, Msg: "storage failure", Err: err}
	}
}
