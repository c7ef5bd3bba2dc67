// Package apperr defines the error taxonomy shared by persistence, the wake
// loop and the control layer. Each error carries a human-readable message,
// the technical cause and a recovery hint.
package apperr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an Error.
type Kind int

const (
	// StateIO covers persistence read/write failures and failed control
	// operations that could not complete safely.
	StateIO Kind = iota + 1
	// StateSerialization is an encode failure while writing state.
	StateSerialization
	// InputSimulation is a failure to acquire the input simulator.
	InputSimulation
	// IconProcessing is a failure to encode the tray icon.
	IconProcessing
	// UnsupportedMode rejects a screen mode the platform cannot honor.
	UnsupportedMode
)

func (k Kind) String() string {
	switch k {
	case StateIO:
		return "State I/O"
	case StateSerialization:
		return "State serialization"
	case InputSimulation:
		return "Input simulation"
	case IconProcessing:
		return "Icon processing"
	case UnsupportedMode:
		return "Unsupported mode"
	default:
		return "Unknown"
	}
}

// Error is the application error type.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
	Hint    string
}

// New builds an Error. cause may be nil.
func New(kind Kind, message string, cause error, hint string) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause, Hint: hint}
}

func (e *Error) Error() string {
	cause := "none"
	if e.Cause != nil {
		cause = e.Cause.Error()
	}
	return fmt.Sprintf("%s error: %s (cause: %s, hint: %s)", e.Kind, e.Message, cause, e.Hint)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsKind reports whether any error in err's chain is an *Error of kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
