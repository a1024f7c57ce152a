package tools

import (
	"errors"
	"fmt"

	"github.com/golovatskygroup/mcp-netlify/pkg/mcp"
)

// Kind classifies every failure the dispatcher can return.
type Kind int

const (
	KindInvalidParams Kind = iota + 1
	KindInternalError
	KindMethodNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidParams:
		return "invalid_params"
	case KindInternalError:
		return "internal_error"
	case KindMethodNotFound:
		return "method_not_found"
	default:
		return "unknown"
	}
}

// RPCCode maps the kind onto its JSON-RPC error code.
func (k Kind) RPCCode() int {
	switch k {
	case KindInvalidParams:
		return mcp.InvalidParams
	case KindMethodNotFound:
		return mcp.MethodNotFound
	default:
		return mcp.InternalError
	}
}

// Error is the only error type Dispatch returns.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func invalidParams(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidParams, Message: fmt.Sprintf(format, args...)}
}

func internalError(format string, args ...any) *Error {
	return &Error{Kind: KindInternalError, Message: fmt.Sprintf(format, args...)}
}

func methodNotFound(format string, args ...any) *Error {
	return &Error{Kind: KindMethodNotFound, Message: fmt.Sprintf(format, args...)}
}

// AsError extracts a *Error from err. Any other error is reported as an
// internal error so callers always get one of the three kinds.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{Kind: KindInternalError, Message: err.Error()}
}
