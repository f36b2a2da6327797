// Package api
// Author: momentics <momentics@gmail.com>
//
// Status error value shared by transports, and the sentinel errors raised
// when lifecycle invariants are broken.

package api

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors. Lifecycle violations are wrapped in an Internal Status and
// raised with panic; the remaining ones are returned.
var (
	ErrEngineClosed      = errors.New("engine is closed")
	ErrInvalidBatch      = errors.New("invalid stream op batch")
	ErrDoubleDestroy     = errors.New("stream refcount destroyed twice")
	ErrRefAfterDestroy   = errors.New("ref on destroyed stream")
	ErrDoubleCompletion  = errors.New("standalone op completed twice")
	ErrClosureScheduled  = errors.New("closure already scheduled")
	ErrCombinerUnderflow = errors.New("call combiner stopped more times than started")
	ErrNotSupported      = errors.New("operation not supported")
	ErrPollsetClosed     = errors.New("pollset is closed")
)

// Status is the single error kind carried through completions: a code, a
// message and an optional cause.
type Status struct {
	Code    codes.Code
	Message string
	Cause   error
}

// NewStatus creates a Status with the given code and message.
func NewStatus(code codes.Code, message string) *Status {
	return &Status{Code: code, Message: message}
}

// Statusf creates a Status with a formatted message.
func Statusf(code codes.Code, format string, args ...any) *Status {
	return &Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause returns a copy of s wrapping cause.
func (s *Status) WithCause(cause error) *Status {
	cp := *s
	cp.Cause = cause
	return &cp
}

// Error implements the error interface.
func (s *Status) Error() string {
	if s.Cause == nil {
		return fmt.Sprintf("%s (code=%s)", s.Message, codeName(s.Code))
	}
	return fmt.Sprintf("%s (code=%s): %v", s.Message, codeName(s.Code), s.Cause)
}

// Unwrap exposes the nested cause to errors.Is and errors.As.
func (s *Status) Unwrap() error {
	return s.Cause
}

// GRPCStatus lets status.FromError and status.Code understand a Status.
func (s *Status) GRPCStatus() *status.Status {
	return status.New(s.Code, s.Message)
}

// Code extracts the status code of err. A nil error is OK.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var st *Status
	if errors.As(err, &st) {
		return st.Code
	}
	if gs, ok := status.FromError(err); ok {
		return gs.Code()
	}
	return codes.Unknown
}

// IsOK reports whether err represents success.
func IsOK(err error) bool {
	return Code(err) == codes.OK
}

// Internal wraps a sentinel into an Internal Status, used for fatal
// invariant violations.
func Internal(sentinel error, format string, args ...any) *Status {
	return Statusf(codes.Internal, format, args...).WithCause(sentinel)
}

// codeName renders codes the way they are written in logs: CANCELLED,
// DEADLINE_EXCEEDED.
func codeName(c codes.Code) string {
	switch c {
	case codes.OK:
		return "OK"
	case codes.Canceled:
		return "CANCELLED"
	case codes.Unknown:
		return "UNKNOWN"
	case codes.InvalidArgument:
		return "INVALID_ARGUMENT"
	case codes.DeadlineExceeded:
		return "DEADLINE_EXCEEDED"
	case codes.NotFound:
		return "NOT_FOUND"
	case codes.AlreadyExists:
		return "ALREADY_EXISTS"
	case codes.PermissionDenied:
		return "PERMISSION_DENIED"
	case codes.ResourceExhausted:
		return "RESOURCE_EXHAUSTED"
	case codes.FailedPrecondition:
		return "FAILED_PRECONDITION"
	case codes.Aborted:
		return "ABORTED"
	case codes.OutOfRange:
		return "OUT_OF_RANGE"
	case codes.Unimplemented:
		return "UNIMPLEMENTED"
	case codes.Internal:
		return "INTERNAL"
	case codes.Unavailable:
		return "UNAVAILABLE"
	case codes.DataLoss:
		return "DATA_LOSS"
	case codes.Unauthenticated:
		return "UNAUTHENTICATED"
	}
	return c.String()
}
