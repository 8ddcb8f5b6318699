package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError and drives HTTP status mapping.
type Code string

const (
	CodeInvalidRequest Code = "INVALID_REQUEST"
	CodeDuplicateHold  Code = "DUPLICATE_HOLD"
	CodeSlotBlocked    Code = "SLOT_BLOCKED"
	CodeSlotTaken      Code = "SLOT_TAKEN"
	CodeNotFound       Code = "NOT_FOUND"
	CodeForbidden      Code = "FORBIDDEN"
	CodeExpired        Code = "EXPIRED"
	CodeInternal       Code = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case CodeInvalidRequest:
		return http.StatusBadRequest
	case CodeDuplicateHold, CodeSlotBlocked, CodeSlotTaken:
		return http.StatusConflict
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// Error constructors
func InvalidRequest(message string) *AppError {
	return &AppError{Code: CodeInvalidRequest, Message: message}
}

func DuplicateHold() *AppError {
	return &AppError{Code: CodeDuplicateHold, Message: "requester already has an active hold"}
}

func SlotBlocked() *AppError {
	return &AppError{Code: CodeSlotBlocked, Message: "slot is blocked by the schedule"}
}

func SlotTaken() *AppError {
	return &AppError{Code: CodeSlotTaken, Message: "slot is already taken"}
}

func NotFound(resource string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource)}
}

func Forbidden() *AppError {
	return &AppError{Code: CodeForbidden, Message: "requester does not own this hold"}
}

func Expired() *AppError {
	return &AppError{Code: CodeExpired, Message: "hold has expired"}
}

func Internal(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: "internal server error", Err: err}
}

// CodeOf extracts the Code from err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// As unwraps err into an AppError when possible.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	ok := errors.As(err, &appErr)
	return appErr, ok
}
