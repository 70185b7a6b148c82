package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every ServiceError unwraps to exactly one of these.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

// ServiceError carries a user-facing message and the kind used for status mapping
type ServiceError struct {
	Kind    error
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Kind
}

func validationError(format string, args ...any) error {
	return &ServiceError{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrPhoneNotFound         = &ServiceError{Kind: ErrNotFound, Message: "Phone number not found"}
	ErrDuplicateNumber       = &ServiceError{Kind: ErrConflict, Message: "Phone number already exists"}
	ErrInvalidState          = &ServiceError{Kind: ErrConflict, Message: "Phone number is in an invalid state for this operation"}
	ErrGroupAlreadyHasNumber = &ServiceError{Kind: ErrConflict, Message: "Group already has a phone number"}
	ErrNoAvailableNumbers    = &ServiceError{Kind: ErrConflict, Message: "No available phone numbers in pool"}

	ErrGroupNotFound = &ServiceError{Kind: ErrNotFound, Message: "Group not found"}
	ErrAlreadyMember = &ServiceError{Kind: ErrConflict, Message: "User already in group"}
	ErrNotMember     = &ServiceError{Kind: ErrConflict, Message: "User not in group"}
	ErrMustBeMember  = &ServiceError{Kind: ErrForbidden, Message: "User is not a member of this group"}

	ErrUserNotFound      = &ServiceError{Kind: ErrNotFound, Message: "User not found"}
	ErrPhoneRegistered   = &ServiceError{Kind: ErrConflict, Message: "Phone number already registered"}
	ErrInvalidOTP        = &ServiceError{Kind: ErrValidation, Message: "Invalid or expired OTP"}
	ErrUserAlreadyExists = &ServiceError{Kind: ErrConflict, Message: "User already exists with this phone number"}
)
