package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a phone owner who can belong to any number of groups
type User struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"` // E.164, unique
	CreatedAt   time.Time `json:"created_at"`
}

// CreateUserRequest represents the request body for creating a new user
type CreateUserRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=255"`
	PhoneNumber string `json:"phone_number" binding:"required,e164"`
}

// SendOTPRequest asks for a verification code to be texted to a number
type SendOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,e164"`
}

// RegisterWithOTPRequest creates an account after proving phone ownership
type RegisterWithOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,e164"`
	Name        string `json:"name" binding:"required,min=1,max=255"`
	OTPCode     string `json:"otp_code" binding:"required,len=6,numeric"`
}

// LoginWithOTPRequest signs in an existing account
type LoginWithOTPRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required,e164"`
	OTPCode     string `json:"otp_code" binding:"required,len=6,numeric"`
}

// AuthResponse is returned by OTP register and login
type AuthResponse struct {
	*User
	Token string `json:"token"`
}

// NewUser creates a new User with generated UUID and timestamp
func NewUser(name, phoneNumber string) *User {
	return &User{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(name),
		PhoneNumber: strings.TrimSpace(phoneNumber),
		CreatedAt:   time.Now().UTC(),
	}
}
