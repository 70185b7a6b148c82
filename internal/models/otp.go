package models

import (
	"time"

	"github.com/google/uuid"
)

// OTPVerification tracks one outstanding login or registration code.
// Secret is the per-code TOTP seed, encrypted when a key is configured.
type OTPVerification struct {
	ID          string
	PhoneNumber string
	Secret      string
	ExpiresAt   time.Time
	Verified    bool
	CreatedAt   time.Time
}

// NewOTPVerification creates an unverified record valid for ttl
func NewOTPVerification(phoneNumber, secret string, ttl time.Duration) *OTPVerification {
	now := time.Now().UTC()
	return &OTPVerification{
		ID:          uuid.New().String(),
		PhoneNumber: phoneNumber,
		Secret:      secret,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
}

// IsExpired reports whether the code can no longer be used at t
func (o *OTPVerification) IsExpired(t time.Time) bool {
	return !t.Before(o.ExpiresAt)
}
