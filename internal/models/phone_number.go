package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PhoneStatus is the lifecycle state of a pool number
type PhoneStatus string

const (
	PhoneStatusAvailable PhoneStatus = "AVAILABLE"
	PhoneStatusAssigned  PhoneStatus = "ASSIGNED"
	PhoneStatusInactive  PhoneStatus = "INACTIVE"
)

// ParsePhoneStatus decodes a status string. Unknown values are rejected;
// matching is case-insensitive so "available" and "AVAILABLE" both decode.
func ParsePhoneStatus(s string) (PhoneStatus, error) {
	switch PhoneStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case PhoneStatusAvailable:
		return PhoneStatusAvailable, nil
	case PhoneStatusAssigned:
		return PhoneStatusAssigned, nil
	case PhoneStatusInactive:
		return PhoneStatusInactive, nil
	}
	return "", fmt.Errorf("invalid phone status %q", s)
}

// PhoneNumber is a provider-issued number tracked in the pool.
// GroupID and AssignedAt are set if and only if Status is ASSIGNED.
type PhoneNumber struct {
	ID          string      `json:"id"`
	PhoneNumber string      `json:"phone_number"`
	ProviderSID *string     `json:"provider_sid,omitempty"`
	Status      PhoneStatus `json:"status"`
	GroupID     *string     `json:"group_id,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	AssignedAt  *time.Time  `json:"assigned_at,omitempty"`
}

// RegisterPhoneNumberRequest represents the request body for adding a pool number
type RegisterPhoneNumberRequest struct {
	PhoneNumber string  `json:"phone_number" binding:"required,e164"`
	ProviderSID *string `json:"provider_sid,omitempty" binding:"omitempty,max=64"`
}

// NewPhoneNumber creates an AVAILABLE pool number with a generated UUID
func NewPhoneNumber(number string, providerSID *string) *PhoneNumber {
	return &PhoneNumber{
		ID:          uuid.New().String(),
		PhoneNumber: number,
		ProviderSID: providerSID,
		Status:      PhoneStatusAvailable,
		CreatedAt:   time.Now().UTC(),
	}
}

// IsBound reports whether the number currently routes to a group
func (p *PhoneNumber) IsBound() bool {
	return p.Status == PhoneStatusAssigned && p.GroupID != nil && *p.GroupID != ""
}
