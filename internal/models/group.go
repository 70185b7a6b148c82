package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Group is a named chat room; names are not unique
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Materialized by repository reads, never stored on the groups row
	PhoneNumber *string `json:"phone_number,omitempty"` // Bound pool number
	UserCount   int     `json:"user_count"`
}

// CreateGroupRequest represents the request body for creating a new group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// NewGroup creates a new Group with generated UUID and timestamp
func NewGroup(name string) *Group {
	return &Group{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now().UTC(),
	}
}

// HasBoundNumber reports whether a pool number is assigned to the group
func (g *Group) HasBoundNumber() bool {
	return g.PhoneNumber != nil && *g.PhoneNumber != ""
}

// NameMatches compares group names the way SMS commands address them
func (g *Group) NameMatches(name string) bool {
	return strings.EqualFold(strings.TrimSpace(g.Name), strings.TrimSpace(name))
}
