package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxMessageLength bounds message content in characters
const MaxMessageLength = 1000

// Message is an immutable entry in a group's append-only log
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"user_id"`
	GroupID   string    `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`

	UserName *string `json:"user_name,omitempty"` // Materialized on reads
}

// SendMessageRequest represents a message posted from the web client
type SendMessageRequest struct {
	UserID  string `json:"user_id" binding:"required"`
	Content string `json:"content" binding:"required,max=1000"`
}

// NewMessage creates a Message stamped with the current time
func NewMessage(content, userID, groupID string) *Message {
	return &Message{
		ID:        uuid.New().String(),
		Content:   content,
		UserID:    userID,
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	}
}

// ContentBlank reports whether content has nothing to deliver
func ContentBlank(content string) bool {
	return strings.TrimSpace(content) == ""
}

// ContentLengthValid reports whether content fits the stored column
func ContentLengthValid(content string) bool {
	return utf8.RuneCountInString(content) <= MaxMessageLength
}

// FormatGroupSMS renders the body delivered to each recipient
func FormatGroupSMS(groupName, authorName, content string) string {
	return fmt.Sprintf("[%s] %s: %s", groupName, authorName, content)
}
