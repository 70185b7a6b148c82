package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePhoneStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    PhoneStatus
		wantErr bool
	}{
		{input: "AVAILABLE", want: PhoneStatusAvailable},
		{input: "assigned", want: PhoneStatusAssigned},
		{input: " Inactive ", want: PhoneStatusInactive},
		{input: "RETIRED", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePhoneStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPhoneNumber(t *testing.T) {
	sid := "PN123"
	p := NewPhoneNumber("+15551110000", &sid)

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, PhoneStatusAvailable, p.Status)
	assert.Nil(t, p.GroupID)
	assert.Nil(t, p.AssignedAt)
	assert.False(t, p.IsBound())
}

func TestPhoneNumber_IsBound(t *testing.T) {
	groupID := "group-1"

	assert.True(t, (&PhoneNumber{Status: PhoneStatusAssigned, GroupID: &groupID}).IsBound())
	assert.False(t, (&PhoneNumber{Status: PhoneStatusAssigned}).IsBound())
	assert.False(t, (&PhoneNumber{Status: PhoneStatusInactive, GroupID: &groupID}).IsBound())
}

func TestMessageHelpers(t *testing.T) {
	assert.Equal(t, "[Family] Alice: dinner at 7", FormatGroupSMS("Family", "Alice", "dinner at 7"))

	assert.True(t, ContentLengthValid(""))
	assert.True(t, ContentLengthValid("hi"))
	assert.True(t, ContentBlank(""))
	assert.True(t, ContentBlank(" \t\n"))
	assert.False(t, ContentBlank(" hi "))
	assert.True(t, ContentLengthValid(strings.Repeat("é", MaxMessageLength)))
	assert.False(t, ContentLengthValid(strings.Repeat("a", MaxMessageLength+1)))

	m := NewMessage("hi", "u1", "g1")
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, "g1", m.GroupID)
}
