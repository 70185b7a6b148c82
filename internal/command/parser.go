// Package command extracts an @group prefix from inbound SMS bodies.
package command

import (
	"regexp"
	"strings"
)

var (
	quotedPrefix = regexp.MustCompile(`^@"([^"]+)"\s+(.+)$`)

	// Non-greedy: the shortest letters-and-spaces span followed by a word
	unquotedPrefix = regexp.MustCompile(`^@([A-Za-z][A-Za-z\s]*?)\s+([a-zA-Z].+)$`)
)

// Result is the outcome of parsing one message body
type Result struct {
	GroupName string
	Body      string
	HasGroup  bool
}

// Parse splits body into a target group name and the remaining text.
//
//	@"Book Club" hi there  -> ("Book Club", "hi there")
//	@BookClub hello world  -> ("BookClub", "hello world")
//	just a message         -> no group, body unchanged
//
// The unquoted form cannot tell a multi-word group name from the first words
// of the message: "@Family dinner plans" targets "Family". Callers must reply
// with an error when the name matches none of the sender's groups.
func Parse(body string) Result {
	trimmed := strings.TrimSpace(body)

	if m := quotedPrefix.FindStringSubmatch(trimmed); m != nil {
		return Result{GroupName: m[1], Body: m[2], HasGroup: true}
	}

	if m := unquotedPrefix.FindStringSubmatch(trimmed); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			return Result{GroupName: name, Body: m[2], HasGroup: true}
		}
	}

	return Result{Body: body}
}
