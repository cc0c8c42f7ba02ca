// Package gateway defines the chat-platform boundary: inbound events,
// outbound sends with reply keyboards, and the Telegram adapter.
package gateway

import (
	"context"
	"errors"
)

// ErrDelivery wraps send failures reported by the chat platform, as
// opposed to local errors such as a cancelled context.
var ErrDelivery = errors.New("gateway: delivery failed")

// Contact is a phone number shared through the chat client.
type Contact struct {
	PhoneNumber string
	FirstName   string
}

// Inbound is one event from the chat platform, either plain text or a
// shared contact.
type Inbound struct {
	ChatID   int64
	SenderID int64
	Text     string
	Contact  *Contact
}

// Button is one reply-keyboard button.
type Button struct {
	Label          string
	RequestContact bool
}

// Keyboard describes a reply keyboard. Remove hides whatever keyboard
// the client currently shows.
type Keyboard struct {
	Rows   [][]Button
	Remove bool
}

// Row is a convenience constructor for a keyboard row.
func Row(labels ...string) []Button {
	row := make([]Button, 0, len(labels))
	for _, l := range labels {
		row = append(row, Button{Label: l})
	}
	return row
}

// Sender delivers one outbound message. A nil keyboard leaves the
// client's current keyboard untouched.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string, kb *Keyboard) error
}

// Handler processes one inbound event.
type Handler func(ctx context.Context, in Inbound)
