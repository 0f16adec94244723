// Package domain contains core concepts of the chat system.
// This file defines Message entities and related rules.
package domain

import "time"

// Message belongs to exactly one channel. Its content is mutable,
// but once deleted the same ID is never stored again.
type Message struct {
	ID        string
	ChannelID string
	SenderID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
