package domain

import "time"

type Channel struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Roster is the membership of a user in a channel.
type Roster struct {
	ChannelID string
	UserID    string
	JoinedAt  time.Time
}
