// Package domain contains core concepts of the chat system.
// This file defines User entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// User is unique by ID and by Username.
type User struct {
	ID          string
	Username    string
	DisplayName string
	FirstName   *string
	LastName    *string
	CreatedAt   time.Time
}

// UserProps carries what the identity provider knows about a user at registration.
type UserProps struct {
	ID          string
	Username    string
	DisplayName string
	FirstName   *string
	LastName    *string
}
