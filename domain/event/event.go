// Package event defines the wire vocabulary shared by producers and the aggregator:
// the envelope and one payload shape per event type.
package event

import (
	"encoding/json"

	"github.com/google/uuid"
)

type Type string

const (
	MessageCreatedType Type = "MessageCreated"
	MessageDeletedType Type = "MessageDeleted"
	MessageUpdatedType Type = "MessageUpdated"
	ChannelCreatedType Type = "ChannelCreated"
	ChannelUpdatedType Type = "ChannelUpdated"
	ChannelDeletedType Type = "ChannelDeleted"
	UsersJoinedType    Type = "UsersJoined"
	UsersRemovedType   Type = "UsersRemoved"
	UserRegisteredType Type = "UserRegistered"
)

// Metadata is envelope level context set by the producer.
type Metadata struct {
	TraceID   uuid.UUID `json:"traceId"`
	Timestamp int64     `json:"timestamp"`
	// Hash is a content hash some producers attach for deduplication.
	Hash string `json:"hash,omitempty"`
}

// Header is the part of the envelope shared by every event kind.
type Header struct {
	ID       uuid.UUID
	Type     Type
	Metadata Metadata
	// Data is the payload exactly as received.
	Data json.RawMessage
}

func (h Header) EventHeader() Header { return h }

func (Header) isEvent() {}

// Event is a decoded envelope. Implementations are the variants declared in this package,
// each carrying its own payload type.
type Event interface {
	EventHeader() Header
	isEvent()
}

// ChannelScoped events target one channel and are reflected to its connected members.
type ChannelScoped interface {
	Event
	ChannelID() string
}

type MessageCreated struct {
	Header
	Payload *MessageCreatedPayload
}

type MessageDeleted struct {
	Header
	Payload *MessageDeletedPayload
}

type MessageUpdated struct {
	Header
	Payload *MessageUpdatedPayload
}

type ChannelCreated struct {
	Header
	Payload *ChannelCreatedPayload
}

type ChannelUpdated struct {
	Header
	Payload *ChannelUpdatedPayload
}

type ChannelDeleted struct {
	Header
	Payload *ChannelDeletedPayload
}

type UsersJoined struct {
	Header
	Payload *MembersPayload
}

type UsersRemoved struct {
	Header
	Payload *MembersPayload
}

type UserRegistered struct {
	Header
	Payload *UserRegisteredPayload
}

// Unknown is any envelope whose type this build does not know about.
type Unknown struct {
	Header
}

func (e MessageCreated) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}

func (e MessageDeleted) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}

func (e MessageUpdated) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}

func (e ChannelCreated) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}

func (e ChannelUpdated) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}

func (e ChannelDeleted) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}

func (e UsersJoined) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}

func (e UsersRemoved) ChannelID() string {
	if e.Payload == nil {
		return ""
	}
	return e.Payload.ChannelID
}
