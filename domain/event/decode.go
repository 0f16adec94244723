package event

import (
	"bytes"
	"chat-aggregator/errors"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// envelope is the JSON shape on the broker. Producers use either "payload" or "data".
type envelope struct {
	ID       uuid.UUID       `json:"id"`
	Type     Type            `json:"type"`
	Metadata Metadata        `json:"metadata"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

func (e envelope) body() json.RawMessage {
	if len(e.Payload) > 0 {
		return e.Payload
	}
	return e.Data
}

// Decode parses a broker message value into its typed variant.
// Only an unparsable envelope is an error. A missing or ill-shaped payload
// yields a variant with a nil Payload so that the handler can reject it.
func Decode(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedEnvelope, err)
	}
	h := Header{ID: env.ID, Type: env.Type, Metadata: env.Metadata, Data: env.body()}

	switch env.Type {
	case MessageCreatedType:
		return MessageCreated{Header: h, Payload: payloadOf[MessageCreatedPayload](h.Data)}, nil
	case MessageDeletedType:
		return MessageDeleted{Header: h, Payload: payloadOf[MessageDeletedPayload](h.Data)}, nil
	case MessageUpdatedType:
		return MessageUpdated{Header: h, Payload: payloadOf[MessageUpdatedPayload](h.Data)}, nil
	case ChannelCreatedType:
		return ChannelCreated{Header: h, Payload: payloadOf[ChannelCreatedPayload](h.Data)}, nil
	case ChannelUpdatedType:
		return ChannelUpdated{Header: h, Payload: payloadOf[ChannelUpdatedPayload](h.Data)}, nil
	case ChannelDeletedType:
		return ChannelDeleted{Header: h, Payload: payloadOf[ChannelDeletedPayload](h.Data)}, nil
	case UsersJoinedType:
		return UsersJoined{Header: h, Payload: payloadOf[MembersPayload](h.Data)}, nil
	case UsersRemovedType:
		return UsersRemoved{Header: h, Payload: payloadOf[MembersPayload](h.Data)}, nil
	case UserRegisteredType:
		return UserRegistered{Header: h, Payload: payloadOf[UserRegisteredPayload](h.Data)}, nil
	default:
		return Unknown{Header: h}, nil
	}
}

func payloadOf[T any](data json.RawMessage) *T {
	if len(data) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var payload T
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil
	}
	return &payload
}

// Encode builds the wire form of an event. Used by producers and tools.
func Encode(id uuid.UUID, eventType Type, metadata Metadata, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{ID: id, Type: eventType, Metadata: metadata, Payload: data})
}

// Frame is what connected WebSocket clients receive for an applied event.
type Frame struct {
	ID       uuid.UUID       `json:"id"`
	Type     Type            `json:"type"`
	Metadata Metadata        `json:"metadata"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

func NewFrame(e Event) Frame {
	h := e.EventHeader()
	return Frame{ID: h.ID, Type: h.Type, Metadata: h.Metadata, Payload: h.Data}
}
