package event

import (
	"chat-aggregator/errors"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDecode_MessageCreated(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	traceID := uuid.New()
	raw := []byte(`{
		"id": "` + id.String() + `",
		"type": "MessageCreated",
		"metadata": {"traceId": "` + traceID.String() + `", "timestamp": 1700000000000},
		"payload": {"messageId": "m1", "channelId": "c1", "sender": {"id": "u1", "name": "Alice"}, "content": "hi"}
	}`)

	// When the envelope is decoded
	evt, err := Decode(raw)

	// Then the typed variant is returned with its payload
	req.NoError(err)
	created, ok := evt.(MessageCreated)
	req.True(ok)
	req.Equal(id, created.ID)
	req.Equal(traceID, created.Metadata.TraceID)
	req.Equal(int64(1700000000000), created.Metadata.Timestamp)
	req.Equal(&MessageCreatedPayload{
		MessageID: "m1",
		ChannelID: "c1",
		Sender:    Sender{ID: "u1", Name: "Alice"},
		Content:   "hi",
	}, created.Payload)
	req.Equal("c1", created.ChannelID())
}

func TestDecode_DataIsAnAliasOfPayload(t *testing.T) {
	req := require.New(t)
	raw := []byte(`{"type": "ChannelDeleted", "data": {"channelId": "c1", "sender": {"id": "u1"}}}`)

	evt, err := Decode(raw)

	req.NoError(err)
	deleted, ok := evt.(ChannelDeleted)
	req.True(ok)
	req.NotNil(deleted.Payload)
	req.Equal("c1", deleted.Payload.ChannelID)
	req.JSONEq(`{"channelId": "c1", "sender": {"id": "u1"}}`, string(deleted.Data))
}

func TestDecode_MissingPayloadKeepsVariant(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "absent", raw: `{"type": "UsersJoined"}`},
		{name: "null", raw: `{"type": "UsersJoined", "payload": null}`},
		{name: "wrong shape", raw: `{"type": "UsersJoined", "payload": {"memberIds": "a,b"}}`},
		{name: "not an object", raw: `{"type": "UsersJoined", "payload": "c1"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)

			evt, err := Decode([]byte(tt.raw))

			// Then no error is raised at decode time, the handler is the one rejecting it
			req.NoError(err)
			joined, ok := evt.(UsersJoined)
			req.True(ok)
			req.Nil(joined.Payload)
			req.Equal("", joined.ChannelID())
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	req := require.New(t)

	evt, err := Decode([]byte(`{"type": "SomethingElse", "payload": {"x": 1}}`))

	req.NoError(err)
	unknown, ok := evt.(Unknown)
	req.True(ok)
	req.Equal(Type("SomethingElse"), unknown.Type)
	_, scoped := evt.(ChannelScoped)
	req.False(scoped)
}

func TestDecode_MalformedEnvelope(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte(`{"type": "MessageCreated", `))

	req.ErrorIs(err, errors.ErrMalformedEnvelope)
}

func TestEncode_RoundTripThroughDecode(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	payload := UserRegisteredPayload{ID: "u1", Username: "alice", DisplayName: "Alice"}

	raw, err := Encode(id, UserRegisteredType, Metadata{TraceID: uuid.New(), Hash: "abc"}, payload)
	req.NoError(err)

	evt, err := Decode(raw)
	req.NoError(err)
	registered, ok := evt.(UserRegistered)
	req.True(ok)
	req.Equal(&payload, registered.Payload)
	req.Equal("abc", registered.Metadata.Hash)
}

func TestNewFrame(t *testing.T) {
	req := require.New(t)
	id := uuid.New()
	raw, err := Encode(id, ChannelUpdatedType, Metadata{}, ChannelUpdatedPayload{
		ChannelID: "c1", NewChannelName: "Random", Sender: Sender{ID: "u1"},
	})
	req.NoError(err)
	evt, err := Decode(raw)
	req.NoError(err)

	frame := NewFrame(evt)

	bytes, err := json.Marshal(frame)
	req.NoError(err)
	req.JSONEq(`{
		"id": "`+id.String()+`",
		"type": "ChannelUpdated",
		"metadata": {"traceId": "00000000-0000-0000-0000-000000000000", "timestamp": 0},
		"payload": {"channelId": "c1", "newChannelName": "Random", "sender": {"id": "u1"}}
	}`, string(bytes))
}
