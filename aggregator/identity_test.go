package aggregator

import (
	"chat-aggregator/contract"
	"chat-aggregator/domain"
	"chat-aggregator/domain/event"
	"chat-aggregator/errors"
	"chat-aggregator/mocks"
	"context"
	stderrors "errors"
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newIdentityAggregator(t *testing.T) (*IdentityAggregator, *mocks.MockUserGateway) {
	ctrl := gomock.NewController(t)
	users := mocks.NewMockUserGateway(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewIdentityAggregator(log, users), users
}

func TestIdentityAggregator_UserRegistered(t *testing.T) {
	req := require.New(t)
	aggregator, users := newIdentityAggregator(t)
	msg := encodedMessage(t, event.UserRegisteredType, event.UserRegisteredPayload{
		ID:          "u1",
		Username:    "alice",
		DisplayName: "Alice Liddell",
		FirstName:   lo.ToPtr("Alice"),
		LastName:    lo.ToPtr("Liddell"),
	})

	// Then every identity field reaches the gateway
	users.EXPECT().CreateUser(gomock.Any(), domain.UserProps{
		ID:          "u1",
		Username:    "alice",
		DisplayName: "Alice Liddell",
		FirstName:   lo.ToPtr("Alice"),
		LastName:    lo.ToPtr("Liddell"),
	}).Return(&domain.User{ID: "u1", Username: "alice"}, nil).Times(1)

	err := aggregator.Process(context.Background(), msg)

	req.NoError(err)
}

func TestIdentityAggregator_RegistrationIsIdempotent(t *testing.T) {
	req := require.New(t)
	aggregator, users := newIdentityAggregator(t)
	msg := encodedMessage(t, event.UserRegisteredType, event.UserRegisteredPayload{
		ID: "u1", Username: "alice", DisplayName: "Alice",
	})

	// Given the first delivery creates the user and the second one finds it already there
	first := users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		Return(&domain.User{ID: "u1", Username: "alice"}, nil).Times(1)
	users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
		Return(nil, nil).After(first).Times(1)

	// When the same event is delivered twice
	err := aggregator.Process(context.Background(), msg)
	req.NoError(err)
	err = aggregator.Process(context.Background(), msg)

	// Then the redelivery completes without error
	req.NoError(err)
}

func TestIdentityAggregator_BackendErrorIsPassedThrough(t *testing.T) {
	req := require.New(t)
	aggregator, users := newIdentityAggregator(t)
	backendErr := stderrors.New("too many connections")

	users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(nil, backendErr).Times(1)

	err := aggregator.Process(context.Background(), encodedMessage(t, event.UserRegisteredType,
		event.UserRegisteredPayload{ID: "u1", Username: "alice", DisplayName: "Alice"}))

	req.Same(backendErr, err)
}

func TestIdentityAggregator_MissingPayload(t *testing.T) {
	req := require.New(t)
	aggregator, _ := newIdentityAggregator(t)

	err := aggregator.Process(context.Background(), rawMessage(`{"type":"UserRegistered","payload":{"id":"u1"}}`))

	req.ErrorIs(err, errors.ErrInvalidEventData)
	req.EqualError(err, `Invalid event data: {"id":"u1"}`)
}

func TestIdentityAggregator_ChatEventsAreIgnored(t *testing.T) {
	req := require.New(t)
	aggregator, _ := newIdentityAggregator(t)

	err := aggregator.Process(context.Background(), encodedMessage(t, event.MessageCreatedType,
		event.MessageCreatedPayload{MessageID: "m1", ChannelID: "c1", Sender: event.Sender{ID: "u1"}, Content: "hi"}))

	req.NoError(err)
}

func TestIdentityAggregator_EmptyMessage(t *testing.T) {
	req := require.New(t)
	aggregator, _ := newIdentityAggregator(t)

	err := aggregator.Process(context.Background(), contract.Message{Topic: "identity", Value: []byte{}})

	req.EqualError(err, "message.value is empty")
}
