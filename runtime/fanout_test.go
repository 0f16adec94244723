package runtime

import (
	"chat-aggregator/contract"
	"chat-aggregator/domain/event"
	"chat-aggregator/mocks"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newFanout(t *testing.T, sinkTimeout time.Duration) (*Fanout, *mocks.MockIRegistry, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewFanout(log, registry, sinkTimeout), registry, ctrl
}

func TestFanout_Notify(t *testing.T) {
	fanout, registry, ctrl := newFanout(t, time.Second)
	sink1 := mocks.NewMockEventSink(ctrl)
	sink2 := mocks.NewMockEventSink(ctrl)
	evt := event.MessageCreated{Payload: &event.MessageCreatedPayload{MessageID: "m1", ChannelID: "c1"}}

	// Given two sessions listening to the channel
	registry.EXPECT().GetSinksForChannel("c1").Return([]contract.EventSink{sink1, sink2}).Times(1)

	// Then both receive the event
	sink1.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	sink2.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	fanout.Notify(context.Background(), evt)
}

func TestFanout_SinkTimeout(t *testing.T) {
	req := require.New(t)
	fanout, registry, ctrl := newFanout(t, 20*time.Millisecond)
	slow := mocks.NewMockEventSink(ctrl)
	fast := mocks.NewMockEventSink(ctrl)
	evt := event.ChannelUpdated{Payload: &event.ChannelUpdatedPayload{ChannelID: "c1", NewChannelName: "Random"}}

	registry.EXPECT().GetSinksForChannel("c1").Return([]contract.EventSink{slow, fast}).Times(1)
	// Given a sink never draining its buffer
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.Event) error {
			<-ctx.Done()
			return ctx.Err()
		}).Times(1)
	fast.EXPECT().Consume(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	start := time.Now()
	fanout.Notify(context.Background(), evt)

	// Then the other sink is still served once the slow one timed out
	req.Less(time.Since(start), time.Second)
}

func TestFanout_ChannelDeletedDropsTheChannel(t *testing.T) {
	fanout, registry, ctrl := newFanout(t, time.Second)
	sink := mocks.NewMockEventSink(ctrl)
	evt := event.ChannelDeleted{Payload: &event.ChannelDeletedPayload{ChannelID: "c1"}}

	// Then listeners are told first and the channel is forgotten afterwards
	gomock.InOrder(
		registry.EXPECT().GetSinksForChannel("c1").Return([]contract.EventSink{sink}).Times(1),
		sink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1),
		registry.EXPECT().RemoveChannel("c1").Times(1),
	)

	fanout.Notify(context.Background(), evt)
}

func TestFanout_IdentityEventsAreNotReflected(t *testing.T) {
	fanout, _, _ := newFanout(t, time.Second)

	// Then the registry is never queried
	fanout.Notify(context.Background(), event.UserRegistered{Payload: &event.UserRegisteredPayload{ID: "u1"}})
}
