package aggregator

import (
	"chat-aggregator/contract"
	"chat-aggregator/domain/event"
	"context"
	"log/slog"
)

// ChatAggregator owns the chat topic: messages, channels and rosters.
type ChatAggregator struct {
	dispatcher
	messages contract.MessageGateway
	channels contract.ChannelGateway
	rosters  contract.RosterGateway
}

func NewChatAggregator(log *slog.Logger, messages contract.MessageGateway,
	channels contract.ChannelGateway, rosters contract.RosterGateway, opts ...Option) *ChatAggregator {
	return &ChatAggregator{
		dispatcher: newDispatcher(log, opts),
		messages:   messages,
		channels:   channels,
		rosters:    rosters,
	}
}

func (a *ChatAggregator) Process(ctx context.Context, msg contract.Message) error {
	evt, err := a.decode(msg)
	if err != nil {
		return err
	}
	return a.run(ctx, evt, a.handle)
}

func (a *ChatAggregator) handle(ctx context.Context, evt event.Event) (bool, error) {
	switch e := evt.(type) {
	case event.MessageCreated:
		return true, a.messageCreated(ctx, e)
	case event.MessageDeleted:
		return true, a.messageDeleted(ctx, e)
	case event.MessageUpdated:
		return true, a.messageUpdated(ctx, e)
	case event.ChannelCreated:
		return true, a.channelCreated(ctx, e)
	case event.ChannelUpdated:
		return true, a.channelUpdated(ctx, e)
	case event.ChannelDeleted:
		return true, a.channelDeleted(ctx, e)
	case event.UsersJoined:
		return true, a.usersJoined(ctx, e)
	case event.UsersRemoved:
		return true, a.usersRemoved(ctx, e)
	default:
		// Forward compatibility: producers may already emit types this build ignores.
		return false, nil
	}
}

var _ contract.Aggregator = (*ChatAggregator)(nil)
