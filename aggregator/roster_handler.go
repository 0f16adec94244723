package aggregator

import (
	"chat-aggregator/domain/event"
	"context"
)

// usersJoined tolerates members that are already in the channel.
func (a *ChatAggregator) usersJoined(ctx context.Context, e event.UsersJoined) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	channelID := e.Payload.ChannelID
	return fanOut(e.Payload.MemberIDs, func(userID string) error {
		_, err := a.rosters.AddUserToChannel(ctx, channelID, userID)
		return err
	})
}

func (a *ChatAggregator) usersRemoved(ctx context.Context, e event.UsersRemoved) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	channelID := e.Payload.ChannelID
	return fanOut(e.Payload.MemberIDs, func(userID string) error {
		_, err := a.rosters.DeleteUserFromChannel(ctx, channelID, userID)
		return err
	})
}
