package aggregator

import (
	"chat-aggregator/domain/event"
	"chat-aggregator/errors"
	"context"
)

// channelCreated stores the channel, makes its creator a member, then adds the invited members.
// Steps run in that order and stop at the first failure.
func (a *ChatAggregator) channelCreated(ctx context.Context, e event.ChannelCreated) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	p := e.Payload
	channel, err := a.channels.CreateChannel(ctx, p.ChannelID, p.ChannelName)
	if err != nil {
		return err
	}
	if channel == nil {
		return errors.ErrChannelNotStored
	}

	roster, err := a.rosters.AddUserToChannel(ctx, channel.ID, p.Sender.ID)
	if err != nil {
		return err
	}
	if roster == nil {
		return errors.RequesterNotAdded(p.Sender.ID, p.ChannelID)
	}

	if len(p.MemberIDs) == 0 {
		return nil
	}
	return fanOut(p.MemberIDs, func(userID string) error {
		_, err := a.rosters.AddUserToChannel(ctx, channel.ID, userID)
		return err
	})
}

func (a *ChatAggregator) channelUpdated(ctx context.Context, e event.ChannelUpdated) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	_, err := a.channels.UpdateChannelByID(ctx, e.Payload.ChannelID, e.Payload.NewChannelName)
	return err
}

func (a *ChatAggregator) channelDeleted(ctx context.Context, e event.ChannelDeleted) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	_, err := a.channels.DeleteChannelByID(ctx, e.Payload.ChannelID)
	return err
}
