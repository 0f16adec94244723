package aggregator

import (
	"chat-aggregator/domain/event"
	"chat-aggregator/errors"
	"context"
)

func (a *ChatAggregator) messageCreated(ctx context.Context, e event.MessageCreated) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	p := e.Payload
	message, err := a.messages.CreateMessage(ctx, p.MessageID, p.ChannelID, p.Sender.ID, p.Content)
	if err != nil {
		return err
	}
	if message == nil {
		return errors.ErrMessageNotStored
	}
	return nil
}

func (a *ChatAggregator) messageDeleted(ctx context.Context, e event.MessageDeleted) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	count, err := a.messages.DeleteMessage(ctx, e.Payload.MessageID)
	if err != nil {
		return err
	}
	if count == 0 {
		a.log.Debug("No message deleted", "message_id", e.Payload.MessageID)
	}
	return nil
}

func (a *ChatAggregator) messageUpdated(ctx context.Context, e event.MessageUpdated) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	p := e.Payload
	_, err := a.messages.EditMessage(ctx, p.MessageID, p.ChannelID, p.Content)
	return err
}
