package runtime

import (
	"chat-aggregator/contract"
	"chat-aggregator/domain/event"
	"context"
	"log/slog"
	"time"
)

// Fanout reflects applied events to the connections listening to their channel.
//
// It provides best-effort delivery with no guarantees regarding ordering across
// sinks, durability, or retries. A slow sink only delays its own delivery, up to
// sinkTimeout.
type Fanout struct {
	log         *slog.Logger
	registry    contract.IRegistry
	sinkTimeout time.Duration
}

func NewFanout(log *slog.Logger, registry contract.IRegistry, sinkTimeout time.Duration) *Fanout {
	return &Fanout{log: log, registry: registry, sinkTimeout: sinkTimeout}
}

func (f *Fanout) Notify(ctx context.Context, e event.Event) {
	scoped, ok := e.(event.ChannelScoped)
	if !ok {
		return
	}
	channelID := scoped.ChannelID()
	for _, sink := range f.registry.GetSinksForChannel(channelID) {
		f.deliver(ctx, sink, e)
	}
	if _, deleted := e.(event.ChannelDeleted); deleted {
		f.registry.RemoveChannel(channelID)
	}
}

func (f *Fanout) deliver(ctx context.Context, sink contract.EventSink, e event.Event) {
	sinkCtx, cancel := context.WithTimeout(ctx, f.sinkTimeout)
	defer cancel()
	if err := sink.Consume(sinkCtx, e); err != nil {
		h := e.EventHeader()
		f.log.Warn("Event not delivered to sink", "event_id", h.ID, "type", h.Type, "error", err)
	}
}

var _ contract.Notifier = (*Fanout)(nil)
