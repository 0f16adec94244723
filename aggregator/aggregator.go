// Package aggregator turns broker events into persistence mutations.
// One aggregator owns one topic: it decodes each message, runs the single handler
// matching the event type and reports the outcome to the caller without retrying.
package aggregator

import (
	"chat-aggregator/contract"
	"chat-aggregator/domain/event"
	"chat-aggregator/errors"
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type Option func(*dispatcher)

// WithNotifier reflects every applied event to n.
func WithNotifier(n contract.Notifier) Option {
	return func(d *dispatcher) { d.notifier = n }
}

// WithTimeout bounds the time a handler may spend in gateway calls. Zero means no bound.
func WithTimeout(timeout time.Duration) Option {
	return func(d *dispatcher) { d.timeout = timeout }
}

// handleFunc returns false when the event is not one the aggregator owns.
type handleFunc func(ctx context.Context, evt event.Event) (bool, error)

// dispatcher is the part shared by every aggregator. It holds no entity state.
type dispatcher struct {
	log      *slog.Logger
	notifier contract.Notifier
	timeout  time.Duration
}

func newDispatcher(log *slog.Logger, opts []Option) dispatcher {
	d := dispatcher{log: log}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func (d dispatcher) decode(msg contract.Message) (event.Event, error) {
	if len(msg.Value) == 0 {
		return nil, errors.ErrEmptyMessage
	}
	return event.Decode(msg.Value)
}

// run invokes handle once and returns its error untouched.
func (d dispatcher) run(ctx context.Context, evt event.Event, handle handleFunc) error {
	h := evt.EventHeader()
	log := d.log.With("event_id", h.ID, "type", h.Type, "trace_id", h.Metadata.TraceID)

	handlerCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		handlerCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	handled, err := handle(handlerCtx, evt)
	if err != nil {
		log.Debug("event rejected", "error", err)
		return err
	}
	if !handled {
		log.Debug("Ignoring event of unhandled type")
		return nil
	}
	log.Debug("Event applied")

	if d.notifier != nil {
		d.notifier.Notify(ctx, evt)
	}
	return nil
}

// validatePayload must pass before any gateway call.
func validatePayload[T any](log *slog.Logger, h event.Header, payload *T) error {
	if payload == nil {
		return errors.InvalidEventData(h.Data)
	}
	if err := validate.Struct(payload); err != nil {
		log.Debug("payload validation failed", "type", h.Type, "error", err)
		return errors.InvalidEventData(h.Data)
	}
	return nil
}
