package websocket

import (
	"chat-aggregator/domain/event"
	"chat-aggregator/errors"
	"context"
	"sync"
)

// Sink buffers the events waiting to be written to one connection.
type Sink struct {
	send chan event.Event
	done chan struct{}
	once sync.Once
}

func NewSink(size int) *Sink {
	return &Sink{send: make(chan event.Event, size), done: make(chan struct{})}
}

// Consume never blocks: a full buffer means the client is too slow and the event is dropped.
func (s *Sink) Consume(ctx context.Context, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.done:
		return context.Canceled
	default:
	}
	select {
	case s.send <- e:
		return nil
	default:
		return errors.ErrSinkFull
	}
}

// Close releases the writer. Pending events are dropped.
func (s *Sink) Close() {
	s.once.Do(func() { close(s.done) })
}
