package aggregator

import (
	"chat-aggregator/contract"
	"chat-aggregator/domain"
	"chat-aggregator/domain/event"
	"context"
	"log/slog"
)

// IdentityAggregator owns the identity topic fed by the login flow.
type IdentityAggregator struct {
	dispatcher
	users contract.UserGateway
}

func NewIdentityAggregator(log *slog.Logger, users contract.UserGateway, opts ...Option) *IdentityAggregator {
	return &IdentityAggregator{dispatcher: newDispatcher(log, opts), users: users}
}

func (a *IdentityAggregator) Process(ctx context.Context, msg contract.Message) error {
	evt, err := a.decode(msg)
	if err != nil {
		return err
	}
	return a.run(ctx, evt, a.handle)
}

func (a *IdentityAggregator) handle(ctx context.Context, evt event.Event) (bool, error) {
	switch e := evt.(type) {
	case event.UserRegistered:
		return true, a.userRegistered(ctx, e)
	default:
		return false, nil
	}
}

// userRegistered is idempotent: the same login event can be delivered again,
// so an existing user is not an error.
func (a *IdentityAggregator) userRegistered(ctx context.Context, e event.UserRegistered) error {
	if err := validatePayload(a.log, e.Header, e.Payload); err != nil {
		return err
	}
	p := e.Payload
	user, err := a.users.CreateUser(ctx, domain.UserProps{
		ID:          p.ID,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
	})
	if err != nil {
		return err
	}
	if user == nil {
		a.log.Info("username already exists", "username", p.Username, "user_id", p.ID)
	}
	return nil
}

var _ contract.Aggregator = (*IdentityAggregator)(nil)
