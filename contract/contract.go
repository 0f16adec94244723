//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-aggregator/domain"
	"chat-aggregator/domain/event"
	"context"
	"reflect"
	"time"
)

// MessageGateway is the persistence side of messages.
// Every method may return an error on unexpected backend failure.
type MessageGateway interface {
	// CreateMessage returns nil when the message could not be stored (logical conflict).
	CreateMessage(ctx context.Context, id, channelID, senderID, content string) (*domain.Message, error)
	DeleteMessage(ctx context.Context, id string) (int64, error)
	EditMessage(ctx context.Context, id, channelID, content string) (*domain.Message, error)
}

type ChannelGateway interface {
	// CreateChannel returns nil when the channel already exists.
	CreateChannel(ctx context.Context, id, name string) (*domain.Channel, error)
	UpdateChannelByID(ctx context.Context, id, newName string) (*domain.Channel, error)
	DeleteChannelByID(ctx context.Context, id string) (int64, error)
}

type RosterGateway interface {
	// AddUserToChannel returns nil when the user is already a member.
	AddUserToChannel(ctx context.Context, channelID, userID string) (*domain.Roster, error)
	DeleteUserFromChannel(ctx context.Context, channelID, userID string) (int64, error)
}

type UserGateway interface {
	// CreateUser returns nil when the id or username already exists.
	CreateUser(ctx context.Context, props domain.UserProps) (*domain.User, error)
}

// Message is a broker record as handed to the aggregator.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
}

// Aggregator applies the events carried by broker messages of the topic it owns.
type Aggregator interface {
	Process(ctx context.Context, msg Message) error
}

// MessageSource is one subscription to a set of topics.
type MessageSource interface {
	FetchMessage(ctx context.Context) (Message, error)
	CommitMessage(ctx context.Context, msg Message) error
	Close() error
}

// Notifier is told about every event once it has been applied.
type Notifier interface {
	Notify(ctx context.Context, e event.Event)
}

type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

type IRegistry interface {
	GetSinksForChannel(channelID string) []EventSink
	Subscribe(sessionID, channelID string, sink EventSink)
	Unsubscribe(sessionID string)
	RemoveChannel(channelID string)
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
