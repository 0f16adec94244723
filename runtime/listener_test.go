package runtime

import (
	"chat-aggregator/contract"
	"chat-aggregator/errors"
	"chat-aggregator/mocks"
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakeSource hands out its messages in order, then blocks until cancellation.
type fakeSource struct {
	mu        sync.Mutex
	messages  []contract.Message
	committed []int64
	closed    bool
}

func (s *fakeSource) FetchMessage(ctx context.Context) (contract.Message, error) {
	s.mu.Lock()
	if len(s.messages) > 0 {
		msg := s.messages[0]
		s.messages = s.messages[1:]
		s.mu.Unlock()
		return msg, nil
	}
	s.mu.Unlock()
	<-ctx.Done()
	return contract.Message{}, ctx.Err()
}

func (s *fakeSource) CommitMessage(_ context.Context, msg contract.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = append(s.committed, msg.Offset)
	return nil
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSource) Committed() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.committed...)
}

func opener(source contract.MessageSource) SourceFactory {
	return func(context.Context) (contract.MessageSource, error) { return source, nil }
}

func newListener(policy FailurePolicy, maxAttempts int, source contract.MessageSource) *Listener {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewListener(log, opener(source), policy, maxAttempts, time.Millisecond)
}

func TestParseFailurePolicy(t *testing.T) {
	req := require.New(t)

	policy, err := ParseFailurePolicy("SKIP")
	req.NoError(err)
	req.Equal(Skip, policy)

	_, err = ParseFailurePolicy("drop")
	req.ErrorIs(err, errors.ErrUnknownFailurePolicy)
}

func TestListener_RoutesByTopic(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockAggregator(ctrl)
	identity := mocks.NewMockAggregator(ctrl)
	source := &fakeSource{}
	listener := newListener(Redeliver, 1, source).Route("chat", chat).Route("Identity", identity)

	chatMsg := contract.Message{Topic: "CHAT", Offset: 1, Value: []byte("{}")}
	identityMsg := contract.Message{Topic: "identity", Offset: 2, Value: []byte("{}")}
	otherMsg := contract.Message{Topic: "billing", Offset: 3, Value: []byte("{}")}

	// Then each topic reaches its own aggregator, case-insensitively
	chat.EXPECT().Process(gomock.Any(), chatMsg).Return(nil).Times(1)
	identity.EXPECT().Process(gomock.Any(), identityMsg).Return(nil).Times(1)

	for _, msg := range []contract.Message{chatMsg, identityMsg, otherMsg} {
		req.NoError(listener.Handle(context.Background(), source, msg))
	}

	// And every message is acknowledged, including the unrouted one
	req.Equal([]int64{1, 2, 3}, source.Committed())
	req.Equal([]string{"chat", "identity"}, listener.Topics())
	req.Equal(Snapshot{Processed: 2, Ignored: 1}, listener.stats.Snapshot())
}

func TestListener_RetriesTransientFailures(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockAggregator(ctrl)
	source := &fakeSource{}
	listener := newListener(Redeliver, 3, source).Route("chat", chat)
	msg := contract.Message{Topic: "chat", Offset: 7}

	// Given the backend fails twice before recovering
	first := chat.EXPECT().Process(gomock.Any(), msg).Return(stderrors.New("connection reset")).Times(2)
	chat.EXPECT().Process(gomock.Any(), msg).Return(nil).After(first).Times(1)

	err := listener.Handle(context.Background(), source, msg)

	req.NoError(err)
	req.Equal([]int64{7}, source.Committed())
}

func TestListener_RedeliverLeavesMessageUncommitted(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockAggregator(ctrl)
	source := &fakeSource{}
	listener := newListener(Redeliver, 2, source).Route("chat", chat)
	msg := contract.Message{Topic: "chat", Offset: 7}
	backendErr := stderrors.New("connection reset")

	chat.EXPECT().Process(gomock.Any(), msg).Return(backendErr).Times(2)

	err := listener.Handle(context.Background(), source, msg)

	// Then the failure surfaces and nothing is acknowledged
	req.ErrorIs(err, backendErr)
	req.Empty(source.Committed())
}

func TestListener_SkipCommitsFailedMessage(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockAggregator(ctrl)
	source := &fakeSource{}
	listener := newListener(Skip, 2, source).Route("chat", chat)
	msg := contract.Message{Topic: "chat", Offset: 7}

	chat.EXPECT().Process(gomock.Any(), msg).Return(stderrors.New("connection reset")).Times(2)

	err := listener.Handle(context.Background(), source, msg)

	req.NoError(err)
	req.Equal([]int64{7}, source.Committed())
	req.Equal(Snapshot{Failed: 1}, listener.stats.Snapshot())
}

func TestListener_InvalidEventIsNotRetried(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockAggregator(ctrl)
	source := &fakeSource{}
	listener := newListener(Skip, 5, source).Route("chat", chat)
	msg := contract.Message{Topic: "chat", Offset: 7}

	// Then a single attempt is made for a payload that will never validate
	chat.EXPECT().Process(gomock.Any(), msg).Return(errors.InvalidEventData(nil)).Times(1)

	err := listener.Handle(context.Background(), source, msg)

	req.NoError(err)
	req.Equal([]int64{7}, source.Committed())
}

func TestListener_Run(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	chat := mocks.NewMockAggregator(ctrl)
	source := &fakeSource{messages: []contract.Message{
		{Topic: "chat", Offset: 1},
		{Topic: "chat", Offset: 2},
	}}
	listener := newListener(Redeliver, 1, source).Route("chat", chat)
	ctx, cancel := context.WithCancel(context.Background())

	// Given both messages are processed in order, the last one stops the run
	gomock.InOrder(
		chat.EXPECT().Process(gomock.Any(), source.messages[0]).Return(nil),
		chat.EXPECT().Process(gomock.Any(), source.messages[1]).DoAndReturn(
			func(context.Context, contract.Message) error {
				cancel()
				return nil
			}),
	)

	err := listener.Run(ctx)

	// Then the run ends cleanly with both offsets committed and the source closed
	req.NoError(err)
	req.Equal([]int64{1, 2}, source.Committed())
	req.True(source.closed)
}

func TestListener_RunFailsWhenSourceCannotBeOpened(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	brokerErr := stderrors.New("no brokers available")
	listener := NewListener(log, func(context.Context) (contract.MessageSource, error) {
		return nil, brokerErr
	}, Redeliver, 1, time.Millisecond)

	err := listener.Run(context.Background())

	req.ErrorIs(err, brokerErr)
}
