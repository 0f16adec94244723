package runtime

import (
	"chat-aggregator/contract"
	"chat-aggregator/errors"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

type FailurePolicy string

const (
	// Redeliver leaves a failed message uncommitted and stops the listener.
	// The supervisor restarts it and the broker hands the message again.
	Redeliver FailurePolicy = "redeliver"
	// Skip logs the failure, commits the message and moves on.
	Skip FailurePolicy = "skip"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch policy := FailurePolicy(strings.ToLower(s)); policy {
	case Redeliver, Skip:
		return policy, nil
	default:
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownFailurePolicy, s)
	}
}

// SourceFactory opens a new subscription. The listener calls it on every run,
// so a restarted listener resumes from the last committed offset.
type SourceFactory func(ctx context.Context) (contract.MessageSource, error)

// Listener consumes a subscription and hands every message to the aggregator owning its topic.
// Messages are processed one at a time, in the order the source delivers them.
type Listener struct {
	log          *slog.Logger
	open         SourceFactory
	routes       map[string]contract.Aggregator
	policy       FailurePolicy
	maxAttempts  int
	retryBackoff time.Duration
	stats        *Stats
}

func NewListener(log *slog.Logger, open SourceFactory, policy FailurePolicy,
	maxAttempts int, retryBackoff time.Duration) *Listener {
	return &Listener{
		log:          log,
		open:         open,
		routes:       make(map[string]contract.Aggregator),
		policy:       policy,
		maxAttempts:  max(maxAttempts, 1),
		retryBackoff: retryBackoff,
		stats:        &Stats{},
	}
}

// WithStats makes the listener count into stats, typically shared with other listeners.
func (l *Listener) WithStats(stats *Stats) *Listener {
	l.stats = stats
	return l
}

// Route makes aggregator the owner of topic. Topic names are compared case-insensitively.
func (l *Listener) Route(topic string, aggregator contract.Aggregator) *Listener {
	l.routes[strings.ToLower(topic)] = aggregator
	return l
}

// Topics returns the routed topic names, sorted.
func (l *Listener) Topics() []string {
	topics := lo.Keys(l.routes)
	slices.Sort(topics)
	return topics
}

func (l *Listener) Run(ctx context.Context) error {
	source, err := l.open(ctx)
	if err != nil {
		return fmt.Errorf("opening message source: %w", err)
	}
	defer func() {
		if err := source.Close(); err != nil {
			l.log.Warn("Closing message source failed", "error", err)
		}
	}()

	l.log.Info("Listening", "topics", strings.Join(l.Topics(), ","), "policy", l.policy)
	for {
		msg, err := source.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				l.log.Debug("Context done, stopping listener")
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}
		if err = l.Handle(ctx, source, msg); err != nil {
			return err
		}
	}
}

// Handle processes one message to completion and acknowledges it unless the
// failure policy asks for redelivery.
func (l *Listener) Handle(ctx context.Context, source contract.MessageSource, msg contract.Message) error {
	log := l.log.With("topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset)

	aggregator, ok := l.routes[strings.ToLower(msg.Topic)]
	if !ok {
		log.Debug("Ignoring message from unrouted topic")
		l.stats.ignored.Add(1)
		return l.commit(ctx, source, msg)
	}

	start := time.Now()
	if err := l.process(ctx, log, aggregator, msg); err != nil {
		l.stats.failed.Add(1)
		if l.policy != Skip {
			log.Error("Message processing failed, leaving it for redelivery", "error", err)
			return fmt.Errorf("processing %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
		}
		log.Error("Message processing failed, skipping it", "error", err)
	} else {
		l.stats.processed.Add(1)
		log.Debug("Message processed", "duration_ms", time.Since(start).Milliseconds())
	}
	return l.commit(ctx, source, msg)
}

func (l *Listener) process(ctx context.Context, log *slog.Logger, aggregator contract.Aggregator, msg contract.Message) error {
	var err error
	for attempt := 1; attempt <= l.maxAttempts; attempt++ {
		if err = aggregator.Process(ctx, msg); err == nil || isPermanent(err) {
			return err
		}
		if attempt == l.maxAttempts {
			break
		}
		log.Warn("Message processing failed, retrying", "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return err
		case <-time.After(l.retryBackoff):
		}
	}
	return err
}

func (l *Listener) commit(ctx context.Context, source contract.MessageSource, msg contract.Message) error {
	if err := source.CommitMessage(ctx, msg); err != nil {
		return fmt.Errorf("committing %s/%d@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
	}
	return nil
}

// isPermanent reports failures that another attempt cannot fix.
func isPermanent(err error) bool {
	return stderrors.Is(err, errors.ErrEmptyMessage) ||
		stderrors.Is(err, errors.ErrMalformedEnvelope) ||
		stderrors.Is(err, errors.ErrInvalidEventData)
}
