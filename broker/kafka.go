package broker

import (
	"chat-aggregator/contract"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

type ReaderConfig struct {
	Brokers []string
	GroupID string
	Topics  []string
}

// Reader is one consumer-group member subscribed to a set of topics.
// Offsets are committed explicitly, once a message has been handled.
type Reader struct {
	reader *kafka.Reader
}

func NewReader(log *slog.Logger, cfg ReaderConfig) *Reader {
	return &Reader{reader: kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		GroupID:        cfg.GroupID,
		GroupTopics:    cfg.Topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		MaxWait:        500 * time.Millisecond,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0,
		Logger:         logger(log, slog.LevelDebug),
		ErrorLogger:    logger(log, slog.LevelError),
	})}
}

// Opener returns a factory opening a new reader on every call.
func Opener(log *slog.Logger, cfg ReaderConfig) func(context.Context) (contract.MessageSource, error) {
	return func(context.Context) (contract.MessageSource, error) {
		return NewReader(log, cfg), nil
	}
}

func (r *Reader) FetchMessage(ctx context.Context) (contract.Message, error) {
	m, err := r.reader.FetchMessage(ctx)
	if err != nil {
		return contract.Message{}, err
	}
	return toMessage(m), nil
}

func (r *Reader) CommitMessage(ctx context.Context, msg contract.Message) error {
	return r.reader.CommitMessages(ctx, fromMessage(msg))
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// Writer publishes envelopes. The topic is chosen per message.
type Writer struct {
	writer *kafka.Writer
}

func NewWriter(log *slog.Logger, brokers []string) *Writer {
	return &Writer{writer: &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		Logger:                 logger(log, slog.LevelDebug),
		ErrorLogger:            logger(log, slog.LevelError),
	}}
}

// Publish writes one message and waits for the broker to acknowledge it.
// Messages sharing a key land on the same partition.
func (w *Writer) Publish(ctx context.Context, topic string, key, value []byte) error {
	if err := w.writer.WriteMessages(ctx, kafka.Message{Topic: topic, Key: key, Value: value}); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func toMessage(m kafka.Message) contract.Message {
	return contract.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
	}
}

// fromMessage rebuilds the fields kafka-go needs to commit an offset.
func fromMessage(m contract.Message) kafka.Message {
	return kafka.Message{
		Topic:     m.Topic,
		Partition: m.Partition,
		Offset:    m.Offset,
		Key:       m.Key,
		Value:     m.Value,
		Time:      m.Time,
	}
}

func logger(log *slog.Logger, level slog.Level) kafka.LoggerFunc {
	return func(msg string, args ...interface{}) {
		log.Log(context.Background(), level, fmt.Sprintf(msg, args...), "component", "kafka")
	}
}

var _ contract.MessageSource = (*Reader)(nil)
