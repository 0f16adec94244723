package broker

import (
	"bytes"
	"chat-aggregator/contract"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

func TestMessageConversion(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)
	m := kafka.Message{
		Topic:     "chat",
		Partition: 3,
		Offset:    42,
		Key:       []byte("c1"),
		Value:     []byte(`{"type":"MessageCreated"}`),
		Time:      at,
	}

	msg := toMessage(m)

	req.Equal(contract.Message{
		Topic:     "chat",
		Partition: 3,
		Offset:    42,
		Key:       []byte("c1"),
		Value:     []byte(`{"type":"MessageCreated"}`),
		Time:      at,
	}, msg)

	// Then the commit side keeps the coordinates kafka-go commits on
	back := fromMessage(msg)
	req.Equal(m.Topic, back.Topic)
	req.Equal(m.Partition, back.Partition)
	req.Equal(m.Offset, back.Offset)
}

func TestLogger(t *testing.T) {
	req := require.New(t)
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	logger(log, slog.LevelDebug).Printf("joined group %s", "aggregator")
	req.Empty(buf.String())

	logger(log, slog.LevelError).Printf("connection to %s lost", "broker-1")
	req.True(strings.Contains(buf.String(), "connection to broker-1 lost"))
	req.True(strings.Contains(buf.String(), "component=kafka"))
}
