package e2e

import (
	"chat-aggregator/auth"
	"chat-aggregator/broker"
	"chat-aggregator/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
	writer *broker.Writer
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if len(s.Config.Brokers) == 0 {
		s.T().Skip("E2E_BROKERS is not set")
	}
	s.writer = broker.NewWriter(logs.GetLoggerFromLevel(slog.LevelWarn), s.Config.Brokers)
}

func (s *BaseSuite) TearDownSuite() {
	if s.writer != nil {
		s.Require().NoError(s.writer.Close())
	}
}

func (s *BaseSuite) step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Publish encodes an envelope around payload and sends it to topic.
func (s *BaseSuite) Publish(name, topic string, eventType event.Type, payload any) uuid.UUID {
	s.step(name)
	id := uuid.New()
	raw, err := event.Encode(id, eventType, event.Metadata{
		TraceID:   uuid.New(),
		Timestamp: time.Now().UnixMilli(),
	}, payload)
	s.Require().NoError(err)
	if s.Config.DebugJSON {
		s.T().Logf("PUBLISH %s:\n%s", topic, raw)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.Require().NoError(s.writer.Publish(ctx, topic, partitionKey(raw), raw))
	return id
}

// Listen opens a WebSocket connection to the aggregator for the given channels.
func (s *BaseSuite) Listen(name string, channelIDs ...string) *websocket.Conn {
	s.step(name)
	query := url.Values{"channelId": channelIDs}
	if s.Config.JWTSecret != "" {
		token, err := auth.NewTokenVerifier(s.Config.JWTSecret).GenerateToken("e2e", time.Minute)
		s.Require().NoError(err)
		query.Set("token", token)
	}
	conn, _, err := websocket.DefaultDialer.Dial(s.Config.AggregatorURL+"/ws?"+query.Encode(), nil)
	s.Require().NoError(err, "Failed to connect to aggregator at "+s.Config.AggregatorURL)
	return conn
}

// Expect reads frames until one carries the given event id.
func (s *BaseSuite) Expect(conn *websocket.Conn, id uuid.UUID, timeout time.Duration) event.Frame {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(timeout)))
	for {
		var frame event.Frame
		_, raw, err := conn.ReadMessage()
		s.Require().NoError(err, "No frame for event %s", id)
		s.Require().NoError(json.Unmarshal(raw, &frame))
		if s.Config.DebugJSON {
			s.T().Logf("FRAME:\n%s", raw)
		}
		if frame.ID == id {
			return frame
		}
	}
}

// partitionKey keys channel events by channel id so one channel's events keep their order.
func partitionKey(raw []byte) []byte {
	evt, err := event.Decode(raw)
	if err != nil {
		return nil
	}
	if scoped, ok := evt.(event.ChannelScoped); ok && scoped.ChannelID() != "" {
		return []byte(scoped.ChannelID())
	}
	return nil
}
