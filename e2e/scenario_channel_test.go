package e2e

import (
	"chat-aggregator/domain/event"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type testChannelSuite struct {
	BaseSuite
}

func TestChannelSuite(t *testing.T) {
	suite.Run(t, &testChannelSuite{})
}

func (s *testChannelSuite) TestChannelLifecycle() {
	channelID := uuid.NewString()
	alice := uuid.NewString()
	bob := uuid.NewString()

	conn := s.Listen("Listen to the new channel", channelID)
	defer conn.Close()

	s.Run("Step 1: Register users", func() {
		for _, user := range []event.UserRegisteredPayload{
			{ID: alice, Username: "alice-" + alice[:8], DisplayName: "Alice"},
			{ID: bob, Username: "bob-" + bob[:8], DisplayName: "Bob"},
		} {
			s.Publish("Register "+user.DisplayName, s.Config.IdentityTopic, event.UserRegisteredType, user)
		}
	})

	s.Run("Step 2: Create channel with a member", func() {
		id := s.Publish("Create channel", s.Config.ChatTopic, event.ChannelCreatedType, event.ChannelCreatedPayload{
			ChannelID:   channelID,
			ChannelName: "e2e",
			Sender:      event.Sender{ID: alice, Name: "Alice"},
			MemberIDs:   []string{bob},
		})
		frame := s.Expect(conn, id, 10*time.Second)
		s.Require().Equal(event.ChannelCreatedType, frame.Type)
	})

	s.Run("Step 3: Post and edit a message", func() {
		messageID := uuid.NewString()
		created := s.Publish("Post message", s.Config.ChatTopic, event.MessageCreatedType, event.MessageCreatedPayload{
			MessageID: messageID,
			ChannelID: channelID,
			Sender:    event.Sender{ID: bob},
			Content:   "hello",
		})
		frame := s.Expect(conn, created, 10*time.Second)
		var payload event.MessageCreatedPayload
		s.Require().NoError(json.Unmarshal(frame.Payload, &payload))
		s.Require().Equal("hello", payload.Content)

		updated := s.Publish("Edit message", s.Config.ChatTopic, event.MessageUpdatedType, event.MessageUpdatedPayload{
			MessageID: messageID,
			ChannelID: channelID,
			Sender:    event.Sender{ID: bob},
			Content:   "hello, world",
		})
		s.Expect(conn, updated, 10*time.Second)
	})

	s.Run("Step 4: Delete channel", func() {
		id := s.Publish("Delete channel", s.Config.ChatTopic, event.ChannelDeletedType, event.ChannelDeletedPayload{
			ChannelID: channelID,
			Sender:    event.Sender{ID: alice},
		})
		s.Expect(conn, id, 10*time.Second)
	})
}
