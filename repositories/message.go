package repositories

import (
	"chat-aggregator/domain"
	"chat-aggregator/errors"
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

type messageRecord struct {
	ID        string `cbor:"id"`
	ChannelID string `cbor:"channelId"`
	SenderID  string `cbor:"senderId"`
	Content   string `cbor:"content"`
	CreatedAt int64  `cbor:"createdAt"`
	UpdatedAt int64  `cbor:"updatedAt"`
}

func messageKey(id string) string { return "message:" + id }

func tombstoneKey(id string) string { return "tombstone:message:" + id }

func channelMessagePrefix(channelID string) string { return "channel-message:" + channelID + ":" }

func channelMessageKey(channelID, messageID string) string {
	return channelMessagePrefix(channelID) + messageID
}

// CreateMessage returns nil when the id is already used, including by a deleted message,
// and ErrChannelNotFound when the channel doesn't exist.
func (s *Store) CreateMessage(ctx context.Context, id, channelID, senderID, content string) (*domain.Message, error) {
	var created *messageRecord
	err := s.update(ctx, func(txn *badger.Txn) error {
		created = nil
		for _, key := range []string{messageKey(id), tombstoneKey(id)} {
			taken, err := exists(txn, key)
			if err != nil || taken {
				return err
			}
		}
		found, err := exists(txn, channelKey(channelID))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", errors.ErrChannelNotFound, channelID)
		}
		now := s.now().UnixNano()
		record := messageRecord{
			ID:        id,
			ChannelID: channelID,
			SenderID:  senderID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = set(txn, messageKey(id), record); err != nil {
			return err
		}
		if err = txn.Set([]byte(channelMessageKey(channelID, id)), nil); err != nil {
			return err
		}
		created = &record
		return nil
	})
	if err != nil || created == nil {
		return nil, err
	}
	return toMessage(*created), nil
}

// EditMessage replaces the content of a message. It returns nil when no message with
// this id lives in channelID.
func (s *Store) EditMessage(ctx context.Context, id, channelID, content string) (*domain.Message, error) {
	var edited *messageRecord
	err := s.update(ctx, func(txn *badger.Txn) error {
		edited = nil
		record, err := get[messageRecord](txn, messageKey(id))
		if err != nil || record == nil || record.ChannelID != channelID {
			return err
		}
		record.Content = content
		record.UpdatedAt = s.now().UnixNano()
		if err = set(txn, messageKey(id), record); err != nil {
			return err
		}
		edited = record
		return nil
	})
	if err != nil || edited == nil {
		return nil, err
	}
	return toMessage(*edited), nil
}

// DeleteMessage returns the number of messages removed, 0 or 1.
func (s *Store) DeleteMessage(ctx context.Context, id string) (int64, error) {
	var count int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		count = 0
		record, err := get[messageRecord](txn, messageKey(id))
		if err != nil || record == nil {
			return err
		}
		tombstone, err := cborTime(s.now())
		if err != nil {
			return err
		}
		if err = deleteMessage(txn, record.ChannelID, id, tombstone); err != nil {
			return err
		}
		count = 1
		return nil
	})
	return count, err
}

// GetMessage returns nil when the message doesn't exist or has been deleted.
func (s *Store) GetMessage(ctx context.Context, id string) (*domain.Message, error) {
	var record *messageRecord
	err := s.view(ctx, func(txn *badger.Txn) (err error) {
		record, err = get[messageRecord](txn, messageKey(id))
		return err
	})
	if err != nil || record == nil {
		return nil, err
	}
	return toMessage(*record), nil
}

func deleteMessage(txn *badger.Txn, channelID, messageID string, tombstone []byte) error {
	if err := txn.Delete([]byte(messageKey(messageID))); err != nil {
		return err
	}
	if err := txn.Delete([]byte(channelMessageKey(channelID, messageID))); err != nil {
		return err
	}
	return txn.Set([]byte(tombstoneKey(messageID)), tombstone)
}

func cborTime(t time.Time) ([]byte, error) {
	return cbor.Marshal(t.UnixNano())
}

func toMessage(r messageRecord) *domain.Message {
	return &domain.Message{
		ID:        r.ID,
		ChannelID: r.ChannelID,
		SenderID:  r.SenderID,
		Content:   r.Content,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
}
