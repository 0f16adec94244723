package repositories

import (
	"chat-aggregator/domain"
	"context"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type channelRecord struct {
	ID        string `cbor:"id"`
	Name      string `cbor:"name"`
	CreatedAt int64  `cbor:"createdAt"`
	UpdatedAt int64  `cbor:"updatedAt"`
}

func channelKey(id string) string { return "channel:" + id }

// CreateChannel returns nil when a channel with this id already exists.
func (s *Store) CreateChannel(ctx context.Context, id, name string) (*domain.Channel, error) {
	var created *channelRecord
	err := s.update(ctx, func(txn *badger.Txn) error {
		created = nil
		taken, err := exists(txn, channelKey(id))
		if err != nil || taken {
			return err
		}
		now := s.now().UnixNano()
		record := channelRecord{ID: id, Name: name, CreatedAt: now, UpdatedAt: now}
		if err = set(txn, channelKey(id), record); err != nil {
			return err
		}
		created = &record
		return nil
	})
	if err != nil || created == nil {
		return nil, err
	}
	return toChannel(*created), nil
}

// UpdateChannelByID renames a channel. It returns nil when the channel doesn't exist.
func (s *Store) UpdateChannelByID(ctx context.Context, id, newName string) (*domain.Channel, error) {
	var updated *channelRecord
	err := s.update(ctx, func(txn *badger.Txn) error {
		record, err := get[channelRecord](txn, channelKey(id))
		if err != nil || record == nil {
			updated = nil
			return err
		}
		record.Name = newName
		record.UpdatedAt = s.now().UnixNano()
		updated = record
		return set(txn, channelKey(id), record)
	})
	if err != nil || updated == nil {
		return nil, err
	}
	return toChannel(*updated), nil
}

// DeleteChannelByID removes the channel with its roster and its messages.
// It returns the number of channels removed, 0 or 1.
//
// The cascade runs in transactions of at most cascadeBatch keys and the channel record
// goes last, so an interrupted delete is finished by the next call.
func (s *Store) DeleteChannelByID(ctx context.Context, id string) (int64, error) {
	for {
		var count int64
		var done bool
		err := s.update(ctx, func(txn *badger.Txn) error {
			count, done = 0, false
			found, err := exists(txn, channelKey(id))
			if err != nil || !found {
				done = true
				return err
			}
			removed, err := s.deleteChannelBatch(txn, id)
			if err != nil || removed == cascadeBatch {
				return err
			}
			if err = txn.Delete([]byte(channelKey(id))); err != nil {
				return err
			}
			count, done = 1, true
			return nil
		})
		if err != nil || done {
			return count, err
		}
		s.log.Debug("Channel cascade batch removed", "channel_id", id, "batch", cascadeBatch)
	}
}

// deleteChannelBatch removes up to cascadeBatch roster and message keys of a channel.
func (s *Store) deleteChannelBatch(txn *badger.Txn, id string) (int, error) {
	roster := firstKeys(txn, rosterPrefix(id), cascadeBatch)
	for _, key := range roster {
		if err := txn.Delete([]byte(key)); err != nil {
			return 0, err
		}
	}
	tombstone, err := cborTime(s.now())
	if err != nil {
		return 0, err
	}
	prefix := channelMessagePrefix(id)
	messages := firstKeys(txn, prefix, cascadeBatch-len(roster))
	for _, key := range messages {
		if err = deleteMessage(txn, id, strings.TrimPrefix(key, prefix), tombstone); err != nil {
			return 0, err
		}
	}
	return len(roster) + len(messages), nil
}

// GetChannel returns nil when no channel has this id.
func (s *Store) GetChannel(ctx context.Context, id string) (*domain.Channel, error) {
	var record *channelRecord
	err := s.view(ctx, func(txn *badger.Txn) (err error) {
		record, err = get[channelRecord](txn, channelKey(id))
		return err
	})
	if err != nil || record == nil {
		return nil, err
	}
	return toChannel(*record), nil
}

func toChannel(r channelRecord) *domain.Channel {
	return &domain.Channel{
		ID:        r.ID,
		Name:      r.Name,
		CreatedAt: time.Unix(0, r.CreatedAt).UTC(),
		UpdatedAt: time.Unix(0, r.UpdatedAt).UTC(),
	}
}
