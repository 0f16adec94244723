package repositories

import (
	"chat-aggregator/domain"
	"chat-aggregator/errors"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type rosterRecord struct {
	JoinedAt int64 `cbor:"joinedAt"`
}

func rosterPrefix(channelID string) string { return "roster:" + channelID + ":" }

func rosterKey(channelID, userID string) string { return rosterPrefix(channelID) + userID }

// AddUserToChannel returns nil when the user is already a member,
// and ErrChannelNotFound when the channel doesn't exist.
func (s *Store) AddUserToChannel(ctx context.Context, channelID, userID string) (*domain.Roster, error) {
	var joined *rosterRecord
	err := s.update(ctx, func(txn *badger.Txn) error {
		joined = nil
		found, err := exists(txn, channelKey(channelID))
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: %s", errors.ErrChannelNotFound, channelID)
		}
		member, err := exists(txn, rosterKey(channelID, userID))
		if err != nil || member {
			return err
		}
		record := rosterRecord{JoinedAt: s.now().UnixNano()}
		if err = set(txn, rosterKey(channelID, userID), record); err != nil {
			return err
		}
		joined = &record
		return nil
	})
	if err != nil || joined == nil {
		return nil, err
	}
	return &domain.Roster{
		ChannelID: channelID,
		UserID:    userID,
		JoinedAt:  time.Unix(0, joined.JoinedAt).UTC(),
	}, nil
}

// DeleteUserFromChannel returns the number of memberships removed, 0 or 1.
func (s *Store) DeleteUserFromChannel(ctx context.Context, channelID, userID string) (int64, error) {
	var count int64
	err := s.update(ctx, func(txn *badger.Txn) error {
		count = 0
		member, err := exists(txn, rosterKey(channelID, userID))
		if err != nil || !member {
			return err
		}
		if err = txn.Delete([]byte(rosterKey(channelID, userID))); err != nil {
			return err
		}
		count = 1
		return nil
	})
	return count, err
}

// Members returns the ids of the users in a channel, sorted.
func (s *Store) Members(ctx context.Context, channelID string) ([]string, error) {
	var members []string
	err := s.view(ctx, func(txn *badger.Txn) error {
		prefix := rosterPrefix(channelID)
		for _, key := range keys(txn, prefix) {
			members = append(members, strings.TrimPrefix(key, prefix))
		}
		return nil
	})
	slices.Sort(members)
	return members, err
}
