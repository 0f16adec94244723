package repositories

import (
	"chat-aggregator/domain"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type userRecord struct {
	ID          string  `cbor:"id"`
	Username    string  `cbor:"username"`
	DisplayName string  `cbor:"displayName"`
	FirstName   *string `cbor:"firstName,omitempty"`
	LastName    *string `cbor:"lastName,omitempty"`
	CreatedAt   int64   `cbor:"createdAt"`
}

func userKey(id string) string { return "user:" + id }

func usernameKey(username string) string { return "username:" + username }

// CreateUser stores the user and reserves its username.
// It returns nil when either the id or the username is already taken.
func (s *Store) CreateUser(ctx context.Context, props domain.UserProps) (*domain.User, error) {
	var created *userRecord
	err := s.update(ctx, func(txn *badger.Txn) error {
		created = nil
		for _, key := range []string{userKey(props.ID), usernameKey(props.Username)} {
			taken, err := exists(txn, key)
			if err != nil || taken {
				return err
			}
		}
		record := userRecord{
			ID:          props.ID,
			Username:    props.Username,
			DisplayName: props.DisplayName,
			FirstName:   props.FirstName,
			LastName:    props.LastName,
			CreatedAt:   s.now().UnixNano(),
		}
		if err := set(txn, userKey(props.ID), record); err != nil {
			return err
		}
		if err := txn.Set([]byte(usernameKey(props.Username)), []byte(props.ID)); err != nil {
			return err
		}
		created = &record
		return nil
	})
	if err != nil || created == nil {
		return nil, err
	}
	return toUser(*created), nil
}

// GetUser returns nil when no user has this id.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var record *userRecord
	err := s.view(ctx, func(txn *badger.Txn) (err error) {
		record, err = get[userRecord](txn, userKey(id))
		return err
	})
	if err != nil || record == nil {
		return nil, err
	}
	return toUser(*record), nil
}

func toUser(r userRecord) *domain.User {
	return &domain.User{
		ID:          r.ID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		CreatedAt:   time.Unix(0, r.CreatedAt).UTC(),
	}
}
