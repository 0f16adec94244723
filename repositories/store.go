package repositories

import (
	"chat-aggregator/contract"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

// conflictRetries bounds how many times a transaction is replayed after a Badger write conflict.
const conflictRetries = 3

// cascadeBatch bounds the roster and message keys removed per transaction when a channel
// is deleted. A message costs three writes, well below Badger's per-transaction limit.
const cascadeBatch = 1000

// Store implements every gateway on top of BadgerDB. Values are CBOR encoded.
//
// Key layout:
//
//	user:<id>                              user record
//	username:<name>                        user id, uniqueness index
//	channel:<id>                           channel record
//	roster:<channel>:<user>                membership record
//	message:<id>                           message record
//	channel-message:<channel>:<message>    empty, lets a channel find its messages
//	tombstone:message:<id>                 deletion time, a deleted id is never reused
//
// Each gateway call is a single Badger transaction, except DeleteChannelByID which
// cascades in batches of cascadeBatch keys.
type Store struct {
	db  *badger.DB
	log *slog.Logger
	now func() time.Time
}

func NewStore(db *badger.DB, log *slog.Logger) *Store {
	return &Store{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// OpenDB opens the Badger directory at path, or an in-memory database when path is empty.
func OpenDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLoggingLevel(badger.WARNING)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %q: %w", path, err)
	}
	return db, nil
}

func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for range conflictRetries {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = s.db.Update(fn); !stderrors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debug("Transaction conflict, retrying")
	}
	return err
}

func (s *Store) view(ctx context.Context, fn func(txn *badger.Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(fn)
}

// get returns nil when the key is absent.
func get[T any](txn *badger.Txn, key string) (*T, error) {
	item, err := txn.Get([]byte(key))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var value T
	if err = item.Value(func(val []byte) error {
		return cbor.Unmarshal(val, &value)
	}); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	return &value, nil
}

func set(txn *badger.Txn, key string, value any) error {
	bytes, err := cbor.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return txn.Set([]byte(key), bytes)
}

func exists(txn *badger.Txn, key string) (bool, error) {
	_, err := txn.Get([]byte(key))
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}

// keys lists every key under prefix without loading values.
func keys(txn *badger.Txn, prefix string) []string {
	return firstKeys(txn, prefix, -1)
}

// firstKeys lists at most limit keys under prefix, every key when limit is negative.
func firstKeys(txn *badger.Txn, prefix string, limit int) []string {
	if limit == 0 {
		return nil
	}
	options := badger.DefaultIteratorOptions
	options.PrefetchValues = false
	options.Prefix = []byte(prefix)
	it := txn.NewIterator(options)
	defer it.Close()

	var found []string
	for it.Rewind(); it.Valid() && len(found) != limit; it.Next() {
		found = append(found, string(it.Item().KeyCopy(nil)))
	}
	return found
}

// Row is a raw key/value pair, the value rendered in CBOR diagnostic notation.
type Row struct {
	Key   string
	Value string
}

// Rows dumps every entry under prefix, in key order. An empty prefix dumps the whole store.
func (s *Store) Rows(ctx context.Context, prefix string) ([]Row, error) {
	var rows []Row
	err := s.view(ctx, func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Prefix = []byte(prefix)
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rendered := ""
			if len(value) > 0 {
				if rendered, err = cbor.Diagnose(value); err != nil {
					rendered = fmt.Sprintf("%x", value)
				}
			}
			rows = append(rows, Row{Key: string(item.KeyCopy(nil)), Value: rendered})
		}
		return nil
	})
	return rows, err
}

var (
	_ contract.MessageGateway = (*Store)(nil)
	_ contract.ChannelGateway = (*Store)(nil)
	_ contract.RosterGateway  = (*Store)(nil)
	_ contract.UserGateway    = (*Store)(nil)
)
