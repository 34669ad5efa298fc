package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linksaver/internal/domain"
	"github.com/MrSnakeDoc/linksaver/internal/store"
)

// maxTxRetries bounds optimistic transaction retries on a contended key.
const maxTxRetries = 5

var _ store.Store = (*Store)(nil)

// Store keeps bookmarks as JSON documents in Redis.
type Store struct {
	client *redis.Client
	keys   keyspace
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.keys.prefix = prefix }
}

// NewStore creates a new Redis store.
func NewStore(client *redis.Client, opts ...Option) *Store {
	s := &Store{
		client: client,
		keys:   keyspace{prefix: DefaultKeyPrefix},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Insert stores b. The url hash is claimed first with HSETNX so a concurrent
// insert of the same URL fails with ErrDuplicate.
func (s *Store) Insert(ctx context.Context, b *domain.Bookmark) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := s.now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
	b.Tags = domain.NormalizeTags(b.Tags)

	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal bookmark: %v", domain.ErrStore, err)
	}

	urlsKey := s.keys.OwnerURLsKey(b.OwnerKey)
	claimed, err := s.client.HSetNX(ctx, urlsKey, b.URL, b.ID).Result()
	if err != nil {
		return fmt.Errorf("%w: failed to claim url: %v", domain.ErrStore, err)
	}
	if !claimed {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, b.URL)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keys.BookmarkKey(b.ID), data, 0)
		pipe.SAdd(ctx, s.keys.OwnerIDsKey(b.OwnerKey), b.ID)
		return nil
	})
	if err != nil {
		// release the claim so the URL can be saved again
		_ = s.client.HDel(context.WithoutCancel(ctx), urlsKey, b.URL).Err()
		return fmt.Errorf("%w: failed to save bookmark: %v", domain.ErrStore, err)
	}
	return nil
}

// Find loads every document of the owner and filters them.
func (s *Store) Find(ctx context.Context, f store.Filter) ([]domain.Bookmark, error) {
	ids, err := s.client.SMembers(ctx, s.keys.OwnerIDsKey(f.OwnerKey)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get bookmark ids: %v", domain.ErrStore, err)
	}
	if f.ID != "" {
		ids = keepID(ids, f.ID)
	}
	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.keys.BookmarkKey(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get bookmarks: %v", domain.ErrStore, err)
	}

	out := make([]domain.Bookmark, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Skip ids whose document vanished between SMEMBERS and MGET
			continue
		}
		var b domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return nil, fmt.Errorf("%w: failed to unmarshal bookmark: %v", domain.ErrStore, err)
		}
		if store.Matches(&b, f) {
			out = append(out, b)
		}
	}
	store.Sort(out)
	return out, nil
}

// UpdateOne applies u to one record matching f inside a WATCH transaction,
// so the filter guards are evaluated against the value being replaced.
func (s *Store) UpdateOne(ctx context.Context, f store.Filter, u store.Update) (bool, error) {
	id, ok, err := s.pinOne(ctx, f)
	if err != nil || !ok {
		return false, err
	}

	matched := false
	key := s.keys.BookmarkKey(id)
	txf := func(tx *redis.Tx) error {
		matched = false
		b, err := getDoc(ctx, tx, key)
		if err != nil || b == nil || !store.Matches(b, f) {
			return err
		}
		store.Apply(b, u)
		data, err := json.Marshal(b)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err == nil {
			matched = true
		}
		return err
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return false, fmt.Errorf("%w: failed to update bookmark: %v", domain.ErrStore, err)
	}
	return matched, nil
}

// DeleteOne removes one record matching f along with its index entries.
func (s *Store) DeleteOne(ctx context.Context, f store.Filter) (bool, error) {
	id, ok, err := s.pinOne(ctx, f)
	if err != nil || !ok {
		return false, err
	}

	deleted := false
	key := s.keys.BookmarkKey(id)
	txf := func(tx *redis.Tx) error {
		deleted = false
		b, err := getDoc(ctx, tx, key)
		if err != nil || b == nil || !store.Matches(b, f) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, s.keys.OwnerIDsKey(b.OwnerKey), b.ID)
			pipe.HDel(ctx, s.keys.OwnerURLsKey(b.OwnerKey), b.URL)
			return nil
		})
		if err == nil {
			deleted = true
		}
		return err
	}

	if err := s.watch(ctx, txf, key); err != nil {
		return false, fmt.Errorf("%w: failed to delete bookmark: %v", domain.ErrStore, err)
	}
	return deleted, nil
}

// Count returns the number of matching records. An owner-only filter is
// answered from the id set alone.
func (s *Store) Count(ctx context.Context, f store.Filter) (int, error) {
	if f == (store.Filter{OwnerKey: f.OwnerKey}) {
		n, err := s.client.SCard(ctx, s.keys.OwnerIDsKey(f.OwnerKey)).Result()
		if err != nil {
			return 0, fmt.Errorf("%w: failed to count bookmarks: %v", domain.ErrStore, err)
		}
		return int(n), nil
	}
	records, err := s.Find(ctx, f)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) watch(ctx context.Context, txf func(*redis.Tx) error, key string) error {
	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *Store) pinOne(ctx context.Context, f store.Filter) (string, bool, error) {
	if f.ID != "" {
		return f.ID, true, nil
	}
	records, err := s.Find(ctx, f)
	if err != nil {
		return "", false, err
	}
	if len(records) == 0 {
		return "", false, nil
	}
	return records[0].ID, true, nil
}

func getDoc(ctx context.Context, tx *redis.Tx, key string) (*domain.Bookmark, error) {
	data, err := tx.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var b domain.Bookmark
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}
	return &b, nil
}

func keepID(ids []string, id string) []string {
	for _, v := range ids {
		if v == id {
			return []string{id}
		}
	}
	return nil
}
