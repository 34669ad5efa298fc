package redis

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linksaver/internal/store"
	"github.com/MrSnakeDoc/linksaver/internal/store/storetest"
)

// These tests need a live Redis. Set LINKSAVER_TEST_REDIS_ADDR to run them.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	addr := os.Getenv("LINKSAVER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LINKSAVER_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable at %s: %v", addr, err)
	}

	prefix := "linksaver-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		iter := client.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			_ = client.Del(ctx, iter.Val()).Err()
		}
		_ = client.Close()
	})
	return NewStore(client, WithKeyPrefix(prefix))
}

func TestStore(t *testing.T) {
	storetest.Run(t, newTestStore)
}

func TestKeyspace(t *testing.T) {
	k := keyspace{prefix: DefaultKeyPrefix}

	tests := []struct {
		got  string
		want string
	}{
		{k.BookmarkKey("42"), "linksaver:bookmark:42"},
		{k.OwnerIDsKey("a@b.c"), "linksaver:owner:a@b.c:ids"},
		{k.OwnerURLsKey("a@b.c"), "linksaver:owner:a@b.c:urls"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("key = %q, want %q", tt.got, tt.want)
		}
	}
}
