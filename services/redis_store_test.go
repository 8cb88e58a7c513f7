package services

import (
	"context"
	"strconv"
	"testing"
	"time"

	"churn-dashboard/config"
	"churn-dashboard/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredisStore(t *testing.T, ttl time.Duration) (*RedisHistoryStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisHistoryStore(client, ttl), mr
}

func TestRedisStoreAppendKeepsOrderAndSetsTTL(t *testing.T) {
	store, mr := newMiniredisStore(t, 2*time.Hour)
	ctx := context.Background()

	for i, p := range []string{"No", "Yes", "No"} {
		if err := store.Append(ctx, "a", models.HistoryEntry{"n": float64(i), "prediction": p}); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	store.Append(ctx, "b", models.HistoryEntry{"prediction": "Yes"})

	got, err := store.List(ctx, "a")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, e := range got {
		if e["n"] != float64(i) {
			t.Errorf("entry %d out of order: %v", i, e)
		}
	}

	if ttl := mr.TTL(historyKey("a")); ttl != 2*time.Hour {
		t.Errorf("key ttl = %v, want 2h", ttl)
	}
	raw, err := mr.List(historyKey("b"))
	if err != nil || len(raw) != 1 {
		t.Errorf("session b list = %v (%v), want one entry", raw, err)
	}
}

func TestRedisStoreHistoryExpiresWithSession(t *testing.T) {
	store, mr := newMiniredisStore(t, time.Minute)
	ctx := context.Background()
	store.Append(ctx, "a", models.HistoryEntry{"prediction": "No"})

	mr.FastForward(time.Minute)

	got, err := store.List(ctx, "a")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d after ttl, want 0", len(got))
	}
}

func TestRedisStoreListUnknownSession(t *testing.T) {
	store, _ := newMiniredisStore(t, time.Hour)
	got, err := store.List(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want an empty collection", got)
	}
}

func TestRedisStoreClear(t *testing.T) {
	store, mr := newMiniredisStore(t, time.Hour)
	ctx := context.Background()
	store.Append(ctx, "a", models.HistoryEntry{"prediction": "No"})

	if err := store.Clear(ctx, "a"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if mr.Exists(historyKey("a")) {
		t.Error("history key still exists after Clear")
	}
	if err := store.Clear(ctx, "never-seen"); err != nil {
		t.Errorf("Clear of unknown session failed: %v", err)
	}
}

func TestRedisStoreListRejectsCorruptEntry(t *testing.T) {
	store, mr := newMiniredisStore(t, time.Hour)
	mr.RPush(historyKey("a"), "not json")

	if _, err := store.List(context.Background(), "a"); err == nil {
		t.Error("expected a decode error")
	}
}

func TestRedisStoreSubscribe(t *testing.T) {
	store, mr := newMiniredisStore(t, time.Hour)
	ctx := context.Background()

	ch, stop, err := store.Subscribe(ctx, "a")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer stop()

	mr.Publish(HistoryChannel("a"), "not json")
	store.Append(ctx, "b", models.HistoryEntry{"prediction": "other session"})
	if err := store.Append(ctx, "a", models.HistoryEntry{"prediction": "Yes"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	select {
	case e := <-ch:
		if e["prediction"] != "Yes" {
			t.Errorf("got %v, want the session's own entry", e)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no entry delivered")
	}

	stop()
	stop()
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("unexpected entry after stop")
		}
	case <-time.After(2 * time.Second):
		t.Error("channel not closed after stop")
	}
}

func TestNewRedisClientReachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	if err != nil {
		t.Fatalf("bad miniredis port %q: %v", mr.Port(), err)
	}

	client, err := NewRedisClient(config.RedisConfig{Host: mr.Host(), Port: port}, 1)
	if err != nil {
		t.Fatalf("NewRedisClient failed: %v", err)
	}
	client.Close()
}
