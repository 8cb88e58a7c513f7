package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"churn-dashboard/config"
	"churn-dashboard/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedisClient connects and pings, retrying up to attempts times. On
// failure the client is closed and the caller is expected to fall back to
// the memory store.
func NewRedisClient(cfg config.RedisConfig, attempts int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	var lastErr error
	for i := 0; i < attempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		lastErr = client.Ping(ctx).Err()
		cancel()
		if lastErr == nil {
			return client, nil
		}
		log.Warn().Err(lastErr).Int("attempt", i+1).Int("of", attempts).Msg("redis ping failed")
		if i+1 < attempts {
			time.Sleep(2 * time.Second)
		}
	}
	client.Close()
	return nil, fmt.Errorf("redis ping failed after %d attempts: %w", attempts, lastErr)
}

// RedisHistoryStore keeps each session's history in a redis list that
// expires with the session, and announces appends on a pub/sub channel.
type RedisHistoryStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) *RedisHistoryStore {
	return &RedisHistoryStore{client: client, ttl: ttl}
}

func historyKey(sessionID string) string {
	return "churn:session:" + sessionID + ":" + models.HistoryKey
}

// HistoryChannel is the pub/sub channel appends for a session go to.
func HistoryChannel(sessionID string) string {
	return "churn:history:" + sessionID
}

func (s *RedisHistoryStore) Backend() string {
	return "redis"
}

func (s *RedisHistoryStore) Append(ctx context.Context, sessionID string, entry models.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}
	key := historyKey(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if err := s.client.Publish(ctx, HistoryChannel(sessionID), data).Err(); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("history publish failed")
	}
	return nil
}

func (s *RedisHistoryStore) List(ctx context.Context, sessionID string) ([]models.HistoryEntry, error) {
	raw, err := s.client.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return decodeEntries(raw)
}

func (s *RedisHistoryStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, historyKey(sessionID)).Err()
}

func (s *RedisHistoryStore) Subscribe(ctx context.Context, sessionID string) (<-chan models.HistoryEntry, func(), error) {
	pubsub := s.client.Subscribe(ctx, HistoryChannel(sessionID))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe history: %w", err)
	}

	out := make(chan models.HistoryEntry, 16)
	done := make(chan struct{})
	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var entry models.HistoryEntry
				if err := json.Unmarshal([]byte(msg.Payload), &entry); err != nil {
					log.Warn().Err(err).Str("channel", msg.Channel).Msg("bad history message")
					continue
				}
				select {
				case out <- entry:
				case <-done:
					return
				}
			}
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}
	return out, stop, nil
}

func decodeEntries(raw []string) ([]models.HistoryEntry, error) {
	entries := make([]models.HistoryEntry, 0, len(raw))
	for i, r := range raw {
		var e models.HistoryEntry
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			return nil, fmt.Errorf("decode history entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
