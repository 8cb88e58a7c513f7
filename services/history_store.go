package services

import (
	"context"
	"sync"
	"time"

	"churn-dashboard/models"
)

// HistoryStore keeps each session's ordered prediction history. Append order
// is the order List returns.
type HistoryStore interface {
	Append(ctx context.Context, sessionID string, entry models.HistoryEntry) error
	List(ctx context.Context, sessionID string) ([]models.HistoryEntry, error)
	Clear(ctx context.Context, sessionID string) error
	// Subscribe streams entries appended after the call. The returned func
	// stops the stream and closes the channel.
	Subscribe(ctx context.Context, sessionID string) (<-chan models.HistoryEntry, func(), error)
	Backend() string
}

// MemoryHistoryStore is the process-local store used when redis is not
// reachable. History is lost on restart. A session's history expires ttl
// after its last append, like the redis key does; ttl <= 0 keeps it until
// Clear.
type MemoryHistoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	history map[string]*memoryHistory
	subs    map[string]map[chan models.HistoryEntry]struct{}
}

type memoryHistory struct {
	entries []models.HistoryEntry
	expires time.Time
}

func NewMemoryHistoryStore(ttl time.Duration) *MemoryHistoryStore {
	return &MemoryHistoryStore{
		ttl:     ttl,
		now:     time.Now,
		history: make(map[string]*memoryHistory),
		subs:    make(map[string]map[chan models.HistoryEntry]struct{}),
	}
}

func (s *MemoryHistoryStore) Backend() string {
	return "memory"
}

// expired reports whether h has outlived the TTL. Callers hold mu.
func (s *MemoryHistoryStore) expired(h *memoryHistory) bool {
	return s.ttl > 0 && !s.now().Before(h.expires)
}

// sweep drops every expired session. Callers hold mu.
func (s *MemoryHistoryStore) sweep() {
	for id, h := range s.history {
		if s.expired(h) {
			delete(s.history, id)
		}
	}
}

func (s *MemoryHistoryStore) Append(_ context.Context, sessionID string, entry models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	h := s.history[sessionID]
	if h == nil {
		h = &memoryHistory{}
		s.history[sessionID] = h
	}
	h.entries = append(h.entries, entry)
	h.expires = s.now().Add(s.ttl)
	for ch := range s.subs[sessionID] {
		select {
		case ch <- entry:
		default:
			// slow subscriber; the page still has the full list on reload
		}
	}
	return nil
}

func (s *MemoryHistoryStore) List(_ context.Context, sessionID string) ([]models.HistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h := s.history[sessionID]
	if h == nil {
		return []models.HistoryEntry{}, nil
	}
	if s.expired(h) {
		delete(s.history, sessionID)
		return []models.HistoryEntry{}, nil
	}
	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out, nil
}

func (s *MemoryHistoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, sessionID)
	return nil
}

func (s *MemoryHistoryStore) Subscribe(_ context.Context, sessionID string) (<-chan models.HistoryEntry, func(), error) {
	ch := make(chan models.HistoryEntry, 16)

	s.mu.Lock()
	if s.subs[sessionID] == nil {
		s.subs[sessionID] = make(map[chan models.HistoryEntry]struct{})
	}
	s.subs[sessionID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs[sessionID], ch)
			if len(s.subs[sessionID]) == 0 {
				delete(s.subs, sessionID)
			}
			close(ch)
		})
	}
	return ch, stop, nil
}
