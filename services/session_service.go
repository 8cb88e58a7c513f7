package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"churn-dashboard/config"
	"churn-dashboard/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session is the per-visitor context object the History view reads from.
// It is created on the first request without a valid cookie and discarded by
// End or when the store expires it.
type Session struct {
	ID      string
	Started time.Time

	store HistoryStore
}

func (s *Session) History(ctx context.Context) ([]models.HistoryEntry, error) {
	return s.store.List(ctx, s.ID)
}

func (s *Session) Append(ctx context.Context, entry models.HistoryEntry) error {
	return s.store.Append(ctx, s.ID, entry)
}

func (s *Session) Subscribe(ctx context.Context) (<-chan models.HistoryEntry, func(), error) {
	return s.store.Subscribe(ctx, s.ID)
}

type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionService signs session cookies and binds sessions to a store. The
// cookie identifies a browser session; it is not a login.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	store  HistoryStore
}

func NewSessionService(cfg config.SessionConfig, store HistoryStore) *SessionService {
	return &SessionService{
		secret: []byte(cfg.Secret),
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
		store:  store,
	}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

func (s *SessionService) Store() HistoryStore {
	return s.store
}

// Start opens a new session and returns it with its signed token.
func (s *SessionService) Start() (*Session, string, error) {
	sess := &Session{ID: uuid.NewString(), Started: time.Now(), store: s.store}
	token, err := s.GenerateToken(sess.ID, sess.Started)
	if err != nil {
		return nil, "", err
	}
	return sess, token, nil
}

// Resume rebuilds the session a token was issued for.
func (s *SessionService) Resume(token string) (*Session, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	started := time.Now()
	if claims.IssuedAt != nil {
		started = claims.IssuedAt.Time
	}
	return &Session{ID: claims.SessionID, Started: started, store: s.store}, nil
}

// End discards the session's history.
func (s *SessionService) End(ctx context.Context, sess *Session) error {
	if err := s.store.Clear(ctx, sess.ID); err != nil {
		return fmt.Errorf("end session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *SessionService) GenerateToken(sessionID string, issued time.Time) (string, error) {
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *SessionService) ValidateToken(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.secret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	return claims, nil
}
