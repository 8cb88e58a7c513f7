package services

import (
	"context"
	"testing"
	"time"

	"churn-dashboard/config"
	"churn-dashboard/models"

	"github.com/golang-jwt/jwt/v5"
)

func newTestSessionService() *SessionService {
	return NewSessionService(config.SessionConfig{
		Secret:   "test-secret-key",
		TTLHours: 24,
	}, NewMemoryHistoryStore(time.Hour))
}

func TestStartAndResume(t *testing.T) {
	svc := newTestSessionService()

	sess, token, err := svc.Start()
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if sess.ID == "" || token == "" {
		t.Fatal("session id and token should not be empty")
	}

	resumed, err := svc.Resume(token)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if resumed.ID != sess.ID {
		t.Errorf("ID = %q, want %q", resumed.ID, sess.ID)
	}
}

func TestSessionsAreDistinct(t *testing.T) {
	svc := newTestSessionService()

	a, _, _ := svc.Start()
	b, _, _ := svc.Start()
	if a.ID == b.ID {
		t.Error("two sessions should not share an id")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	svc := newTestSessionService()

	if _, err := svc.ValidateToken("invalid.token.string"); err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc1 := NewSessionService(config.SessionConfig{Secret: "secret-1", TTLHours: 24}, NewMemoryHistoryStore(time.Hour))
	svc2 := NewSessionService(config.SessionConfig{Secret: "secret-2", TTLHours: 24}, NewMemoryHistoryStore(time.Hour))

	_, token, _ := svc1.Start()
	if _, err := svc2.ValidateToken(token); err == nil {
		t.Error("expected error when validating with wrong secret")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	svc := newTestSessionService()

	token, err := svc.GenerateToken("1b4e28ba-2fa1-11d2-883f-0016d3cca427", time.Now().Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateTokenRejectsForeignSessionID(t *testing.T) {
	svc := newTestSessionService()

	token, _ := svc.GenerateToken("not-a-uuid", time.Now())
	if _, err := svc.ValidateToken(token); err == nil {
		t.Error("expected error for a session id that is not a uuid")
	}
}

func TestTokenContainsClaims(t *testing.T) {
	svc := newTestSessionService()

	sess, token, _ := svc.Start()
	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.SessionID != sess.ID {
		t.Errorf("SessionID = %q", claims.SessionID)
	}
	if claims.ExpiresAt == nil {
		t.Error("ExpiresAt should be set")
	}
	if claims.IssuedAt == nil {
		t.Error("IssuedAt should be set")
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != svc.TTL() {
		t.Errorf("token lifetime = %v, want %v", got, svc.TTL())
	}
}

func TestTokenSigningMethod(t *testing.T) {
	svc := newTestSessionService()

	_, token, _ := svc.Start()
	parsed, _, err := jwt.NewParser().ParseUnverified(token, &SessionClaims{})
	if err != nil {
		t.Fatalf("ParseUnverified failed: %v", err)
	}
	if parsed.Method.Alg() != "HS256" {
		t.Errorf("alg = %s, want HS256", parsed.Method.Alg())
	}
}

func TestSessionHistoryLifecycle(t *testing.T) {
	svc := newTestSessionService()
	ctx := context.Background()

	sess, token, _ := svc.Start()
	history, err := sess.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("new session history has %d entries", len(history))
	}

	if err := sess.Append(ctx, models.HistoryEntry{"prediction": "Yes"}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	resumed, _ := svc.Resume(token)
	history, _ = resumed.History(ctx)
	if len(history) != 1 {
		t.Fatalf("resumed session sees %d entries, want 1", len(history))
	}

	if err := svc.End(ctx, resumed); err != nil {
		t.Fatalf("End failed: %v", err)
	}
	history, _ = sess.History(ctx)
	if len(history) != 0 {
		t.Errorf("ended session still has %d entries", len(history))
	}
}
