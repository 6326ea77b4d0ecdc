package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidfriends/admin/internal/models"
)

var adminUser = models.User{ID: "user-1", Role: models.RoleAdmin}

func TestManagerIssueVerifyAndRefresh(t *testing.T) {
	store := NewInMemorySessionStore()
	manager := NewManager("secret", time.Minute, time.Hour, store)

	tokens, err := manager.Issue(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected non-empty tokens: %+v", tokens)
	}

	claims, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user-1" || !claims.IsAdmin() {
		t.Fatalf("unexpected claims %+v", claims)
	}

	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Fatal("expected new refresh token")
	}
	if store.Has(tokens.RefreshToken) {
		t.Fatal("old token should have been removed")
	}

	claims, err = manager.Verify(refreshed.AccessToken)
	if err != nil {
		t.Fatalf("verify refreshed: %v", err)
	}
	if !claims.IsAdmin() {
		t.Fatal("expected role to survive refresh")
	}
}

type userLookupStub map[string]models.User

func (u userLookupStub) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := u[id]
	if !ok {
		return models.User{}, errUnknownUser
	}
	return user, nil
}

var errUnknownUser = errors.New("unknown user")

func TestManagerRefreshReloadsUser(t *testing.T) {
	store := NewInMemorySessionStore()
	users := userLookupStub{adminUser.ID: adminUser}
	manager := NewManager("secret", time.Minute, time.Hour, store).WithUserLookup(users)

	tokens, err := manager.Issue(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	users[adminUser.ID] = models.User{ID: adminUser.ID, Role: models.RoleUser}
	refreshed, err := manager.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := manager.Verify(refreshed.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.IsAdmin() {
		t.Fatal("expected demotion to apply on refresh")
	}

	delete(users, adminUser.ID)
	if _, err := manager.Refresh(context.Background(), refreshed.RefreshToken); !errors.Is(err, errUnknownUser) {
		t.Fatalf("expected lookup error for deleted user got %v", err)
	}
	if store.Has(refreshed.RefreshToken) {
		t.Fatal("expected session of deleted user to be removed")
	}
}

func TestManagerVerifyRejectsBadTokens(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())
	other := NewManager("other-secret", time.Minute, time.Hour, NewInMemorySessionStore())

	foreign, err := other.Issue(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	for _, token := range []string{"", "not-a-jwt", foreign.AccessToken} {
		if _, err := manager.Verify(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q got %v", token, err)
		}
	}
}

func TestManagerVerifyRejectsExpiredToken(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())
	issuedAt := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }

	tokens, err := manager.Issue(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := manager.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected got %v", err)
	}
}

func TestManagerIssueValidation(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())
	if _, err := manager.Issue(context.Background(), models.User{}); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestManagerRefreshFailures(t *testing.T) {
	manager := NewManager("secret", time.Minute, time.Hour, NewInMemorySessionStore())
	start := time.Now().UTC()
	manager.now = func() time.Time { return start }

	if _, err := manager.Refresh(context.Background(), ""); err != ErrSessionNotFound {
		t.Fatalf("expected session not found got %v", err)
	}

	tokens, err := manager.Issue(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrRefreshTokenExpired {
		t.Fatalf("expected refresh expired got %v", err)
	}

	manager.now = func() time.Time { return start }
	tokens, err = manager.Issue(context.Background(), adminUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	manager.Revoke(context.Background(), tokens.RefreshToken)
	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); err != ErrSessionNotFound {
		t.Fatalf("expected session not found after revoke got %v", err)
	}
}

func TestInMemorySessionStorePrunesExpired(t *testing.T) {
	store := NewInMemorySessionStore()
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	_ = store.Save(ctx, Session{RefreshToken: "old", UserID: "u1", ExpiresAt: now.Add(time.Minute)})

	now = now.Add(time.Hour)
	_ = store.Save(ctx, Session{RefreshToken: "new", UserID: "u1", ExpiresAt: now.Add(time.Minute)})

	if store.Has("old") {
		t.Fatal("expected expired session to be pruned")
	}
	if !store.Has("new") {
		t.Fatal("expected fresh session to be kept")
	}
}
