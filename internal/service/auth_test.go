package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/azerckid/C-Stay-tinder/internal/storage"
)

// --- in-memory repositories ---

type memUsersRepo struct {
	byEmail map[string]*storage.User
	byID    map[string]*storage.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{
		byEmail: make(map[string]*storage.User),
		byID:    make(map[string]*storage.User),
	}
}

func (m *memUsersRepo) CreateUser(_ context.Context, u *storage.User) error {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
	return nil
}

func (m *memUsersRepo) GetUserByEmail(_ context.Context, email string) (*storage.User, error) {
	return m.byEmail[email], nil
}

func (m *memUsersRepo) GetUserByID(_ context.Context, id string) (*storage.User, error) {
	return m.byID[id], nil
}

type memTokensRepo struct {
	tokens map[string]*storage.RefreshToken
}

func newMemTokensRepo() *memTokensRepo {
	return &memTokensRepo{tokens: make(map[string]*storage.RefreshToken)}
}

func (m *memTokensRepo) StoreRefreshToken(_ context.Context, tokenHash, userID string, expiresAt time.Time) error {
	m.tokens[tokenHash] = &storage.RefreshToken{
		TokenHash: tokenHash,
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return nil
}

func (m *memTokensRepo) GetRefreshToken(_ context.Context, tokenHash string) (*storage.RefreshToken, error) {
	return m.tokens[tokenHash], nil
}

func (m *memTokensRepo) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	if t, ok := m.tokens[tokenHash]; ok {
		t.Revoked = true
	}
	return nil
}

func (m *memTokensRepo) RevokeAllUserTokens(_ context.Context, userID string) error {
	for _, t := range m.tokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

func newTestAuthService() (*AuthService, *memUsersRepo, *memTokensRepo) {
	users := newMemUsersRepo()
	tokens := newMemTokensRepo()
	svc := NewAuthService(users, tokens, "test-secret", 15*time.Minute, 7*24*time.Hour)
	return svc, users, tokens
}

// --- tests ---

func TestAuth_RegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	pair, user, err := svc.Register(ctx, "traveler@example.com", "hunter2hunter2", "Traveler")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("register returned empty tokens")
	}
	if user.ID == "" {
		t.Error("register did not assign a user id")
	}
	if user.PasswordHash == "hunter2hunter2" {
		t.Error("password stored in plaintext")
	}

	loginPair, loginUser, err := svc.Login(ctx, "traveler@example.com", "hunter2hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loginUser.ID != user.ID {
		t.Errorf("login returned user %q, want %q", loginUser.ID, user.ID)
	}
	if loginPair.AccessToken == "" {
		t.Error("login returned empty access token")
	}
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "dup@example.com", "password-123", "First"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, _, err := svc.Register(ctx, "dup@example.com", "password-456", "Second")
	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestAuth_LoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "traveler@example.com", "correct-password", "T"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := svc.Login(ctx, "traveler@example.com", "wrong-password")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuth_LoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever1")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuth_ValidateAccessToken(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	pair, user, err := svc.Register(ctx, "traveler@example.com", "password-123", "T")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("claims user = %q, want %q", claims.UserID, user.ID)
	}
	if claims.Email != "traveler@example.com" {
		t.Errorf("claims email = %q, want the registered email", claims.Email)
	}

	if _, err := svc.ValidateAccessToken("not-a-jwt"); err == nil {
		t.Error("garbage token accepted")
	}
}

func TestAuth_RefreshRotatesToken(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	pair, _, err := svc.Register(ctx, "traveler@example.com", "password-123", "T")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	newPair, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if newPair.RefreshToken == pair.RefreshToken {
		t.Error("refresh token not rotated")
	}

	// The consumed token must be unusable.
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("reusing a rotated token: err = %v, want ErrTokenRevoked", err)
	}
}

func TestAuth_RefreshExpiredToken(t *testing.T) {
	users := newMemUsersRepo()
	tokens := newMemTokensRepo()
	// Refresh TTL in the past: tokens are born expired.
	svc := NewAuthService(users, tokens, "test-secret", 15*time.Minute, -time.Hour)

	pair, _, err := svc.Register(context.Background(), "traveler@example.com", "password-123", "T")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("err = %v, want ErrTokenExpired", err)
	}
}

func TestAuth_LogoutRevokesToken(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	pair, _, err := svc.Register(ctx, "traveler@example.com", "password-123", "T")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrTokenRevoked) {
		t.Errorf("refresh after logout: err = %v, want ErrTokenRevoked", err)
	}
}

func TestAuth_MissingSecret(t *testing.T) {
	svc := NewAuthService(newMemUsersRepo(), newMemTokensRepo(), "", time.Minute, time.Hour)
	if _, _, err := svc.Register(context.Background(), "a@b.c", "password-123", "A"); !errors.Is(err, ErrJWTSecretMissing) {
		t.Errorf("err = %v, want ErrJWTSecretMissing", err)
	}
}
