package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mingle-social/mingle/internal/model"
	"github.com/mingle-social/mingle/internal/store"
)

type fakeUserStore struct {
	users map[string]model.User
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *model.User) (string, error) {
	return "", errors.New("not implemented")
}

func (f *fakeUserStore) GetUser(ctx context.Context, id string) (model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	return model.User{}, store.ErrNotFound
}

func (f *fakeUserStore) ListUsersByIDs(ctx context.Context, ids []string) ([]model.LikeUser, error) {
	return nil, nil
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService(&fakeUserStore{}, "secret", time.Hour)

	token, err := svc.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	userID, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}
}

func TestExpiredToken(t *testing.T) {
	svc := NewService(&fakeUserStore{}, "secret", -time.Minute)

	token, err := svc.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestMalformedAndForeignTokens(t *testing.T) {
	svc := NewService(&fakeUserStore{}, "secret", time.Hour)

	if _, err := svc.VerifyToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	// Token signed with a different secret must not verify
	other := NewService(&fakeUserStore{}, "other-secret", time.Hour)
	token, err := other.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	svc := NewService(&fakeUserStore{}, "secret", time.Hour)

	digest, err := svc.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "hunter2" {
		t.Fatal("digest must not equal the password")
	}
	if !svc.CheckPassword("hunter2", digest) {
		t.Fatal("correct password rejected")
	}
	if svc.CheckPassword("hunter3", digest) {
		t.Fatal("wrong password accepted")
	}
}

func TestAuthenticate(t *testing.T) {
	st := &fakeUserStore{users: map[string]model.User{
		"user-1": {ID: "user-1", FirstName: "Ada", LastName: "Lovelace"},
	}}
	svc := NewService(st, "secret", time.Hour)

	token, err := svc.IssueToken("user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	user, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != "user-1" {
		t.Fatalf("expected user-1, got %q", user.ID)
	}

	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for empty bearer, got %v", err)
	}

	// Valid token for a user that no longer exists
	gone, err := svc.IssueToken("user-2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), gone); !errors.Is(err, ErrUnknownUser) {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}
