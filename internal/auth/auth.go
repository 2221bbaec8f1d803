package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mingle-social/mingle/internal/model"
	"github.com/mingle-social/mingle/internal/store"
)

var (
	// ErrUnauthenticated means no usable bearer token was presented.
	ErrUnauthenticated = errors.New("not authorized")
	// ErrInvalidToken covers bad signatures, malformed claims, and expiry.
	ErrInvalidToken = errors.New("token invalid")
	// ErrUnknownUser means the token's subject no longer exists.
	ErrUnknownUser = errors.New("user not found")
)

type Claims struct {
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens and authenticates bearer
// tokens against the user store. It holds no per-request state.
type Service struct {
	store    store.UserStore
	secret   []byte
	tokenTTL time.Duration
}

func NewService(st store.UserStore, secret string, tokenTTL time.Duration) *Service {
	return &Service{store: st, secret: []byte(secret), tokenTTL: tokenTTL}
}

func (s *Service) HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

func (s *Service) CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// IssueToken signs a session token for userID expiring tokenTTL from now.
func (s *Service) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken returns the user id embedded in a valid token.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// Authenticate verifies a bearer token and loads the acting user. The
// returned user carries its digest; callers must rely on the model's
// serialization rules to keep it out of responses.
func (s *Service) Authenticate(ctx context.Context, bearer string) (model.User, error) {
	if bearer == "" {
		return model.User{}, ErrUnauthenticated
	}
	userID, err := s.VerifyToken(bearer)
	if err != nil {
		return model.User{}, err
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
			return model.User{}, ErrUnknownUser
		}
		return model.User{}, err
	}
	return user, nil
}
