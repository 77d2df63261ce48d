package token

import (
	"context"
	"errors"
	"time"

	autherrors "go-leave/internal/auth/errors"
	"go-leave/internal/shared/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const BearerType = "Bearer"

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// UserID is the authenticated account id carried in the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

type Issued struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
}

type Manager interface {
	Issue(ctx context.Context, userID, role string) (Issued, error)
	Parse(ctx context.Context, raw string) (*Claims, error)
	Revoke(ctx context.Context, tokenID string) error
}

type Option func(*manager)

func WithClock(now func() time.Time) Option {
	return func(m *manager) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *manager) { m.newID = newID }
}

type manager struct {
	secret []byte
	ttl    time.Duration
	store  Store
	now    func() time.Time
	newID  func() string
}

// NewManager signs HS256 tokens that expire after ttl. Every issued
// token is recorded in store; a token whose record is gone is rejected even
// if its signature and expiry are still valid.
func NewManager(secret string, ttl time.Duration, store Store, opts ...Option) Manager {
	m := &manager{
		secret: []byte(secret),
		ttl:    ttl,
		store:  store,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *manager) Issue(ctx context.Context, userID, role string) (Issued, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)
	tokenID := m.newID()

	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		e := autherrors.ErrTokenGenerationFailed
		return Issued{}, apperror.Wrap(err, e.Code, e.Message, e.HTTPStatus)
	}

	if err := m.store.Save(ctx, tokenID, userID, m.ttl); err != nil {
		return Issued{}, err
	}

	return Issued{Token: signed, TokenID: tokenID, ExpiresAt: expiresAt}, nil
}

func (m *manager) Parse(ctx context.Context, raw string) (*Claims, error) {
	if raw == "" {
		return nil, autherrors.ErrTokenNotFound
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, autherrors.ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, autherrors.ErrTokenExpired
		}
		return nil, autherrors.ErrInvalidToken
	}
	if !parsed.Valid || claims.ID == "" || claims.Subject == "" {
		return nil, autherrors.ErrInvalidToken
	}

	userID, err := m.store.Lookup(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if userID != claims.Subject {
		return nil, autherrors.ErrTokenRevoked
	}
	return claims, nil
}

func (m *manager) Revoke(ctx context.Context, tokenID string) error {
	return m.store.Delete(ctx, tokenID)
}
