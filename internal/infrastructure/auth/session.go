package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kirillkom/doc-compliance/internal/core/domain"
	"github.com/kirillkom/doc-compliance/internal/core/ports"
)

const defaultRevocationCapacity = 10000

// Config describes the identity provider the service trusts.
// Secret must be at least 32 characters for HS256.
type Config struct {
	Secret   string
	Issuer   string
	LoginURL string
	TokenTTL time.Duration
}

// SessionProvider validates HS256 session tokens issued by the login service.
// Logout revocations live in memory until the token would have expired anyway.
type SessionProvider struct {
	secret   []byte
	issuer   string
	loginURL string
	ttl      time.Duration
	revoked  *expirable.LRU[string, struct{}]
	now      func() time.Time
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

var _ ports.SessionProvider = (*SessionProvider)(nil)

func NewSessionProvider(cfg Config) (*SessionProvider, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 characters")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionProvider{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		loginURL: cfg.LoginURL,
		ttl:      ttl,
		revoked:  expirable.NewLRU[string, struct{}](defaultRevocationCapacity, nil, ttl),
		now:      time.Now,
	}, nil
}

func (p *SessionProvider) Me(_ context.Context, token string) (*domain.User, error) {
	claims, err := p.parse(token)
	if err != nil {
		return nil, domain.WrapError(domain.ErrUnauthorized, "session me", err)
	}
	if claims.ID != "" && p.revoked.Contains(claims.ID) {
		return nil, domain.WrapError(domain.ErrUnauthorized, "session me", errors.New("session ended"))
	}
	return &domain.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		FullName: claims.Name,
	}, nil
}

// LoginURL points at the external login page with a return target appended.
func (p *SessionProvider) LoginURL(returnTo string) string {
	if p.loginURL == "" || strings.TrimSpace(returnTo) == "" {
		return p.loginURL
	}
	u, err := url.Parse(p.loginURL)
	if err != nil {
		return p.loginURL
	}
	q := u.Query()
	q.Set("return_to", returnTo)
	u.RawQuery = q.Encode()
	return u.String()
}

func (p *SessionProvider) Logout(_ context.Context, token string) error {
	claims, err := p.parse(token)
	if err != nil {
		return domain.WrapError(domain.ErrUnauthorized, "session logout", err)
	}
	if claims.ID != "" {
		p.revoked.Add(claims.ID, struct{}{})
	}
	return nil
}

// Issue signs a token for the given user. It backs local development logins and tests.
func (p *SessionProvider) Issue(user domain.User) (string, error) {
	now := p.now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    p.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Email: user.Email,
		Name:  user.FullName,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (p *SessionProvider) parse(tokenString string) (*sessionClaims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return nil, fmt.Errorf("token is empty")
	}

	opts := []jwt.ParserOption{jwt.WithTimeFunc(p.now), jwt.WithExpirationRequired()}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}
