package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/habits/pkg/idx"
)

// Default session lifetimes.
const (
	DefaultSessionTTL  = 24 * time.Hour
	DefaultRememberTTL = 30 * 24 * time.Hour
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrNoSubject   = errors.New("jwtx: missing subject")
	ErrShortSecret = errors.New("jwtx: signing secret must be at least 32 bytes")
)

// Claims carried by a session token. The subject is the user id.
type Claims struct {
	jwt.RegisteredClaims

	// Remember is set when the user asked for a long lived session.
	Remember bool `json:"remember,omitempty"`
}

// Verifier validates a session token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// SessionIssuer signs and verifies HS256 session tokens with a single shared
// secret. Tokens are not persisted; rotating the secret logs everyone out.
type SessionIssuer struct {
	secret      []byte
	issuer      string
	ttl         time.Duration
	rememberTTL time.Duration
	now         func() time.Time
}

// SessionOptions configures a SessionIssuer. Zero durations fall back to the
// package defaults.
type SessionOptions struct {
	Secret      []byte
	Issuer      string
	TTL         time.Duration
	RememberTTL time.Duration
	Now         func() time.Time
}

// NewSessionIssuer validates opts and returns an issuer.
func NewSessionIssuer(opts SessionOptions) (*SessionIssuer, error) {
	if len(opts.Secret) < 32 {
		return nil, ErrShortSecret
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultSessionTTL
	}
	if opts.RememberTTL <= 0 {
		opts.RememberTTL = DefaultRememberTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SessionIssuer{
		secret:      opts.Secret,
		issuer:      opts.Issuer,
		ttl:         opts.TTL,
		rememberTTL: opts.RememberTTL,
		now:         opts.Now,
	}, nil
}

// Issue returns a signed token for userID and its expiry.
func (s *SessionIssuer) Issue(userID string, remember bool) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, ErrNoSubject
	}

	now := s.now().UTC()
	ttl := s.ttl
	if remember {
		ttl = s.rememberTTL
	}
	exp := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        idx.New().String(),
		},
		Remember: remember,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// Verify parses token, checks the signature, issuer and expiry, and returns
// the claims.
func (s *SessionIssuer) Verify(token string) (Claims, error) {
	var claims Claims

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	_, err := jwt.NewParser(opts...).ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return Claims{}, ErrExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return Claims{}, ErrIssuer
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return Claims{}, ErrInvalidSig
	default:
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if claims.Subject == "" {
		return Claims{}, ErrNoSubject
	}
	return claims, nil
}
