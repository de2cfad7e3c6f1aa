package jwt

import (
	"errors"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Config describes the identity provider's HS256 tokens.
type Config struct {
	Secret   string        `env:"SUPABASE_JWT_SECRET"`
	Audience string        `env:"JWT_AUDIENCE" envDefault:"authenticated"`
	Issuer   string        `env:"JWT_ISSUER"`
	Leeway   time.Duration `env:"JWT_LEEWAY" envDefault:"30s"`
}

// Claims are the claims FocusFlow reads from an access token.
// The subject is the user id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	gojwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrInvalidSubject
	}
	return id, nil
}

// Parser validates access tokens signed with a shared secret.
type Parser struct {
	secret []byte
	parser *gojwt.Parser
}

// NewParser creates a Parser from cfg.
func NewParser(cfg Config) (*Parser, error) {
	if cfg.Secret == "" {
		return nil, ErrSecretRequired
	}

	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithLeeway(cfg.Leeway),
		gojwt.WithExpirationRequired(),
	}
	if cfg.Audience != "" {
		opts = append(opts, gojwt.WithAudience(cfg.Audience))
	}
	if cfg.Issuer != "" {
		opts = append(opts, gojwt.WithIssuer(cfg.Issuer))
	}

	return &Parser{secret: []byte(cfg.Secret), parser: gojwt.NewParser(opts...)}, nil
}

// Parse verifies tokenString and returns its claims.
func (p *Parser) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := p.parser.ParseWithClaims(tokenString, claims, func(_ *gojwt.Token) (any, error) {
		return p.secret, nil
	})
	if err != nil {
		if errors.Is(err, gojwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	return claims, nil
}

// Issue signs a token for userID. It is meant for tests and local development;
// production tokens come from the identity provider.
func (p *Parser) Issue(userID uuid.UUID, email, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = gojwt.ClaimStrings{audience}
	}
	return gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(p.secret)
}
