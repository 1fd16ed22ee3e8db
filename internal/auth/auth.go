// Package auth resolves bearer credentials to identities and mints tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"firenet/internal/cache"
	"firenet/internal/models"
	"firenet/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TokenIssuer   = "firenet-api"
	TokenAudience = "firenet-client"
)

// ErrUnauthenticated is returned for missing, malformed, expired or revoked credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

// Verifier resolves a bearer token to the identity of its holder.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Identity, error)
}

// JWTVerifier validates HS256 tokens and resolves their subject through the
// user store, caching the result in Redis when available.
type JWTVerifier struct {
	secret []byte
	users  repository.UserRepository
	rdb    *redis.Client
}

// NewJWTVerifier creates a verifier. rdb may be nil.
func NewJWTVerifier(secret string, users repository.UserRepository, rdb *redis.Client) *JWTVerifier {
	return &JWTVerifier{secret: []byte(secret), users: users, rdb: rdb}
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenString string) (*models.Identity, error) {
	if tokenString == "" {
		return nil, ErrUnauthenticated
	}

	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (any, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrUnauthenticated)
	}

	var ident models.Identity
	err = cache.Aside(ctx, v.rdb, cache.IdentityKey(sub), &ident, cache.IdentityTTL, func() error {
		user, err := v.users.GetByID(ctx, sub)
		if err != nil {
			return err
		}
		ident = *user.Identity()
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown subject", ErrUnauthenticated)
	}
	if err != nil {
		return nil, err
	}
	return &ident, nil
}

// Issuer mints signed bearer tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an issuer whose tokens expire after ttl.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a token whose subject is userID.
func (i *Issuer) Issue(userID, handle string) (string, error) {
	if len(i.secret) == 0 {
		return "", errors.New("JWT secret not configured")
	}

	now := i.now()
	claims := jwt.MapClaims{
		"sub":    userID,
		"handle": handle,
		"iss":    TokenIssuer,
		"aud":    TokenAudience,
		"exp":    now.Add(i.ttl).Unix(),
		"iat":    now.Unix(),
		"nbf":    now.Unix(),
		"jti":    uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}
