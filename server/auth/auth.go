package auth

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

const (
	// Issuer is the issuer of the access token.
	Issuer = "nightbloom"
	// AccessTokenAudience is the audience of the access token.
	AccessTokenAudience = "user.access-token"
)

// ContextKey is the key type for values stored in the request context.
type ContextKey string

// UserIDContextKey carries the authenticated user's id.
const UserIDContextKey ContextKey = "user-id"

// Claims are the JWT claims carried by an access token.
type Claims struct {
	UserID int32 `json:"user_id"`
	jwt.RegisteredClaims
}

// Authenticator resolves caller identity from an Authorization header.
type Authenticator struct {
	secret string
}

// NewAuthenticator creates an authenticator with the signing secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// Authenticate parses a "Bearer <token>" header and returns the claims.
// Any failure yields a nil result; the caller decides how to surface it.
func (a *Authenticator) Authenticate(authHeader string) (*Claims, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, errors.New("missing bearer token")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, errors.New("missing bearer token")
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(a.secret), nil
	}, jwt.WithIssuer(Issuer), jwt.WithAudience(AccessTokenAudience))
	if err != nil {
		return nil, errors.Wrap(err, "invalid access token")
	}
	if !parsed.Valid {
		return nil, errors.New("invalid access token")
	}
	if claims.UserID <= 0 {
		return nil, errors.New("access token carries no user id")
	}
	return claims, nil
}

// GenerateAccessToken issues an access token for the user. Session issuance
// lives outside this subsystem; this is consumed by the auth flow and tests.
func GenerateAccessToken(userID int32, secret string, expiresAt time.Time) (string, error) {
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Audience:  jwt.ClaimStrings{AccessTokenAudience},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign access token")
	}
	return signed, nil
}

// SetUserIDInContext stores the authenticated user id in the context.
func SetUserIDInContext(ctx context.Context, userID int32) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated user id, or false when the
// request carries no valid session.
func UserIDFromContext(ctx context.Context) (int32, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int32)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}
