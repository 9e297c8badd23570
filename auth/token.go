package auth

import (
	"chat-live/domain"
	stderrors "errors"
	"fmt"
	"time"

	"chat-live/errors"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed, time-bound identity tokens.
// Stateless: the only state is the signing key and the expiry window.
type TokenCodec struct {
	key      []byte
	duration time.Duration
}

// NewTokenCodec creates a codec signing with the given secret.
// Tokens expire after the given duration.
func NewTokenCodec(secret string, duration time.Duration) *TokenCodec {
	return &TokenCodec{key: []byte(secret), duration: duration}
}

// Issue creates a signed JWT encoding the identity.
func (c *TokenCodec) Issue(identity domain.Identity) (string, error) {
	expirationTime := time.Now().Add(c.duration)

	claims := &CustomClaims{
		UserID:   identity.UserID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chat-live",
		},
	}

	// HS256 (HMAC with SHA256), signed with the server secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.key)
}

// Verify parses and validates the signature and expiration of a JWT string.
// An expired or badly signed token never yields an Identity.
func (c *TokenCodec) Verify(tokenString string) (domain.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.key, nil
	})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrAuthentication, err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return domain.Identity{}, fmt.Errorf("%w: %v", errors.ErrAuthentication, jwt.ErrSignatureInvalid)
	}

	return domain.Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

// IsAuthError reports whether err comes from token verification.
func IsAuthError(err error) bool {
	return stderrors.Is(err, errors.ErrAuthentication)
}
