package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, forged, expired, or carries no subject.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidSubject is returned by Issue for non-positive account ids.
	ErrInvalidSubject = errors.New("invalid token subject")
	// ErrEmptySecret is returned by NewTokenCodec when no signing secret is configured.
	ErrEmptySecret = errors.New("token signing secret is empty")
)

// SessionClaims holds the session token payload. The account id is serialized as "id".
type SessionClaims struct {
	jwt.RegisteredClaims
	AccountID int64 `json:"id"`
}

// TokenCodec issues and verifies HS256 session tokens signed with a process-wide secret.
// It never consults the revocation ledger.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenCodec returns a TokenCodec signing with secret. Tokens expire ttl after issuance.
func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}
	c := &TokenCodec{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now() }),
	)
	return c, nil
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token asserting accountID. exp is now + ttl; jti is random so two tokens
// issued within the same second are distinct strings.
func (c *TokenCodec) Issue(accountID int64) (string, error) {
	if accountID <= 0 {
		return "", ErrInvalidSubject
	}
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	now := c.now().UTC()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		AccountID: accountID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Verify checks signature, algorithm and expiry and returns the account id.
// A token whose expiry equals the current time is expired.
func (c *TokenCodec) Verify(tokenString string) (int64, error) {
	token, err := c.parser.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	})
	if err != nil {
		return 0, ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !c.now().Before(claims.ExpiresAt.Time) {
		return 0, ErrInvalidToken
	}
	if claims.AccountID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.AccountID, nil
}

// DecodeUnchecked parses claims WITHOUT verifying the signature or expiry. Callers may only
// use the result for a token that Verify (or the session authenticator) already accepted in
// the same request.
func (c *TokenCodec) DecodeUnchecked(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
