package security

import "time"

// testSigningSecret is for unit tests only. Do not use in production.
const testSigningSecret = "test-signing-secret-0123456789abcdef"

// NewTestTokenCodec returns a TokenCodec using the embedded test secret and a 12 day TTL.
// For unit tests only.
func NewTestTokenCodec() *TokenCodec {
	c, err := NewTokenCodec([]byte(testSigningSecret), 288*time.Hour)
	if err != nil {
		panic(err)
	}
	return c
}

// NewTestTokenCodecAt is NewTestTokenCodec with a fixed clock.
func NewTestTokenCodecAt(now func() time.Time) *TokenCodec {
	c := NewTestTokenCodec()
	c.now = now
	return c
}
