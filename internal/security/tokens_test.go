package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenCodec_IssueAndVerify(t *testing.T) {
	c := NewTestTokenCodec()
	token, err := c.Issue(42)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if token == "" {
		t.Fatal("token empty")
	}
	id, err := c.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id != 42 {
		t.Errorf("Verify: got account id %d, want 42", id)
	}
}

func TestTokenCodec_DecodeUncheckedRecoversSubject(t *testing.T) {
	c := NewTestTokenCodec()
	for _, id := range []int64{1, 7, 123456789, 1 << 40} {
		token, err := c.Issue(id)
		if err != nil {
			t.Fatalf("Issue(%d): %v", id, err)
		}
		claims, err := c.DecodeUnchecked(token)
		if err != nil {
			t.Fatalf("DecodeUnchecked: %v", err)
		}
		if claims.AccountID != id {
			t.Errorf("DecodeUnchecked: got %d, want %d", claims.AccountID, id)
		}
		if claims.ExpiresAt == nil || claims.IssuedAt == nil {
			t.Fatal("DecodeUnchecked: missing iat/exp")
		}
		if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 288*time.Hour {
			t.Errorf("exp - iat = %v, want 288h", got)
		}
	}
}

func TestTokenCodec_IssueDistinctTokens(t *testing.T) {
	c := NewTestTokenCodec()
	a, _ := c.Issue(5)
	b, _ := c.Issue(5)
	if a == b {
		t.Error("two tokens for the same subject should differ")
	}
}

func TestTokenCodec_IssueInvalidSubject(t *testing.T) {
	c := NewTestTokenCodec()
	for _, id := range []int64{0, -1} {
		if _, err := c.Issue(id); err != ErrInvalidSubject {
			t.Errorf("Issue(%d): want ErrInvalidSubject, got %v", id, err)
		}
	}
}

func TestTokenCodec_VerifyRejectsForgeries(t *testing.T) {
	c := NewTestTokenCodec()
	other, err := NewTokenCodec([]byte("another-secret-another-secret-xx"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec: %v", err)
	}
	foreign, _ := other.Issue(42)

	genuine, _ := c.Issue(42)
	parts := strings.Split(genuine, ".")
	tamperedPayload, _ := other.Issue(99)
	tampered := parts[0] + "." + strings.Split(tamperedPayload, ".")[1] + "." + parts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		AccountID:        42,
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		AccountID:        42,
	})
	wrongAlg, _ := hs512.SignedString([]byte(testSigningSecret))

	cases := map[string]string{
		"empty":         "",
		"garbage":       "not-a-token",
		"three dots":    "a.b.c",
		"other secret":  foreign,
		"tampered":      tampered,
		"alg none":      unsigned,
		"wrong alg":     wrongAlg,
		"truncated sig": genuine[:len(genuine)-4],
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := c.Verify(token); err != ErrInvalidToken {
				t.Errorf("Verify: want ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestTokenCodec_VerifyRequiresExpiryAndSubject(t *testing.T) {
	c := NewTestTokenCodec()

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{AccountID: 1}).SignedString([]byte(testSigningSecret))
	if _, err := c.Verify(noExp); err != ErrInvalidToken {
		t.Errorf("token without exp: want ErrInvalidToken, got %v", err)
	}

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSigningSecret))
	if _, err := c.Verify(noSubject); err != ErrInvalidToken {
		t.Errorf("token without id: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	c := NewTestTokenCodecAt(func() time.Time { return clock })

	token, err := c.Issue(9)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	exp := issuedAt.Add(c.TTL())

	clock = exp.Add(-time.Second)
	if _, err := c.Verify(token); err != nil {
		t.Fatalf("one second before expiry: %v", err)
	}

	clock = exp
	if _, err := c.Verify(token); err != ErrInvalidToken {
		t.Errorf("at expiry: want ErrInvalidToken, got %v", err)
	}

	clock = exp.Add(time.Hour)
	if _, err := c.Verify(token); err != ErrInvalidToken {
		t.Errorf("after expiry: want ErrInvalidToken, got %v", err)
	}
}

func TestTokenCodec_DecodeUncheckedMalformed(t *testing.T) {
	c := NewTestTokenCodec()
	if _, err := c.DecodeUnchecked("garbage"); err != ErrInvalidToken {
		t.Errorf("DecodeUnchecked garbage: want ErrInvalidToken, got %v", err)
	}
}

func TestNewTokenCodec_Validation(t *testing.T) {
	if _, err := NewTokenCodec(nil, time.Hour); err != ErrEmptySecret {
		t.Errorf("empty secret: want ErrEmptySecret, got %v", err)
	}
	if _, err := NewTokenCodec([]byte("s"), 0); err == nil {
		t.Error("zero ttl should fail")
	}
}
