package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var issued = time.Unix(1_700_000_000, 0)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "user-123"

	tok, err := GenerateToken(userID, "jti-1", secret, issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, secret, issued.Add(time.Minute))
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID, userID)
	}
	if claims.ID != "jti-1" {
		t.Fatalf("jti mismatch: got %q", claims.ID)
	}
	if !claims.ExpiresAt.Time.Equal(issued.Add(time.Hour)) {
		t.Fatalf("exp mismatch: got %v", claims.ExpiresAt.Time)
	}
}

func TestGenerateToken_DistinctJTI(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	a, err := GenerateToken("u", "one", secret, issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	b, err := GenerateToken("u", "two", secret, issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("tokens with different jti must differ")
	}
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken("u1", "j", secret, issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, secret, issued.Add(2*time.Hour))
	if err != common.ErrTokenExpired {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", "j", []byte("right-secret"), issued, issued.Add(time.Hour))
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"), issued)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for invalid signature, got %v", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: "u"}).SignedString(secret)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ParseToken(tok, secret, issued); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestGetUserIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not.a.jwt", []byte("k"), issued)
	if err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
