package models

import (
	"fmt"
	"time"
)

// TokenLifetime is fixed at issuance; stored expiry is never recomputed.
const TokenLifetime = 7 * 24 * time.Hour

// Token is an opaque bearer credential owned by one user. CTime and ETime
// are epoch seconds.
type Token struct {
	ID     int64
	UserID string
	Token  string
	CTime  int64
	ETime  int64
}

// NewToken stamps creation and expiry from now.
func NewToken(userID, value string, now time.Time) *Token {
	c := now.Unix()
	return &Token{
		UserID: userID,
		Token:  value,
		CTime:  c,
		ETime:  c + int64(TokenLifetime/time.Second),
	}
}

// Expired compares the stored expiry with the caller's clock.
func (t *Token) Expired(now time.Time) bool {
	return now.Unix() >= t.ETime
}

func (t *Token) ExpiresAt() time.Time {
	return time.Unix(t.ETime, 0)
}

func (t *Token) String() string {
	return fmt.Sprintf("Token: <%s>", t.Token)
}
