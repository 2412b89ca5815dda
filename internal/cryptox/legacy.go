package cryptox

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/dmitrijs2005/identitystore/internal/common"
)

const legacySaltBytes = 8

// LegacyHasher reads and writes the "<salt>$<hexdigest>" format: an 8-byte
// random salt, base64 encoded, and the MD5 digest of salt+password.
//
// It is fast and unsuitable for hostile environments. Passwords only uses it
// to verify old rows, which are then upgraded.
type LegacyHasher struct{}

func (LegacyHasher) Hash(raw string) (string, error) {
	salt := base64.StdEncoding.EncodeToString(common.GenerateRandByteArray(legacySaltBytes))
	return salt + "$" + legacyDigest(salt, raw), nil
}

func (LegacyHasher) Verify(encoded, raw string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 2 {
		return false, ErrMalformedHash
	}
	salt, expected := parts[0], parts[1]

	got := legacyDigest(salt, raw)
	return subtle.ConstantTimeCompare([]byte(got), []byte(expected)) == 1, nil
}

func legacyDigest(salt, raw string) string {
	sum := md5.Sum([]byte(salt + raw))
	return hex.EncodeToString(sum[:])
}
