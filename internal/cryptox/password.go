// Package cryptox implements password hashing for stored user credentials.
//
// New hashes are Argon2id, encoded as
//
//	$argon2id$v=19$m=<kib>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
//
// Hashes written by the previous generation of the store use the form
// "<salt>$<hexdigest>" and are still accepted by Passwords.Verify.
package cryptox

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/identitystore/internal/common"
	"golang.org/x/crypto/argon2"
)

// ErrMalformedHash is returned when a stored password value cannot be parsed.
var ErrMalformedHash = errors.New("malformed password hash")

const (
	argon2idPrefix  = "$argon2id$"
	argon2idVersion = argon2.Version
)

// PasswordHasher turns a raw password into a self-describing encoded string
// and checks raw passwords against it. Verify returns (false, nil) on a
// mismatch and an error only when encoded is unusable.
type PasswordHasher interface {
	Hash(raw string) (string, error)
	Verify(encoded, raw string) (bool, error)
}

// Argon2idParams controls the Argon2id cost. MemoryKiB is in KiB.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func DefaultArgon2idParams() Argon2idParams {
	return Argon2idParams{
		MemoryKiB:   64 * 1024,
		Iterations:  3,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

type Argon2idHasher struct {
	params Argon2idParams
}

func NewArgon2idHasher(p Argon2idParams) *Argon2idHasher {
	return &Argon2idHasher{params: p}
}

func (h *Argon2idHasher) Hash(raw string) (string, error) {
	salt := common.GenerateRandByteArray(int(h.params.SaltLength))

	key := argon2.IDKey([]byte(raw), salt,
		h.params.Iterations, h.params.MemoryKiB, h.params.Parallelism, h.params.KeyLength)

	b64 := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2idVersion,
		h.params.MemoryKiB, h.params.Iterations, h.params.Parallelism,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

func (h *Argon2idHasher) Verify(encoded, raw string) (bool, error) {
	params, salt, expected, err := decodeArgon2id(encoded)
	if err != nil {
		return false, err
	}

	// Refuse stored parameters far above ours; a tampered row must not be
	// able to make a login allocate gigabytes.
	if params.MemoryKiB > h.params.MemoryKiB*2 || params.Iterations > h.params.Iterations*2 {
		return false, ErrMalformedHash
	}

	key := argon2.IDKey([]byte(raw), salt,
		params.Iterations, params.MemoryKiB, params.Parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// sameParams reports whether encoded was produced with h's cost settings.
func (h *Argon2idHasher) sameParams(encoded string) bool {
	params, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false
	}
	return params.MemoryKiB == h.params.MemoryKiB &&
		params.Iterations == h.params.Iterations &&
		params.Parallelism == h.params.Parallelism &&
		uint32(len(salt)) == h.params.SaltLength &&
		uint32(len(key)) == h.params.KeyLength
}

func decodeArgon2id(encoded string) (Argon2idParams, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2idVersion) {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}

	var mem, iter, par uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iter, &par); err != nil {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}
	if mem == 0 || iter == 0 || par == 0 || par > 255 {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}

	b64 := base64.RawStdEncoding
	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Argon2idParams{}, nil, nil, ErrMalformedHash
	}

	return Argon2idParams{
		MemoryKiB:   mem,
		Iterations:  iter,
		Parallelism: uint8(par),
		SaltLength:  uint32(len(salt)),
		KeyLength:   uint32(len(key)),
	}, salt, key, nil
}

// Passwords is the hasher the store uses: it writes Argon2id and reads both
// Argon2id and legacy values.
type Passwords struct {
	current *Argon2idHasher
	legacy  LegacyHasher
}

func NewPasswords(p Argon2idParams) *Passwords {
	return &Passwords{current: NewArgon2idHasher(p)}
}

func (p *Passwords) Hash(raw string) (string, error) {
	return p.current.Hash(raw)
}

func (p *Passwords) Verify(encoded, raw string) (bool, error) {
	if strings.HasPrefix(encoded, argon2idPrefix) {
		return p.current.Verify(encoded, raw)
	}
	return p.legacy.Verify(encoded, raw)
}

// NeedsRehash reports whether encoded should be replaced by a fresh Hash
// after a successful Verify: legacy values and Argon2id values with
// different cost settings.
func (p *Passwords) NeedsRehash(encoded string) bool {
	if !strings.HasPrefix(encoded, argon2idPrefix) {
		return true
	}
	return !p.current.sameParams(encoded)
}
