// Package kdf turns an operator passphrase into the session encryption key.
//
// The default derivation is Argon2id over a fixed salt. The salt is not secret
// and is the same for every installation: the key must be reproducible by any
// process that knows the passphrase, since nothing else is shared between
// servers. It slows down brute force of a weak passphrase but gives no
// protection against correlating deployments that reuse one.
package kdf

import (
	"errors"
	"fmt"

	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/scrypt"
)

// KeyBytes is the length of keys produced by the built-in derivations (AES-256).
const KeyBytes = 32

// fixedSalt must never change: every cookie already issued depends on it.
var fixedSalt = []byte("$2a$10$gWMxkkWB5V2FI4BuXswwPe")

var (
	ErrMissingSecret    = errors.New("secret required for cookie sessions")
	ErrInvalidKeyLength = errors.New("derived key must be 16, 24 or 32 bytes")
)

// DeriveFunc maps a secret to raw key bytes.
type DeriveFunc func(secret string) ([]byte, error)

type Argon2Params struct {
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"`
	Threads uint8  `json:"threads"`
}

type ScryptParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{Time: 1, Memory: 64 * 1024, Threads: 4}
}

func DefaultScryptParams() ScryptParams {
	return ScryptParams{N: 1 << 15, R: 8, P: 1}
}

// Argon2 returns an Argon2id derivation with the fixed salt.
func Argon2(p Argon2Params) DeriveFunc {
	return func(secret string) ([]byte, error) {
		if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
			return nil, fmt.Errorf("invalid argon2 parameters %+v", p)
		}
		return argon2.IDKey([]byte(secret), fixedSalt, p.Time, p.Memory, p.Threads, KeyBytes), nil
	}
}

// Scrypt returns an scrypt derivation with the fixed salt.
func Scrypt(p ScryptParams) DeriveFunc {
	return func(secret string) ([]byte, error) {
		return scrypt.Key([]byte(secret), fixedSalt, p.N, p.R, p.P, KeyBytes)
	}
}

// Derive computes the key for secret. With a nil fn the default Argon2id
// derivation is used; otherwise fn's result is taken as the key unchanged.
func Derive(secret string, fn DeriveFunc) ([]byte, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if fn == nil {
		fn = Argon2(DefaultArgon2Params())
	}
	key, err := fn(secret)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	if len(key) == 0 {
		return nil, ErrMissingSecret
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	}
	return nil, fmt.Errorf("%w: got %d", ErrInvalidKeyLength, len(key))
}

// Strength scores secret from 0 (trivial) to 4 (strong).
func Strength(secret string) int {
	return zxcvbn.PasswordStrength(secret, nil).Score
}
