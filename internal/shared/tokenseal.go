package shared

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrTokenSeal indicates a sealed token could not be opened.
var ErrTokenSeal = errors.New("sealed token invalid")

// TokenSealer encrypts backend access tokens before they are written to Redis.
type TokenSealer struct {
	key [32]byte
}

// NewTokenSealer derives the sealing key from the session secret.
func NewTokenSealer(secret string) *TokenSealer {
	return &TokenSealer{key: sha256.Sum256([]byte("odyssey-token|" + secret))}
}

// Seal returns the base64 encoded nonce+box for token.
func (s *TokenSealer) Seal(token string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	box := secretbox.Seal(nonce[:], []byte(token), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal.
func (s *TokenSealer) Open(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return "", ErrTokenSeal
	}
	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrTokenSeal
	}
	return string(plain), nil
}
