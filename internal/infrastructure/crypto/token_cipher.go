// Package crypto seals OAuth tokens before they are stored.
package crypto

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyInfo = "nexus source connection tokens v1"

var (
	ErrEmptyKey      = errors.New("encryption key is empty")
	ErrShortKey      = errors.New("encryption key must be at least 32 bytes")
	ErrMalformed     = errors.New("ciphertext is malformed")
	ErrDecryptFailed = errors.New("ciphertext could not be authenticated")
)

// TokenCipher encrypts with XChaCha20-Poly1305 under a key derived from the
// configured secret with HKDF-SHA256. Output is nonce || ciphertext.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher derives the sealing key from secret. A base64 secret is
// decoded first; otherwise the raw bytes are used.
func NewTokenCipher(secret string) (*TokenCipher, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, ErrEmptyKey
	}
	material := []byte(secret)
	if decoded, err := base64.StdEncoding.DecodeString(secret); err == nil && len(decoded) >= chacha20poly1305.KeySize {
		material = decoded
	}
	if len(material) < chacha20poly1305.KeySize {
		return nil, ErrShortKey
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, material, nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return &TokenCipher{aead: aead}, nil
}

// Encrypt seals plaintext. additionalData binds the ciphertext to its owner
// and must be passed again on Decrypt. Empty plaintext encrypts to nil.
func (c *TokenCipher) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, nil
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, additionalData), nil
}

// Decrypt opens a value produced by Encrypt
func (c *TokenCipher) Decrypt(sealed, additionalData []byte) ([]byte, error) {
	if len(sealed) == 0 {
		return nil, nil
	}
	ns := c.aead.NonceSize()
	if len(sealed) < ns+c.aead.Overhead() {
		return nil, ErrMalformed
	}
	plaintext, err := c.aead.Open(nil, sealed[:ns], sealed[ns:], additionalData)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
