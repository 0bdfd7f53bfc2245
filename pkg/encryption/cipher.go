// Package encryption provides the AEAD sealing used for cookie jars at rest.
// Only the service holds the key; the database sees opaque blobs.
package encryption

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the required key length in bytes.
const KeySize = chacha20poly1305.KeySize

// Cipher seals and opens blobs with XChaCha20-Poly1305. The extended nonce
// makes random nonces safe even for long-lived, frequently rewritten rows.
type Cipher struct {
	aead      cipher.AEAD
	nonceSize int
}

// NewCipher creates a cipher from a 32-byte key.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size: got %d, want %d", len(key), KeySize)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create xchacha20poly1305 cipher: %w", err)
	}

	return &Cipher{aead: aead, nonceSize: aead.NonceSize()}, nil
}

// NewCipherFromSecret derives a 32-byte key from an arbitrary-length secret
// string and creates a cipher from it.
func NewCipherFromSecret(secret string) (*Cipher, error) {
	if secret == "" {
		return nil, fmt.Errorf("secret is required")
	}
	key := sha256.Sum256([]byte(secret))
	return NewCipher(key[:])
}

// Seal encrypts plaintext and returns ciphertext with the nonce prepended.
// Format: [nonce][ciphertext+tag]
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open decrypts a blob produced by Seal.
func (c *Cipher) Open(blob []byte) ([]byte, error) {
	if len(blob) < c.nonceSize {
		return nil, fmt.Errorf("ciphertext too short: got %d, need at least %d", len(blob), c.nonceSize)
	}

	nonce := blob[:c.nonceSize]
	encrypted := blob[c.nonceSize:]

	plaintext, err := c.aead.Open(nil, nonce, encrypted, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// NonceSize returns the nonce size in bytes.
func (c *Cipher) NonceSize() int {
	return c.nonceSize
}
