package encryption

import (
	"database/sql/driver"
	"fmt"
)

// Manager handles encryption and decryption of string payloads.
type Manager struct {
	cipher *Cipher
}

// NewManager creates a manager around an existing cipher.
func NewManager(cipher *Cipher) *Manager {
	return &Manager{cipher: cipher}
}

// NewManagerFromSecret derives the key from a secret string.
func NewManagerFromSecret(secret string) (*Manager, error) {
	c, err := NewCipherFromSecret(secret)
	if err != nil {
		return nil, err
	}
	return NewManager(c), nil
}

// EncryptString seals a string into an EncryptedString ready for storage.
func (m *Manager) EncryptString(plaintext string) (EncryptedString, error) {
	blob, err := m.cipher.Seal([]byte(plaintext))
	if err != nil {
		return EncryptedString{}, fmt.Errorf("encrypt: %w", err)
	}
	return EncryptedString{blob: blob, valid: true}, nil
}

// DecryptString opens a stored EncryptedString.
func (m *Manager) DecryptString(field EncryptedString) (string, error) {
	if !field.valid {
		return "", fmt.Errorf("cannot decrypt NULL field")
	}
	plaintext, err := m.cipher.Open(field.blob)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

// EncryptedString wraps an encrypted string column. It scans the raw blob
// from the database without decrypting; decryption happens only through a
// Manager holding the key.
type EncryptedString struct {
	blob  []byte
	valid bool // false if NULL
}

// NullEncryptedString returns a NULL field.
func NullEncryptedString() EncryptedString {
	return EncryptedString{}
}

// IsValid reports whether the field holds a non-NULL blob.
func (e EncryptedString) IsValid() bool { return e.valid }

// Bytes returns the raw encrypted blob.
func (e EncryptedString) Bytes() []byte { return e.blob }

// Scan implements sql.Scanner.
func (e *EncryptedString) Scan(src any) error {
	if src == nil {
		*e = EncryptedString{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		e.blob = make([]byte, len(v))
		copy(e.blob, v)
		e.valid = true
		return nil
	case string:
		e.blob = []byte(v)
		e.valid = true
		return nil
	default:
		return fmt.Errorf("cannot scan %T into EncryptedString", src)
	}
}

// Value implements driver.Valuer. Returns the encrypted blob, or nil if NULL.
func (e EncryptedString) Value() (driver.Value, error) {
	if !e.valid {
		return nil, nil
	}
	return e.blob, nil
}

// String never exposes plaintext or ciphertext contents.
func (e EncryptedString) String() string {
	if !e.valid {
		return "NULL"
	}
	return fmt.Sprintf("[encrypted: %d bytes]", len(e.blob))
}
