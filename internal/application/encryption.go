package application

import (
	"encoding/hex"
	"fmt"
	"os"

	"thirdcoast.systems/fetchtube/pkg/encryption"
)

// InitEncryptionManager initializes the cookie-jar encryption manager from
// environment configuration. ENCRYPTION_KEY must be a 64-character hex string
// (32 bytes).
func InitEncryptionManager() (*encryption.Manager, error) {
	keyHex := os.Getenv("ENCRYPTION_KEY")
	if keyHex == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY environment variable not set")
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid ENCRYPTION_KEY format (must be 64-char hex string): %w", err)
	}
	if len(key) != encryption.KeySize {
		return nil, fmt.Errorf("ENCRYPTION_KEY must be exactly %d bytes (%d hex chars), got %d bytes",
			encryption.KeySize, encryption.KeySize*2, len(key))
	}

	cipher, err := encryption.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	return encryption.NewManager(cipher), nil
}
