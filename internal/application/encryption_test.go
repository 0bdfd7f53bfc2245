package application

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitEncryptionManager(t *testing.T) {
	// 32-byte key => 64 hex chars
	t.Setenv("ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000")

	mgr, err := InitEncryptionManager()
	require.NoError(t, err)
	require.NotNil(t, mgr)
}

func TestInitEncryptionManager_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", "")
		_, err := InitEncryptionManager()
		require.Error(t, err)
	})

	t.Run("invalid hex", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", "not-hex")
		_, err := InitEncryptionManager()
		require.Error(t, err)
	})

	t.Run("wrong length", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", "deadbeef")
		_, err := InitEncryptionManager()
		require.Error(t, err)
	})
}
