package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0 B", Bytes(-1))
	require.Equal(t, "12 B", Bytes(12))
	require.Equal(t, "4.2 MB", Bytes(4200000))
}

func TestParseBytes(t *testing.T) {
	t.Parallel()

	n, err := ParseBytes("500MB")
	require.NoError(t, err)
	require.Equal(t, int64(500000000), n)

	_, err = ParseBytes("lots")
	require.Error(t, err)
}

func TestDuration(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0:00", Duration(-5))
	require.Equal(t, "0:42", Duration(42))
	require.Equal(t, "3:05", Duration(185))
	require.Equal(t, "1:02:05", Duration(3725))
}

func TestJobDuration(t *testing.T) {
	t.Parallel()

	require.Equal(t, "3.2 seconds", JobDuration(3200*time.Millisecond))
	require.Equal(t, "1.5 minutes", JobDuration(90*time.Second))
	require.Equal(t, "2.0 hours", JobDuration(2*time.Hour))
}
