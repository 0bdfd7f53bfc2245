package filename

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Some-Video-Title", Sanitize("Some Video: Title?", 0))
	require.Equal(t, "a-b", Sanitize("a///---___b", 0))
	require.Equal(t, "hidden", Sanitize("...hidden...", 0))
	require.Equal(t, "", Sanitize("   ", 0))
	require.Equal(t, "abcd", Sanitize("abcdef", 4))
}

func TestForUser(t *testing.T) {
	t.Parallel()

	require.Equal(t, "alice_at_example.com", ForUser("Alice@Example.com"))
	require.Equal(t, "weird-name_at_host", ForUser("weird/name@host"))
}
