package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatterhq/chatter/modules/auth"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Parallel()

	digest, err := auth.HashPassword("pw123")
	require.NoError(t, err)
	require.NotEqual(t, "pw123", digest)

	t.Run("match", func(t *testing.T) {
		t.Parallel()
		require.True(t, auth.ComparePassword("pw123", digest))
	})

	t.Run("mismatch returns false, never errors", func(t *testing.T) {
		t.Parallel()
		require.False(t, auth.ComparePassword("wrong", digest))
		require.False(t, auth.ComparePassword("pw123", "not-a-bcrypt-digest"))
	})

	t.Run("same plaintext hashes differently", func(t *testing.T) {
		t.Parallel()
		other, err := auth.HashPassword("pw123")
		require.NoError(t, err)
		require.NotEqual(t, digest, other)
		require.True(t, auth.ComparePassword("pw123", other))
	})
}
