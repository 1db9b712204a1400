package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatterhq/chatter/modules/auth"
)

func TestNormalizeUsername(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "bob", "Bob"},
		{"uppercase", "BOB", "Bob"},
		{"mixed case", "bOb", "Bob"},
		{"already normalized", "Bob", "Bob"},
		{"multi word", "john doe", "John Doe"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, auth.NormalizeUsername(tt.input))
		})
	}
}

func TestNormalizeUsername_Idempotent(t *testing.T) {
	t.Parallel()
	once := auth.NormalizeUsername("aLiCe")
	require.Equal(t, once, auth.NormalizeUsername(once))
}

func TestGenerateUID(t *testing.T) {
	t.Parallel()

	uid := auth.GenerateUID(12)
	require.Len(t, uid, 12)
	for _, c := range uid {
		require.GreaterOrEqual(t, c, '0')
		require.LessOrEqual(t, c, '9')
	}
}

func TestGenerateResetToken(t *testing.T) {
	t.Parallel()

	token, err := auth.GenerateResetToken()
	require.NoError(t, err)
	require.Len(t, token, 40)

	other, err := auth.GenerateResetToken()
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}
