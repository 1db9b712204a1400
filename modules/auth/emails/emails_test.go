package emails_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatterhq/chatter/modules/auth/emails"
)

func TestForgotPassword(t *testing.T) {
	t.Parallel()

	body, err := emails.ForgotPassword(emails.ForgotPasswordParams{
		Username:  "Bob",
		ResetLink: "https://app.example.com/reset-password?token=abc",
	})
	require.NoError(t, err)
	require.Contains(t, body, "Bob")
	require.Contains(t, body, "https://app.example.com/reset-password?token=abc")
}

func TestForgotPassword_EscapesHTML(t *testing.T) {
	t.Parallel()

	body, err := emails.ForgotPassword(emails.ForgotPasswordParams{
		Username:  "<script>alert(1)</script>",
		ResetLink: "https://app.example.com/reset",
	})
	require.NoError(t, err)
	require.NotContains(t, body, "<script>")
}

func TestResetConfirmation(t *testing.T) {
	t.Parallel()

	body, err := emails.ResetConfirmation(emails.ResetConfirmationParams{
		Username:  "Bob",
		Email:     "bob@x.com",
		Date:      "31/08/26",
		IPAddress: "203.0.113.7",
	})
	require.NoError(t, err)
	require.Contains(t, body, "bob@x.com")
	require.Contains(t, body, "31/08/26")
	require.Contains(t, body, "203.0.113.7")
}
