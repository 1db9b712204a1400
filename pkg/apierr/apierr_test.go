package apierr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chatterhq/chatter/pkg/apierr"
)

func TestConstructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        *apierr.Error
		statusCode int
		status     string
	}{
		{"bad request", apierr.BadRequest("nope"), http.StatusBadRequest, "Bad Request"},
		{"unauthorized", apierr.Unauthorized("nope"), http.StatusUnauthorized, "Unauthorized"},
		{"not found", apierr.NotFound("nope"), http.StatusNotFound, "Not Found"},
		{"server", apierr.Server("nope"), http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, "nope", tt.err.Error())
			require.Equal(t, tt.statusCode, tt.err.StatusCode)
			require.Equal(t, tt.status, tt.err.Status())
		})
	}
}

func TestWithCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("downstream")
	err := apierr.Server("Server error. Try again.").WithCause(cause)

	require.Equal(t, "Server error. Try again.", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestFrom(t *testing.T) {
	t.Parallel()

	t.Run("passes through api errors", func(t *testing.T) {
		t.Parallel()
		orig := apierr.NotFound("Cannot find this username")
		require.Same(t, orig, apierr.From(orig))
	})

	t.Run("unwraps nested api errors", func(t *testing.T) {
		t.Parallel()
		orig := apierr.BadRequest("Passwords do not match")
		wrapped := errors.Join(errors.New("outer"), orig)
		require.Same(t, orig, apierr.From(wrapped))
	})

	t.Run("maps unknown errors to generic server failure", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("db down")
		got := apierr.From(cause)
		require.Equal(t, http.StatusInternalServerError, got.StatusCode)
		require.Equal(t, "Server error. Try again.", got.Message)
		require.ErrorIs(t, got, cause)
	})
}
