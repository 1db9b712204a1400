package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testProfile() Profile {
	p := NewProfile(NewProfileParams{
		ID:          "user-1",
		AuthID:      "auth-1",
		UID:         "123456789012",
		Username:    "Bob",
		Email:       "bob@example.com",
		Password:    "$2a$10$hash",
		AvatarColor: "#ff0000",
	})
	p.ProfilePicture = "https://cdn.example.com/v3/user-1"
	p.FollowersCount = 7
	p.Blocked = []string{"user-9"}
	p.Social.Twitter = "https://twitter.com/bob"
	p.CreatedAt = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return p
}

func TestProfileCodecRoundTrip(t *testing.T) {
	t.Parallel()

	p := testProfile()
	got := decodeProfile(encodeProfile(p))

	require.Equal(t, p.ID, got.ID)
	require.Equal(t, p.AuthID, got.AuthID)
	require.Equal(t, p.UID, got.UID)
	require.Equal(t, p.Username, got.Username)
	require.Equal(t, p.ProfilePicture, got.ProfilePicture)
	require.Equal(t, p.FollowersCount, got.FollowersCount)
	require.Equal(t, p.Blocked, got.Blocked)
	require.Equal(t, p.Notifications, got.Notifications)
	require.Equal(t, p.Social, got.Social)
	require.True(t, p.CreatedAt.Equal(got.CreatedAt))
}

func TestDecodeProfile_Tolerant(t *testing.T) {
	t.Parallel()

	t.Run("malformed counters fall back to zero", func(t *testing.T) {
		t.Parallel()
		got := decodeProfile(map[string]string{
			"_id":            "user-1",
			"followersCount": "not-a-number",
		})
		require.Equal(t, "user-1", got.ID)
		require.Zero(t, got.FollowersCount)
	})

	t.Run("malformed json keeps zero value", func(t *testing.T) {
		t.Parallel()
		got := decodeProfile(map[string]string{
			"_id":           "user-1",
			"notifications": "{broken",
			"social":        "[not-an-object]",
		})
		require.Equal(t, NotificationSettings{}, got.Notifications)
		require.Equal(t, SocialLinks{}, got.Social)
	})

	t.Run("missing fields stay zero", func(t *testing.T) {
		t.Parallel()
		got := decodeProfile(map[string]string{"_id": "user-1"})
		require.Equal(t, "user-1", got.ID)
		require.False(t, got.IsEmpty())
		require.Empty(t, got.Username)
		require.True(t, got.CreatedAt.IsZero())
	})
}

func TestProfileIsEmpty(t *testing.T) {
	t.Parallel()
	require.True(t, Profile{}.IsEmpty())
	require.False(t, testProfile().IsEmpty())
}

func TestNewProfileDefaults(t *testing.T) {
	t.Parallel()

	p := NewProfile(NewProfileParams{ID: "user-1", AuthID: "auth-1", UID: "42"})
	require.NotNil(t, p.Blocked)
	require.NotNil(t, p.BlockedBy)
	require.Empty(t, p.Blocked)
	require.Zero(t, p.FollowersCount)
	require.True(t, p.Notifications.Messages)
	require.True(t, p.Notifications.Reactions)
	require.True(t, p.Notifications.Comments)
	require.True(t, p.Notifications.Follows)
	require.Equal(t, SocialLinks{}, p.Social)
	require.False(t, p.CreatedAt.IsZero())
}
