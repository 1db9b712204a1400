// Package auth implements the authentication core: credential records,
// password hashing, token issuance, the signup/signin/password-recovery
// orchestration and the route guards.
package auth

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// Record is the durable credential entity, the source of truth for a user's
// login identity. The username/email pair is unique across all records.
type Record struct {
	ID                   string     `bson:"_id" json:"_id"`
	UID                  string     `bson:"uId" json:"uId"`
	Username             string     `bson:"username" json:"username"`
	Email                string     `bson:"email" json:"email"`
	Password             string     `bson:"password" json:"-"`
	AvatarColor          string     `bson:"avatarColor" json:"avatarColor"`
	PasswordResetToken   string     `bson:"passwordResetToken,omitempty" json:"-"`
	PasswordResetExpires *time.Time `bson:"passwordResetExpires,omitempty" json:"-"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
}

// NormalizeUsername lowercases the name and capitalizes the first letter of
// each word. Both storage and lookup go through this, which is what makes
// username matching case-insensitive.
func NormalizeUsername(username string) string {
	return titleCaser.String(strings.ToLower(username))
}

// GenerateUID returns a random numeric string of the given length, used as
// the short sortable user identifier.
func GenerateUID(length int) string {
	var b strings.Builder
	b.Grow(length)
	for range length {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// GenerateResetToken returns a hex-encoded random token for password
// recovery links.
func GenerateResetToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := crand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
