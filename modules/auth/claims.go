package auth

import (
	"time"

	"github.com/chatterhq/chatter/pkg/jwt"
)

// Claims is the identity payload carried by every session token. UserID is
// the profile id, not the auth-record id.
type Claims struct {
	jwt.StandardClaims
	UserID      string `json:"userId"`
	UID         string `json:"uId"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
}

// NewClaims builds token claims for a user. Tokens expire after ttl; a zero
// ttl issues a non-expiring token.
func NewClaims(record Record, userID string, ttl time.Duration) Claims {
	now := time.Now()
	claims := Claims{
		UserID:      userID,
		UID:         record.UID,
		Email:       record.Email,
		Username:    record.Username,
		AvatarColor: record.AvatarColor,
	}
	claims.Subject = userID
	claims.IssuedAt = now.Unix()
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return claims
}
