// Package user owns the public-facing profile entity: its durable Mongo
// collection and its Redis mirror keyed by user id.
package user

import "time"

// NotificationSettings toggles the notification categories a user receives.
// All default to on at signup.
type NotificationSettings struct {
	Messages  bool `bson:"messages" json:"messages"`
	Reactions bool `bson:"reactions" json:"reactions"`
	Comments  bool `bson:"comments" json:"comments"`
	Follows   bool `bson:"follows" json:"follows"`
}

// SocialLinks holds the optional profile URLs.
type SocialLinks struct {
	Facebook  string `bson:"facebook" json:"facebook"`
	Instagram string `bson:"instagram" json:"instagram"`
	Twitter   string `bson:"twitter" json:"twitter"`
	Youtube   string `bson:"youtube" json:"youtube"`
}

// Profile is the user entity derived from an auth record at signup. The
// password hash is mirrored here for cache convenience only; the auth record
// stays the source of truth for credentials.
type Profile struct {
	ID             string               `bson:"_id" json:"_id"`
	AuthID         string               `bson:"authId" json:"authId"`
	UID            string               `bson:"uId" json:"uId"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	AvatarColor    string               `bson:"avatarColor" json:"avatarColor"`
	ProfilePicture string               `bson:"profilePicture" json:"profilePicture"`
	Blocked        []string             `bson:"blocked" json:"blocked"`
	BlockedBy      []string             `bson:"blockedBy" json:"blockedBy"`
	FollowersCount int                  `bson:"followersCount" json:"followersCount"`
	FollowingCount int                  `bson:"followingCount" json:"followingCount"`
	PostsCount     int                  `bson:"postsCount" json:"postsCount"`
	Work           string               `bson:"work" json:"work"`
	Location       string               `bson:"location" json:"location"`
	School         string               `bson:"school" json:"school"`
	Quote          string               `bson:"quote" json:"quote"`
	BgImageVersion string               `bson:"bgImageVersion" json:"bgImageVersion"`
	BgImageID      string               `bson:"bgImageId" json:"bgImageId"`
	Notifications  NotificationSettings `bson:"notifications" json:"notifications"`
	Social         SocialLinks          `bson:"social" json:"social"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
}

// IsEmpty distinguishes the cache-miss sentinel from a populated profile.
func (p Profile) IsEmpty() bool {
	return p.ID == ""
}

// NewProfileParams carries the auth-record fields a fresh profile derives
// from.
type NewProfileParams struct {
	ID          string
	AuthID      string
	UID         string
	Username    string
	Email       string
	Password    string
	AvatarColor string
}

// NewProfile builds a profile with signup defaults: zero counters, empty
// free-text fields and every notification toggle on.
func NewProfile(params NewProfileParams) Profile {
	return Profile{
		ID:          params.ID,
		AuthID:      params.AuthID,
		UID:         params.UID,
		Username:    params.Username,
		Email:       params.Email,
		Password:    params.Password,
		AvatarColor: params.AvatarColor,
		Blocked:     []string{},
		BlockedBy:   []string{},
		Notifications: NotificationSettings{
			Messages:  true,
			Reactions: true,
			Comments:  true,
			Follows:   true,
		},
		CreatedAt: time.Now(),
	}
}
