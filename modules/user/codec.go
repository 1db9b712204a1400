package user

import (
	"encoding/json"
	"strconv"
	"time"
)

// The cache is schemaless: every profile field is stored as a string and
// composite fields are JSON-encoded. This codec owns both directions so
// callers never see the raw string representations.

func encodeProfile(p Profile) map[string]string {
	return map[string]string{
		"_id":            p.ID,
		"authId":         p.AuthID,
		"uId":            p.UID,
		"username":       p.Username,
		"email":          p.Email,
		"password":       p.Password,
		"avatarColor":    p.AvatarColor,
		"profilePicture": p.ProfilePicture,
		"blocked":        encodeJSON(p.Blocked),
		"blockedBy":      encodeJSON(p.BlockedBy),
		"followersCount": strconv.Itoa(p.FollowersCount),
		"followingCount": strconv.Itoa(p.FollowingCount),
		"postsCount":     strconv.Itoa(p.PostsCount),
		"work":           p.Work,
		"location":       p.Location,
		"school":         p.School,
		"quote":          p.Quote,
		"bgImageVersion": p.BgImageVersion,
		"bgImageId":      p.BgImageID,
		"notifications":  encodeJSON(p.Notifications),
		"social":         encodeJSON(p.Social),
		"createdAt":      p.CreatedAt.Format(time.RFC3339Nano),
	}
}

// decodeProfile restores field types best-effort: counters parse to ints,
// composite fields JSON-decode, and anything undecodable keeps its raw
// string form or zero value rather than failing the whole read. Fields
// absent from the hash stay at their zero value.
func decodeProfile(fields map[string]string) Profile {
	p := Profile{
		ID:             fields["_id"],
		AuthID:         fields["authId"],
		UID:            fields["uId"],
		Username:       fields["username"],
		Email:          fields["email"],
		Password:       fields["password"],
		AvatarColor:    fields["avatarColor"],
		ProfilePicture: fields["profilePicture"],
		Work:           fields["work"],
		Location:       fields["location"],
		School:         fields["school"],
		Quote:          fields["quote"],
		BgImageVersion: fields["bgImageVersion"],
		BgImageID:      fields["bgImageId"],
	}

	p.FollowersCount, _ = strconv.Atoi(fields["followersCount"])
	p.FollowingCount, _ = strconv.Atoi(fields["followingCount"])
	p.PostsCount, _ = strconv.Atoi(fields["postsCount"])

	decodeJSON(fields["blocked"], &p.Blocked)
	decodeJSON(fields["blockedBy"], &p.BlockedBy)
	decodeJSON(fields["notifications"], &p.Notifications)
	decodeJSON(fields["social"], &p.Social)

	if t, err := time.Parse(time.RFC3339Nano, fields["createdAt"]); err == nil {
		p.CreatedAt = t
	}

	return p
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// decodeJSON is deliberately tolerant: on malformed input the target keeps
// its zero value.
func decodeJSON(s string, v any) {
	if s == "" {
		return
	}
	_ = json.Unmarshal([]byte(s), v)
}
