package user

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/chatterhq/chatter/pkg/apierr"
	"github.com/chatterhq/chatter/pkg/logger"
)

const (
	userHashPrefix = "users:"
	userIndexKey   = "user"
)

// Cache mirrors profiles in Redis: one hash per user plus a sorted index
// mapping numeric uId to user id for ordered enumeration.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

func NewCache(client *redis.Client, log *slog.Logger) *Cache {
	if log == nil {
		log = slog.Default()
	}
	return &Cache{client: client, logger: log.With(logger.Component("user_cache"))}
}

// Save writes the sorted-index entry and then every profile field as a
// string. The per-field writes are independent operations, not a
// transaction: a crash mid-save can leave a partial hash, which is why Save
// is a full overwrite and safe to repeat. Any I/O error surfaces as a
// server error.
func (c *Cache) Save(ctx context.Context, userID, uid string, profile Profile) error {
	score, err := strconv.ParseFloat(uid, 64)
	if err != nil {
		return apierr.Server("Server error. Try again.").WithCause(fmt.Errorf("invalid uId %q: %w", uid, err))
	}

	if err := c.client.ZAdd(ctx, userIndexKey, redis.Z{Score: score, Member: userID}).Err(); err != nil {
		c.logger.ErrorContext(ctx, "failed to index user", logger.UserID(userID), logger.Error(err))
		return apierr.Server("Server error. Try again.").WithCause(err)
	}

	for field, value := range encodeProfile(profile) {
		if err := c.client.HSet(ctx, userHashPrefix+userID, field, value).Err(); err != nil {
			c.logger.ErrorContext(ctx, "failed to cache user field",
				logger.UserID(userID), slog.String("field", field), logger.Error(err))
			return apierr.Server("Server error. Try again.").WithCause(err)
		}
	}
	return nil
}

// Get reads the profile hash and restores field types. A missing key yields
// the empty-profile sentinel; callers must check IsEmpty to tell a miss from
// a hit.
func (c *Cache) Get(ctx context.Context, userID string) (Profile, error) {
	fields, err := c.client.HGetAll(ctx, userHashPrefix+userID).Result()
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to read cached user", logger.UserID(userID), logger.Error(err))
		return Profile{}, apierr.Server("Server error. Try again.").WithCause(err)
	}
	if len(fields) == 0 {
		return Profile{}, nil
	}
	return decodeProfile(fields), nil
}
