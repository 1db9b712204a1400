package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/chatterhq/chatter/pkg/sanitizer"
)

const authCollection = "auth"

var (
	// ErrNotFound reports that no record matches the lookup. For reset
	// tokens it covers both "no such token" and "expired".
	ErrNotFound = errors.New("auth: record not found")
	// ErrDuplicate reports a violated username/email uniqueness constraint.
	ErrDuplicate = errors.New("auth: duplicate username or email")
)

// Repository is the durable credential store.
type Repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(authCollection)}
}

// EnsureIndexes creates the unique compound index on (username, email).
// The orchestrator pre-checks uniqueness, but only this index closes the
// race between two concurrent signups that both pass the check.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}, {Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("auth: failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new record. A duplicate key maps to ErrDuplicate.
func (r *Repository) Create(ctx context.Context, record Record) error {
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("auth: failed to insert record: %w", err)
	}
	return nil
}

// FindByUsername looks a record up by its normalized username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (Record, error) {
	return r.findOne(ctx, bson.M{"username": NormalizeUsername(username)})
}

// FindByEmail looks a record up by its normalized email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Record, error) {
	return r.findOne(ctx, bson.M{"email": sanitizer.NormalizeEmail(email)})
}

// FindByUsernameOrEmail is the signup uniqueness pre-check. It returns the
// colliding record if either field is taken.
func (r *Repository) FindByUsernameOrEmail(ctx context.Context, username, email string) (Record, error) {
	return r.findOne(ctx, bson.M{"$or": []bson.M{
		{"username": NormalizeUsername(username)},
		{"email": sanitizer.NormalizeEmail(email)},
	}})
}

// FindByResetToken matches only a non-expired reset token.
func (r *Repository) FindByResetToken(ctx context.Context, token string) (Record, error) {
	return r.findOne(ctx, bson.M{
		"passwordResetToken":   token,
		"passwordResetExpires": bson.M{"$gt": time.Now()},
	})
}

// UpdateResetToken sets the reset token and its expiry on a record.
func (r *Repository) UpdateResetToken(ctx context.Context, id, token string, expiresAt time.Time) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{
			"passwordResetToken":   token,
			"passwordResetExpires": expiresAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("auth: failed to update reset token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash and clears the reset fields in
// the same update.
func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set":   bson.M{"password": passwordHash},
			"$unset": bson.M{"passwordResetToken": "", "passwordResetExpires": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("auth: failed to update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (Record, error) {
	var record Record
	if err := r.coll.FindOne(ctx, filter).Decode(&record); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("auth: failed to find record: %w", err)
	}
	return record, nil
}
