package user

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

const usersCollection = "users"

var (
	// ErrNotFound reports that no profile matches the lookup.
	ErrNotFound = errors.New("user: profile not found")
	// ErrAlreadyExists reports an insert for an id that is already stored.
	ErrAlreadyExists = errors.New("user: profile already exists")
)

// Repository is the durable profile store.
type Repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection(usersCollection)}
}

// Insert persists a profile. The queue worker calls this when it drains the
// signup persistence job.
func (r *Repository) Insert(ctx context.Context, profile Profile) error {
	if _, err := r.coll.InsertOne(ctx, profile); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("user: failed to insert profile: %w", err)
	}
	return nil
}

// FindByID returns the profile with the given id.
func (r *Repository) FindByID(ctx context.Context, id string) (Profile, error) {
	var profile Profile
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("user: failed to find profile: %w", err)
	}
	return profile, nil
}

// FindByAuthID returns the profile linked to an auth record. Signin resolves
// profiles through this durable path rather than the cache.
func (r *Repository) FindByAuthID(ctx context.Context, authID string) (Profile, error) {
	var profile Profile
	if err := r.coll.FindOne(ctx, bson.M{"authId": authID}).Decode(&profile); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, fmt.Errorf("user: failed to find profile by auth id: %w", err)
	}
	return profile, nil
}
