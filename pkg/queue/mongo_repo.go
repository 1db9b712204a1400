package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	tasksCollection = "tasks"
	dlqCollection   = "tasks_dlq"
)

// MongoRepository stores tasks in MongoDB. Claiming relies on
// findOneAndUpdate being atomic per document, so multiple workers can share
// one collection.
type MongoRepository struct {
	tasks *mongo.Collection
	dlq   *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		tasks: db.Collection(tasksCollection),
		dlq:   db.Collection(dlqCollection),
	}
}

// EnsureIndexes creates the indexes the claim query depends on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.tasks.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "queue", Value: 1},
			{Key: "priority", Value: -1},
			{Key: "scheduled_at", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("queue: failed to create task indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) CreateTask(ctx context.Context, task *Task) error {
	if _, err := r.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("queue: failed to insert task: %w", err)
	}
	return nil
}

func (r *MongoRepository) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	now := time.Now()
	filter := bson.M{
		"status":       TaskStatusPending,
		"queue":        bson.M{"$in": queues},
		"scheduled_at": bson.M{"$lte": now},
		"$or": []bson.M{
			{"locked_until": nil},
			{"locked_until": bson.M{"$lt": now}},
		},
	}
	update := bson.M{"$set": bson.M{
		"status":       TaskStatusProcessing,
		"locked_by":    workerID,
		"locked_until": now.Add(lockDuration),
	}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "priority", Value: -1}, {Key: "scheduled_at", Value: 1}}).
		SetReturnDocument(options.After)

	var task Task
	if err := r.tasks.FindOneAndUpdate(ctx, filter, update, opts).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoTask
		}
		return nil, fmt.Errorf("queue: failed to claim task: %w", err)
	}
	return &task, nil
}

func (r *MongoRepository) CompleteTask(ctx context.Context, taskID uuid.UUID) error {
	res, err := r.tasks.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{
			"$set":   bson.M{"status": TaskStatusCompleted, "processed_at": time.Now()},
			"$unset": bson.M{"locked_by": "", "locked_until": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("queue: failed to complete task: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrTaskNotFound
	}
	return nil
}

func (r *MongoRepository) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error {
	var task Task
	if err := r.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("queue: failed to load task: %w", err)
	}

	retryCount := task.RetryCount + 1
	_, err := r.tasks.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{
			"$set": bson.M{
				"status":      TaskStatusPending,
				"retry_count": retryCount,
				"error":       errorMsg,
				// Linear backoff keeps a poisoned task from hot-looping.
				"scheduled_at": time.Now().Add(time.Duration(retryCount) * time.Second),
			},
			"$unset": bson.M{"locked_by": "", "locked_until": ""},
		},
	)
	if err != nil {
		return fmt.Errorf("queue: failed to release task for retry: %w", err)
	}
	return nil
}

func (r *MongoRepository) MoveToDLQ(ctx context.Context, taskID uuid.UUID) error {
	var task Task
	if err := r.tasks.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("queue: failed to load task: %w", err)
	}

	errorMsg := ""
	if task.Error != nil {
		errorMsg = *task.Error
	}
	dead := DeadTask{
		ID:         uuid.New(),
		TaskID:     task.ID,
		Queue:      task.Queue,
		TaskName:   task.TaskName,
		Payload:    task.Payload,
		Priority:   task.Priority,
		Error:      errorMsg,
		RetryCount: task.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  task.CreatedAt,
	}

	if _, err := r.dlq.InsertOne(ctx, dead); err != nil {
		return fmt.Errorf("queue: failed to insert dead task: %w", err)
	}
	if _, err := r.tasks.DeleteOne(ctx, bson.M{"_id": taskID}); err != nil {
		return fmt.Errorf("queue: failed to delete dead task: %w", err)
	}
	return nil
}
