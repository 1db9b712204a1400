// Package queue implements fire-and-forget background jobs over a task
// repository. The API path only ever enqueues; a worker claims tasks and
// dispatches them to registered handlers, retrying failures and parking
// exhausted tasks in a dead-letter collection.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultQueueName is used when no queue is specified.
const DefaultQueueName = "default"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Priority represents task priority (0-100, higher is more important).
type Priority int8

const (
	PriorityMin     Priority = 0
	PriorityLow     Priority = 25
	PriorityMedium  Priority = 50
	PriorityHigh    Priority = 75
	PriorityMax     Priority = 100
	PriorityDefault Priority = PriorityMedium
)

// Valid checks if the priority is within range.
func (p Priority) Valid() bool {
	return p >= PriorityMin && p <= PriorityMax
}

// Task is a single enqueued job.
type Task struct {
	ID          uuid.UUID  `bson:"_id" json:"id"`
	Queue       string     `bson:"queue" json:"queue"`
	TaskName    string     `bson:"task_name" json:"task_name"`
	Payload     []byte     `bson:"payload,omitempty" json:"payload,omitempty"`
	Status      TaskStatus `bson:"status" json:"status"`
	Priority    Priority   `bson:"priority" json:"priority"`
	RetryCount  int8       `bson:"retry_count" json:"retry_count"`
	MaxRetries  int8       `bson:"max_retries" json:"max_retries"`
	ScheduledAt time.Time  `bson:"scheduled_at" json:"scheduled_at"`
	LockedUntil *time.Time `bson:"locked_until,omitempty" json:"locked_until,omitempty"`
	LockedBy    *uuid.UUID `bson:"locked_by,omitempty" json:"locked_by,omitempty"`
	ProcessedAt *time.Time `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	Error       *string    `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
}

// DeadTask is a task that exhausted its retries, kept for manual inspection.
type DeadTask struct {
	ID         uuid.UUID `bson:"_id" json:"id"`
	TaskID     uuid.UUID `bson:"task_id" json:"task_id"`
	Queue      string    `bson:"queue" json:"queue"`
	TaskName   string    `bson:"task_name" json:"task_name"`
	Payload    []byte    `bson:"payload,omitempty" json:"payload,omitempty"`
	Priority   Priority  `bson:"priority" json:"priority"`
	Error      string    `bson:"error" json:"error"`
	RetryCount int8      `bson:"retry_count" json:"retry_count"`
	FailedAt   time.Time `bson:"failed_at" json:"failed_at"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}
