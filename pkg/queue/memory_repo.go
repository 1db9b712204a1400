package queue

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-memory task store for tests and development.
// It implements both EnqueuerRepository and WorkerRepository.
type MemoryRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task
	dlq   []*DeadTask
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tasks: make(map[uuid.UUID]*Task)}
}

func (r *MemoryRepository) CreateTask(_ context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *MemoryRepository) ClaimTask(_ context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var best *Task
	for _, t := range r.tasks {
		if t.Status != TaskStatusPending || t.ScheduledAt.After(now) {
			continue
		}
		if !slices.Contains(queues, t.Queue) {
			continue
		}
		if t.LockedUntil != nil && t.LockedUntil.After(now) {
			continue
		}
		if best == nil || t.Priority > best.Priority ||
			(t.Priority == best.Priority && t.ScheduledAt.Before(best.ScheduledAt)) {
			best = t
		}
	}
	if best == nil {
		return nil, ErrNoTask
	}

	lockedUntil := now.Add(lockDuration)
	best.Status = TaskStatusProcessing
	best.LockedBy = &workerID
	best.LockedUntil = &lockedUntil

	clone := *best
	return &clone, nil
}

func (r *MemoryRepository) CompleteTask(_ context.Context, taskID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	now := time.Now()
	t.Status = TaskStatusCompleted
	t.ProcessedAt = &now
	t.LockedBy = nil
	t.LockedUntil = nil
	return nil
}

func (r *MemoryRepository) FailTask(_ context.Context, taskID uuid.UUID, errorMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}
	t.Status = TaskStatusPending
	t.RetryCount++
	t.Error = &errorMsg
	t.LockedBy = nil
	t.LockedUntil = nil
	// Linear backoff keeps a poisoned task from hot-looping the worker.
	t.ScheduledAt = time.Now().Add(time.Duration(t.RetryCount) * time.Second)
	return nil
}

func (r *MemoryRepository) MoveToDLQ(_ context.Context, taskID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tasks[taskID]
	if !ok {
		return ErrTaskNotFound
	}

	errorMsg := ""
	if t.Error != nil {
		errorMsg = *t.Error
	}
	r.dlq = append(r.dlq, &DeadTask{
		ID:         uuid.New(),
		TaskID:     t.ID,
		Queue:      t.Queue,
		TaskName:   t.TaskName,
		Payload:    t.Payload,
		Priority:   t.Priority,
		Error:      errorMsg,
		RetryCount: t.RetryCount,
		FailedAt:   time.Now(),
		CreatedAt:  t.CreatedAt,
	})
	delete(r.tasks, taskID)
	return nil
}

// Tasks returns a snapshot of stored tasks, for assertions in tests.
func (r *MemoryRepository) Tasks() []*Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		clone := *t
		out = append(out, &clone)
	}
	return out
}

// DeadTasks returns a snapshot of the dead-letter queue.
func (r *MemoryRepository) DeadTasks() []*DeadTask {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.dlq)
}
