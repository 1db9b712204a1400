package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkerRepository is the storage contract for task execution.
type WorkerRepository interface {
	// ClaimTask atomically claims the next runnable task, or ErrNoTask.
	ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*Task, error)
	// CompleteTask marks a task as completed.
	CompleteTask(ctx context.Context, taskID uuid.UUID) error
	// FailTask releases a task back to pending with an incremented retry count.
	FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error
	// MoveToDLQ parks a task that exhausted its retries.
	MoveToDLQ(ctx context.Context, taskID uuid.UUID) error
}

type workerOptions struct {
	queues       []string
	pullInterval time.Duration
	lockTimeout  time.Duration
	concurrency  int
	logger       *slog.Logger
}

// WorkerOption configures a Worker.
type WorkerOption func(*workerOptions)

func WithQueues(queues ...string) WorkerOption {
	return func(o *workerOptions) {
		if len(queues) > 0 {
			o.queues = queues
		}
	}
}

func WithPullInterval(d time.Duration) WorkerOption {
	return func(o *workerOptions) { o.pullInterval = d }
}

func WithLockTimeout(d time.Duration) WorkerOption {
	return func(o *workerOptions) { o.lockTimeout = d }
}

func WithConcurrency(n int) WorkerOption {
	return func(o *workerOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

func WithWorkerLogger(logger *slog.Logger) WorkerOption {
	return func(o *workerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Worker claims and executes tasks until its context is canceled.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	queues   []string
	workerID uuid.UUID
	sem      chan struct{}
	wg       sync.WaitGroup

	pullInterval time.Duration
	lockTimeout  time.Duration
	logger       *slog.Logger
}

// NewWorker creates a worker over the given repository.
func NewWorker(repo WorkerRepository, opts ...WorkerOption) (*Worker, error) {
	if repo == nil {
		return nil, ErrRepositoryNil
	}

	options := &workerOptions{
		queues:       []string{DefaultQueueName},
		pullInterval: 5 * time.Second,
		lockTimeout:  5 * time.Minute,
		concurrency:  1,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Worker{
		repo:         repo,
		handlers:     make(map[string]Handler),
		queues:       options.queues,
		workerID:     uuid.New(),
		sem:          make(chan struct{}, options.concurrency),
		pullInterval: options.pullInterval,
		lockTimeout:  options.lockTimeout,
		logger:       options.logger,
	}, nil
}

// RegisterHandlers adds handlers keyed by their names.
func (w *Worker) RegisterHandlers(handlers ...Handler) {
	for _, h := range handlers {
		if h != nil {
			w.handlers[h.Name()] = h
		}
	}
}

// Run processes tasks until ctx is canceled, then waits for in-flight tasks.
func (w *Worker) Run(ctx context.Context) error {
	if len(w.handlers) == 0 {
		return ErrNoHandlers
	}

	w.logger.Info("queue worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Any("queues", w.queues),
		slog.Int("max_concurrent", cap(w.sem)),
	)

	ticker := time.NewTicker(w.pullInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.wg.Wait()
			w.logger.Info("queue worker stopped", slog.String("worker_id", w.workerID.String()))
			return nil
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

// drain claims tasks until the repository is empty or concurrency is
// saturated.
func (w *Worker) drain(ctx context.Context) {
	for {
		select {
		case w.sem <- struct{}{}:
		case <-ctx.Done():
			return
		}

		task, err := w.repo.ClaimTask(ctx, w.workerID, w.queues, w.lockTimeout)
		if err != nil {
			<-w.sem
			if !errors.Is(err, ErrNoTask) && !errors.Is(err, context.Canceled) {
				w.logger.Error("failed to claim task", slog.Any("error", err))
			}
			return
		}

		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			defer func() { <-w.sem }()
			w.process(ctx, task)
		}()
	}
}

func (w *Worker) process(ctx context.Context, task *Task) {
	handler, ok := w.handlers[task.TaskName]
	if !ok {
		w.fail(ctx, task, fmt.Sprintf("no handler registered for task %q", task.TaskName))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.fail(ctx, task, fmt.Sprintf("handler panicked: %v", r))
		}
	}()

	if err := handler.Handle(ctx, task.Payload); err != nil {
		w.fail(ctx, task, err.Error())
		return
	}

	if err := w.repo.CompleteTask(ctx, task.ID); err != nil {
		w.logger.Error("failed to complete task",
			slog.String("task_id", task.ID.String()),
			slog.Any("error", err),
		)
	}
}

func (w *Worker) fail(ctx context.Context, task *Task, errorMsg string) {
	w.logger.Warn("task failed",
		slog.String("task_id", task.ID.String()),
		slog.String("task_name", task.TaskName),
		slog.Int("retry_count", int(task.RetryCount)),
		slog.String("error", errorMsg),
	)

	if task.RetryCount+1 >= task.MaxRetries {
		if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
			w.logger.Error("failed to move task to DLQ",
				slog.String("task_id", task.ID.String()),
				slog.Any("error", err),
			)
		}
		return
	}

	if err := w.repo.FailTask(ctx, task.ID, errorMsg); err != nil {
		w.logger.Error("failed to release task for retry",
			slog.String("task_id", task.ID.String()),
			slog.Any("error", err),
		)
	}
}
