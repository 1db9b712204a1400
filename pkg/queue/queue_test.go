package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chatterhq/chatter/pkg/queue"
)

type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

func TestEnqueuer(t *testing.T) {
	t.Parallel()

	t.Run("nil repository rejected", func(t *testing.T) {
		t.Parallel()
		_, err := queue.NewEnqueuer(nil)
		require.ErrorIs(t, err, queue.ErrRepositoryNil)
	})

	t.Run("nil payload rejected", func(t *testing.T) {
		t.Parallel()
		enq, err := queue.NewEnqueuer(queue.NewMemoryRepository())
		require.NoError(t, err)
		require.ErrorIs(t, enq.Enqueue(context.Background(), nil), queue.ErrPayloadNil)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(context.Background(), emailPayload{To: "a@b.co", Subject: "hello"}))

		tasks := repo.Tasks()
		require.Len(t, tasks, 1)
		task := tasks[0]
		require.Equal(t, queue.DefaultQueueName, task.Queue)
		require.Equal(t, "queue_test.emailPayload", task.TaskName)
		require.Equal(t, queue.TaskStatusPending, task.Status)
		require.Equal(t, queue.PriorityDefault, task.Priority)

		var got emailPayload
		require.NoError(t, json.Unmarshal(task.Payload, &got))
		require.Equal(t, "hello", got.Subject)
	})

	t.Run("options applied", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)

		require.NoError(t, enq.Enqueue(context.Background(), emailPayload{},
			queue.WithTaskName("email:send"),
			queue.WithQueue("mail"),
			queue.WithPriority(queue.PriorityHigh),
			queue.WithMaxRetries(1),
			queue.WithDelay(time.Hour),
		))

		tasks := repo.Tasks()
		require.Len(t, tasks, 1)
		task := tasks[0]
		require.Equal(t, "email:send", task.TaskName)
		require.Equal(t, "mail", task.Queue)
		require.Equal(t, queue.PriorityHigh, task.Priority)
		require.EqualValues(t, 1, task.MaxRetries)
		require.WithinDuration(t, time.Now().Add(time.Hour), task.ScheduledAt, time.Minute)
	})

	t.Run("invalid priority", func(t *testing.T) {
		t.Parallel()
		enq, err := queue.NewEnqueuer(queue.NewMemoryRepository())
		require.NoError(t, err)
		err = enq.Enqueue(context.Background(), emailPayload{}, queue.WithPriority(queue.Priority(127)))
		require.ErrorIs(t, err, queue.ErrInvalidPriority)
	})
}

func TestWorker(t *testing.T) {
	t.Parallel()

	t.Run("no handlers", func(t *testing.T) {
		t.Parallel()
		w, err := queue.NewWorker(queue.NewMemoryRepository())
		require.NoError(t, err)
		require.ErrorIs(t, w.Run(context.Background()), queue.ErrNoHandlers)
	})

	t.Run("processes task", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)
		require.NoError(t, enq.Enqueue(context.Background(), emailPayload{Subject: "hi"}, queue.WithTaskName("email:send")))

		var handled atomic.Int32
		w, err := queue.NewWorker(repo, queue.WithPullInterval(5*time.Millisecond))
		require.NoError(t, err)
		w.RegisterHandlers(queue.NewNamedTaskHandler("email:send", func(_ context.Context, p emailPayload) error {
			require.Equal(t, "hi", p.Subject)
			handled.Add(1)
			return nil
		}))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		require.Eventually(t, func() bool {
			tasks := repo.Tasks()
			return len(tasks) == 1 && tasks[0].Status == queue.TaskStatusCompleted
		}, time.Second, 10*time.Millisecond)

		cancel()
		require.NoError(t, <-done)
		require.EqualValues(t, 1, handled.Load())
	})

	t.Run("exhausted retries land in DLQ", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)
		require.NoError(t, enq.Enqueue(context.Background(), emailPayload{},
			queue.WithTaskName("email:send"), queue.WithMaxRetries(1)))

		w, err := queue.NewWorker(repo, queue.WithPullInterval(5*time.Millisecond))
		require.NoError(t, err)
		w.RegisterHandlers(queue.NewNamedTaskHandler("email:send", func(_ context.Context, _ emailPayload) error {
			return errors.New("smtp down")
		}))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		require.Eventually(t, func() bool {
			return len(repo.DeadTasks()) == 1
		}, time.Second, 10*time.Millisecond)

		cancel()
		require.NoError(t, <-done)
		require.Empty(t, repo.Tasks())
	})

	t.Run("unknown task name fails", func(t *testing.T) {
		t.Parallel()
		repo := queue.NewMemoryRepository()
		enq, err := queue.NewEnqueuer(repo)
		require.NoError(t, err)
		require.NoError(t, enq.Enqueue(context.Background(), emailPayload{},
			queue.WithTaskName("unknown"), queue.WithMaxRetries(1)))

		w, err := queue.NewWorker(repo, queue.WithPullInterval(5*time.Millisecond))
		require.NoError(t, err)
		w.RegisterHandlers(queue.NewNamedTaskHandler("email:send", func(_ context.Context, _ emailPayload) error {
			return nil
		}))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w.Run(ctx) }()

		require.Eventually(t, func() bool {
			dead := repo.DeadTasks()
			return len(dead) == 1 && dead[0].TaskName == "unknown"
		}, time.Second, 10*time.Millisecond)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestTaskHandler(t *testing.T) {
	t.Parallel()

	t.Run("derived name", func(t *testing.T) {
		t.Parallel()
		h := queue.NewTaskHandler(func(_ context.Context, _ emailPayload) error { return nil })
		require.Equal(t, "queue_test.emailPayload", h.Name())
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()
		h := queue.NewNamedTaskHandler("email:send", func(_ context.Context, _ emailPayload) error { return nil })
		require.Error(t, h.Handle(context.Background(), json.RawMessage(`{`)))
	})
}
