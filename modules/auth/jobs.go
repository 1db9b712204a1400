package auth

import (
	"context"
	"errors"

	"github.com/chatterhq/chatter/modules/user"
	"github.com/chatterhq/chatter/pkg/email"
	"github.com/chatterhq/chatter/pkg/queue"
)

// Task names routing queue jobs to their handlers. Enqueue and handler
// registration must agree on these.
const (
	TaskPersistAuthRecord = "auth:record:create"
	TaskPersistProfile    = "user:profile:create"
	TaskSendEmail         = "email:send"
)

// PersistAuthRecordPayload asks the worker to write a signup's auth record
// to Mongo.
type PersistAuthRecordPayload struct {
	Record Record `json:"record"`
}

// PersistProfilePayload asks the worker to write a signup's profile to
// Mongo. By the time this runs the profile is already readable from the
// cache.
type PersistProfilePayload struct {
	Profile user.Profile `json:"profile"`
}

// JobHandlers returns the queue handlers draining the auth module's
// background work. A duplicate-key error on the auth record means the job
// already ran; the handler treats it as success so retries stay idempotent.
func JobHandlers(store *Repository, profiles *user.Repository, sender email.EmailSender) []queue.Handler {
	return []queue.Handler{
		queue.NewNamedTaskHandler(TaskPersistAuthRecord, func(ctx context.Context, p PersistAuthRecordPayload) error {
			if err := store.Create(ctx, p.Record); err != nil && !errors.Is(err, ErrDuplicate) {
				return err
			}
			return nil
		}),
		queue.NewNamedTaskHandler(TaskPersistProfile, func(ctx context.Context, p PersistProfilePayload) error {
			if err := profiles.Insert(ctx, p.Profile); err != nil && !errors.Is(err, user.ErrAlreadyExists) {
				return err
			}
			return nil
		}),
		queue.NewNamedTaskHandler(TaskSendEmail, func(ctx context.Context, p email.SendEmailParams) error {
			return sender.SendEmail(ctx, p)
		}),
	}
}
