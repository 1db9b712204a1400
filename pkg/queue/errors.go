package queue

import "errors"

var (
	ErrRepositoryNil   = errors.New("queue: repository is nil")
	ErrPayloadNil      = errors.New("queue: payload is nil")
	ErrInvalidPriority = errors.New("queue: invalid priority")
	ErrNoHandlers      = errors.New("queue: no handlers registered")
	ErrNoTask          = errors.New("queue: no task available")
	ErrTaskNotFound    = errors.New("queue: task not found")
)
