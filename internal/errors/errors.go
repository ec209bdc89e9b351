package errors

import (
	"errors"
	"fmt"
)

// NotFound is terminal for the view that hit it: the thread is gone and
// there is no retry affordance.
var NotFound = errors.New("Not found")

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

// ValidationError rejects an action before any persistence call is made,
// so no optimistic change exists and nothing needs rolling back.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}

// MutationError wraps a failed insert/update/delete. The component that
// issued the mutation rolls back its optimistic change and converts this
// into a transient notification; it never propagates further up.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// LoadPart names the sub-fetch of a thread load that failed. Each part
// degrades independently: the thread can render with missing replies or
// placeholder author names.
type LoadPart string

const (
	PartThread  LoadPart = "thread"
	PartReplies LoadPart = "replies"
	PartVotes   LoadPart = "votes"
	PartAuthors LoadPart = "authors"
)

type LoadError struct {
	Part LoadPart
	Err  error
}

func (e *LoadError) Error() string {
	switch e.Part {
	case PartReplies:
		return fmt.Sprintf("replies failed to load: %v", e.Err)
	case PartVotes:
		return fmt.Sprintf("votes failed to load: %v", e.Err)
	case PartAuthors:
		return fmt.Sprintf("author names failed to load: %v", e.Err)
	default:
		return fmt.Sprintf("thread failed to load: %v", e.Err)
	}
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
