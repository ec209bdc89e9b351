// Package notify is the fire-and-forget toast collaborator. There is no
// acknowledgment contract: callers emit and move on.
package notify

import "github.com/threadview-dev/threadview/internal/logger"

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Log emits toasts into the structured log. The server wiring uses it;
// an embedding UI would substitute its own sink.
type Log struct{}

func (Log) Success(msg string) {
	logger.Log.Info("toast", "kind", "success", "msg", msg)
}

func (Log) Error(msg string) {
	logger.Log.Warn("toast", "kind", "error", "msg", msg)
}
