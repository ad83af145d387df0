// Package notice carries user-facing confirmation and error messages
// (the toast layer of the original storefront) across store boundaries.
package notice

import "log/slog"

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Error   Level = "error"
)

// Notifier receives user-facing notices emitted by the stores. The API
// layer forwards them to clients; tests capture them.
type Notifier interface {
	Notify(level Level, message string)
}

// LogNotifier writes notices to the structured log. Used wherever no
// client is attached (workers, CLI).
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(level Level, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch level {
	case Error:
		logger.Error(message)
	default:
		logger.Info(message, slog.String("level", string(level)))
	}
}

// Discard drops all notices.
type Discard struct{}

func (Discard) Notify(Level, string) {}
