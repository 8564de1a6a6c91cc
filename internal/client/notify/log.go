package notify

import (
	"context"

	"github.com/dmitrijs2005/wpkeeper/internal/logging"
)

// Log writes notifications to a logger, destructive ones at error level.
type Log struct {
	log logging.Logger
}

func NewLog(l logging.Logger) *Log {
	return &Log{log: l}
}

func (l *Log) Notify(ctx context.Context, n Notification) {
	args := []any{"title", n.Title, "description", n.Description, "severity", string(n.Severity)}
	if n.Severity == SeverityDestructive {
		l.log.Error(ctx, "notification", args...)
		return
	}
	l.log.Info(ctx, "notification", args...)
}
