package notify

import (
	"context"

	"go.uber.org/zap"
)

// LogNotifier writes messages to the application log. It is the default
// notifier when no delivery channel is configured.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Publish(_ context.Context, message string) error {
	n.logger.Infow("notification published", "message", message)
	return nil
}
