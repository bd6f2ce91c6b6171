package notify

import (
	"context"
	"log/slog"

	"github.com/sakif/jobboard/internal/model"
)

// LogNotifier renders messages and logs them instead of sending. It is
// used when no email provider is configured.
type LogNotifier struct {
	logger *slog.Logger
	admin  string
}

var _ Notifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger, admin string) *LogNotifier {
	return &LogNotifier{logger: logger, admin: admin}
}

func (n *LogNotifier) ApplicationSubmitted(_ context.Context, app *model.Application, job *model.Job) error {
	msgs, err := SubmittedMessages(app, job, n.admin)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		n.log(m)
	}
	return nil
}

func (n *LogNotifier) StatusChanged(_ context.Context, app *model.Application, job *model.Job) error {
	msg, err := StatusMessage(app, job)
	if err != nil {
		return err
	}
	n.log(msg)
	return nil
}

func (n *LogNotifier) log(m Message) {
	n.logger.Info("email not sent (no provider configured)",
		slog.String("to", m.To),
		slog.String("subject", m.Subject),
	)
}
