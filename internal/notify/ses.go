package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/sakif/jobboard/internal/model"
)

// SESAPI is the part of *ses.Client we use, so tests can fake it.
type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends email through Amazon SES.
type SESNotifier struct {
	client SESAPI
	from   string
	admin  string
	logger *slog.Logger
}

var _ Notifier = (*SESNotifier)(nil)

// SESConfig holds the sender settings.
type SESConfig struct {
	Region string
	From   string
	// Admin receives a copy of every new application. Optional.
	Admin string
}

// NewSESNotifier loads AWS credentials the standard way (env, shared
// config, instance role) and builds an SES client for cfg.Region.
func NewSESNotifier(ctx context.Context, cfg SESConfig, logger *slog.Logger) (*SESNotifier, error) {
	if cfg.From == "" {
		return nil, errors.New("notify: sender address is required")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("notify: loading AWS config: %w", err)
	}
	return NewSESNotifierWithClient(ses.NewFromConfig(awsCfg), cfg, logger), nil
}

// NewSESNotifierWithClient wraps an existing client.
func NewSESNotifierWithClient(client SESAPI, cfg SESConfig, logger *slog.Logger) *SESNotifier {
	return &SESNotifier{client: client, from: cfg.From, admin: cfg.Admin, logger: logger}
}

func (n *SESNotifier) ApplicationSubmitted(ctx context.Context, app *model.Application, job *model.Job) error {
	msgs, err := SubmittedMessages(app, job, n.admin)
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range msgs {
		if err := n.send(ctx, m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *SESNotifier) StatusChanged(ctx context.Context, app *model.Application, job *model.Job) error {
	msg, err := StatusMessage(app, job)
	if err != nil {
		return err
	}
	return n.send(ctx, msg)
}

func (n *SESNotifier) send(ctx context.Context, m Message) error {
	if m.To == "" {
		return errors.New("notify: message has no recipient")
	}
	out, err := n.client.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: []string{m.To}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(m.Subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(m.Text), Charset: aws.String("UTF-8")},
				Html: &types.Content{Data: aws.String(m.HTML), Charset: aws.String("UTF-8")},
			},
		},
		Source: aws.String(n.from),
	})
	if err != nil {
		return fmt.Errorf("notify: sending %q: %w", m.Subject, err)
	}
	n.logger.Info("email sent",
		slog.String("subject", m.Subject),
		slog.String("messageID", aws.ToString(out.MessageId)),
	)
	return nil
}
