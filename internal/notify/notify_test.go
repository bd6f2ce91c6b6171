package notify

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/jobboard/internal/model"
)

// fakeSES records every SendEmail call and can be told to fail.
type fakeSES struct {
	sent []*ses.SendEmailInput
	err  error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, in)
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testApplication() (*model.Application, *model.Job) {
	app := &model.Application{
		ID:          1,
		JobID:       3,
		ReferenceID: "SEV-2026-AB12C",
		FirstName:   "Jane",
		LastName:    "Doe",
		Email:       "jane@example.com",
		Status:      model.StatusSubmitted,
	}
	job := &model.Job{ID: 3, Title: "Shift Lead", Location: "Plano, TX"}
	return app, job
}

func TestSubmittedMessages(t *testing.T) {
	app, job := testApplication()

	msgs, err := SubmittedMessages(app, job, "")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "jane@example.com", msgs[0].To)
	assert.Equal(t, "Application received: Shift Lead (SEV-2026-AB12C)", msgs[0].Subject)
	assert.Contains(t, msgs[0].Text, "in Plano, TX")
	assert.Contains(t, msgs[0].HTML, "<strong>SEV-2026-AB12C</strong>")

	withAdmin, err := SubmittedMessages(app, job, "hr@franchise.example")
	require.NoError(t, err)
	require.Len(t, withAdmin, 2)
	assert.Equal(t, "hr@franchise.example", withAdmin[1].To)
}

func TestHTMLBodyEscapesApplicantInput(t *testing.T) {
	app, job := testApplication()
	app.FirstName = `<script>alert(1)</script>`

	msgs, err := SubmittedMessages(app, job, "")
	require.NoError(t, err)
	assert.NotContains(t, msgs[0].HTML, "<script>")
	assert.Contains(t, msgs[0].HTML, "&lt;script&gt;")
}

func TestStatusMessage_UsesLabel(t *testing.T) {
	app, job := testApplication()
	app.Status = model.StatusUnderReview

	msg, err := StatusMessage(app, job)
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "is now: Under review.")
}

func TestStatusMessage_MissingJob(t *testing.T) {
	app, _ := testApplication()
	msg, err := StatusMessage(app, nil)
	require.NoError(t, err)
	assert.Contains(t, msg.Subject, "the position")
}

func TestStatusLabel_Unknown(t *testing.T) {
	assert.Equal(t, "on hold", StatusLabel("on_hold"))
}

func TestSESNotifier_ApplicationSubmitted(t *testing.T) {
	client := &fakeSES{}
	n := NewSESNotifierWithClient(client, SESConfig{From: "jobs@franchise.example", Admin: "hr@franchise.example"}, testLogger())
	app, job := testApplication()

	require.NoError(t, n.ApplicationSubmitted(context.Background(), app, job))
	require.Len(t, client.sent, 2)

	first := client.sent[0]
	assert.Equal(t, "jobs@franchise.example", aws.ToString(first.Source))
	assert.Equal(t, []string{"jane@example.com"}, first.Destination.ToAddresses)
	assert.Contains(t, aws.ToString(first.Message.Body.Text.Data), "SEV-2026-AB12C")
}

func TestSESNotifier_StatusChangedPropagatesError(t *testing.T) {
	boom := errors.New("throttled")
	n := NewSESNotifierWithClient(&fakeSES{err: boom}, SESConfig{From: "jobs@franchise.example"}, testLogger())
	app, job := testApplication()

	err := n.StatusChanged(context.Background(), app, job)
	assert.ErrorIs(t, err, boom)
}

func TestSESNotifier_NoRecipient(t *testing.T) {
	client := &fakeSES{}
	n := NewSESNotifierWithClient(client, SESConfig{From: "jobs@franchise.example"}, testLogger())
	app, job := testApplication()
	app.Email = ""

	assert.Error(t, n.StatusChanged(context.Background(), app, job))
	assert.Empty(t, client.sent)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)), "")
	app, job := testApplication()

	require.NoError(t, n.ApplicationSubmitted(context.Background(), app, job))
	assert.Contains(t, buf.String(), "jane@example.com")
	assert.Contains(t, buf.String(), "Application received")
}
