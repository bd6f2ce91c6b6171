// Package notify sends the applicant-facing emails: a confirmation when an
// application is submitted and an update when its status changes. The
// franchise admin address, when configured, gets a copy of new submissions.
//
// Sending is best effort. Callers log a returned error and carry on; a
// mail outage never fails an application.
package notify

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"github.com/sakif/jobboard/internal/model"
)

// Notifier is implemented by SESNotifier and LogNotifier.
type Notifier interface {
	ApplicationSubmitted(ctx context.Context, app *model.Application, job *model.Job) error
	StatusChanged(ctx context.Context, app *model.Application, job *model.Job) error
}

// Message is one rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// statusLabels are the applicant-facing names of each status.
var statusLabels = map[model.ApplicationStatus]string{
	model.StatusSubmitted:   "Submitted",
	model.StatusUnderReview: "Under review",
	model.StatusInterviewed: "Interviewed",
	model.StatusAccepted:    "Accepted",
	model.StatusRejected:    "Not selected",
}

// StatusLabel returns the display name for s.
func StatusLabel(s model.ApplicationStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return strings.ReplaceAll(string(s), "_", " ")
}

type templateData struct {
	FirstName   string
	LastName    string
	Email       string
	ReferenceID string
	JobTitle    string
	Location    string
	Status      string
}

func newTemplateData(app *model.Application, job *model.Job) templateData {
	d := templateData{
		FirstName:   app.FirstName,
		LastName:    app.LastName,
		Email:       app.Email,
		ReferenceID: app.ReferenceID,
		Status:      StatusLabel(app.Status),
		JobTitle:    "the position",
	}
	if job != nil {
		d.JobTitle = job.Title
		d.Location = job.Location
	}
	return d
}

type emailTemplate struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

func mustTemplate(name, subject, text, html string) emailTemplate {
	return emailTemplate{
		subject: texttemplate.Must(texttemplate.New(name + ".subject").Parse(subject)),
		text:    texttemplate.Must(texttemplate.New(name + ".text").Parse(text)),
		html:    htmltemplate.Must(htmltemplate.New(name + ".html").Parse(html)),
	}
}

func (t emailTemplate) render(to string, data templateData) (Message, error) {
	var subject, text, html bytes.Buffer
	if err := t.subject.Execute(&subject, data); err != nil {
		return Message{}, fmt.Errorf("notify: rendering subject: %w", err)
	}
	if err := t.text.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("notify: rendering text body: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("notify: rendering html body: %w", err)
	}
	return Message{To: to, Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}

var (
	submittedTemplate = mustTemplate("submitted",
		`Application received: {{.JobTitle}} ({{.ReferenceID}})`,
		`Hi {{.FirstName}},

Thanks for applying for {{.JobTitle}}{{if .Location}} in {{.Location}}{{end}}.
Your reference number is {{.ReferenceID}}. Keep it for any questions about your application.
`,
		`<p>Hi {{.FirstName}},</p>
<p>Thanks for applying for <strong>{{.JobTitle}}</strong>{{if .Location}} in {{.Location}}{{end}}.</p>
<p>Your reference number is <strong>{{.ReferenceID}}</strong>. Keep it for any questions about your application.</p>
`)

	adminTemplate = mustTemplate("admin",
		`New application for {{.JobTitle}} from {{.FirstName}} {{.LastName}}`,
		`{{.FirstName}} {{.LastName}} <{{.Email}}> applied for {{.JobTitle}}.
Reference: {{.ReferenceID}}
`,
		`<p>{{.FirstName}} {{.LastName}} &lt;{{.Email}}&gt; applied for <strong>{{.JobTitle}}</strong>.</p>
<p>Reference: {{.ReferenceID}}</p>
`)

	statusTemplate = mustTemplate("status",
		`Update on your application for {{.JobTitle}}`,
		`Hi {{.FirstName}},

The status of your application {{.ReferenceID}} for {{.JobTitle}} is now: {{.Status}}.
`,
		`<p>Hi {{.FirstName}},</p>
<p>The status of your application {{.ReferenceID}} for <strong>{{.JobTitle}}</strong> is now: <strong>{{.Status}}</strong>.</p>
`)
)

// SubmittedMessages renders the applicant confirmation and, when admin is
// set, the admin copy.
func SubmittedMessages(app *model.Application, job *model.Job, admin string) ([]Message, error) {
	data := newTemplateData(app, job)
	msg, err := submittedTemplate.render(app.Email, data)
	if err != nil {
		return nil, err
	}
	msgs := []Message{msg}
	if admin != "" {
		adminMsg, err := adminTemplate.render(admin, data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, adminMsg)
	}
	return msgs, nil
}

// StatusMessage renders the status-change email for the applicant.
func StatusMessage(app *model.Application, job *model.Job) (Message, error) {
	return statusTemplate.render(app.Email, newTemplateData(app, job))
}
