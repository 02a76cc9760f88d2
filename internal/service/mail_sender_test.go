package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeCatalog struct {
	templates map[string]*model.Template
	calls     int
}

func (f *fakeCatalog) GetByName(_ context.Context, name string) (*model.Template, error) {
	f.calls++
	template, ok := f.templates[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return template, nil
}

type fakeDocStore struct {
	docs  map[string]string
	calls int
}

func (f *fakeDocStore) FetchText(_ context.Context, contentRef string) (string, string, error) {
	f.calls++
	content, ok := f.docs[contentRef]
	if !ok {
		return "", "", fmt.Errorf("no such object: %s", contentRef)
	}
	return content, "text/html", nil
}

type sentMail struct {
	from, to, subject, htmlBody string
}

type fakeMailer struct {
	sent   []sentMail
	status int
	err    error
}

func (f *fakeMailer) Send(from, to, subject, htmlBody string) (int, error) {
	if f.err != nil {
		return f.status, f.err
	}
	f.sent = append(f.sent, sentMail{from: from, to: to, subject: subject, htmlBody: htmlBody})
	if f.status == 0 {
		return http.StatusOK, nil
	}
	return f.status, nil
}

type reportedEvent struct {
	name    string
	payload map[string]any
}

type fakeReporter struct {
	events []reportedEvent
}

func (f *fakeReporter) ReportError(_ context.Context, name string, payload map[string]any) {
	f.events = append(f.events, reportedEvent{name: name, payload: payload})
}

func newTestSender(catalog *fakeCatalog, docs *fakeDocStore, mail *fakeMailer, reporter *fakeReporter) *MailSender {
	cfg := &config.Config{
		Mail: config.MailConfig{FROM_EMAIL: "noreply@notifero.mx"},
	}
	return NewMailSender(cfg, zap.NewNop().Sugar(), catalog, docs, mail, reporter)
}

func activeWelcome() (*fakeCatalog, *fakeDocStore) {
	catalog := &fakeCatalog{templates: map[string]*model.Template{
		"welcome": {
			Name:       "welcome",
			ContentRef: "templates/welcome.html",
			Active:     true,
		},
	}}
	docs := &fakeDocStore{docs: map[string]string{
		"templates/welcome.html": `<html><body><p>Hola <mark>name</mark></p></body></html>`,
	}}
	return catalog, docs
}

func TestProcessMailSendsMergedBody(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	req := MailRequest{Template: "welcome", To: "a@b.com", Subject: "Hi", Body: `{"name":"Ada"}`}
	out := sender.ProcessMail(context.Background(), req)

	assert.Equal(t, req, out)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, "noreply@notifero.mx", mail.sent[0].from)
	assert.Equal(t, "a@b.com", mail.sent[0].to)
	assert.Equal(t, "Hi", mail.sent[0].subject)
	assert.Contains(t, mail.sent[0].htmlBody, ">Ada</span>")
	assert.Empty(t, reporter.events)
}

func TestProcessMailInactiveTemplateReportsOneEvent(t *testing.T) {
	catalog, docs := activeWelcome()
	catalog.templates["welcome"].Active = false
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	req := MailRequest{Template: "welcome", To: "a@b.com", Subject: "Hi", Body: `{"name":"Ada"}`}
	sender.ProcessMail(context.Background(), req)

	assert.Empty(t, mail.sent, "no mail must be dispatched for an inactive template")
	require.Len(t, reporter.events, 1)
	assert.Equal(t, "ERROR:ENVIO DE UN MAIL", reporter.events[0].name)
	assert.Contains(t, reporter.events[0].payload["error"], "TemplateNotActive")
	assert.Equal(t, "welcome", reporter.events[0].payload["template"])
	assert.Equal(t, "a@b.com", reporter.events[0].payload["to"])
	assert.Equal(t, "Hi", reporter.events[0].payload["subject"])
}

func TestProcessMailUnknownTemplateReportsNotFound(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	sender.ProcessMail(context.Background(), MailRequest{
		Template: "missing", To: "a@b.com", Subject: "Hi", Body: `{}`,
	})

	assert.Empty(t, mail.sent)
	require.Len(t, reporter.events, 1)
	assert.Contains(t, reporter.events[0].payload["error"], "TemplateNotFound")
}

func TestProcessMailBadBodyReportsAndReturns(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	sender.ProcessMail(context.Background(), MailRequest{
		Template: "welcome", To: "a@b.com", Subject: "Hi", Body: `{"name":`,
	})

	assert.Empty(t, mail.sent)
	require.Len(t, reporter.events, 1)
}

func TestProcessMailTransportFailureReports(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{status: http.StatusInternalServerError, err: errors.New("smtp down")}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	sender.ProcessMail(context.Background(), MailRequest{
		Template: "welcome", To: "a@b.com", Subject: "Hi", Body: `{"name":"Ada"}`,
	})

	require.Len(t, reporter.events, 1)
	assert.Contains(t, reporter.events[0].payload["error"], "smtp down")
}

func TestTemplateCacheAvoidsRefetch(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	req := MailRequest{Template: "welcome", To: "a@b.com", Subject: "Hi", Body: `{"name":"Ada"}`}
	sender.ProcessMail(context.Background(), req)
	sender.ProcessMail(context.Background(), req)

	assert.Equal(t, 1, catalog.calls, "second request must hit the cache")
	assert.Equal(t, 1, docs.calls)

	sender.Invalidate("welcome")
	sender.ProcessMail(context.Background(), req)
	assert.Equal(t, 2, catalog.calls, "invalidation must force a refetch")
}

func TestProcessEvent(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	body, err := json.Marshal(map[string]any{"datos": MailRequest{
		Template: "welcome", To: "a@b.com", Subject: "Hi", Body: `{"name":"Ada"}`,
	}})
	require.NoError(t, err)

	sender.ProcessEvent(context.Background(), EventDTO{EventName: "sendMail", EventBody: body})
	require.Len(t, mail.sent, 1)
	assert.Empty(t, reporter.events)
}

func TestProcessEventRejectsWrongName(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	sender.ProcessEvent(context.Background(), EventDTO{EventName: "otherEvent", EventBody: []byte(`{}`)})

	assert.Empty(t, mail.sent)
	require.Len(t, reporter.events, 1)
	assert.Contains(t, reporter.events[0].payload["error"], "se esperó un evento 'sendMail'")
}

func TestProcessFeedMailOverridesSender(t *testing.T) {
	catalog, docs := activeWelcome()
	mail := &fakeMailer{}
	reporter := &fakeReporter{}
	sender := newTestSender(catalog, docs, mail, reporter)

	sender.ProcessFeedMail(context.Background(), FeedMailRequest{
		To: "a@b.com", From: "feed@acme.mx", Template: "welcome", Subject: "Hi", Body: `{"name":"Ada"}`,
	})

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "feed@acme.mx", mail.sent[0].from)
}

func TestValidateTemplate(t *testing.T) {
	schema, err := json.Marshal([]model.TemplateField{
		{Name: "name", Type: model.FieldText, DefaultValue: "cliente"},
	})
	require.NoError(t, err)

	catalog, docs := activeWelcome()
	catalog.templates["welcome"].Fields = string(schema)
	sender := newTestSender(catalog, docs, &fakeMailer{}, &fakeReporter{})

	assert.NoError(t, sender.ValidateTemplate(context.Background(), "welcome"))

	// a template referencing a variable outside its schema must not validate
	docs.docs["templates/welcome.html"] = `<html><body><mark>name</mark><mark>edad</mark></body></html>`
	sender.Invalidate("welcome")
	assert.Error(t, sender.ValidateTemplate(context.Background(), "welcome"))
}

func TestValidateTemplateSingleCatalogLookup(t *testing.T) {
	schema, err := json.Marshal([]model.TemplateField{
		{Name: "name", Type: model.FieldText, DefaultValue: "cliente"},
	})
	require.NoError(t, err)

	catalog, docs := activeWelcome()
	catalog.templates["welcome"].Fields = string(schema)
	sender := newTestSender(catalog, docs, &fakeMailer{}, &fakeReporter{})

	require.NoError(t, sender.ValidateTemplate(context.Background(), "welcome"))

	assert.Equal(t, 1, catalog.calls, "cold validation must look the template up once")
	assert.Equal(t, 1, docs.calls)
}
