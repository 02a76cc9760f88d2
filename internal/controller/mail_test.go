package controller_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	appcontext "github.com/notifero/mail-service/internal/app_context"
	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/controller"
	"github.com/notifero/mail-service/internal/model"
	"github.com/notifero/mail-service/internal/route"
	"github.com/notifero/mail-service/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubCatalog struct {
	templates map[string]*model.Template
}

func (s stubCatalog) GetByName(_ context.Context, name string) (*model.Template, error) {
	template, ok := s.templates[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return template, nil
}

type stubDocStore struct {
	docs map[string]string
}

func (s stubDocStore) FetchText(_ context.Context, contentRef string) (string, string, error) {
	content, ok := s.docs[contentRef]
	if !ok {
		return "", "", fmt.Errorf("no such object: %s", contentRef)
	}
	return content, "text/html", nil
}

type recordingMailer struct {
	from []string
	to   []string
}

func (m *recordingMailer) Send(from, to, subject, htmlBody string) (int, error) {
	m.from = append(m.from, from)
	m.to = append(m.to, to)
	return http.StatusOK, nil
}

type discardReporter struct{}

func (discardReporter) ReportError(context.Context, string, map[string]any) {}

func newTestRouter(mail *recordingMailer) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := config.Config{Mail: config.MailConfig{FROM_EMAIL: "noreply@notifero.mx"}}
	catalog := stubCatalog{templates: map[string]*model.Template{
		"welcome": {Name: "welcome", ContentRef: "templates/welcome.html", Active: true},
	}}
	docs := stubDocStore{docs: map[string]string{
		"templates/welcome.html": `<html><body><p>Hola <mark>name</mark></p></body></html>`,
	}}

	logger := zap.NewNop().Sugar()
	sender := service.NewMailSender(&cfg, logger, catalog, docs, mail, discardReporter{})

	app := appcontext.Application{Config: &cfg, Logger: logger, Mailer: mail, Sender: sender}
	c := controller.NewController(&app)

	r := gin.New()
	route.V1_Mail(r.Group("/api"), c.Mail)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSendMailRoute(t *testing.T) {
	mail := &recordingMailer{}
	r := newTestRouter(mail)

	w := postJSON(t, r, "/api/v1/mail/send", service.MailRequest{
		Template: "welcome", To: "a@b.com", Subject: "Hi", Body: `{"name":"Ada"}`,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mail.from, 1)
	assert.Equal(t, "noreply@notifero.mx", mail.from[0])
}

func TestSendFeedMailRoute(t *testing.T) {
	mail := &recordingMailer{}
	r := newTestRouter(mail)

	w := postJSON(t, r, "/api/v1/mail/feed", service.FeedMailRequest{
		To: "a@b.com", From: "feed@acme.mx", Template: "welcome", Subject: "Hi", Body: `{"name":"Ada"}`,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, mail.from, 1)
	assert.Equal(t, "feed@acme.mx", mail.from[0], "the feed sender address must override the configured one")
	assert.Equal(t, "a@b.com", mail.to[0])
}

func TestSendMailRouteRejectsBadRequest(t *testing.T) {
	mail := &recordingMailer{}
	r := newTestRouter(mail)

	w := postJSON(t, r, "/api/v1/mail/send", gin.H{"template": "welcome"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mail.from)
}
