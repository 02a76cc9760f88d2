package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/mailer"
	"github.com/notifero/mail-service/internal/model"
	"github.com/notifero/mail-service/pkg/merge"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// TemplateCatalog resolves template metadata by name. Backed by the
// template repository in production.
type TemplateCatalog interface {
	GetByName(ctx context.Context, name string) (*model.Template, error)
}

// DocumentStore fetches raw template content by its catalog content ref.
type DocumentStore interface {
	FetchText(ctx context.Context, contentRef string) (content string, mimeType string, err error)
}

// ErrorReporter forwards one structured error event to the out-of-band
// error channel, fire-and-forget.
type ErrorReporter interface {
	ReportError(ctx context.Context, name string, payload map[string]any)
}

// errorEventName is the event name every dispatch failure is reported
// under; consumers on the error channel key off it.
const errorEventName = "ERROR:ENVIO DE UN MAIL"

// MailSender assembles and dispatches one email per request: resolve the
// template (keyed content cache), merge the JSON body into its HTML, send.
// Failures in any step are logged and forwarded to the error channel; none
// of the entry points ever raises to its caller.
type MailSender struct {
	config  *config.Config
	logger  *zap.SugaredLogger
	catalog TemplateCatalog
	docs    DocumentStore
	mailer  mailer.Client
	events  ErrorReporter

	mu    sync.RWMutex
	cache map[string]string
	group singleflight.Group
}

func NewMailSender(cfg *config.Config, logger *zap.SugaredLogger, catalog TemplateCatalog,
	docs DocumentStore, mail mailer.Client, events ErrorReporter,
) *MailSender {
	return &MailSender{
		config:  cfg,
		logger:  logger,
		catalog: catalog,
		docs:    docs,
		mailer:  mail,
		events:  events,
		cache:   make(map[string]string),
	}
}

// ProcessMail handles the REST entry point. The request is acknowledged as
// handled regardless of outcome.
func (s *MailSender) ProcessMail(ctx context.Context, req MailRequest) MailRequest {
	s.logger.Debugf("Receive a REST call to send an email: %+v", req)

	if err := s.sendMail(ctx, req.Template, req.To, req.Subject, req.Body, ""); err != nil {
		s.report(ctx, err, map[string]any{
			"template": req.Template,
			"to":       req.To,
			"subject":  req.Subject,
			"body":     req.Body,
		})
	}

	return req
}

// ProcessEvent handles the generic queue entry point. Only "sendMail"
// events are accepted; anything else becomes one error event.
func (s *MailSender) ProcessEvent(ctx context.Context, event EventDTO) EventDTO {
	s.logger.Debugf("Receive an event to send an email: %+v", event)

	if event.EventName != "sendMail" {
		s.logger.Errorf("Error bad mail event, expected 'sendMail' got %q", event.EventName)
		s.events.ReportError(ctx, errorEventName, map[string]any{
			"error": "se esperó un evento 'sendMail'",
			"body":  event,
		})
		return event
	}

	var body eventBody
	if err := json.Unmarshal(event.EventBody, &body); err != nil {
		s.logger.Errorf("Bad e mail format: %v", err)
		s.report(ctx, err, map[string]any{"body": event})
		return event
	}

	req := body.Datos
	if err := s.sendMail(ctx, req.Template, req.To, req.Subject, req.Body, ""); err != nil {
		s.report(ctx, err, map[string]any{
			"template": req.Template,
			"to":       req.To,
			"subject":  req.Subject,
			"body":     req.Body,
		})
	}

	return event
}

// ProcessFeedMail handles the feed-ingestion entry point, where the sender
// address comes with the request.
func (s *MailSender) ProcessFeedMail(ctx context.Context, req FeedMailRequest) FeedMailRequest {
	s.logger.Debugf("Receive a feed event to send an email: %+v", req)

	if err := s.sendMail(ctx, req.Template, req.To, req.Subject, req.Body, req.From); err != nil {
		s.report(ctx, err, map[string]any{
			"template": req.Template,
			"to":       req.To,
			"subject":  req.Subject,
			"body":     req.Body,
		})
	}

	return req
}

func (s *MailSender) sendMail(ctx context.Context, template, to, subject, jsonBody, from string) error {
	if from == "" {
		from = s.config.Mail.FROM_EMAIL
	}

	content, err := s.resolveTemplate(ctx, template)
	if err != nil {
		return err
	}

	engine, err := merge.NewEngineFromJSON(content, jsonBody)
	if err != nil {
		return err
	}

	htmlBody, err := engine.Render()
	if err != nil {
		return err
	}

	status, err := s.mailer.Send(from, to, subject, htmlBody)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusAccepted {
		return fmt.Errorf("email sending failed with status: %d", status)
	}

	s.logger.Infof("Mail sent to %s", to)

	return nil
}

// lookup fetches the catalog record and applies the metadata checks shared
// by the send and validation paths.
func (s *MailSender) lookup(ctx context.Context, name string) (*model.Template, error) {
	template, err := s.catalog.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
		}
		return nil, fmt.Errorf("catalog lookup for %s: %w", name, err)
	}

	if !template.Active {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotActive, name)
	}

	return template, nil
}

// resolveTemplate returns the raw HTML body of the named template,
// refetching it from the catalog and the document store on a cache miss.
func (s *MailSender) resolveTemplate(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	content, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return content, nil
	}

	template, err := s.lookup(ctx, name)
	if err != nil {
		return "", err
	}

	return s.resolveContent(ctx, name, template.ContentRef)
}

// resolveContent returns the cached raw HTML for name, fetching it from the
// document store on a miss. Concurrent misses for the same name are
// collapsed into one fetch.
func (s *MailSender) resolveContent(ctx context.Context, name, contentRef string) (string, error) {
	s.mu.RLock()
	content, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return content, nil
	}

	result, err, _ := s.group.Do(name, func() (any, error) {
		body, mimeType, err := s.docs.FetchText(ctx, contentRef)
		if err != nil {
			return nil, fmt.Errorf("fetch content of %s: %w", name, err)
		}
		if mimeType != "" && mimeType != "text/html" {
			s.logger.Debugf("Template %s stored with MIME type %s, treating as HTML", name, mimeType)
		}

		s.mu.Lock()
		s.cache[name] = body
		s.mu.Unlock()

		return body, nil
	})
	if err != nil {
		return "", err
	}

	return result.(string), nil
}

// Invalidate drops a cached template body so the next request refetches it.
func (s *MailSender) Invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, name)
}

// ValidateTemplate runs a strict pre-flight merge of the stored template
// against its default field schema. It returns the first unresolved or
// malformed variable; unlike the send paths, the error goes back to the
// caller.
func (s *MailSender) ValidateTemplate(ctx context.Context, name string) error {
	template, err := s.lookup(ctx, name)
	if err != nil {
		return err
	}

	content, err := s.resolveContent(ctx, name, template.ContentRef)
	if err != nil {
		return err
	}

	schema, err := template.FieldSchema()
	if err != nil {
		return fmt.Errorf("field schema of %s: %w", name, err)
	}

	fields := make([]merge.Field, 0, len(schema))
	for _, f := range schema {
		fields = append(fields, merge.Field{
			Name:         f.Name,
			Type:         merge.KindFromString(string(f.Type)),
			DefaultValue: f.DefaultValue,
		})
	}

	_, err = merge.NewEngineFromFields(content, fields).Validate()
	return err
}

func (s *MailSender) report(ctx context.Context, err error, payload map[string]any) {
	s.logger.Errorf("No se pudo enviar el mail: %v", err)

	payload["error"] = err.Error()
	s.events.ReportError(ctx, errorEventName, payload)
}
