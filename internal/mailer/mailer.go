package mailer

import (
	"github.com/notifero/mail-service/internal/config"
	"go.uber.org/zap"
)

const (
	FROM_NAME = "mail-service"
	MAX_RETRY = 3
)

// Client delivers one already-rendered HTML mail. Implementations return an
// http-style status code alongside the error.
type Client interface {
	Send(from, to, subject, htmlBody string) (int, error)
}

// NewFromConfig picks the configured transport: SendGrid when an API key is
// present, plain SMTP otherwise.
func NewFromConfig(cfg config.MailConfig, isProduction bool, logger *zap.SugaredLogger) Client {
	if cfg.SEND_GRID.API_KEY != "" {
		return NewSendgrid(cfg.SEND_GRID.API_KEY, isProduction, logger)
	}

	return NewSMTPMailer(cfg.SMTP, logger)
}
