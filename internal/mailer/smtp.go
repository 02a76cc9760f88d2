package mailer

import (
	"fmt"
	"net/http"

	"github.com/notifero/mail-service/internal/config"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type SMTPMailer struct {
	fromName string
	host     string
	port     int
	username string
	password string
	logger   *zap.SugaredLogger
}

func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.SugaredLogger) *SMTPMailer {
	return &SMTPMailer{
		fromName: FROM_NAME,
		host:     cfg.HOST,
		port:     cfg.PORT,
		username: cfg.USERNAME,
		password: cfg.PASSWORD,
		logger:   logger,
	}
}

func (sm *SMTPMailer) Send(from, to, subject, htmlBody string) (int, error) {
	message := gomail.NewMessage()
	message.SetHeader("From", fmt.Sprintf("%s <%s>", sm.fromName, from))
	message.SetHeader("To", to)
	message.SetHeader("Subject", subject)
	message.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(sm.host, sm.port, sm.username, sm.password)

	if err := dialer.DialAndSend(message); err != nil {
		sm.logger.Errorw("failed to send email", "error", err, "toEmail", to)
		return http.StatusInternalServerError, fmt.Errorf("failed to send email: %w", err)
	}

	sm.logger.Infow("email sent successfully", "toEmail", to)

	return http.StatusOK, nil
}
