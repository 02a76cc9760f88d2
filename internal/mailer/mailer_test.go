package mailer

import (
	"net/http"
	"testing"

	"github.com/joho/godotenv"
	"github.com/notifero/mail-service/internal/config"
	"go.uber.org/zap"
)

func TestNewFromConfigSelectsTransport(t *testing.T) {
	logger := zap.NewNop().Sugar()

	cfg := config.MailConfig{
		SMTP: config.SMTPConfig{HOST: "smtp.example.com", PORT: 587},
	}
	if _, ok := NewFromConfig(cfg, false, logger).(*SMTPMailer); !ok {
		t.Error("expected the SMTP transport when no SendGrid key is configured")
	}

	cfg.SEND_GRID.API_KEY = "SG.test"
	if _, ok := NewFromConfig(cfg, false, logger).(*SendGridMailer); !ok {
		t.Error("expected the SendGrid transport when an API key is configured")
	}
}

func TestSendGridSandboxSend(t *testing.T) {
	godotenv.Load("../../.env")

	cfg := config.GetConfig()
	if cfg.Mail.SEND_GRID.API_KEY == "" {
		t.Skip("MAIL_SEND_GRID_API_KEY not configured")
	}

	// isProduction = false to ensure that the send mail test always run in sandbox mode which won't send actual email to the user
	mail := NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, false, zap.NewNop().Sugar())

	status, err := mail.Send(cfg.Mail.FROM_EMAIL, "destino@example.com", "Prueba", "<h1>Hola</h1>")

	switch status {
	case http.StatusUnauthorized:
		t.Errorf("Unauthorized to send mail, check mail api_key and from_email")
	case http.StatusForbidden:
		t.Errorf("Forbidden to send mail, check mail from_email is it the correct email authorized in send grid?")
	}

	// If status == 202, it mean successful
	if status != http.StatusAccepted && status != http.StatusOK {
		t.Errorf("We got status %d, error: %v", status, err)
	}
}
