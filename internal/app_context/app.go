package appcontext

import (
	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/docstore"
	"github.com/notifero/mail-service/internal/mailer"
	"github.com/notifero/mail-service/internal/queue"
	"github.com/notifero/mail-service/internal/repository"
	"github.com/notifero/mail-service/internal/service"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	// Logger lol....
	Logger *zap.SugaredLogger

	// Repository provides access to the template catalog.
	Repository *repository.Repository

	// DocStore fetches raw template documents.
	DocStore *docstore.Client

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	// Queue is the message transport for inbound events and outbound
	// error events.
	Queue *queue.RabbitMQ

	// Sender assembles and dispatches mails.
	Sender *service.MailSender
}
