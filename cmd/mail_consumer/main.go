package main

import (
	"context"

	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/database"
	"github.com/notifero/mail-service/internal/docstore"
	"github.com/notifero/mail-service/internal/env"
	"github.com/notifero/mail-service/internal/mailer"
	"github.com/notifero/mail-service/internal/queue"
	"github.com/notifero/mail-service/internal/repository"
	"github.com/notifero/mail-service/internal/service"
	"github.com/notifero/mail-service/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

const (
	MAX_WORKER = 3
)

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	docs, err := docstore.NewClient(&cfg.Minio, logger)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	mail := mailer.NewFromConfig(cfg.Mail, cfg.IsProduction(), logger)
	repo := repository.NewRepository(db, logger)
	events := queue.NewErrorPublisher(rabbitMQ, logger)
	sender := service.NewMailSender(&cfg, logger, repo.Template, docs, mail, events)

	app := queue.MailConsumerContext{
		Config: &cfg,
		Logger: logger,
		Sender: sender,
	}

	ctx := context.Background()

	if err := rabbitMQ.ConsumeMailEvents(ctx, mailEventHandler, MAX_WORKER, &app); err != nil {
		logger.Fatalf("Failed to consume mail events: %v", err)
	}

	logger.Infof("Started consuming mail events")

	// Block forever to keep the consumer running
	select {}
}

// mailEventHandler hands the event to the sender, which acknowledges every
// outcome; failures travel on the error channel instead of requeueing.
func mailEventHandler(ctx context.Context, event service.EventDTO, app *queue.MailConsumerContext) (bool, error) {
	app.Sender.ProcessEvent(ctx, event)
	return false, nil
}
