package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	appcontext "github.com/notifero/mail-service/internal/app_context"
	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/controller"
	"github.com/notifero/mail-service/internal/database"
	"github.com/notifero/mail-service/internal/docstore"
	"github.com/notifero/mail-service/internal/env"
	"github.com/notifero/mail-service/internal/mailer"
	"github.com/notifero/mail-service/internal/middleware"
	"github.com/notifero/mail-service/internal/queue"
	ratelimiter "github.com/notifero/mail-service/internal/rate_limiter"
	"github.com/notifero/mail-service/internal/repository"
	"github.com/notifero/mail-service/internal/route"
	"github.com/notifero/mail-service/internal/service"
	"github.com/notifero/mail-service/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()

	logger := util.NewLogger(cfg.ENV)
	logger.Debugf("Configuration: %+v \n", cfg)

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

	// Custom validation
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("strNotEmpty", util.StrNotEmpty); err != nil {
			return
		}
	}

	rateLimiter := ratelimiter.NewRateLimiter(cfg.RateLimiter, logger)
	mail := mailer.NewFromConfig(cfg.Mail, cfg.IsProduction(), logger)
	repo := repository.NewRepository(db, logger)
	events := queue.NewErrorPublisher(rabbitMQ, logger)
	sender := service.NewMailSender(&cfg, logger, repo.Template, docs, mail, events)

	app := appcontext.Application{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		DocStore:   docs,
		Mailer:     mail,
		Queue:      rabbitMQ,
		Sender:     sender,
	}

	_middleware := middleware.NewMiddleware(&app, rateLimiter)

	if cfg.ENV == "production" {
		logger.Info("Running in production mode")
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// docs: https://github.com/gin-contrib/cors?tab=readme-ov-file#using-defaultconfig-as-start-point
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Requested-With", "Accept"}
	r.Use(cors.New(corsConfig))
	r.Use(_middleware.RateLimiterMiddleware)

	_controller := controller.NewController(&app)

	r.GET("/", _controller.Index.Index)

	rApi := r.Group("/api")

	route.V1_Mail(rApi, _controller.Mail)

	if err := r.Run("0.0.0.0:" + app.Config.Port); err != nil {
		logger.Panic("Error running server: %v \n", err)
	}
}
