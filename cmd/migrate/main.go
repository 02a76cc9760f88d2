package main

import (
	"github.com/notifero/mail-service/internal/config"
	"github.com/notifero/mail-service/internal/database"
	"github.com/notifero/mail-service/internal/env"
	"github.com/notifero/mail-service/internal/model"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv()
}

func main() {
	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()
	cfg := config.GetConfig()

	logger.Infof("Database configuration: %+v", cfg.DB)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	migrateErr := db.AutoMigrate(&model.Template{})
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}
}
