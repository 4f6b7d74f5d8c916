package main

import (
	"os"

	"github.com/techmart/backend/internal/app"
	config "github.com/techmart/backend/internal/cfg"
	"github.com/techmart/backend/pkg/logger"
)

//	@title			TechMart Backend API
//	@version		1.0
//	@description	REST API интернет-магазина: каталог, заказы, оплата PayPal.

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
