package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/config"
	"github.com/bdticketpro/backoffice/internal/database"
	"github.com/bdticketpro/backoffice/internal/handler"
	"github.com/bdticketpro/backoffice/internal/queue"
	"github.com/bdticketpro/backoffice/internal/repository"
	"github.com/bdticketpro/backoffice/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional, real env wins

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if cfg.Env == "dev" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}
	if err := database.Seed(db, cfg.BcryptCost); err != nil {
		log.WithError(err).Fatal("database seed failed")
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and stats cache disabled")
	}

	userRepo := repository.NewUserRepo(db)
	countryRepo := repository.NewCountryRepo(db)
	airlineRepo := repository.NewAirlineRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	ticketRepo := repository.NewTicketRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	activityRepo := repository.NewActivityRepo(db)

	events := queue.NewPublisher(cfg.AMQPURL, log)
	if events != nil {
		go queue.StartConsumer(cfg.AMQPURL, log)
	}

	h := router.Handlers{
		Auth:      handler.NewAuthHandler(userRepo, activityRepo, log, cfg.JWTSecret, cfg.TokenTTL),
		Tickets:   handler.NewTicketHandler(ticketRepo, activityRepo, log, rdb, config.LoadCacheConfig()),
		Batches:   handler.NewBatchHandler(batchRepo, ticketRepo, airlineRepo, countryRepo, activityRepo, log),
		Bookings:  handler.NewBookingHandler(bookingRepo, ticketRepo, activityRepo, events, log),
		Users:     handler.NewUserHandler(userRepo, activityRepo, log, cfg.BcryptCost),
		Settings:  handler.NewSettingsHandler(settingsRepo, activityRepo, log),
		Reference: handler.NewReferenceHandler(countryRepo, airlineRepo),
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, h, userRepo, cfg.JWTSecret, log, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("server starting")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
