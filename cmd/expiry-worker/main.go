package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/config"
	"github.com/bdticketpro/backoffice/internal/database"
	"github.com/bdticketpro/backoffice/internal/queue"
	"github.com/bdticketpro/backoffice/internal/repository"
	"github.com/bdticketpro/backoffice/internal/worker"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	interval := time.Minute
	if v := os.Getenv("EXPIRY_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			interval = d
		}
	}

	w := worker.NewExpiry(
		repository.NewBookingRepo(db),
		repository.NewTicketRepo(db),
		repository.NewActivityRepo(db),
		queue.NewPublisher(cfg.AMQPURL, log),
		log,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, interval)
	log.WithField("interval", interval.String()).Info("expiry worker started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("expiry worker shutting down")
}
