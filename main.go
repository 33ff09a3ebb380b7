package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ecoms/internal/app"
	"ecoms/internal/config"
	"ecoms/internal/models"
	"ecoms/internal/repositories"
	"ecoms/pkg/rabbitmq"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	setupLogger(cfg)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	deps := app.Dependencies{Registry: registry}

	// --- Storage ---
	if cfg.DBDriver == config.DriverMemory {
		store := repositories.NewMockStore()
		seedProducts(store.Products())
		deps.Store = store
		deps.Users = repositories.NewMockUserRepository()
	} else {
		db, err := app.OpenDatabase(cfg)
		if err != nil {
			log.WithError(err).WithField("driver", cfg.DBDriver).Fatal("failed to open database")
		}
		deps.Store = repositories.NewGORMStore(db)
		deps.Users = repositories.NewGORMUserRepository(db)
		deps.Ping = app.PingFunc(db)
	}

	// --- Order events ---
	if cfg.RabbitMQEnabled {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.WithError(err).Fatal("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		deps.Publisher = mqClient

		if err := mqClient.ConsumeOrderEvents(logOrderEvent); err != nil {
			log.WithError(err).Error("failed to start RabbitMQ consumer")
		}
	}

	fiberApp := app.New(cfg, deps)

	go func() {
		log.WithField("port", cfg.AppPort).Info("starting server")
		if err := fiberApp.Listen(cfg.AppPort); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	if err := fiberApp.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
		log.WithError(err).Error("error during Fiber shutdown")
	}
	log.Info("server gracefully stopped")
}

func setupLogger(cfg config.Config) {
	if cfg.LogFormat == "text" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{})
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown LOG_LEVEL, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// logOrderEvent is the consumer for the service's own order events; it only records them.
func logOrderEvent(msg amqp.Delivery) error {
	log.WithFields(log.Fields{
		"delivery_tag": msg.DeliveryTag,
		"type":         msg.Type,
		"message_id":   msg.MessageId,
	}).Info("received order event")
	return nil
}

// seedProducts populates the in-memory catalog so the service is usable without a database.
func seedProducts(repo repositories.ProductRepository) {
	products := []models.Product{
		{Name: "Laptop", Price: decimal.RequireFromString("1200.00"), Stock: 10, Category: "Electronics", IsActive: true},
		{Name: "Keyboard", Price: decimal.RequireFromString("75.00"), Stock: 25, Category: "Accessories", IsActive: true},
		{Name: "Mouse", Price: decimal.RequireFromString("25.00"), Stock: 50, Category: "Accessories", IsActive: true},
	}

	for i := range products {
		if err := repo.Create(context.Background(), &products[i]); err != nil {
			log.WithError(err).WithField("name", products[i].Name).Error("failed to seed product")
			continue
		}
		log.WithFields(log.Fields{"id": products[i].ID, "name": products[i].Name}).Debug("seeded product")
	}
}
