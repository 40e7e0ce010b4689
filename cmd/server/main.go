package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/ttshop/tyrestore/internal/config"
	"github.com/ttshop/tyrestore/internal/es"
	"github.com/ttshop/tyrestore/internal/events"
	"github.com/ttshop/tyrestore/internal/handlers"
	"github.com/ttshop/tyrestore/internal/logging"
	loggingmw "github.com/ttshop/tyrestore/internal/middleware/logging"
	"github.com/ttshop/tyrestore/internal/service"
	httpserver "github.com/ttshop/tyrestore/internal/transport/http"
	"github.com/ttshop/tyrestore/pkg/db"
)

func main() {
	configuration, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)
	ctx := logging.IntoContext(context.Background(), logger)

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		configuration.DB_HOST, configuration.DB_PORT, configuration.DB_USER,
		configuration.DB_PASSWORD, configuration.DB_NAME)

	database, err := db.Open(ctx, dsn)
	if err != nil {
		logger.Error("db_open_failed", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(database); err != nil {
		logger.Error("db_migrate_failed", "error", err)
		os.Exit(1)
	}

	if err := service.EnsureAdmin(ctx, database, configuration.ADMIN_USERNAME, configuration.ADMIN_PASSWORD); err != nil {
		logger.Error("ensure_admin_failed", "error", err)
		os.Exit(1)
	}

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer(configuration.KAFKA_ADDRESS)
	} else {
		logger.Warn("kafka disabled, KAFKA_ADDRESS not set")
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		esClient = nil
	}

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	statusSvc := &service.OrderStatusService{DB: database}

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	deps := httpserver.Deps{
		AuthHandler: &handlers.AuthHandler{
			Auth: &service.AuthService{DB: database, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
		},
		ProductHandler: &handlers.ProductHandler{
			Products: &service.ProductService{DB: database},
			ES:       esClient,
			Producer: producer,
		},
		SearchHandler: &handlers.SearchHandler{ES: esClient},
		OrderHandler: &handlers.OrderHandler{
			Orders:   &service.OrderService{DB: database},
			Status:   statusSvc,
			Producer: producer,
		},
		PaymentHandler: &handlers.PaymentHandler{
			Payments: &service.PaymentService{DB: database},
			Orders:   &service.OrderService{DB: database},
			Producer: producer,
		},
		DeliveryHandler: &handlers.DeliveryHandler{
			Deliveries: &service.DeliveryService{DB: database},
			Orders:     &service.OrderService{DB: database},
			Producer:   producer,
		},
		ReviewHandler:  &handlers.ReviewHandler{Reviews: &service.ReviewService{DB: database}},
		AddressHandler: &handlers.AddressHandler{Addresses: &service.AddressService{DB: database}},
		JWTSecret:      jwtSecret,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.PORT,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server starting", "port", configuration.PORT)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
