package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"bookable-backend/config"
	"bookable-backend/controllers"
	"bookable-backend/metrics"
	"bookable-backend/middleware"
	"bookable-backend/routes"
	"bookable-backend/services"
	"bookable-backend/utils"
)

func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(utils.EnvOrDefault("LOG_LEVEL", "info"))); err == nil {
		level = parsed
	}

	var out = zerolog.New(os.Stdout)
	if strings.EqualFold(utils.EnvOrDefault("LOG_FORMAT", "json"), "console") {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return out.Level(level).With().Timestamp().Str("app", "bookable-backend").Logger()
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := newLogger()
	metrics.Register()

	db, err := config.ConnectDatabase(logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect failed")
	}
	logger.Info().Msg("database connected, migrations applied")

	mailer := utils.NewSMTPMailer(logger)
	notifier := services.NewNotificationService(db, mailer, logger)

	availabilityService := services.NewAvailabilityService(db)
	bookingService := services.NewBookingService(db, notifier)
	holdService := services.NewHoldService(db)
	resourceService := services.NewResourceService(db)
	businessService := services.NewBusinessService(db)
	clientService := services.NewClientService(db)
	widgetService := services.NewWidgetService(db)

	bookingController := controllers.NewBookingController(bookingService)
	availabilityController := controllers.NewAvailabilityController(availabilityService)
	resourceController := controllers.NewResourceController(resourceService)
	holdController := controllers.NewHoldController(holdService)
	businessController := controllers.NewBusinessController(businessService)
	clientController := controllers.NewClientController(clientService)
	widgetController := controllers.NewWidgetController(widgetService, resourceService, availabilityService, bookingService, clientService)

	widgetAuth := middleware.NewWidgetAuth(widgetService, 5, 10)

	router := routes.SetupRouter(
		logger,
		bookingController,
		availabilityController,
		resourceController,
		holdController,
		businessController,
		clientController,
		widgetController,
		widgetAuth,
	)

	addr := ":" + utils.EnvOrDefault("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen and serve failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped gracefully")
}
