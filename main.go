// File: serenity/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"serenity/config"
	"serenity/cron"
	"serenity/database"
	bookingRepo "serenity/database/repository/booking"
	slotRepo "serenity/database/repository/slot"
	"serenity/handlers"
	"serenity/middleware"
	"serenity/routes"
	"serenity/services/schedule"
	"serenity/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()

	// The canonical window template is fixed at configuration time.
	template, err := schedule.ParseTemplate(config.AppConfig.SessionWindows)
	if err != nil {
		logger.Sugar().Fatalf("main: invalid SESSION_WINDOWS config: %v", err)
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	if err := slots.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create slot indexes: %v", err)
	}
	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}

	// services.
	engine := &schedule.DefaultSchedulingEngine{
		Template: template,
		Slots:    slots,
		Bookings: bookings,
	}
	controller := &schedule.DefaultLifecycleController{
		Engine: engine,
		Slots:  slots,
		Cache:  utils.GetSelectionCacheClient(),
	}
	bookingService := &schedule.DefaultBookingService{
		Engine:   engine,
		Slots:    slots,
		Bookings: bookings,
	}

	scheduleHandler := handlers.NewScheduleHandler(engine, controller, utils.GetCacheClient(), logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Register routes.
	routes.RegisterRoutes(router, scheduleHandler, bookingHandler)

	// Background sweep of lapsed, unbooked slots.
	cron.InitSlotJanitor(slots)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
